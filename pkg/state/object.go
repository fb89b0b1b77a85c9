package state

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectBlob stores the state document in an S3-compatible object store.
// Object stores replace objects atomically per PUT, which matches the
// whole-document write model.
type ObjectBlob struct {
	client *minio.Client
	bucket string
	prefix string
}

// ObjectBlobConfig configures the object store backend.
type ObjectBlobConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// NewObjectBlob creates an object-store blob backend. It verifies the
// bucket exists so misconfiguration fails at startup rather than on the
// first enforcement cycle.
func NewObjectBlob(ctx context.Context, cfg ObjectBlobConfig) (*ObjectBlob, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	return &ObjectBlob{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (b *ObjectBlob) objectName(key string) string {
	if b.prefix == "" {
		return key
	}
	return path.Join(b.prefix, key)
}

// Read returns the document stored under key, or ErrNotFound.
func (b *ObjectBlob) Read(ctx context.Context, key string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, b.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get state object %q: %w", key, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read state object %q: %w", key, err)
	}
	return buf.Bytes(), nil
}

// Write replaces the document stored under key.
func (b *ObjectBlob) Write(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, b.objectName(key),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to put state object %q: %w", key, err)
	}
	return nil
}
