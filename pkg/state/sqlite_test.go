package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteBlob_RoundTrip(t *testing.T) {
	ctx := context.Background()
	blob, err := NewSQLiteBlob(filepath.Join(t.TempDir(), "warden.db"))
	if err != nil {
		t.Fatalf("NewSQLiteBlob failed: %v", err)
	}
	defer blob.Close()

	if _, err := blob.Read(ctx, "warden-state.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing document, got %v", err)
	}

	if err := blob.Write(ctx, "warden-state.json", []byte("v1")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := blob.Write(ctx, "warden-state.json", []byte("v2")); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	got, err := blob.Read(ctx, "warden-state.json")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("expected upsert to replace document, got %q", got)
	}
}

func TestSQLiteBlob_ReopensExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "warden.db")

	blob, err := NewSQLiteBlob(path)
	if err != nil {
		t.Fatalf("NewSQLiteBlob failed: %v", err)
	}
	if err := blob.Write(ctx, "doc", []byte("persisted")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	blob.Close()

	reopened, err := NewSQLiteBlob(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Read(ctx, "doc")
	if err != nil {
		t.Fatalf("Read after reopen failed: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("document lost across reopen: %q", got)
	}
}
