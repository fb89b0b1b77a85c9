package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBlob_RoundTrip(t *testing.T) {
	ctx := context.Background()
	blob, err := NewFileBlob(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBlob failed: %v", err)
	}

	if _, err := blob.Read(ctx, "warden-state.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing document, got %v", err)
	}

	doc := []byte(`{"billing_month":"2026-03"}`)
	if err := blob.Write(ctx, "warden-state.json", doc); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := blob.Read(ctx, "warden-state.json")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("round trip mismatch: %s", got)
	}
}

func TestFileBlob_OverwriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blob, err := NewFileBlob(dir)
	if err != nil {
		t.Fatalf("NewFileBlob failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := blob.Write(ctx, "doc", []byte{byte('a' + i)}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	got, err := blob.Read(ctx, "doc")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "e" {
		t.Errorf("expected last write to win, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "doc" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestFileBlob_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	if _, err := NewFileBlob(dir); err != nil {
		t.Fatalf("NewFileBlob failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("state directory not created: %v", err)
	}
}
