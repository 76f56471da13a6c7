package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"flash-backend/internal/shared/storage/object"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	data := []byte("%PDF-1.7 fake body")

	key, size, mimeType, err := store.Save(context.Background(), "user-1", "Ada_Resume.pdf", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), size)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("unexpected mime type %q", mimeType)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../etc/passwd"); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}

func TestSaveHonorsCancelledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := store.Save(ctx, "user-1", "Resume.pdf", bytes.NewReader([]byte("x"))); err == nil {
		t.Fatalf("expected cancelled context error")
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "abc/missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
