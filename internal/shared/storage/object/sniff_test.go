package object

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestSniffReplaysHead(t *testing.T) {
	body := strings.Repeat("a", 1000)
	r, mimeType, err := Sniff(strings.NewReader(body), "notes.txt")
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type %q", mimeType)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != body {
		t.Fatalf("expected full body replay, got %d bytes", len(got))
	}
}

func TestSniffPrefersOfficeExtension(t *testing.T) {
	_, mimeType, err := Sniff(bytes.NewReader([]byte("PK\x03\x04rest")), "Ada_Resume.docx")
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if mimeType != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Fatalf("unexpected mime type %q", mimeType)
	}
}

func TestNewKeyIsNamespacedPerUser(t *testing.T) {
	first, err := NewKey("user-1", "Resume.pdf")
	if err != nil {
		t.Fatalf("new key: %v", err)
	}
	second, _ := NewKey("user-1", "Resume.pdf")
	if first == second {
		t.Fatalf("expected unique keys, got %q twice", first)
	}
	if !strings.HasSuffix(first, "_Resume.pdf") {
		t.Fatalf("expected sanitized name suffix, got %q", first)
	}
	if _, err := NewKey("user-1", "../escape.pdf"); err == nil {
		t.Fatalf("expected traversal name to be rejected")
	}
}
