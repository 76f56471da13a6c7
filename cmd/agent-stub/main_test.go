package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"flash-backend/internal/bridge"
)

func encodeHandoff(t *testing.T, msg bridge.HandoffMessage) []byte {
	t.Helper()
	raw, err := bridge.Marshal(map[string]any{"action": bridge.ActionHandoff, "message": msg})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestHandoffSinkWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	sink := &handoffSink{outDir: dir, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	raw := encodeHandoff(t, bridge.HandoffMessage{
		RunID:     "run-9",
		UserID:    "u1",
		Artifacts: []bridge.Artifact{{Kind: "pdf", Filename: "../Ada_Resume.pdf", Bytes: []byte("%PDF")}},
	})
	result, err := sink.handle(context.Background(), raw)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !result.(bridge.DeliveryResult).Accepted {
		t.Fatalf("expected accepted result")
	}
	data, err := os.ReadFile(filepath.Join(dir, "run-9", "Ada_Resume.pdf"))
	if err != nil || string(data) != "%PDF" {
		t.Fatalf("artifact not written: %v %q", err, data)
	}
}

func TestHandoffSinkRejects(t *testing.T) {
	sink := &handoffSink{reject: true, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	result, err := sink.handle(context.Background(), encodeHandoff(t, bridge.HandoffMessage{RunID: "r"}))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result.(bridge.DeliveryResult).Accepted {
		t.Fatalf("expected rejection")
	}
}
