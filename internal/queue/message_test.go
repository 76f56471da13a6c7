package queue

import (
	"context"
	"encoding/json"
	"testing"
)

func TestEncodeMessageDefaults(t *testing.T) {
	payload, err := EncodeMessage(Message{UserID: "u1", RunID: "run-1"})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	if raw["version"] != float64(MessageVersion) {
		t.Fatalf("expected version %d, got %v", MessageVersion, raw["version"])
	}
	if receipts, ok := raw["receipts"].([]any); !ok || len(receipts) != 0 {
		t.Fatalf("expected empty receipts array, got %v", raw["receipts"])
	}
}

func TestDecodeMessageKeepsReceipts(t *testing.T) {
	payload := []byte(`{"userId":"u1","runId":"r","receipts":[{"kind":"pdf","storageKey":"k","filename":"Ada_Resume.pdf","size":10,"mimeType":"application/pdf"}],"enqueuedAt":"2026-01-30T22:00:00Z","version":1}`)

	msg, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if len(msg.Receipts) != 1 || msg.Receipts[0].StorageKey != "k" {
		t.Fatalf("unexpected receipts: %+v", msg.Receipts)
	}
}

func TestDecodeMessageRejectsFutureVersion(t *testing.T) {
	if _, err := DecodeMessage([]byte(`{"userId":"u1","version":99}`)); err == nil {
		t.Fatalf("expected unsupported version error")
	}
}

func TestMemoryClientRecordsInOrder(t *testing.T) {
	client := &MemoryClient{}
	for _, id := range []string{"a", "b"} {
		if err := client.Send(context.Background(), Message{RunID: id}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	sent := client.Sent()
	if len(sent) != 2 || sent[0].RunID != "a" || sent[1].RunID != "b" {
		t.Fatalf("unexpected sent order: %+v", sent)
	}
}
