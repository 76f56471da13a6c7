package queue

import (
	"encoding/json"
	"fmt"
)

// MessageVersion is bumped whenever the notice layout changes.
const MessageVersion = 1

// Receipt points at one uploaded artifact.
type Receipt struct {
	Kind       string `json:"kind"`
	StorageKey string `json:"storageKey"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
}

// Message tells downstream consumers that a user's artifacts landed in durable storage.
type Message struct {
	UserID     string    `json:"userId"`
	RunID      string    `json:"runId"`
	RequestID  string    `json:"requestId,omitempty"`
	Receipts   []Receipt `json:"receipts"`
	EnqueuedAt string    `json:"enqueuedAt"`
	Version    int       `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	if msg.Receipts == nil {
		msg.Receipts = []Receipt{}
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version > MessageVersion {
		return Message{}, fmt.Errorf("unsupported sync notice version %d", msg.Version)
	}
	return msg, nil
}
