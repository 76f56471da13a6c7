package bridge

import (
	"time"

	"flash-backend/resume/model"
)

// Actions understood by the local agent.
const (
	ActionPing    = "ping"
	ActionHandoff = "handoff"
)

// MessageTypeFlash tags handoff messages produced by a flash run.
const MessageTypeFlash = "flash.handoff"

// Response is the envelope every agent reply uses.
type Response struct {
	OK    bool       `cbor:"ok"`
	Error string     `cbor:"error,omitempty"`
	Data  RawMessage `cbor:"data,omitempty"`
}

// Artifact is one rendered document carried inline in a handoff.
type Artifact struct {
	Kind     string `cbor:"kind" json:"kind"`
	Filename string `cbor:"filename" json:"filename"`
	Bytes    []byte `cbor:"bytes" json:"-"`
}

// HandoffMessage is what the agent receives on a live delivery. Artifacts
// holds only the documents that rendered successfully and may be empty.
type HandoffMessage struct {
	Type        string              `cbor:"type"`
	RunID       string              `cbor:"runId"`
	UserID      string              `cbor:"userId"`
	Job         model.JobContext    `cbor:"job"`
	Resume      model.ResumePayload `cbor:"resume"`
	Preferences map[string]any      `cbor:"preferences"`
	Artifacts   []Artifact          `cbor:"artifacts"`
	CreatedAt   time.Time           `cbor:"createdAt"`
	UpdatedAt   time.Time           `cbor:"updatedAt"`
}

// PingResult is the agent's answer to a probe.
type PingResult struct {
	AgentVersion string `cbor:"agentVersion,omitempty"`
}

// DeliveryResult is the agent's acknowledgement of a handoff. Skipped is
// set locally when no send was attempted.
type DeliveryResult struct {
	Accepted     bool      `cbor:"accepted" json:"accepted"`
	AgentVersion string    `cbor:"agentVersion,omitempty" json:"agentVersion,omitempty"`
	ReceivedAt   time.Time `cbor:"receivedAt" json:"receivedAt"`
	Skipped      bool      `cbor:"-" json:"skipped,omitempty"`
}
