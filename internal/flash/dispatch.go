package flash

import (
	"context"
	"fmt"
	"time"

	"flash-backend/internal/bridge"
	"flash-backend/internal/sessions"
)

// Dispatcher delivers handoff messages over the live channel.
type Dispatcher struct {
	Bridge  AgentBridge
	Timeout time.Duration
}

// Send delivers msg when agentAvailable is true and returns a skipped
// result without touching the bridge otherwise.
func (d *Dispatcher) Send(ctx context.Context, agentAvailable bool, msg bridge.HandoffMessage) (bridge.DeliveryResult, error) {
	if !agentAvailable {
		return bridge.DeliveryResult{Skipped: true}, nil
	}
	if d.Bridge == nil {
		return bridge.DeliveryResult{}, fmt.Errorf("dispatch: no agent bridge configured")
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := d.Bridge.Handoff(ctx, msg)
	if err != nil {
		return bridge.DeliveryResult{}, fmt.Errorf("dispatch handoff: %w", err)
	}
	return result, nil
}

// BuildHandoff projects a persisted session and the rendered artifacts into
// the message the agent receives.
func BuildHandoff(runID string, record sessions.Record, artifacts []ArtifactBlob) bridge.HandoffMessage {
	out := make([]bridge.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, bridge.Artifact{
			Kind:     string(a.Kind),
			Filename: a.Filename,
			Bytes:    a.Bytes,
		})
	}
	return bridge.HandoffMessage{
		Type:        bridge.MessageTypeFlash,
		RunID:       runID,
		UserID:      record.UserID,
		Job:         record.Job,
		Resume:      record.Resume,
		Preferences: record.Preferences,
		Artifacts:   out,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
