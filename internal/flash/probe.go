package flash

import (
	"context"
	"time"

	"flash-backend/internal/bridge"
	"flash-backend/internal/shared/telemetry"
)

const (
	defaultProbeTimeout    = 1500 * time.Millisecond
	defaultDispatchTimeout = 5 * time.Second
)

// AgentBridge is the live channel to the local autofill agent.
type AgentBridge interface {
	Ping(ctx context.Context) (bridge.PingResult, error)
	Handoff(ctx context.Context, msg bridge.HandoffMessage) (bridge.DeliveryResult, error)
}

// Probe reports whether the local agent is reachable.
type Probe struct {
	Bridge  AgentBridge
	Timeout time.Duration
}

// Available pings the agent within the probe timeout. Any error, including
// the timeout, reads as "not available".
func (p *Probe) Available(ctx context.Context) bool {
	if p == nil || p.Bridge == nil {
		return false
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The ping runs on the bounded ctx so a hung agent is cut off once
	// Available returns; Await only guarantees we never wait longer.
	settled := Await(ctx, timeout, func(context.Context) (bridge.PingResult, error) {
		return p.Bridge.Ping(ctx)
	})
	if settled.Abandoned || settled.Err != nil {
		fields := map[string]any{"timeout_ms": timeout.Milliseconds(), "abandoned": settled.Abandoned}
		if settled.Err != nil {
			fields["error"] = settled.Err.Error()
		}
		telemetry.Info("flash.agent_unavailable", fields)
		return false
	}
	return true
}
