package flash

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"flash-backend/internal/bridge"
)

type fakeBridge struct {
	pingErr    error
	pingBlock  bool
	handoffErr error
	pings      atomic.Int32
	handoffs   atomic.Int32
}

func (f *fakeBridge) Ping(ctx context.Context) (bridge.PingResult, error) {
	f.pings.Add(1)
	if f.pingBlock {
		<-ctx.Done()
		return bridge.PingResult{}, ctx.Err()
	}
	return bridge.PingResult{AgentVersion: "test"}, f.pingErr
}

func (f *fakeBridge) Handoff(ctx context.Context, msg bridge.HandoffMessage) (bridge.DeliveryResult, error) {
	f.handoffs.Add(1)
	if f.handoffErr != nil {
		return bridge.DeliveryResult{}, f.handoffErr
	}
	if _, ok := ctx.Deadline(); !ok {
		return bridge.DeliveryResult{}, errors.New("dispatch without deadline")
	}
	return bridge.DeliveryResult{Accepted: true}, nil
}

func TestProbeAvailable(t *testing.T) {
	tests := []struct {
		name   string
		probe  *Probe
		expect bool
	}{
		{name: "reachable", probe: &Probe{Bridge: &fakeBridge{}}, expect: true},
		{name: "ping error", probe: &Probe{Bridge: &fakeBridge{pingErr: errBoom}}, expect: false},
		{name: "no bridge", probe: &Probe{}, expect: false},
		{name: "nil probe", probe: nil, expect: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.probe.Available(context.Background()); got != tt.expect {
				t.Fatalf("Available() = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestProbeIsBounded(t *testing.T) {
	probe := &Probe{Bridge: &fakeBridge{pingBlock: true}, Timeout: 30 * time.Millisecond}

	start := time.Now()
	if probe.Available(context.Background()) {
		t.Fatalf("hung agent must read as unavailable")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("probe took %s", elapsed)
	}
}

func TestDispatcherSkipsWhenUnavailable(t *testing.T) {
	fb := &fakeBridge{}
	result, err := (&Dispatcher{Bridge: fb}).Send(context.Background(), false, bridge.HandoffMessage{})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.Skipped || fb.handoffs.Load() != 0 {
		t.Fatalf("expected skipped with zero bridge calls, got %+v / %d", result, fb.handoffs.Load())
	}
}

func TestDispatcherSendsWithDeadline(t *testing.T) {
	fb := &fakeBridge{}
	result, err := (&Dispatcher{Bridge: fb, Timeout: time.Second}).Send(context.Background(), true, bridge.HandoffMessage{UserID: "u1"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.Accepted || fb.handoffs.Load() != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestDispatcherWrapsBridgeErrors(t *testing.T) {
	fb := &fakeBridge{handoffErr: errBoom}
	if _, err := (&Dispatcher{Bridge: fb}).Send(context.Background(), true, bridge.HandoffMessage{}); !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped bridge error, got %v", err)
	}
}
