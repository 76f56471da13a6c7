// Command agent-stub is a stand-in autofill agent for local development.
// It answers pings and accepts handoffs on the bridge socket, optionally
// writing the received artifacts to disk.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"flash-backend/internal/bridge"
)

const agentVersion = "stub-1"

func main() {
	socket := flag.String("socket", defaultSocket(), "unix socket to listen on")
	outDir := flag.String("out", "", "directory to write received artifacts to (disabled when empty)")
	reject := flag.Bool("reject", false, "refuse every handoff")
	slowPing := flag.Duration("ping-delay", 0, "delay before answering pings")
	verbose := flag.BoolP("verbose", "v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := &handoffSink{outDir: *outDir, reject: *reject, logger: logger}
	srv := bridge.NewServer(*socket, logger)
	srv.Handle(bridge.ActionPing, func(ctx context.Context, raw []byte) (any, error) {
		if *slowPing > 0 {
			select {
			case <-time.After(*slowPing):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return bridge.PingResult{AgentVersion: agentVersion}, nil
	})
	srv.Handle(bridge.ActionHandoff, h.handle)

	if err := srv.Serve(ctx); err != nil {
		logger.Error("agent stopped", "error", err)
		os.Exit(1)
	}
}

type handoffSink struct {
	outDir string
	reject bool
	logger *slog.Logger
}

func (h *handoffSink) handle(ctx context.Context, raw []byte) (any, error) {
	msg, err := bridge.DecodeHandoff(raw)
	if err != nil {
		return nil, err
	}
	h.logger.Info("handoff received",
		"run_id", msg.RunID,
		"user_id", msg.UserID,
		"job", msg.Job.Title,
		"company", msg.Job.Company,
		"artifacts", len(msg.Artifacts),
	)
	if h.reject {
		return bridge.DeliveryResult{Accepted: false, AgentVersion: agentVersion}, nil
	}
	if h.outDir != "" {
		if err := h.write(msg); err != nil {
			return nil, err
		}
	}
	return bridge.DeliveryResult{Accepted: true, AgentVersion: agentVersion, ReceivedAt: time.Now().UTC()}, nil
}

func (h *handoffSink) write(msg bridge.HandoffMessage) error {
	if msg.RunID == "" {
		return errors.New("handoff has no run id")
	}
	dir := filepath.Join(h.outDir, filepath.Base(msg.RunID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, a := range msg.Artifacts {
		path := filepath.Join(dir, filepath.Base(a.Filename))
		if err := os.WriteFile(path, a.Bytes, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		h.logger.Debug("artifact written", "path", path, "bytes", len(a.Bytes))
	}
	return nil
}

func defaultSocket() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "flash-agent.sock")
	}
	return filepath.Join(os.TempDir(), "flash-agent.sock")
}
