package flash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flash-backend/internal/bridge"
	"flash-backend/internal/sessions"
	"flash-backend/internal/shared/metrics"
	"flash-backend/internal/shared/telemetry"
	"flash-backend/resume/model"
	"flash-backend/resume/render"
)

const defaultUploadDeadline = 10 * time.Second

// AvailabilityProbe answers whether the live channel can be used.
type AvailabilityProbe interface {
	Available(ctx context.Context) bool
}

// SessionStore persists and recovers the active session.
type SessionStore interface {
	Write(ctx context.Context, userID string, record sessions.Record) (sessions.Record, error)
	Hydrate(ctx context.Context, userID string, cached *sessions.Record) (sessions.Record, sessions.Source, error)
}

// HandoffSender delivers a handoff over the live channel.
type HandoffSender interface {
	Send(ctx context.Context, agentAvailable bool, msg bridge.HandoffMessage) (bridge.DeliveryResult, error)
}

// ArtifactUploader is the durable fallback channel. Upload stores blobs;
// Publish makes them the user's latest set.
type ArtifactUploader interface {
	Upload(ctx context.Context, userID, runID string, artifacts []ArtifactBlob) ([]UploadReceipt, error)
	Publish(ctx context.Context, userID, runID string, receipts []UploadReceipt)
}

// Orchestrator runs one flash handoff end to end.
type Orchestrator struct {
	Renderers      []render.Renderer
	Probe          AvailabilityProbe
	Sessions       SessionStore
	Dispatcher     HandoffSender
	Fallback       ArtifactUploader
	Board          *Board
	UploadDeadline time.Duration
	NewRunID       func() string
}

// Run validates the selection, renders artifacts while probing the agent,
// persists the session and then delivers over the live channel (when the
// agent answered) and the fallback channel (always, time-boxed).
//
// The only errors returned are ErrNothingSelected and ErrSessionPersist;
// every other failure is absorbed into the Outcome.
func (o *Orchestrator) Run(ctx context.Context, userID string, sel Selection) (Outcome, error) {
	started := time.Now()
	runID := o.runID()
	metrics.IncFlashStarted()

	o.transition(userID, StateValidating)
	job, resume, err := validate(sel)
	if err != nil {
		return o.fail(userID, runID, started, err)
	}

	o.transition(userID, StatePreparing)
	prefs := sel.Preferences
	if prefs == nil {
		prefs = o.carryPreferences(ctx, userID, sel.Cached)
	}
	artifacts, available := o.prepare(ctx, userID, runID, resume)

	record, err := o.Sessions.Write(ctx, userID, sessions.Record{
		Job:         job,
		Resume:      resume,
		Preferences: prefs,
	})
	if err != nil {
		return o.fail(userID, runID, started, fmt.Errorf("%w: %w", ErrSessionPersist, err))
	}
	o.transition(userID, StateSessionPersisted)

	outcome := Outcome{
		RunID:          runID,
		AgentAvailable: available,
		Artifacts:      artifacts,
		Receipts:       []UploadReceipt{},
		Session:        record,
	}
	outcome.Navigation, outcome.NavigationURL = navigationFor(sel.Job.URL)

	if available {
		o.transition(userID, StateDispatched)
		outcome.LiveDelivered = o.dispatch(ctx, userID, runID, record, artifacts)
	} else {
		o.transition(userID, StateFallbackOnly)
	}

	outcome.Receipts, outcome.UploadAbandoned = o.upload(ctx, userID, runID, artifacts)
	outcome.FallbackDelivered = len(outcome.Receipts) > 0
	outcome.State = StateDone

	o.finish(userID, outcome, nil)
	metrics.IncFlashCompleted()
	metrics.ObserveFlashDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("flash.completed", map[string]any{
		"user_id":         userID,
		"run_id":          runID,
		"delivery":        string(outcome.Delivery()),
		"agent_available": available,
		"artifacts":       len(artifacts),
		"receipts":        len(outcome.Receipts),
		"navigation":      string(outcome.Navigation),
		"duration_ms":     time.Since(started).Milliseconds(),
	})
	return outcome, nil
}

func validate(sel Selection) (model.JobContext, model.ResumePayload, error) {
	if sel.Job == nil || sel.Resume == nil {
		return model.JobContext{}, model.ResumePayload{}, ErrNothingSelected
	}
	job := sel.Job.Normalize()
	if job.IsEmpty() {
		return model.JobContext{}, model.ResumePayload{}, ErrNothingSelected
	}
	return job, sel.Resume.Normalize(), nil
}

// carryPreferences pulls the preference bag forward from the last session.
// A miss at every level yields an empty bag.
func (o *Orchestrator) carryPreferences(ctx context.Context, userID string, cached *sessions.Record) map[string]any {
	record, source, err := o.Sessions.Hydrate(ctx, userID, cached)
	if err != nil {
		if !errors.Is(err, sessions.ErrNoSession) {
			telemetry.Warn("flash.hydrate_failed", map[string]any{"user_id": userID, "error": err.Error()})
		}
		return map[string]any{}
	}
	telemetry.Info("flash.hydrated", map[string]any{"user_id": userID, "source": string(source)})
	return record.Preferences
}

// prepare renders every artifact and probes the agent concurrently. The
// join is fail-soft: a renderer error or panic only drops that artifact.
func (o *Orchestrator) prepare(ctx context.Context, userID, runID string, resume model.ResumePayload) ([]ArtifactBlob, bool) {
	results := make([]*ArtifactBlob, len(o.Renderers))
	var available bool

	var g errgroup.Group
	for i, renderer := range o.Renderers {
		g.Go(func() error {
			blob, err := renderSafely(renderer, resume)
			if err != nil {
				telemetry.Warn("flash.render_failed", map[string]any{
					"user_id": userID,
					"run_id":  runID,
					"kind":    string(renderer.Kind()),
					"error":   err.Error(),
				})
				return nil
			}
			results[i] = &blob
			return nil
		})
	}
	g.Go(func() error {
		if o.Probe != nil {
			available = o.Probe.Available(ctx)
		}
		return nil
	})
	_ = g.Wait()

	artifacts := make([]ArtifactBlob, 0, len(results))
	for _, r := range results {
		if r != nil {
			artifacts = append(artifacts, *r)
		}
	}
	return artifacts, available
}

func renderSafely(renderer render.Renderer, resume model.ResumePayload) (blob ArtifactBlob, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	data, err := renderer.Render(resume)
	if err != nil {
		return ArtifactBlob{}, err
	}
	if len(data) == 0 {
		return ArtifactBlob{}, errors.New("renderer returned no bytes")
	}
	kind := renderer.Kind()
	return ArtifactBlob{Kind: kind, Filename: render.Filename(resume, kind), Bytes: data}, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, userID, runID string, record sessions.Record, artifacts []ArtifactBlob) bool {
	if o.Dispatcher == nil {
		return false
	}
	result, err := o.Dispatcher.Send(ctx, true, BuildHandoff(runID, record, artifacts))
	if err != nil {
		telemetry.Warn("flash.dispatch_failed", map[string]any{
			"user_id": userID,
			"run_id":  runID,
			"error":   err.Error(),
		})
		return false
	}
	if !result.Accepted || result.Skipped {
		return false
	}
	metrics.IncFlashLiveDelivered()
	return true
}

// upload runs the fallback under the upload deadline and publishes what
// settled in time. An abandoned upload is never published, so a late finish
// cannot replace a newer run's manifest. Errors and the deadline are logged
// only.
func (o *Orchestrator) upload(ctx context.Context, userID, runID string, artifacts []ArtifactBlob) ([]UploadReceipt, bool) {
	if o.Fallback == nil {
		return []UploadReceipt{}, false
	}
	deadline := o.UploadDeadline
	if deadline <= 0 {
		deadline = defaultUploadDeadline
	}

	settled := Await(ctx, deadline, func(c context.Context) ([]UploadReceipt, error) {
		return o.Fallback.Upload(c, userID, runID, artifacts)
	})
	if settled.Abandoned {
		metrics.IncFlashUploadAbandoned()
		telemetry.Warn("flash.upload_abandoned", map[string]any{
			"user_id":     userID,
			"run_id":      runID,
			"deadline_ms": deadline.Milliseconds(),
		})
		return []UploadReceipt{}, true
	}
	if settled.Err != nil {
		telemetry.Warn("flash.upload_failed", map[string]any{
			"user_id":  userID,
			"run_id":   runID,
			"error":    settled.Err.Error(),
			"uploaded": len(settled.Value),
		})
	}
	if len(settled.Value) == 0 {
		return []UploadReceipt{}, false
	}
	o.Fallback.Publish(ctx, userID, runID, settled.Value)
	return settled.Value, false
}

func (o *Orchestrator) fail(userID, runID string, started time.Time, err error) (Outcome, error) {
	outcome := Outcome{RunID: runID, State: StateError}
	o.finish(userID, outcome, err)
	metrics.IncFlashFailed()
	metrics.ObserveFlashDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Error("flash.failed", map[string]any{
		"user_id": userID,
		"run_id":  runID,
		"error":   err.Error(),
	})
	return outcome, err
}

func (o *Orchestrator) transition(userID string, state State) {
	if o.Board != nil {
		o.Board.transition(userID, state)
	}
}

func (o *Orchestrator) finish(userID string, outcome Outcome, err error) {
	if o.Board != nil {
		o.Board.finish(userID, outcome, err)
	}
}

func (o *Orchestrator) runID() string {
	if o.NewRunID != nil {
		return o.NewRunID()
	}
	return uuid.NewString()
}
