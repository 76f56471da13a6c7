package flash

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flash-backend/internal/bridge"
	"flash-backend/internal/queue"
	"flash-backend/internal/sessions"
	"flash-backend/internal/shared/storage/docstore/memory"
	"flash-backend/internal/shared/storage/object/local"
	"flash-backend/resume/model"
	"flash-backend/resume/render"
)

type fakeRenderer struct {
	kind     render.Kind
	data     []byte
	err      error
	panicMsg string
	calls    atomic.Int32
}

func (f *fakeRenderer) Kind() render.Kind { return f.kind }

func (f *fakeRenderer) Render(model.ResumePayload) ([]byte, error) {
	f.calls.Add(1)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.data, f.err
}

type fakeProbe struct {
	available bool
	calls     atomic.Int32
}

func (f *fakeProbe) Available(context.Context) bool {
	f.calls.Add(1)
	return f.available
}

type fakeSender struct {
	err   error
	calls atomic.Int32
	mu    sync.Mutex
	last  bridge.HandoffMessage
}

func (f *fakeSender) Send(_ context.Context, agentAvailable bool, msg bridge.HandoffMessage) (bridge.DeliveryResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = msg
	f.mu.Unlock()
	if f.err != nil {
		return bridge.DeliveryResult{}, f.err
	}
	return bridge.DeliveryResult{Accepted: true, ReceivedAt: time.Now().UTC()}, nil
}

func (f *fakeSender) lastMessage() bridge.HandoffMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type countingSessions struct {
	inner    SessionStore
	writeErr error
	writes   atomic.Int32
	hydrates atomic.Int32
}

func (c *countingSessions) Write(ctx context.Context, userID string, record sessions.Record) (sessions.Record, error) {
	c.writes.Add(1)
	if c.writeErr != nil {
		return sessions.Record{}, c.writeErr
	}
	return c.inner.Write(ctx, userID, record)
}

func (c *countingSessions) Hydrate(ctx context.Context, userID string, cached *sessions.Record) (sessions.Record, sessions.Source, error) {
	c.hydrates.Add(1)
	return c.inner.Hydrate(ctx, userID, cached)
}

type countingUploader struct {
	inner ArtifactUploader
	calls atomic.Int32
}

func (c *countingUploader) Upload(ctx context.Context, userID, runID string, artifacts []ArtifactBlob) ([]UploadReceipt, error) {
	c.calls.Add(1)
	return c.inner.Upload(ctx, userID, runID, artifacts)
}

func (c *countingUploader) Publish(ctx context.Context, userID, runID string, receipts []UploadReceipt) {
	c.inner.Publish(ctx, userID, runID, receipts)
}

type harness struct {
	orch     *Orchestrator
	pdf      *fakeRenderer
	docx     *fakeRenderer
	probe    *fakeProbe
	sender   *fakeSender
	sessions *countingSessions
	uploader *countingUploader
	fallback *Fallback
	notices  *queue.MemoryClient
	docs     *memory.Store
}

func newHarness(t *testing.T, agentAvailable bool) *harness {
	t.Helper()
	docs := memory.New()
	notices := &queue.MemoryClient{}
	fallback := &Fallback{Store: local.New(t.TempDir()), Docs: docs, Notices: notices}
	h := &harness{
		pdf:      &fakeRenderer{kind: render.KindPDF, data: []byte("%PDF-1.7 test")},
		docx:     &fakeRenderer{kind: render.KindDOCX, data: []byte("PK\x03\x04 test")},
		probe:    &fakeProbe{available: agentAvailable},
		sender:   &fakeSender{},
		sessions: &countingSessions{inner: sessions.NewBroker(docs)},
		fallback: fallback,
		notices:  notices,
		docs:     docs,
	}
	h.uploader = &countingUploader{inner: fallback}
	h.orch = &Orchestrator{
		Renderers:      []render.Renderer{h.pdf, h.docx},
		Probe:          h.probe,
		Sessions:       h.sessions,
		Dispatcher:     h.sender,
		Fallback:       h.uploader,
		Board:          NewBoard(),
		UploadDeadline: 2 * time.Second,
		NewRunID:       func() string { return "run-test" },
	}
	return h
}

func validSelection(url string) Selection {
	return Selection{
		Job: &model.JobContext{Title: "Platform Engineer", Company: "Acme", URL: url},
		Resume: &model.ResumePayload{
			PersonalInfo: model.PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
			Summary:      "Builds engines.",
			Skills:       []string{"Go"},
		},
		Preferences: map[string]any{"autoSubmit": false},
	}
}

var errBoom = errors.New("boom")
