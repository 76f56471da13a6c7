package flash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"flash-backend/internal/queue"
	"flash-backend/internal/shared/storage/docstore"
	"flash-backend/internal/shared/storage/object"
	"flash-backend/internal/shared/telemetry"
	"flash-backend/resume/render"
)

// SyncCollection holds the per-user manifest of the latest fallback upload.
const SyncCollection = "flashSync"

// ErrNoReceipt is returned when the manifest has no artifact of the requested kind.
var ErrNoReceipt = errors.New("no uploaded artifact of that kind")

// Manifest is what the agent reads to find the latest uploaded artifacts.
type Manifest struct {
	UserID     string          `json:"userId"`
	RunID      string          `json:"runId"`
	Receipts   []UploadReceipt `json:"receipts"`
	UploadedAt time.Time       `json:"uploadedAt"`
}

// Fallback is the durable sync channel: artifacts go to the blob store, a
// manifest goes to the document store and a notice goes on the queue. Docs
// and Notices are optional.
type Fallback struct {
	Store   object.ObjectStore
	Docs    docstore.Store
	Notices queue.Client
	Now     func() time.Time
}

// SyncPath returns the manifest document path for a user.
func SyncPath(userID string) string {
	return SyncCollection + "/" + userID
}

// Upload stores every artifact concurrently and returns receipts for the ones
// that made it, in input order. Failed uploads are joined into the error.
// Nothing becomes visible to the agent until Publish.
func (f *Fallback) Upload(ctx context.Context, userID, runID string, artifacts []ArtifactBlob) ([]UploadReceipt, error) {
	if len(artifacts) == 0 {
		return nil, nil
	}
	if f.Store == nil {
		return nil, errors.New("fallback: no blob store configured")
	}

	receipts := make([]*UploadReceipt, len(artifacts))
	errs := make([]error, len(artifacts))
	var g errgroup.Group
	for i, artifact := range artifacts {
		g.Go(func() error {
			key, size, mimeType, err := f.Store.Save(ctx, userID, artifact.Filename, bytes.NewReader(artifact.Bytes))
			if err != nil {
				errs[i] = fmt.Errorf("upload %s: %w", artifact.Kind, err)
				return nil
			}
			receipts[i] = &UploadReceipt{
				Kind:     artifact.Kind,
				Locator:  key,
				Filename: artifact.Filename,
				Size:     size,
				MimeType: mimeType,
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]UploadReceipt, 0, len(receipts))
	for _, r := range receipts {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, errors.Join(errs...)
}

// Publish records receipts as the user's latest manifest and queues a sync
// notice. Failures are logged. Only call it for an upload the run waited on.
func (f *Fallback) Publish(ctx context.Context, userID, runID string, receipts []UploadReceipt) {
	if len(receipts) == 0 {
		return
	}
	now := f.now()
	if f.Docs != nil {
		if err := f.writeManifest(ctx, Manifest{UserID: userID, RunID: runID, Receipts: receipts, UploadedAt: now}); err != nil {
			telemetry.Warn("flash.manifest_write_failed", map[string]any{
				"user_id": userID,
				"run_id":  runID,
				"error":   err.Error(),
			})
		}
	}
	if f.Notices != nil {
		msg := queue.Message{
			UserID:     userID,
			RunID:      runID,
			Receipts:   make([]queue.Receipt, 0, len(receipts)),
			EnqueuedAt: now.Format(time.RFC3339),
			Version:    queue.MessageVersion,
		}
		for _, r := range receipts {
			msg.Receipts = append(msg.Receipts, queue.Receipt{
				Kind:       string(r.Kind),
				StorageKey: r.Locator,
				Filename:   r.Filename,
				Size:       r.Size,
				MimeType:   r.MimeType,
			})
		}
		if err := f.Notices.Send(ctx, msg); err != nil {
			telemetry.Warn("flash.sync_notice_failed", map[string]any{
				"user_id": userID,
				"run_id":  runID,
				"error":   err.Error(),
			})
		}
	}
}

func (f *Fallback) writeManifest(ctx context.Context, m Manifest) error {
	receipts, err := toDocValue(m.Receipts)
	if err != nil {
		return fmt.Errorf("encode receipts: %w", err)
	}
	return f.Docs.Set(ctx, SyncPath(m.UserID), docstore.Document{
		"userId":     m.UserID,
		"runId":      m.RunID,
		"receipts":   receipts,
		"uploadedAt": m.UploadedAt.UTC(),
	}, true)
}

// Manifest returns the user's latest sync manifest.
func (f *Fallback) Manifest(ctx context.Context, userID string) (Manifest, error) {
	if f.Docs == nil {
		return Manifest{}, docstore.ErrNotFound
	}
	doc, err := f.Docs.Get(ctx, SyncPath(userID))
	if err != nil {
		return Manifest{}, err
	}
	// uploadedAt is a time.Time from Firestore and a string from the JSON
	// backends; both survive encoding/json.
	data, err := json.Marshal(doc)
	if err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Receipts == nil {
		m.Receipts = []UploadReceipt{}
	}
	return m, nil
}

// Open streams the latest uploaded artifact of kind.
func (f *Fallback) Open(ctx context.Context, userID string, kind render.Kind) (io.ReadCloser, UploadReceipt, error) {
	m, err := f.Manifest(ctx, userID)
	if err != nil {
		return nil, UploadReceipt{}, err
	}
	for _, r := range m.Receipts {
		if r.Kind != kind {
			continue
		}
		rc, err := f.Store.Open(ctx, r.Locator)
		if err != nil {
			return nil, UploadReceipt{}, fmt.Errorf("open %s: %w", kind, err)
		}
		return rc, r, nil
	}
	return nil, UploadReceipt{}, ErrNoReceipt
}

func (f *Fallback) now() time.Time {
	if f.Now == nil {
		return time.Now().UTC()
	}
	return f.Now().UTC()
}

func toDocValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
