package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flash-backend/internal/shared/storage/docstore"
	"flash-backend/internal/shared/telemetry"
)

// CanonicalCollection holds one active session document per user.
const CanonicalCollection = "flashSessions"

var (
	// ErrNoSession is returned by Hydrate when no location yields a session.
	ErrNoSession = errors.New("no active session")
	// ErrUserRequired guards every broker call.
	ErrUserRequired = errors.New("user id is required")
)

// Broker writes and hydrates active sessions.
type Broker struct {
	Docs docstore.Store
	Now  func() time.Time
}

// NewBroker returns a broker over docs.
func NewBroker(docs docstore.Store) *Broker {
	return &Broker{Docs: docs, Now: time.Now}
}

// CanonicalPath returns the document path of a user's active session.
func CanonicalPath(userID string) string {
	return CanonicalCollection + "/" + userID
}

// Write upserts the user's active session with merge semantics. CreatedAt
// is carried over from an existing record; UpdatedAt is always now. The
// stored record is returned.
func (b *Broker) Write(ctx context.Context, userID string, record Record) (Record, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Record{}, ErrUserRequired
	}
	now := b.now()
	record.UserID = userID
	record.UpdatedAt = now
	record.CreatedAt = now

	path := CanonicalPath(userID)
	existing, err := b.Docs.Get(ctx, path)
	switch {
	case err == nil:
		if created := timeField(existing["createdAt"]); !created.IsZero() {
			record.CreatedAt = created
		}
	case !errors.Is(err, docstore.ErrNotFound):
		telemetry.Warn("sessions.read_before_write_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	record = record.normalize()
	doc, err := toDocument(record)
	if err != nil {
		return Record{}, err
	}
	if err := b.Docs.Set(ctx, path, doc, true); err != nil {
		return Record{}, fmt.Errorf("write session %s: %w", path, err)
	}
	return record, nil
}

// Hydrate loads the user's active session, trying in order the canonical
// document, the legacy per-user field, the legacy flash_sessions rows and
// finally the caller's cached copy. A store error at one level falls through
// to the next; ErrNoSession is returned only when every level misses.
func (b *Broker) Hydrate(ctx context.Context, userID string, cached *Record) (Record, Source, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Record{}, "", ErrUserRequired
	}

	if record, ok := b.readCanonical(ctx, userID); ok {
		return record, SourceCanonical, nil
	}
	if record, ok := b.readLegacyUser(ctx, userID); ok {
		return record, SourceLegacyUser, nil
	}
	if record, ok := b.readLegacyQuery(ctx, userID); ok {
		return record, SourceLegacyQuery, nil
	}
	if cached != nil {
		record := *cached
		if record.UserID == "" {
			record.UserID = userID
		}
		return record.normalize(), SourceCache, nil
	}
	return Record{}, "", ErrNoSession
}

func (b *Broker) readCanonical(ctx context.Context, userID string) (Record, bool) {
	doc, err := b.Docs.Get(ctx, CanonicalPath(userID))
	if err != nil {
		logMiss(userID, SourceCanonical, err)
		return Record{}, false
	}
	record, err := fromCanonical(userID, doc)
	if err != nil {
		logMiss(userID, SourceCanonical, err)
		return Record{}, false
	}
	return record, true
}

func (b *Broker) readLegacyUser(ctx context.Context, userID string) (Record, bool) {
	doc, err := b.Docs.Get(ctx, legacyUsersCollection+"/"+userID)
	if err != nil {
		logMiss(userID, SourceLegacyUser, err)
		return Record{}, false
	}
	record, ok, err := fromLegacyUser(userID, doc)
	if err != nil {
		logMiss(userID, SourceLegacyUser, err)
		return Record{}, false
	}
	return record, ok
}

func (b *Broker) readLegacyQuery(ctx context.Context, userID string) (Record, bool) {
	docs, err := b.Docs.Query(ctx, legacyQueryCollection, docstore.Filter{
		Field: legacyQueryUserField,
		Value: userID,
	})
	if err != nil {
		logMiss(userID, SourceLegacyQuery, err)
		return Record{}, false
	}

	var (
		newest Record
		found  bool
	)
	for _, doc := range docs {
		record, err := fromLegacyRow(userID, doc)
		if err != nil {
			logMiss(userID, SourceLegacyQuery, err)
			continue
		}
		if !found || record.UpdatedAt.After(newest.UpdatedAt) {
			newest = record
			found = true
		}
	}
	return newest, found
}

func (b *Broker) now() time.Time {
	if b.Now == nil {
		return time.Now().UTC()
	}
	return b.Now().UTC()
}

func logMiss(userID string, source Source, err error) {
	if errors.Is(err, docstore.ErrNotFound) {
		return
	}
	telemetry.Warn("sessions.hydrate_miss", map[string]any{
		"user_id": userID,
		"source":  string(source),
		"error":   err.Error(),
	})
}
