package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// Document is a loosely typed record as stored by the backend.
type Document map[string]any

// Filter selects documents in a collection whose top-level Field equals Value.
// A zero Limit means no limit.
type Filter struct {
	Field string
	Value string
	Limit int
}

// Store is the document store contract used by the session broker and the
// sync manifest writer. Paths alternate collection and document IDs,
// e.g. "flashSessions/user-1" or "users/user-1/settings/flash".
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	Set(ctx context.Context, path string, doc Document, merge bool) error
	Query(ctx context.Context, collection string, filter Filter) ([]Document, error)
}

// SplitPath returns the collection path and document ID of a document path.
func SplitPath(path string) (collection string, id string, err error) {
	clean := strings.Trim(strings.TrimSpace(path), "/")
	segments := strings.Split(clean, "/")
	if clean == "" || len(segments)%2 != 0 {
		return "", "", fmt.Errorf("invalid document path %q", path)
	}
	for _, seg := range segments {
		if seg == "" {
			return "", "", fmt.Errorf("invalid document path %q", path)
		}
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], nil
}

// Merge overlays src onto dst one level deep and returns dst.
func Merge(dst, src Document) Document {
	if dst == nil {
		dst = Document{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
