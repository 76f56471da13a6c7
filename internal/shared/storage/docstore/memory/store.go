package memory

import (
	"context"
	"encoding/json"
	"sync"

	"flash-backend/internal/shared/storage/docstore"
)

// Store keeps documents in memory and is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]docstore.Document
}

// New constructs an empty Store.
func New() *Store {
	return &Store{docs: make(map[string]docstore.Document)}
}

// Get returns a copy of the document at path.
func (s *Store) Get(ctx context.Context, path string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[collection+"/"+id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return clone(doc)
}

// Set stores doc at path, overlaying top-level fields when merge is true.
func (s *Store) Set(ctx context.Context, path string, doc docstore.Document, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	copied, err := clone(doc)
	if err != nil {
		return err
	}
	key := collection + "/" + id

	s.mu.Lock()
	defer s.mu.Unlock()
	if merge {
		s.docs[key] = docstore.Merge(s.docs[key], copied)
		return nil
	}
	s.docs[key] = copied
	return nil
}

// Query returns documents directly under collection whose field matches.
func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []docstore.Document
	for key, doc := range s.docs {
		docCollection, _, err := docstore.SplitPath(key)
		if err != nil || docCollection != collection {
			continue
		}
		if filter.Field != "" {
			value, ok := doc[filter.Field].(string)
			if !ok || value != filter.Value {
				continue
			}
		}
		copied, err := clone(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, copied)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// clone deep-copies a document through JSON so callers never share maps
// with the store. Values come back in their JSON-decoded forms.
func clone(doc docstore.Document) (docstore.Document, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out docstore.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = docstore.Document{}
	}
	return out, nil
}

var _ docstore.Store = (*Store)(nil)
