package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"flash-backend/internal/shared/storage/docstore"
)

// Store implements docstore.Store on a Postgres jsonb table.
type Store struct {
	DB *sql.DB
}

// Get returns the document stored at path.
func (s *Store) Get(ctx context.Context, path string) (docstore.Document, error) {
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return nil, err
	}
	const query = `
SELECT data
FROM documents
WHERE path = $1
LIMIT 1`
	var raw []byte
	if err := s.DB.QueryRowContext(ctx, query, collection+"/"+id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	return decode(raw)
}

// Set upserts the document. With merge, top-level keys are overlaid using
// jsonb concatenation so concurrent writers touching different keys keep
// each other's fields.
func (s *Store) Set(ctx context.Context, path string, doc docstore.Document, merge bool) error {
	collection, id, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}

	const overwrite = `
INSERT INTO documents (path, collection, data, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, now(), now())
ON CONFLICT (path) DO UPDATE SET
  data = EXCLUDED.data,
  updated_at = now()`
	const merged = `
INSERT INTO documents (path, collection, data, created_at, updated_at)
VALUES ($1, $2, $3::jsonb, now(), now())
ON CONFLICT (path) DO UPDATE SET
  data = documents.data || EXCLUDED.data,
  updated_at = now()`

	query := overwrite
	if merge {
		query = merged
	}
	_, err = s.DB.ExecContext(ctx, query, collection+"/"+id, collection, string(payload))
	return err
}

// Query lists documents in collection, newest write first.
func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var (
		rows *sql.Rows
		err  error
	)
	if filter.Field != "" {
		const query = `
SELECT data
FROM documents
WHERE collection = $1 AND data->>$2 = $3
ORDER BY updated_at DESC
LIMIT $4`
		rows, err = s.DB.QueryContext(ctx, query, collection, filter.Field, filter.Value, limit)
	} else {
		const query = `
SELECT data
FROM documents
WHERE collection = $1
ORDER BY updated_at DESC
LIMIT $2`
		rows, err = s.DB.QueryContext(ctx, query, collection, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []docstore.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func decode(raw []byte) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	return doc, nil
}

var _ docstore.Store = (*Store)(nil)
