package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"flash-backend/internal/shared/storage/docstore"
)

// Store implements docstore.Store on Cloud Firestore.
type Store struct {
	client *firestore.Client
}

// New creates a Firestore client for projectID.
func New(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get returns the document data at path.
func (s *Store) Get(ctx context.Context, path string) (docstore.Document, error) {
	if _, _, err := docstore.SplitPath(path); err != nil {
		return nil, err
	}
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s: %w", path, err)
	}
	return docstore.Document(snap.Data()), nil
}

// Set writes the document. With merge, each top-level field is replaced as
// a whole and fields not in doc are kept, matching the other backends.
func (s *Store) Set(ctx context.Context, path string, doc docstore.Document, merge bool) error {
	if _, _, err := docstore.SplitPath(path); err != nil {
		return err
	}
	data := map[string]interface{}(doc)
	if data == nil {
		data = map[string]interface{}{}
	}
	ref := s.client.Doc(path)
	var err error
	switch {
	case merge && len(data) > 0:
		_, err = ref.Set(ctx, data, firestore.Merge(topLevelPaths(data)...))
	case merge:
		_, err = ref.Set(ctx, data, firestore.MergeAll)
	default:
		_, err = ref.Set(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("firestore set %s: %w", path, err)
	}
	return nil
}

func topLevelPaths(data map[string]interface{}) []firestore.FieldPath {
	paths := make([]firestore.FieldPath, 0, len(data))
	for key := range data {
		paths = append(paths, firestore.FieldPath{key})
	}
	return paths
}

// Query runs an equality filter against collection.
func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	query := s.client.Collection(collection).Query
	if filter.Field != "" {
		query = query.Where(filter.Field, "==", filter.Value)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []docstore.Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s: %w", collection, err)
		}
		out = append(out, docstore.Document(snap.Data()))
	}
	return out, nil
}

var _ docstore.Store = (*Store)(nil)
