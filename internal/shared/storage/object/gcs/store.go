package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"flash-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using Google Cloud Storage.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS-backed object store using application default credentials.
func New(ctx context.Context, bucket, prefix string) (object.ObjectStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

// Save streams the reader into a new object. The write only becomes
// visible once the writer is closed successfully.
func (s *Store) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	storageKey, err := object.NewKey(userId, fileName)
	if err != nil {
		return "", 0, "", err
	}
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	body, mimeType, err := object.Sniff(r, fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("read sniff: %w", err)
	}

	objectName := s.objectName(storageKey)
	writer := s.client.Bucket(s.bucket).Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = mimeType

	written, err := io.Copy(writer, body)
	if err != nil {
		_ = writer.Close()
		return "", 0, "", fmt.Errorf("io.Copy to GCS failed for gs://%s/%s: %w", s.bucket, objectName, err)
	}
	if err := writer.Close(); err != nil {
		return "", 0, "", fmt.Errorf("failed to finalize GCS write gs://%s/%s: %w", s.bucket, objectName, err)
	}
	return storageKey, written, mimeType, nil
}

// Open returns a reader over a stored object.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	objectName := s.objectName(storageKey)
	reader, err := s.client.Bucket(s.bucket).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", object.ErrNotFound, s.bucket, objectName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", s.bucket, objectName, err)
	}
	return reader, nil
}

func (s *Store) objectName(storageKey string) string {
	key := strings.TrimLeft(storageKey, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

var _ object.ObjectStore = (*Store)(nil)
