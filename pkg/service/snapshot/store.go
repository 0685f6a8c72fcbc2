package snapshot

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// ErrNotFound is returned by ObjectStore.Get for missing objects
var ErrNotFound = goerr.New("snapshot object not found")

// ObjectStore holds snapshot objects by name
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// GCSStore stores objects in a Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
}

var _ ObjectStore = &GCSStore{}

// NewGCSStore creates a Cloud Storage backed store. opts are passed to the
// storage client, e.g. option.WithEndpoint for an emulator.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, name string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/octet-stream"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", s.bucket), goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", s.bucket), goerr.V("name", name))
	}
	return nil
}

func (s *GCSStore) Get(ctx context.Context, name string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, goerr.Wrap(ErrNotFound, "object does not exist", goerr.V("bucket", s.bucket), goerr.V("name", name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open object", goerr.V("bucket", s.bucket), goerr.V("name", name))
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("bucket", s.bucket), goerr.V("name", name))
	}
	return data, nil
}

// Close releases the storage client
func (s *GCSStore) Close() error {
	if err := s.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage client")
	}
	return nil
}
