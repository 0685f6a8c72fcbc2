// Package snapshot copies vector index artifacts to and from object storage.
// Both artifacts of one generation are stored under a common prefix and a
// manifest naming the latest generation is written only after both uploads
// succeeded.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"time"

	"github.com/learnloop/lumen/pkg/service/vectorindex"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

const manifestName = "latest.json"

// Source produces a consistent artifact pair
type Source interface {
	WriteSnapshot(indexW, mapW io.Writer) error
}

// Manifest points at the latest uploaded generation
type Manifest struct {
	Generation string    `json:"generation"`
	Size       int       `json:"size"`
	Dimension  int       `json:"dimension"`
	CreatedAt  time.Time `json:"created_at"`
}

// DefaultPrefix is the object name prefix used without WithPrefix
const DefaultPrefix = "lumen/index"

type Service struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
}

type Option func(*Service)

// WithPrefix sets the object name prefix inside the bucket
func WithPrefix(prefix string) Option {
	return func(s *Service) {
		s.prefix = prefix
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store ObjectStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, goerr.New("object store is required")
	}

	s := &Service{
		store:  store,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) objectName(parts ...string) string {
	return path.Join(append([]string{s.prefix}, parts...)...)
}

// Backup uploads the artifacts produced by src and then updates the manifest
func (s *Service) Backup(ctx context.Context, src Source) (*Manifest, error) {
	var indexBuf, mapBuf bytes.Buffer
	if err := src.WriteSnapshot(&indexBuf, &mapBuf); err != nil {
		return nil, goerr.Wrap(err, "failed to encode index snapshot")
	}

	info, err := vectorindex.Verify(indexBuf.Bytes(), mapBuf.Bytes())
	if err != nil {
		return nil, goerr.Wrap(err, "index snapshot is inconsistent")
	}
	generation := info.Generation.String()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.store.Put(egCtx, s.objectName(generation, vectorindex.IndexFileName), indexBuf.Bytes())
	})
	eg.Go(func() error {
		return s.store.Put(egCtx, s.objectName(generation, vectorindex.IDMapFileName), mapBuf.Bytes())
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to upload index snapshot", goerr.V("generation", generation))
	}

	manifest := &Manifest{
		Generation: generation,
		Size:       info.Size,
		Dimension:  info.Dimension,
		CreatedAt:  s.now().UTC(),
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal manifest")
	}
	if err := s.store.Put(ctx, s.objectName(manifestName), data); err != nil {
		return nil, goerr.Wrap(err, "failed to upload manifest", goerr.V("generation", generation))
	}

	logging.From(ctx).Info("Index snapshot uploaded",
		"generation", generation,
		"size", manifest.Size,
		"prefix", s.prefix)
	return manifest, nil
}

// Latest returns the manifest of the most recent backup
func (s *Service) Latest(ctx context.Context) (*Manifest, error) {
	data, err := s.store.Get(ctx, s.objectName(manifestName))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get manifest")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest")
	}
	return &m, nil
}

// Restore downloads the latest backup into dir. Existing artifacts in dir
// are never overwritten.
func (s *Service) Restore(ctx context.Context, dir string) (*vectorindex.Info, error) {
	manifest, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}

	var indexData, mapData []byte
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		data, err := s.store.Get(egCtx, s.objectName(manifest.Generation, vectorindex.IndexFileName))
		indexData = data
		return err
	})
	eg.Go(func() error {
		data, err := s.store.Get(egCtx, s.objectName(manifest.Generation, vectorindex.IDMapFileName))
		mapData = data
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to download index snapshot", goerr.V("generation", manifest.Generation))
	}

	info, err := vectorindex.Install(ctx, dir, indexData, mapData)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to restore index snapshot",
			goerr.V("generation", manifest.Generation),
			goerr.V("dir", dir))
	}

	logging.From(ctx).Info("Index snapshot restored",
		"generation", manifest.Generation,
		"size", info.Size,
		"dir", dir)
	return info, nil
}
