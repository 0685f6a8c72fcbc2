package vectorindex

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ErrArtifactsExist is returned by Install when the target directory already
// holds index artifacts
var ErrArtifactsExist = goerr.New("index artifacts already exist")

// Info describes a stored artifact pair
type Info struct {
	Exists     bool
	Size       int
	Dimension  int
	Generation uuid.UUID
}

// Stored is a read-only, validated copy of the artifacts in a directory. It
// does not embed and cannot be searched.
type Stored struct {
	state *loadedState
}

// Load reads and cross-checks the artifacts in dir. It returns the same
// corruption errors as Open, except for the configured dimension check.
func Load(dir string) (*Stored, error) {
	st, err := load(dir)
	if err != nil {
		return nil, err
	}
	return &Stored{state: st}, nil
}

// Info describes the loaded artifacts
func (s *Stored) Info() *Info {
	return infoOf(s.state)
}

// WriteSnapshot encodes the loaded artifacts
func (s *Stored) WriteSnapshot(indexW, mapW io.Writer) error {
	if err := encodeIndex(indexW, s.state.artifacts); err != nil {
		return err
	}
	return encodeIDMap(mapW, s.state.artifacts)
}

// Verify decodes and cross-checks an artifact pair held in memory
func Verify(indexData, mapData []byte) (*Info, error) {
	st, err := decodePair(indexData, mapData)
	if err != nil {
		return nil, err
	}
	return infoOf(st), nil
}

// Install verifies an artifact pair and writes it into dir. It refuses to
// replace existing artifacts.
func Install(ctx context.Context, dir string, indexData, mapData []byte) (*Info, error) {
	st, err := decodePair(indexData, mapData)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{IndexFileName, IDMapFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return nil, goerr.Wrap(ErrArtifactsExist, "refusing to overwrite index artifacts", goerr.V("path", path))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(err, "failed to stat index artifact", goerr.V("path", path))
		}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create index directory", goerr.V("dir", dir))
	}
	if err := persist(ctx, dir, st.artifacts); err != nil {
		return nil, goerr.Wrap(err, "failed to install index artifacts", goerr.V("dir", dir))
	}
	return infoOf(st), nil
}

func infoOf(st *loadedState) *Info {
	return &Info{
		Exists:     st.exists,
		Size:       len(st.ids),
		Dimension:  st.dimension,
		Generation: st.generation,
	}
}
