package safe_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/learnloop/lumen/pkg/utils/safe"
	"github.com/m-mizutani/gt"
)

type failingCloser struct {
	closed bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("close failed")
}

func TestClose(t *testing.T) {
	c := &failingCloser{}
	safe.Close(t.Context(), c)
	gt.Bool(t, c.closed).True()

	safe.Close(t.Context(), nil)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.tmp")
	gt.NoError(t, os.WriteFile(path, []byte("x"), 0o600)).Required()

	safe.Remove(t.Context(), path)
	_, err := os.Stat(path)
	gt.Bool(t, errors.Is(err, os.ErrNotExist)).True()

	// already gone
	safe.Remove(t.Context(), path)
}
