package repository_test

import (
	"path/filepath"
	"testing"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/repository/memory"
	"github.com/learnloop/lumen/pkg/repository/sqlite"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	t.Helper()
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lumen.db")
	repo, err := sqlite.New(t.Context(), path)
	if err != nil {
		t.Fatalf("failed to create sqlite repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close sqlite repository: %v", err)
		}
	})
	return repo
}
