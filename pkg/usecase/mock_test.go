package usecase_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/learnloop/lumen/pkg/repository/sqlite"
	"github.com/m-mizutani/gt"
)

// mockGenerator answers calls in order with the configured functions
type mockGenerator struct {
	mu      sync.Mutex
	prompts []string
	steps   []func(prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	if n >= len(m.steps) {
		return "default answer", nil
	}
	return m.steps[n](prompt)
}

func (m *mockGenerator) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func reply(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func replyErr(err error) func(string) (string, error) {
	return func(string) (string, error) { return "", err }
}

type mockRetriever struct {
	retrieveFn func(ctx context.Context, question string, topK int) ([]int64, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, question string, topK int) ([]int64, error) {
	return m.retrieveFn(ctx, question, topK)
}

type mockIndex struct {
	insertFn func(ctx context.Context, contentID int64, text string) error
}

func (m *mockIndex) Insert(ctx context.Context, contentID int64, text string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, contentID, text)
	}
	return nil
}

func (m *mockIndex) Search(ctx context.Context, query string, topK int) ([]int64, error) {
	return nil, nil
}

func (m *mockIndex) Size() int {
	return 0
}

func newSQLiteRepository(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(t.Context(), filepath.Join(t.TempDir(), "lumen.db"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}
