package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type contentRepository struct {
	mu       sync.RWMutex
	contents map[int64]*model.Content
	nextID   int64
	chunks   *contentChunkRepository
}

func newContentRepository(chunks *contentChunkRepository) *contentRepository {
	return &contentRepository{
		contents: make(map[int64]*model.Content),
		nextID:   1,
		chunks:   chunks,
	}
}

func copyContent(c *model.Content) *model.Content {
	copied := *c
	return &copied
}

func (r *contentRepository) Create(ctx context.Context, content *model.Content) (*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.create(content), nil
}

// CreateWithChunks holds the content lock while the chunks are added, so no
// reader sees the content without its chunks
func (r *contentRepository) CreateWithChunks(ctx context.Context, content *model.Content, chunks []string) (*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	input := copyContent(content)
	input.ChunkCount = len(chunks)
	created := r.create(input)

	records := make([]*model.ContentChunk, len(chunks))
	for i, text := range chunks {
		records[i] = &model.ContentChunk{ContentID: created.ID, Text: text, Index: i}
	}
	r.chunks.add(records)
	return created, nil
}

// create must be called with mu held
func (r *contentRepository) create(content *model.Content) *model.Content {
	now := time.Now().UTC()
	created := copyContent(content)
	created.ID = r.nextID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID++

	r.contents[created.ID] = created
	return copyContent(created)
}

func (r *contentRepository) Get(ctx context.Context, id int64) (*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrContentNotFound, "content not found", goerr.V("id", id))
	}
	return copyContent(content), nil
}

func (r *contentRepository) GetMany(ctx context.Context, ids []int64) (map[int64]*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[int64]*model.Content, len(ids))
	for _, id := range ids {
		if content, exists := r.contents[id]; exists {
			result[id] = copyContent(content)
		}
	}
	return result, nil
}

func (r *contentRepository) List(ctx context.Context, filter model.ContentFilter) ([]*model.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Content
	for _, c := range r.contents {
		if filter.Grade != "" && c.Grade != filter.Grade {
			continue
		}
		if filter.TitleContains != "" && !strings.Contains(c.Title, filter.TitleContains) {
			continue
		}
		result = append(result, copyContent(c))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *contentRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contents), nil
}

func (r *contentRepository) CountDistinctTopics(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make(map[string]struct{})
	for _, c := range r.contents {
		topics[c.Topic] = struct{}{}
	}
	return len(topics), nil
}
