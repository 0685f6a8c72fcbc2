package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
)

type contentChunkRepository struct {
	mu     sync.RWMutex
	chunks map[int64][]*model.ContentChunk
	nextID int64
}

func newContentChunkRepository() *contentChunkRepository {
	return &contentChunkRepository{
		chunks: make(map[int64][]*model.ContentChunk),
		nextID: 1,
	}
}

func (r *contentChunkRepository) CreateMany(ctx context.Context, chunks []*model.ContentChunk) error {
	r.add(chunks)
	return nil
}

func (r *contentChunkRepository) add(chunks []*model.ContentChunk) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, chunk := range chunks {
		created := *chunk
		created.ID = r.nextID
		created.CreatedAt = now
		r.nextID++
		r.chunks[created.ContentID] = append(r.chunks[created.ContentID], &created)
	}
}

func (r *contentChunkRepository) ListByContentID(ctx context.Context, contentID int64) ([]*model.ContentChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ContentChunk, 0, len(r.chunks[contentID]))
	for _, chunk := range r.chunks[contentID] {
		copied := *chunk
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})
	return result, nil
}
