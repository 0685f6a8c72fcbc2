package memory

import (
	"context"
	"sync"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
)

type queryLogRepository struct {
	mu     sync.RWMutex
	logs   []*model.QueryLog
	nextID int64
}

func newQueryLogRepository() *queryLogRepository {
	return &queryLogRepository{nextID: 1}
}

func (r *queryLogRepository) Create(ctx context.Context, log *model.QueryLog) (*model.QueryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *log
	created.ID = r.nextID
	created.CreatedAt = time.Now().UTC()
	r.nextID++

	// Appending keeps the slice ordered by CreatedAt
	r.logs = append(r.logs, &created)

	result := created
	return &result, nil
}

func (r *queryLogRepository) List(ctx context.Context) ([]*model.QueryLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.QueryLog, len(r.logs))
	for i, l := range r.logs {
		copied := *l
		result[i] = &copied
	}
	return result, nil
}

func (r *queryLogRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs), nil
}
