package interfaces

import (
	"context"

	"github.com/learnloop/lumen/pkg/domain/model"
)

// QueryLogRepository defines the interface for QueryLog data persistence
type QueryLogRepository interface {
	// Create appends a query log entry
	Create(ctx context.Context, log *model.QueryLog) (*model.QueryLog, error)

	// List returns all entries ordered by CreatedAt ascending
	List(ctx context.Context) ([]*model.QueryLog, error)

	// Count returns the number of entries
	Count(ctx context.Context) (int, error)
}
