package interfaces

import (
	"context"

	"github.com/learnloop/lumen/pkg/domain/model"
)

// Repository defines the interface for data persistence
type Repository interface {
	Content() ContentRepository
	ContentChunk() ContentChunkRepository
	QueryLog() QueryLogRepository
	RawQuery() RawQueryExecutor

	// Close releases the underlying connections
	Close() error
}

// RawQueryExecutor runs model generated read statements. Implementations must
// execute on a read-only connection and cap the number of returned rows.
type RawQueryExecutor interface {
	Query(ctx context.Context, statement string) ([]model.Row, error)
}
