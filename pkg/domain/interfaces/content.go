package interfaces

import (
	"context"

	"github.com/learnloop/lumen/pkg/domain/model"
)

// ContentRepository defines the interface for Content data persistence
type ContentRepository interface {
	// Create stores a new content and returns it with the assigned ID
	Create(ctx context.Context, content *model.Content) (*model.Content, error)

	// CreateWithChunks stores a content together with its chunk texts in one
	// transaction. ChunkCount is set to len(chunks); nothing is stored on error.
	CreateWithChunks(ctx context.Context, content *model.Content, chunks []string) (*model.Content, error)

	// Get retrieves a content by ID. Returns model.ErrContentNotFound for unknown IDs.
	Get(ctx context.Context, id int64) (*model.Content, error)

	// GetMany retrieves contents by IDs. Unknown IDs are absent from the result map.
	GetMany(ctx context.Context, ids []int64) (map[int64]*model.Content, error)

	// List returns contents matching the filter ordered by ID
	List(ctx context.Context, filter model.ContentFilter) ([]*model.Content, error)

	// Count returns the number of stored contents
	Count(ctx context.Context) (int, error)

	// CountDistinctTopics returns the number of distinct topics
	CountDistinctTopics(ctx context.Context) (int, error)
}

// ContentChunkRepository defines the interface for ContentChunk data persistence
type ContentChunkRepository interface {
	// CreateMany stores chunks of one content
	CreateMany(ctx context.Context, chunks []*model.ContentChunk) error

	// ListByContentID returns chunks of a content ordered by Index
	ListByContentID(ctx context.Context, contentID int64) ([]*model.ContentChunk, error)
}
