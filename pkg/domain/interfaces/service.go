package interfaces

import "context"

// Embedder turns text into a fixed-dimension vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Generator returns raw model text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// VectorIndex stores one embedding per content and answers nearest neighbor
// queries with content IDs.
type VectorIndex interface {
	Insert(ctx context.Context, contentID int64, text string) error
	Search(ctx context.Context, query string, topK int) ([]int64, error)
	Size() int
}

// Retriever returns IDs of the contents closest to a question
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]int64, error)
}
