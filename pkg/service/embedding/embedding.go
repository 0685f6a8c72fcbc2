// Package embedding converts text into fixed-dimension vectors through an
// LLM provider's embedding endpoint.
package embedding

import (
	"context"
	"strings"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Client implements interfaces.Embedder
type Client struct {
	llmClient gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithDimension sets the expected vector size
func WithDimension(dimension int) Option {
	return func(c *Client) {
		c.dimension = dimension
	}
}

// New creates a new embedding client with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (*Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llmClient: llmClient,
		dimension: model.DefaultEmbeddingDimension,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.dimension <= 0 {
		return nil, goerr.New("embedding dimension must be positive", goerr.V("dimension", c.dimension))
	}
	return c, nil
}

// Dimension returns the size of vectors produced by Embed
func (c *Client) Dimension() int {
	return c.dimension
}

// Embed generates an embedding vector for the given text. Failures are not
// retried.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.New("empty text cannot be embedded", goerr.T(model.ErrTagEmbedding))
	}

	embeddings, err := c.llmClient.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding", goerr.T(model.ErrTagEmbedding))
	}
	if len(embeddings) == 0 {
		return nil, goerr.New("no embedding returned", goerr.T(model.ErrTagEmbedding))
	}
	if len(embeddings[0]) != c.dimension {
		return nil, goerr.New("unexpected embedding dimension",
			goerr.V("expected", c.dimension),
			goerr.V("actual", len(embeddings[0])),
			goerr.T(model.ErrTagEmbedding))
	}

	// Convert float64 to float32
	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}
	return result, nil
}
