// Package retrieval finds the contents most relevant to a question
package retrieval

import (
	"context"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultTopK is used when the caller does not ask for a specific count
const DefaultTopK = 3

// Service implements interfaces.Retriever on top of a vector index
type Service struct {
	index       interfaces.VectorIndex
	defaultTopK int
}

var _ interfaces.Retriever = &Service{}

type Option func(*Service)

// WithDefaultTopK overrides DefaultTopK
func WithDefaultTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.defaultTopK = k
		}
	}
}

func New(index interfaces.VectorIndex, opts ...Option) (*Service, error) {
	if index == nil {
		return nil, goerr.New("vector index is required")
	}

	s := &Service{
		index:       index,
		defaultTopK: DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Retrieve returns content IDs ordered by relevance. topK <= 0 selects the
// default.
func (s *Service) Retrieve(ctx context.Context, question string, topK int) ([]int64, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	ids, err := s.index.Search(ctx, question, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search index", goerr.V("top_k", topK), goerr.T(model.ErrTagRetrieval))
	}
	return ids, nil
}
