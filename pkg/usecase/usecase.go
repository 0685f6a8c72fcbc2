package usecase

import (
	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/service/chunker"
	"github.com/learnloop/lumen/pkg/service/retrieval"
)

type UseCases struct {
	repo      interfaces.Repository
	generator interfaces.Generator
	retriever interfaces.Retriever
	index     interfaces.VectorIndex
	chunker   *chunker.Chunker
	topK      int

	Ask     *AskUseCase
	Content *ContentUseCase
}

type Option func(*UseCases)

// WithGenerator sets the language model used by both answering modes
func WithGenerator(generator interfaces.Generator) Option {
	return func(uc *UseCases) {
		uc.generator = generator
	}
}

// WithRetriever sets the retriever used for context-grounded answers
func WithRetriever(retriever interfaces.Retriever) Option {
	return func(uc *UseCases) {
		uc.retriever = retriever
	}
}

// WithVectorIndex sets the index uploaded contents are added to
func WithVectorIndex(index interfaces.VectorIndex) Option {
	return func(uc *UseCases) {
		uc.index = index
	}
}

// WithChunker replaces the default content chunker
func WithChunker(c *chunker.Chunker) Option {
	return func(uc *UseCases) {
		uc.chunker = c
	}
}

// WithTopK sets how many contents are retrieved as context
func WithTopK(k int) Option {
	return func(uc *UseCases) {
		if k > 0 {
			uc.topK = k
		}
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		chunker: chunker.New(),
		topK:    retrieval.DefaultTopK,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Ask = NewAskUseCase(repo, uc.generator, uc.retriever, uc.topK)
	uc.Content = NewContentUseCase(repo, uc.index, uc.chunker)

	return uc
}
