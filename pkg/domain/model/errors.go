package model

import "github.com/m-mizutani/goerr/v2"

// Error kinds raised by the retrieval and answering pipeline. They are attached
// to wrapped errors as goerr tags so the original cause stays in the chain.
var (
	ErrTagEmbedding  = goerr.NewTag("embedding_failure")
	ErrTagGeneration = goerr.NewTag("generation_failure")
	ErrTagRetrieval  = goerr.NewTag("retrieval_failure")
	ErrTagStore      = goerr.NewTag("store_failure")
)

// ErrCorruptIndexState is returned when the persisted vector index and its
// identifier map disagree. The index must not be served until resolved.
var ErrCorruptIndexState = goerr.New("corrupt vector index state")

// ErrContentNotFound is returned by content lookups for unknown IDs
var ErrContentNotFound = goerr.New("content not found")
