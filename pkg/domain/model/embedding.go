package model

// DefaultEmbeddingDimension is the output size of the default embedding model
const DefaultEmbeddingDimension = 384
