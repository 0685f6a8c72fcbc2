package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrAnswerFailed is the only error callers of the answering modes see.
	// The cause is logged where it happens.
	ErrAnswerFailed = errors.New("failed to answer question")

	// ErrEmptyQuestion is returned for blank questions
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrInvalidContent is returned when upload fields are missing or malformed
	ErrInvalidContent = errors.New("invalid content")

	// ErrIndexingFailed is returned when the content was stored but could not
	// be added to the vector index
	ErrIndexingFailed = errors.New("content stored but not indexed")

	// ErrNotConfigured is returned when a required collaborator was not provided
	ErrNotConfigured = errors.New("use case is not configured")
)

// Context keys for error values
const (
	ContentIDKey = "content_id"
	PersonaKey   = "persona"
)
