package model

import "time"

// Content is an uploaded piece of educational text. Its ID is shared with the
// vector index identifier map.
type Content struct {
	ID         int64
	Title      string
	Topic      string
	Grade      string
	Body       string
	FileName   string
	ChunkCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContentChunk is a sentence-bounded slice of a Content body
type ContentChunk struct {
	ID        int64
	ContentID int64
	Text      string
	Index     int
	CreatedAt time.Time
}

// ContentFilter narrows content listings. Empty fields do not filter.
type ContentFilter struct {
	Grade         string // exact match
	TitleContains string // substring match
}

// Metrics summarizes the stored data
type Metrics struct {
	TotalTopics        int
	TotalFilesUploaded int
	TotalQueries       int
}
