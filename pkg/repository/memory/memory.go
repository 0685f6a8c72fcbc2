package memory

import (
	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// ErrRawQueryUnsupported is returned by the in-memory backend for raw SQL
var ErrRawQueryUnsupported = goerr.New("raw query is not supported by memory repository")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	content      *contentRepository
	contentChunk *contentChunkRepository
	queryLog     *queryLogRepository
	rawQuery     *rawQueryExecutor
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	chunks := newContentChunkRepository()
	return &Memory{
		content:      newContentRepository(chunks),
		contentChunk: chunks,
		queryLog:     newQueryLogRepository(),
		rawQuery:     &rawQueryExecutor{},
	}
}

func (m *Memory) Content() interfaces.ContentRepository {
	return m.content
}

func (m *Memory) ContentChunk() interfaces.ContentChunkRepository {
	return m.contentChunk
}

func (m *Memory) QueryLog() interfaces.QueryLogRepository {
	return m.queryLog
}

func (m *Memory) RawQuery() interfaces.RawQueryExecutor {
	return m.rawQuery
}

func (m *Memory) Close() error {
	return nil
}
