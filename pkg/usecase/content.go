package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/service/chunker"
	"github.com/learnloop/lumen/pkg/utils/errutil"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// UploadInput is one uploaded text file with its descriptive fields
type UploadInput struct {
	Title    string
	Topic    string
	Grade    string
	FileName string
	Body     []byte
}

type ContentUseCase struct {
	repo    interfaces.Repository
	index   interfaces.VectorIndex
	chunker *chunker.Chunker
}

func NewContentUseCase(repo interfaces.Repository, index interfaces.VectorIndex, c *chunker.Chunker) *ContentUseCase {
	if c == nil {
		c = chunker.New()
	}
	return &ContentUseCase{
		repo:    repo,
		index:   index,
		chunker: c,
	}
}

func (in UploadInput) validate() error {
	required := []struct{ name, value string }{
		{"title", in.Title},
		{"topic", in.Topic},
		{"grade", in.Grade},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return goerr.Wrap(ErrInvalidContent, "field is required", goerr.V("field", f.name))
		}
	}
	if !utf8.Valid(in.Body) {
		return goerr.Wrap(ErrInvalidContent, "file is not valid UTF-8 text", goerr.V("file_name", in.FileName))
	}
	if strings.TrimSpace(string(in.Body)) == "" {
		return goerr.Wrap(ErrInvalidContent, "file is empty", goerr.V("file_name", in.FileName))
	}
	return nil
}

// Upload stores the content and its chunks, then adds the body to the vector
// index keyed by the new content ID. If indexing fails the stored record is
// kept and ErrIndexingFailed is returned.
func (uc *ContentUseCase) Upload(ctx context.Context, in UploadInput) (*model.Content, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if uc.index == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "vector index is not configured")
	}

	body := string(in.Body)
	chunks := uc.chunker.Split(body)

	created, err := uc.repo.Content().CreateWithChunks(ctx, &model.Content{
		Title:    strings.TrimSpace(in.Title),
		Topic:    strings.TrimSpace(in.Topic),
		Grade:    strings.TrimSpace(in.Grade),
		Body:     body,
		FileName: in.FileName,
	}, chunks)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create content")
	}

	if err := uc.index.Insert(ctx, created.ID, body); err != nil {
		errutil.Handle(ctx, err, "failed to index uploaded content")
		return created, goerr.Wrap(ErrIndexingFailed, "failed to index content", goerr.V(ContentIDKey, created.ID))
	}

	logging.From(ctx).Info("Content uploaded",
		ContentIDKey, created.ID,
		"title", created.Title,
		"chunks", len(chunks))
	return created, nil
}

// Topics lists contents matching filter
func (uc *ContentUseCase) Topics(ctx context.Context, filter model.ContentFilter) ([]*model.Content, error) {
	contents, err := uc.repo.Content().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contents")
	}
	return contents, nil
}

// Metrics counts distinct topics, uploaded contents and answered questions
func (uc *ContentUseCase) Metrics(ctx context.Context) (*model.Metrics, error) {
	topics, err := uc.repo.Content().CountDistinctTopics(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count topics")
	}
	files, err := uc.repo.Content().Count(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count contents")
	}
	queries, err := uc.repo.QueryLog().Count(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count queries")
	}

	return &model.Metrics{
		TotalTopics:        topics,
		TotalFilesUploaded: files,
		TotalQueries:       queries,
	}, nil
}

// QueryLogs returns all answered questions ordered by creation time
func (uc *ContentUseCase) QueryLogs(ctx context.Context) ([]*model.QueryLog, error) {
	logs, err := uc.repo.QueryLog().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list query logs")
	}
	return logs, nil
}
