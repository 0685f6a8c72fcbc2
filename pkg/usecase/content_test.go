package usecase_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/repository/memory"
	"github.com/learnloop/lumen/pkg/repository/sqlite"
	"github.com/learnloop/lumen/pkg/service/chunker"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestUpload(t *testing.T) {
	repo := memory.New()

	type inserted struct {
		id   int64
		text string
	}
	var got []inserted
	idx := &mockIndex{
		insertFn: func(ctx context.Context, contentID int64, text string) error {
			got = append(got, inserted{contentID, text})
			return nil
		},
	}
	uc := usecase.New(repo,
		usecase.WithVectorIndex(idx),
		usecase.WithChunker(chunker.New(chunker.WithChunkSize(20))),
	)

	body := "Plants need light. They also need water. Roots hold soil."
	created, err := uc.Content.Upload(t.Context(), usecase.UploadInput{
		Title:    " Photosynthesis ",
		Topic:    "Science",
		Grade:    "Grade 5",
		FileName: "plants.txt",
		Body:     []byte(body),
	})
	gt.NoError(t, err).Required()
	gt.Value(t, created.ID).Equal(int64(1))
	gt.Value(t, created.Title).Equal("Photosynthesis")
	gt.Value(t, created.FileName).Equal("plants.txt")

	gt.Array(t, got).Length(1)
	gt.Value(t, got[0].id).Equal(created.ID)
	gt.Value(t, got[0].text).Equal(body)

	chunks, err := repo.ContentChunk().ListByContentID(t.Context(), created.ID)
	gt.NoError(t, err).Required()
	gt.Number(t, len(chunks)).Equal(created.ChunkCount)
	gt.Bool(t, len(chunks) > 1).True()
	for i, c := range chunks {
		gt.Value(t, c.Index).Equal(i)
		gt.Value(t, c.ContentID).Equal(created.ID)
	}

	stored, err := repo.Content().Get(t.Context(), created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Body).Equal(body)
}

func TestUploadIndexFailureKeepsRecord(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo, usecase.WithVectorIndex(&mockIndex{
		insertFn: func(ctx context.Context, contentID int64, text string) error {
			return errors.New("disk full")
		},
	}))

	created, err := uc.Content.Upload(t.Context(), usecase.UploadInput{
		Title: "Fractions",
		Topic: "Math",
		Grade: "Grade 4",
		Body:  []byte("Half of four is two."),
	})
	gt.Error(t, err).Is(usecase.ErrIndexingFailed)
	gt.Value(t, created).NotNil()

	contents, err := uc.Content.Topics(t.Context(), model.ContentFilter{})
	gt.NoError(t, err).Required()
	gt.Array(t, contents).Length(1)
	gt.Value(t, contents[0].ID).Equal(created.ID)
}

func TestUploadValidation(t *testing.T) {
	valid := usecase.UploadInput{
		Title: "t",
		Topic: "topic",
		Grade: "Grade 1",
		Body:  []byte("body"),
	}

	testCases := []struct {
		name   string
		mutate func(in *usecase.UploadInput)
	}{
		{"missing title", func(in *usecase.UploadInput) { in.Title = " " }},
		{"missing topic", func(in *usecase.UploadInput) { in.Topic = "" }},
		{"missing grade", func(in *usecase.UploadInput) { in.Grade = "" }},
		{"empty body", func(in *usecase.UploadInput) { in.Body = []byte("\n\n") }},
		{"binary body", func(in *usecase.UploadInput) { in.Body = []byte{0xff, 0xfe, 0x00} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := memory.New()
			uc := usecase.New(repo, usecase.WithVectorIndex(&mockIndex{}))

			in := valid
			tc.mutate(&in)
			_, err := uc.Content.Upload(t.Context(), in)
			gt.Error(t, err).Is(usecase.ErrInvalidContent)

			n, err := repo.Content().Count(t.Context())
			gt.NoError(t, err).Required()
			gt.Number(t, n).Equal(0)
		})
	}

	t.Run("no index", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Content.Upload(t.Context(), valid)
		gt.Error(t, err).Is(usecase.ErrNotConfigured)
	})
}

func TestTopicsAndMetrics(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo,
		usecase.WithVectorIndex(&mockIndex{}),
		usecase.WithGenerator(&mockGenerator{}),
		usecase.WithRetriever(&mockRetriever{
			retrieveFn: func(ctx context.Context, question string, topK int) ([]int64, error) {
				return nil, nil
			},
		}),
	)

	for _, in := range []usecase.UploadInput{
		{Title: "Intro to Plants", Topic: "Biology", Grade: "Grade 5", Body: []byte("Plants grow.")},
		{Title: "Plant Cells", Topic: "Biology", Grade: "Grade 6", Body: []byte("Cells divide.")},
		{Title: "Fractions", Topic: "Math", Grade: "Grade 5", Body: []byte("Halves and quarters.")},
	} {
		_, err := uc.Content.Upload(t.Context(), in)
		gt.NoError(t, err).Required()
	}

	t.Run("filter by grade", func(t *testing.T) {
		contents, err := uc.Content.Topics(t.Context(), model.ContentFilter{Grade: "Grade 5"})
		gt.NoError(t, err).Required()
		gt.Array(t, contents).Length(2)
		gt.Value(t, contents[0].Title).Equal("Intro to Plants")
		gt.Value(t, contents[1].Title).Equal("Fractions")
	})

	t.Run("filter by title", func(t *testing.T) {
		contents, err := uc.Content.Topics(t.Context(), model.ContentFilter{TitleContains: "Plant"})
		gt.NoError(t, err).Required()
		gt.Array(t, contents).Length(2)
		for _, c := range contents {
			gt.Bool(t, strings.Contains(c.Title, "Plant")).True()
		}
	})

	t.Run("metrics and query logs", func(t *testing.T) {
		for _, q := range []string{"first?", "second?"} {
			_, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: q})
			gt.NoError(t, err).Required()
		}

		m, err := uc.Content.Metrics(t.Context())
		gt.NoError(t, err).Required()
		gt.Value(t, *m).Equal(model.Metrics{
			TotalTopics:        2,
			TotalFilesUploaded: 3,
			TotalQueries:       2,
		})

		logs, err := uc.Content.QueryLogs(t.Context())
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(2)
		gt.Value(t, logs[0].UserQuestion).Equal("first?")
		gt.Value(t, logs[1].UserQuestion).Equal("second?")
	})
}

func TestUploadStoreFailureSkipsIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lumen.db")
	repo, err := sqlite.New(t.Context(), path)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = repo.Close() })

	db, err := sql.Open("sqlite", "file:"+path)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.ExecContext(t.Context(), `
		CREATE TRIGGER refuse_chunks BEFORE INSERT ON content_chunks
		BEGIN SELECT RAISE(ABORT, 'chunk insert refused'); END`)
	gt.NoError(t, err).Required()

	indexed := false
	uc := usecase.New(repo, usecase.WithVectorIndex(&mockIndex{
		insertFn: func(ctx context.Context, contentID int64, text string) error {
			indexed = true
			return nil
		},
	}))

	_, err = uc.Content.Upload(t.Context(), usecase.UploadInput{
		Title: "Fractions",
		Topic: "Math",
		Grade: "Grade 4",
		Body:  []byte("Half of four is two. A third of six is two."),
	})
	gt.Error(t, err)
	gt.Bool(t, indexed).False()

	n, err := repo.Content().Count(t.Context())
	gt.NoError(t, err).Required()
	gt.Number(t, n).Equal(0)
}
