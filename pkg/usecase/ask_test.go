package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/repository/memory"
	"github.com/learnloop/lumen/pkg/service/prompt"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func seedContents(t *testing.T, repo interfaces.Repository, bodies ...string) []int64 {
	t.Helper()
	ids := make([]int64, len(bodies))
	for i, body := range bodies {
		c, err := repo.Content().Create(t.Context(), &model.Content{
			Title: "Title " + body,
			Topic: "Science",
			Grade: "Grade 5",
			Body:  body,
		})
		gt.NoError(t, err).Required()
		ids[i] = c.ID
	}
	return ids
}

func ptr[T any](v T) *T {
	return &v
}

func TestAnswerRetrievedContext(t *testing.T) {
	repo := memory.New()
	ids := seedContents(t, repo, "Body one.", "Body two.", "Body three.")

	var gotTopK int
	gen := &mockGenerator{steps: []func(string) (string, error){reply("Plants need light.")}}
	uc := usecase.New(repo,
		usecase.WithGenerator(gen),
		usecase.WithRetriever(&mockRetriever{
			retrieveFn: func(ctx context.Context, question string, topK int) ([]int64, error) {
				gotTopK = topK
				return []int64{ids[2], ids[0]}, nil
			},
		}),
	)

	answer, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{
		Question: "What do plants need?",
		Persona:  "strict",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Text).Equal("Plants need light.")
	gt.Value(t, answer.Persona).Equal("strict")
	gt.Number(t, gotTopK).Equal(3)

	prompts := gen.calls()
	gt.Array(t, prompts).Length(1)
	gt.String(t, prompts[0]).Contains("Body three.\nBody one.")
	gt.Bool(t, strings.Contains(prompts[0], "Body two.")).False()
	gt.String(t, prompts[0]).Contains(prompt.Instruction("strict"))

	t.Run("query log is appended once", func(t *testing.T) {
		logs, err := repo.QueryLog().List(t.Context())
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(1)
		gt.Value(t, logs[0].UserQuestion).Equal("What do plants need?")
		gt.Value(t, logs[0].Persona).Equal("strict")
		gt.Value(t, logs[0].AIResponse).Equal(answer.Text)
	})
}

func TestAnswerPinnedContext(t *testing.T) {
	repo := memory.New()
	ids := seedContents(t, repo, "c1", "c2", "c3", "c4", "c5", "c6", "Pinned body seven.")
	gt.Value(t, ids[6]).Equal(int64(7))

	gen := &mockGenerator{}
	uc := usecase.New(repo,
		usecase.WithGenerator(gen),
		usecase.WithRetriever(&mockRetriever{
			retrieveFn: func(ctx context.Context, question string, topK int) ([]int64, error) {
				t.Error("retriever must not be called for pinned context")
				return []int64{1, 2}, nil
			},
		}),
	)

	in := usecase.AnswerInput{Question: "Summarize", Persona: "friendly", ContextID: ptr(int64(7))}
	gt.Value(t, in.Policy()).Equal(usecase.ContextPolicyPinned)

	_, err := uc.Ask.Answer(t.Context(), in)
	gt.NoError(t, err).Required()

	prompts := gen.calls()
	gt.Array(t, prompts).Length(1)
	gt.String(t, prompts[0]).Contains("Pinned body seven.")
	gt.Bool(t, strings.Contains(prompts[0], "c1")).False()
}

func TestAnswerPinnedMissingUsesEmptyContext(t *testing.T) {
	repo := memory.New()
	gen := &mockGenerator{steps: []func(string) (string, error){reply(prompt.OutOfContextDisclaimer)}}
	uc := usecase.New(repo, usecase.WithGenerator(gen))

	answer, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: "q", ContextID: ptr(int64(99))})
	gt.NoError(t, err).Required()
	gt.Value(t, answer.Text).Equal(prompt.OutOfContextDisclaimer)
	gt.Value(t, answer.Persona).Equal("friendly")
	gt.String(t, gen.calls()[0]).Contains("Context:\n\n")
}

func TestAnswerSkipsDanglingIDs(t *testing.T) {
	repo := memory.New()
	ids := seedContents(t, repo, "Existing body.")

	gen := &mockGenerator{}
	uc := usecase.New(repo,
		usecase.WithGenerator(gen),
		usecase.WithRetriever(&mockRetriever{
			retrieveFn: func(ctx context.Context, question string, topK int) ([]int64, error) {
				return []int64{404, ids[0]}, nil
			},
		}),
	)

	_, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: "q"})
	gt.NoError(t, err).Required()
	gt.String(t, gen.calls()[0]).Contains("Context:\nExisting body.\n")
}

func TestAnswerPersonaFallback(t *testing.T) {
	run := func(persona string) (string, *model.Answer) {
		repo := memory.New()
		gen := &mockGenerator{}
		uc := usecase.New(repo,
			usecase.WithGenerator(gen),
			usecase.WithRetriever(&mockRetriever{
				retrieveFn: func(ctx context.Context, question string, topK int) ([]int64, error) {
					return nil, nil
				},
			}),
		)
		answer, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: "Why?", Persona: persona})
		gt.NoError(t, err).Required()
		return gen.calls()[0], answer
	}

	grumpyPrompt, grumpy := run("grumpy")
	friendlyPrompt, _ := run("friendly")
	gt.Value(t, grumpyPrompt).Equal(friendlyPrompt)
	gt.Value(t, grumpy.Persona).Equal("grumpy")
}

func TestAnswerFailures(t *testing.T) {
	t.Run("retrieval failure", func(t *testing.T) {
		repo := memory.New()
		gen := &mockGenerator{}
		uc := usecase.New(repo,
			usecase.WithGenerator(gen),
			usecase.WithRetriever(&mockRetriever{
				retrieveFn: func(ctx context.Context, question string, topK int) ([]int64, error) {
					return nil, errors.New("index unavailable")
				},
			}),
		)

		_, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: "q"})
		gt.Error(t, err).Is(usecase.ErrAnswerFailed)
		gt.Bool(t, strings.Contains(err.Error(), "index unavailable")).False()
		gt.Array(t, gen.calls()).Length(0)

		n, err := repo.QueryLog().Count(t.Context())
		gt.NoError(t, err).Required()
		gt.Number(t, n).Equal(0)
	})

	t.Run("generation failure", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo,
			usecase.WithGenerator(&mockGenerator{steps: []func(string) (string, error){replyErr(errors.New("quota"))}}),
			usecase.WithRetriever(&mockRetriever{
				retrieveFn: func(ctx context.Context, question string, topK int) ([]int64, error) {
					return nil, nil
				},
			}),
		)

		_, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: "q"})
		gt.Error(t, err).Is(usecase.ErrAnswerFailed)

		n, err := repo.QueryLog().Count(t.Context())
		gt.NoError(t, err).Required()
		gt.Number(t, n).Equal(0)
	})

	t.Run("empty question", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithGenerator(&mockGenerator{}))
		_, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: "  "})
		gt.Error(t, err).Is(usecase.ErrEmptyQuestion)
	})

	t.Run("no generator", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Ask.Answer(t.Context(), usecase.AnswerInput{Question: "q", ContextID: ptr(int64(1))})
		gt.Error(t, err).Is(usecase.ErrAnswerFailed)
	})
}

func TestAnswerViaSQL(t *testing.T) {
	t.Run("fenced SQL is stripped, executed and summarized", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		seedContents(t, repo, "alpha", "beta")

		gen := &mockGenerator{steps: []func(string) (string, error){
			reply("```sql\nSELECT title FROM contents ORDER BY id;\n```"),
			reply("There are two contents."),
		}}
		uc := usecase.New(repo, usecase.WithGenerator(gen))

		answer, err := uc.Ask.AnswerViaSQL(t.Context(), usecase.AnswerInput{Question: "List titles", Persona: "humorous"})
		gt.NoError(t, err).Required()
		gt.Value(t, answer.Text).Equal("There are two contents.")
		gt.Value(t, answer.Persona).Equal("humorous")

		prompts := gen.calls()
		gt.Array(t, prompts).Length(2)
		gt.String(t, prompts[0]).Contains("Question: List titles")
		gt.String(t, prompts[1]).Contains("SQL Query: SELECT title FROM contents ORDER BY id\n")
		gt.String(t, prompts[1]).Contains("- title: Title alpha")
		gt.String(t, prompts[1]).Contains("- title: Title beta")
		gt.String(t, prompts[1]).Contains(prompt.Instruction("humorous"))

		logs, err := repo.QueryLog().List(t.Context())
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(1)
		gt.Value(t, logs[0].UserQuestion).Equal("List titles")
		gt.Value(t, logs[0].Persona).Equal("humorous")
		gt.Value(t, logs[0].AIResponse).Equal("There are two contents.")
	})

	t.Run("summarization failure falls back to row count", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		seedContents(t, repo, "a", "b", "c")

		gen := &mockGenerator{steps: []func(string) (string, error){
			reply("SELECT id FROM contents"),
			replyErr(errors.New("model overloaded")),
		}}
		uc := usecase.New(repo, usecase.WithGenerator(gen))

		answer, err := uc.Ask.AnswerViaSQL(t.Context(), usecase.AnswerInput{Question: "How many?"})
		gt.NoError(t, err).Required()
		gt.Value(t, answer.Text).Equal("Found 3 results for your query.")

		logs, err := repo.QueryLog().List(t.Context())
		gt.NoError(t, err).Required()
		gt.Array(t, logs).Length(1)
		gt.Value(t, logs[0].AIResponse).Equal("Found 3 results for your query.")
	})

	t.Run("unsafe SQL is rejected before execution", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		seedContents(t, repo, "keep me")

		gen := &mockGenerator{steps: []func(string) (string, error){reply("```sql\nDELETE FROM contents\n```")}}
		uc := usecase.New(repo, usecase.WithGenerator(gen))

		_, err := uc.Ask.AnswerViaSQL(t.Context(), usecase.AnswerInput{Question: "Remove everything"})
		gt.Error(t, err).Is(usecase.ErrAnswerFailed)
		gt.Array(t, gen.calls()).Length(1)

		n, err := repo.Content().Count(t.Context())
		gt.NoError(t, err).Required()
		gt.Number(t, n).Equal(1)

		logs, err := repo.QueryLog().Count(t.Context())
		gt.NoError(t, err).Required()
		gt.Number(t, logs).Equal(0)
	})

	t.Run("SQL generation failure", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		gen := &mockGenerator{steps: []func(string) (string, error){replyErr(errors.New("timeout"))}}
		uc := usecase.New(repo, usecase.WithGenerator(gen))

		_, err := uc.Ask.AnswerViaSQL(t.Context(), usecase.AnswerInput{Question: "q"})
		gt.Error(t, err).Is(usecase.ErrAnswerFailed)
	})

	t.Run("query error", func(t *testing.T) {
		repo := newSQLiteRepository(t)
		gen := &mockGenerator{steps: []func(string) (string, error){reply("SELECT missing_column FROM contents")}}
		uc := usecase.New(repo, usecase.WithGenerator(gen))

		_, err := uc.Ask.AnswerViaSQL(t.Context(), usecase.AnswerInput{Question: "q"})
		gt.Error(t, err).Is(usecase.ErrAnswerFailed)
	})

	t.Run("backend without SQL support", func(t *testing.T) {
		gen := &mockGenerator{steps: []func(string) (string, error){reply("SELECT 1")}}
		uc := usecase.New(memory.New(), usecase.WithGenerator(gen))

		_, err := uc.Ask.AnswerViaSQL(t.Context(), usecase.AnswerInput{Question: "q"})
		gt.Error(t, err).Is(usecase.ErrAnswerFailed)
	})
}
