package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/service/llm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"ok"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func TestGenerate(t *testing.T) {
	t.Run("sends prompt and joins texts", func(t *testing.T) {
		var received string
		client := &mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						gt.Array(t, input).Length(1)
						received = string(input[0].(gollem.Text))
						return &gollem.Response{Texts: []string{"Hello, ", "student."}}, nil
					},
				}, nil
			},
		}

		gen, err := llm.New(client)
		gt.NoError(t, err).Required()

		out, err := gen.Generate(t.Context(), "Say hello")
		gt.NoError(t, err).Required()
		gt.Value(t, out).Equal("Hello, student.")
		gt.Value(t, received).Equal("Say hello")
	})

	t.Run("session error is a generation failure", func(t *testing.T) {
		cause := errors.New("unavailable")
		gen, err := llm.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return nil, cause
			},
		})
		gt.NoError(t, err).Required()

		_, err = gen.Generate(t.Context(), "x")
		gt.Error(t, err).Is(cause)
		gt.Bool(t, goerr.HasTag(err, model.ErrTagGeneration)).True()
	})

	t.Run("content error is a generation failure", func(t *testing.T) {
		gen, err := llm.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return nil, errors.New("blocked")
					},
				}, nil
			},
		})
		gt.NoError(t, err).Required()

		_, err = gen.Generate(t.Context(), "x")
		gt.Bool(t, goerr.HasTag(err, model.ErrTagGeneration)).True()
	})

	t.Run("empty response is a generation failure", func(t *testing.T) {
		gen, err := llm.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				return &mockLLMSession{
					generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
						return &gollem.Response{}, nil
					},
				}, nil
			},
		})
		gt.NoError(t, err).Required()

		_, err = gen.Generate(t.Context(), "x")
		gt.Bool(t, goerr.HasTag(err, model.ErrTagGeneration)).True()
	})

	t.Run("system prompt adds a session option", func(t *testing.T) {
		var optCount int
		gen, err := llm.New(&mockLLMClient{
			newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
				optCount = len(options)
				return &mockLLMSession{}, nil
			},
		}, llm.WithSystemPrompt("You are a tutor."))
		gt.NoError(t, err).Required()

		_, err = gen.Generate(t.Context(), "x")
		gt.NoError(t, err).Required()
		gt.Number(t, optCount).Equal(1)
	})
}
