// Package llm wraps a gollem client as a plain prompt-in, text-out generator.
package llm

import (
	"context"
	"strings"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Client implements interfaces.Generator
type Client struct {
	llmClient    gollem.LLMClient
	systemPrompt string
}

var _ interfaces.Generator = &Client{}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithSystemPrompt sets a system prompt applied to every session
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		c.systemPrompt = prompt
	}
}

// New creates a new generator with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (*Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{llmClient: llmClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate sends the prompt in a fresh session and returns the response
// texts joined together. Each call is independent; no history is kept.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var sessionOpts []gollem.SessionOption
	if c.systemPrompt != "" {
		sessionOpts = append(sessionOpts, gollem.WithSessionSystemPrompt(c.systemPrompt))
	}

	session, err := c.llmClient.NewSession(ctx, sessionOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session", goerr.T(model.ErrTagGeneration))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM", goerr.T(model.ErrTagGeneration))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("LLM returned no text", goerr.T(model.ErrTagGeneration))
	}

	return strings.Join(resp.Texts, ""), nil
}
