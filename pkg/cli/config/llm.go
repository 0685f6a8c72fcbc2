package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// LLM holds configuration for the language model and embedding provider
type LLM struct {
	provider       string
	geminiProject  string
	geminiLocation string
	geminiModel    string
	openaiAPIKey   string
	openaiModel    string
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Category:    "LLM",
			Usage:       "LLM provider [gemini|openai]",
			Value:       "gemini",
			Sources:     cli.EnvVars("LUMEN_LLM_PROVIDER"),
			Destination: &l.provider,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Category:    "LLM",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("LUMEN_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Category:    "LLM",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("LUMEN_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Category:    "LLM",
			Usage:       "Gemini model name (provider default if empty)",
			Sources:     cli.EnvVars("LUMEN_GEMINI_MODEL"),
			Destination: &l.geminiModel,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Category:    "LLM",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("LUMEN_OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Category:    "LLM",
			Usage:       "OpenAI model name (provider default if empty)",
			Sources:     cli.EnvVars("LUMEN_OPENAI_MODEL"),
			Destination: &l.openaiModel,
		},
	}
}

// LogAttrs returns log attributes for the LLM configuration
func (l *LLM) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", l.provider),
		slog.String("gemini_project", l.geminiProject),
		slog.String("gemini_location", l.geminiLocation),
		slog.Bool("openai_api_key_set", l.openaiAPIKey != ""),
	}
}

// IsConfigured reports whether the selected provider has credentials
func (l *LLM) IsConfigured() bool {
	switch l.provider {
	case "gemini":
		return l.geminiProject != ""
	case "openai":
		return l.openaiAPIKey != ""
	default:
		return false
	}
}

// Configure creates the LLM client of the selected provider. Returns nil if
// the provider has no credentials (question answering and upload will be
// unavailable).
func (l *LLM) Configure(ctx context.Context) (gollem.LLMClient, error) {
	switch l.provider {
	case "gemini":
		if l.geminiProject == "" {
			return nil, nil
		}
		var opts []gemini.Option
		if l.geminiModel != "" {
			opts = append(opts, gemini.WithModel(l.geminiModel))
		}
		client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case "openai":
		if l.openaiAPIKey == "" {
			return nil, nil
		}
		var opts []openai.Option
		if l.openaiModel != "" {
			opts = append(opts, openai.WithModel(l.openaiModel))
		}
		client, err := openai.New(ctx, l.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrUnknownProvider, "invalid LLM provider", goerr.V(FlagKey, "llm-provider"), goerr.V("provider", l.provider))
	}
}
