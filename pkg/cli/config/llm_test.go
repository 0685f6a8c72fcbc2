package config_test

import (
	"testing"

	"github.com/learnloop/lumen/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func TestLLM_Configure(t *testing.T) {
	t.Run("returns nil client when gemini project is empty", func(t *testing.T) {
		cfg := config.NewLLMForTest("gemini", "", "")
		client, err := cfg.Configure(t.Context())
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
		gt.Bool(t, cfg.IsConfigured()).False()
	})

	t.Run("returns nil client when openai key is empty", func(t *testing.T) {
		cfg := config.NewLLMForTest("openai", "", "")
		client, err := cfg.Configure(t.Context())
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		cfg := config.NewLLMForTest("claude", "", "")
		_, err := cfg.Configure(t.Context())
		gt.Error(t, err).Is(config.ErrUnknownProvider)
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewLLMForTest("", "", "")
		gt.Value(t, len(cfg.Flags())).Equal(6)
	})
}
