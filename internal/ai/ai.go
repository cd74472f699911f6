// Package ai wraps the completion providers used for summaries and
// keyword generation.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nrouizem/ctic-news-feed/internal/config"
)

// Client sends a single prompt to a completion provider and returns the
// raw text response. Responses may be empty or malformed; callers are
// expected to validate and retry.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New creates a Client from the given AI config.
func New(cfg *config.AIConfig, apiKey string) (Client, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	switch cfg.Provider {
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return newOpenAIClient(apiKey, model), nil
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		client := &http.Client{Timeout: 30 * time.Second}
		return &claudeClient{apiKey: apiKey, model: model, client: client}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: openai, claude)", cfg.Provider)
	}
}
