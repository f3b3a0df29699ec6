// Package provider routes a (system prompt, content) pair to one configured
// LLM backend and returns the trimmed reply text. One implementation per
// supported backend; dispatch is a factory switch so an unknown name fails
// before any network traffic.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"git-cai/internal/config"
)

const (
	requestTimeout = 30 * time.Second

	openAIBaseURL   = "https://api.openai.com/v1"
	groqBaseURL     = "https://api.groq.com/openai/v1"
	xaiBaseURL      = "https://api.x.ai/v1"
	mistralBaseURL  = "https://api.mistral.ai/v1"
	deepseekBaseURL = "https://api.deepseek.com/v1"
)

// Provider is one configured LLM backend. Generate performs a single
// synchronous round-trip; there is no retry. Close releases any resources
// the provider owns (only the ollama provider holds any).
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, content string) (string, error)
	Close() error
}

// New builds the provider for the given name. An unknown name is a fatal
// configuration error.
func New(name string, cfg config.Provider, token string, logger zerolog.Logger) (Provider, error) {
	switch name {
	case "openai":
		return newChatProvider(name, openAIBaseURL, cfg, token, logger), nil
	case "groq":
		return newChatProvider(name, groqBaseURL, cfg, token, logger), nil
	case "xai":
		return newChatProvider(name, xaiBaseURL, cfg, token, logger), nil
	case "mistral":
		return newChatProvider(name, mistralBaseURL, cfg, token, logger), nil
	case "deepseek":
		return newChatProvider(name, deepseekBaseURL, cfg, token, logger), nil
	case "anthropic":
		return newAnthropicProvider(cfg, token, logger), nil
	case "gemini":
		return newGeminiProvider(cfg, token, logger), nil
	case "ollama":
		return newOllamaProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider '%s' (supported: %s)",
			name, strings.Join(config.ProviderNames, ", "))
	}
}

// authMarkers are substrings that identify an authentication failure in an
// error or response body, regardless of which backend produced it.
var authMarkers = []string{
	"401", "403", "unauthorized", "invalid api key", "invalid_api_key", "authentication",
}

// wrapAuthError rewrites recognizable authentication failures into an
// actionable message; everything else passes through unchanged.
func wrapAuthError(name string, err error) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	for _, marker := range authMarkers {
		if strings.Contains(lower, marker) {
			return fmt.Errorf("authentication failed for %s - check your API key in the tokens file: %w", name, err)
		}
	}
	return err
}
