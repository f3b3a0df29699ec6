package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"git-cai/internal/config"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	// anthropicMaxTokens bounds the reply; the messages API requires an
	// explicit value.
	anthropicMaxTokens = 8192
)

type anthropicProvider struct {
	cfg    config.Provider
	token  string
	url    string
	client *http.Client
	logger zerolog.Logger
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func newAnthropicProvider(cfg config.Provider, token string, logger zerolog.Logger) *anthropicProvider {
	return &anthropicProvider{
		cfg:    cfg,
		token:  token,
		url:    anthropicURL,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Close() error { return nil }

func (p *anthropicProvider) Generate(ctx context.Context, systemPrompt, content string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       p.cfg.Model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: p.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "assistant", Content: systemPrompt},
			{Role: "user", Content: content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.token)
	req.Header.Set("anthropic-version", anthropicVersion)

	p.logger.Debug().Str("model", p.cfg.Model).Msg("sending anthropic request")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", wrapAuthError("anthropic", httpStatusError("anthropic", resp))
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty content in anthropic response")
	}

	return strings.TrimSpace(parsed.Content[0].Text), nil
}
