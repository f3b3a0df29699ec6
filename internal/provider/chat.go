package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"git-cai/internal/config"
)

// chatProvider speaks the OpenAI chat-completions wire format, shared by
// openai, groq, xai, mistral, and deepseek; only the base URL differs.
type chatProvider struct {
	name    string
	baseURL string
	cfg     config.Provider
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func newChatProvider(name, baseURL string, cfg config.Provider, token string, logger zerolog.Logger) *chatProvider {
	return &chatProvider{
		name:    name,
		baseURL: baseURL,
		cfg:     cfg,
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

func (p *chatProvider) Name() string { return p.name }

func (p *chatProvider) Close() error { return nil }

func (p *chatProvider) Generate(ctx context.Context, systemPrompt, content string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	p.logger.Debug().Str("provider", p.name).Str("model", p.cfg.Model).Msg("sending chat completion request")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", wrapAuthError(p.name, httpStatusError(p.name, resp))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode %s response: %w", p.name, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", p.name)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// httpStatusError preserves the raw status and body so failures stay
// diagnosable; callers pass it through wrapAuthError for the key check.
func httpStatusError(name string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s API request failed with status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
}
