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

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiProvider targets the generateContent endpoint. The API has no
// dedicated system role for this call shape, so the system prompt is
// prepended to the user content.
type geminiProvider struct {
	cfg     config.Provider
	token   string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func newGeminiProvider(cfg config.Provider, token string, logger zerolog.Logger) *geminiProvider {
	return &geminiProvider{
		cfg:     cfg,
		token:   token,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Close() error { return nil }

func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, content string) (string, error) {
	var reqBody geminiRequest
	reqBody.Contents = []geminiContent{
		{Parts: []geminiPart{{Text: systemPrompt + "\n\n" + content}}},
	}
	reqBody.GenerationConfig.Temperature = p.cfg.Temperature

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.token)

	p.logger.Debug().Str("model", p.cfg.Model).Msg("sending gemini request")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", wrapAuthError("gemini", httpStatusError("gemini", resp))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidates in gemini response")
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
