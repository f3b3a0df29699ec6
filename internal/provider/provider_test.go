package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git-cai/internal/config"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("skynet", config.Provider{}, "", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider 'skynet'")
	assert.Contains(t, err.Error(), "ollama")
}

func TestNewKnownProviders(t *testing.T) {
	for _, name := range []string{"openai", "groq", "xai", "mistral", "deepseek", "anthropic", "gemini"} {
		p, err := New(name, config.Provider{Model: "m"}, "tok", zerolog.Nop())
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
		assert.NoError(t, p.Close())
	}
}

func TestChatProviderWireFormat(t *testing.T) {
	var captured struct {
		path    string
		auth    string
		request chatRequest
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.request))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  fix: adjust parser  "}}]}`))
	}))
	defer srv.Close()

	p := newChatProvider("groq", srv.URL, config.Provider{Model: "kimi", Temperature: 0.3}, "gsk-abc", zerolog.Nop())

	got, err := p.Generate(context.Background(), "system goes here", "the diff")
	require.NoError(t, err)
	assert.Equal(t, "fix: adjust parser", got)

	assert.Equal(t, "/chat/completions", captured.path)
	assert.Equal(t, "Bearer gsk-abc", captured.auth)
	assert.Equal(t, "kimi", captured.request.Model)
	assert.Equal(t, 0.3, captured.request.Temperature)
	require.Len(t, captured.request.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "system goes here"}, captured.request.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "the diff"}, captured.request.Messages[1])
}

func TestChatProviderNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := newChatProvider("openai", srv.URL, config.Provider{Model: "m"}, "tok", zerolog.Nop())
	_, err := p.Generate(context.Background(), "s", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices in openai response")
}

func TestChatProviderAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	p := newChatProvider("openai", srv.URL, config.Provider{Model: "m"}, "bad", zerolog.Nop())
	_, err := p.Generate(context.Background(), "s", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed for openai")
	assert.Contains(t, err.Error(), "status 401")
}

func TestChatProviderServerErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	p := newChatProvider("mistral", srv.URL, config.Provider{Model: "m"}, "tok", zerolog.Nop())
	_, err := p.Generate(context.Background(), "s", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.NotContains(t, err.Error(), "authentication failed")
}

func TestAnthropicWireFormat(t *testing.T) {
	var captured struct {
		apiKey  string
		version string
		request anthropicRequest
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.apiKey = r.Header.Get("x-api-key")
		captured.version = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.request))

		w.Write([]byte(`{"content":[{"type":"text","text":"feat: add squash flow"}]}`))
	}))
	defer srv.Close()

	p := newAnthropicProvider(config.Provider{Model: "claude-haiku-4-5", Temperature: 0.1}, "sk-ant", zerolog.Nop())
	p.url = srv.URL

	got, err := p.Generate(context.Background(), "the system prompt", "the diff")
	require.NoError(t, err)
	assert.Equal(t, "feat: add squash flow", got)

	assert.Equal(t, "sk-ant", captured.apiKey)
	assert.Equal(t, "2023-06-01", captured.version)
	assert.Equal(t, "claude-haiku-4-5", captured.request.Model)
	assert.Equal(t, 8192, captured.request.MaxTokens)
	require.Len(t, captured.request.Messages, 2)
	assert.Equal(t, chatMessage{Role: "assistant", Content: "the system prompt"}, captured.request.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "the diff"}, captured.request.Messages[1])
}

func TestAnthropicEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	p := newAnthropicProvider(config.Provider{Model: "m"}, "tok", zerolog.Nop())
	p.url = srv.URL

	_, err := p.Generate(context.Background(), "s", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty content")
}

func TestGeminiWireFormat(t *testing.T) {
	var captured struct {
		path    string
		apiKey  string
		request geminiRequest
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.request))

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"docs: update readme"}]}}]}`))
	}))
	defer srv.Close()

	p := newGeminiProvider(config.Provider{Model: "gemini-2.5-flash", Temperature: 0.7}, "AIza-test", zerolog.Nop())
	p.baseURL = srv.URL

	got, err := p.Generate(context.Background(), "sys", "diff")
	require.NoError(t, err)
	assert.Equal(t, "docs: update readme", got)

	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", captured.path)
	assert.Equal(t, "AIza-test", captured.apiKey)
	assert.Equal(t, 0.7, captured.request.GenerationConfig.Temperature)
	require.Len(t, captured.request.Contents, 1)
	require.Len(t, captured.request.Contents[0].Parts, 1)
	assert.Equal(t, "sys\n\ndiff", captured.request.Contents[0].Parts[0].Text)
}

func TestGeminiEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	p := newGeminiProvider(config.Provider{Model: "m"}, "tok", zerolog.Nop())
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), "s", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty candidates")
}

func TestWrapAuthError(t *testing.T) {
	err := wrapAuthError("xai", assert.AnError)
	assert.Equal(t, assert.AnError, err)

	wrapped := wrapAuthError("xai", httpError403())
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "authentication failed for xai")

	assert.NoError(t, wrapAuthError("xai", nil))
}

func httpError403() error {
	resp := &http.Response{
		StatusCode: http.StatusForbidden,
		Body:       http.NoBody,
	}
	return httpStatusError("xai", resp)
}
