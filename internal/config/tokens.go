package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// tokenTemplate is written on first run so the user knows which keys the
// tokens file expects.
var tokenTemplate = map[string]string{
	"anthropic": "PUT-YOUR-ANTHROPIC-TOKEN-HERE",
	"deepseek":  "PUT-YOUR-DEEPSEEK-TOKEN-HERE",
	"gemini":    "PUT-YOUR-GEMINI-TOKEN-HERE",
	"groq":      "PUT-YOUR-GROQ-TOKEN-HERE",
	"mistral":   "PUT-YOUR-MISTRAL-TOKEN-HERE",
	"openai":    "PUT-YOUR-OPENAI-TOKEN-HERE",
	"xai":       "PUT-YOUR-XAI-TOKEN-HERE",
}

// TokensPath returns the default token file location.
func TokensPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokensFileName), nil
}

// LoadToken reads the API key for the configured default provider. A missing
// tokens file is created with placeholder values and owner-only permissions;
// in that case, and when the provider has no entry, an empty token is
// returned and the caller decides whether that is fatal.
func LoadToken(cfg *Config, logger zerolog.Logger) (string, error) {
	path := cfg.LoadTokensFrom
	if path == "" {
		var err error
		path, err = TokensPath()
		if err != nil {
			return "", err
		}
	}
	logger.Debug().Str("path", path).Str("provider", cfg.Default).Msg("loading token")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create token directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn().Str("path", path).Msg("token file does not exist, creating template")

		data, err := yaml.Marshal(tokenTemplate)
		if err != nil {
			return "", fmt.Errorf("failed to marshal token template: %w", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return "", fmt.Errorf("failed to write token template: %w", err)
		}
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var tokens map[string]string
	if err := yaml.Unmarshal(data, &tokens); err != nil {
		return "", fmt.Errorf("failed to parse token file %s: %w", path, err)
	}

	token, ok := tokens[cfg.Default]
	if !ok {
		logger.Error().Str("provider", cfg.Default).Msg("token for provider not found")
		return "", nil
	}
	return token, nil
}
