// Package config locates, loads, and validates the cai configuration.
//
// Precedence: a repository-root cai_config.yml is authoritative and is never
// merged with anything else; otherwise the home configuration is used, and a
// default one is generated on first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"git-cai/internal/git"
)

const (
	configFileName = "cai_config.yml"
	tokensFileName = "tokens.yml"

	// DefaultCommitPromptName and DefaultSquashPromptName are the prompt
	// files materialized in the config directory on first run.
	DefaultCommitPromptName = "commit_prompt.md"
	DefaultSquashPromptName = "squash_prompt.md"
)

// ProviderNames is the fixed set of supported backends. Any other top-level
// config key is rejected.
var ProviderNames = []string{
	"anthropic", "openai", "deepseek", "gemini", "groq", "xai", "mistral", "ollama",
}

// Tokenless providers work without an API key.
var Tokenless = map[string]bool{"ollama": true}

var globalKeys = map[string]bool{
	"default":            true,
	"language":           true,
	"style":              true,
	"emoji":              true,
	"load_tokens_from":   true,
	"prompt_file":        true,
	"squash_prompt_file": true,
}

// AllowedStyles enumerates the valid commit message tone styles.
var AllowedStyles = map[string]bool{
	"professional": true,
	"neutral":      true,
	"friendly":     true,
	"funny":        true,
	"excited":      true,
	"sarcastic":    true,
	"apologetic":   true,
	"academic":     true,
}

// Provider holds the per-backend model settings.
type Provider struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// Config is the validated active configuration.
type Config struct {
	Default          string
	Language         string
	Style            string
	Emoji            Emoji
	LoadTokensFrom   string
	PromptFile       string
	SquashPromptFile string
	Providers        map[string]Provider
}

// Dir returns the cai configuration directory (~/.config/cai).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cai"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Default:  "groq",
		Language: "en",
		Style:    "professional",
		Emoji:    EmojiOn,
		Providers: map[string]Provider{
			"anthropic": {Model: "claude-haiku-4-5", Temperature: 0},
			"openai":    {Model: "gpt-5.2", Temperature: 0},
			"deepseek":  {Model: "deepseek-chat", Temperature: 0},
			"gemini":    {Model: "gemini-2.5-flash", Temperature: 0},
			"groq":      {Model: "moonshotai/kimi-k2-instruct", Temperature: 0},
			"xai":       {Model: "grok-4-1-fast-reasoning", Temperature: 0},
			"mistral":   {Model: "codestral-2508", Temperature: 0},
			"ollama":    {Model: "qwen2.5-coder", Temperature: 0},
		},
	}
}

// Load resolves and validates the active configuration. A repository config,
// when present, is used as-is; an invalid repository config is a fatal error
// rather than an excuse to fall back.
func Load(g *git.Git, logger zerolog.Logger) (*Config, error) {
	if root := g.RepoRoot(); root != "" {
		for _, name := range []string{"cai_config.yml", "cai_config.yaml"} {
			candidate := filepath.Join(root, name)
			if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
				logger.Info().Str("path", candidate).Msg("using repository configuration")
				return loadFile(candidate, logger)
			}
		}
		logger.Debug().Msg("no repository config found")
	}

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	homeConfig := filepath.Join(dir, configFileName)

	if fi, err := os.Stat(homeConfig); err != nil || fi.Size() == 0 {
		logger.Warn().Str("path", homeConfig).Msg("home config missing or empty, creating default")

		cfg := Default()
		cfg.LoadTokensFrom = filepath.Join(dir, tokensFileName)
		cfg.PromptFile = filepath.Join(dir, DefaultCommitPromptName)
		cfg.SquashPromptFile = filepath.Join(dir, DefaultSquashPromptName)

		if err := cfg.Write(homeConfig); err != nil {
			return nil, err
		}
		logger.Info().Msg("default home configuration written")
		return cfg, nil
	}

	logger.Info().Str("path", homeConfig).Msg("using home configuration")
	return loadFile(homeConfig, logger)
}

func loadFile(path string, logger zerolog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.normalizePromptPaths(filepath.Dir(path), logger)
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte, logger zerolog.Logger) (*Config, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := &Config{Providers: make(map[string]Provider)}

	var unknown []string
	for key, node := range raw {
		node := node
		switch {
		case globalKeys[key]:
			if err := cfg.setGlobal(key, &node); err != nil {
				return nil, err
			}
		case isProviderName(key):
			p, err := decodeProvider(key, &node)
			if err != nil {
				return nil, err
			}
			cfg.Providers[key] = p
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(unknown, ", "))
	}

	if err := cfg.validate(logger); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isProviderName(key string) bool {
	for _, name := range ProviderNames {
		if key == name {
			return true
		}
	}
	return false
}

func (c *Config) setGlobal(key string, node *yaml.Node) error {
	switch key {
	case "default":
		return node.Decode(&c.Default)
	case "language":
		c.Language = decodeNoneable(node)
	case "style":
		c.Style = decodeNoneable(node)
	case "emoji":
		return c.Emoji.UnmarshalYAML(node)
	case "load_tokens_from":
		return node.Decode(&c.LoadTokensFrom)
	case "prompt_file":
		if node.Tag != "!!null" {
			return node.Decode(&c.PromptFile)
		}
	case "squash_prompt_file":
		if node.Tag != "!!null" {
			return node.Decode(&c.SquashPromptFile)
		}
	}
	return nil
}

// decodeNoneable maps YAML null and any casing of "none" to the canonical
// "none" string; everything else is kept verbatim.
func decodeNoneable(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return "none"
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return "none"
	}
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return "none"
	}
	return s
}

func decodeProvider(name string, node *yaml.Node) (Provider, error) {
	if node.Kind != yaml.MappingNode {
		return Provider{}, fmt.Errorf("provider '%s' must be a mapping with model and temperature", name)
	}

	present := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		present[node.Content[i].Value] = true
	}
	var missing []string
	for _, required := range []string{"model", "temperature"} {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return Provider{}, fmt.Errorf("provider '%s' missing required keys: %s", name, strings.Join(missing, ", "))
	}

	var p Provider
	if err := node.Decode(&p); err != nil {
		return Provider{}, fmt.Errorf("provider '%s': %w", name, err)
	}
	return p, nil
}

func (c *Config) validate(logger zerolog.Logger) error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider configuration must be defined")
	}

	if c.Default == "" {
		return fmt.Errorf("the 'default' provider is required")
	}
	if _, ok := c.Providers[c.Default]; !ok {
		return fmt.Errorf("default provider '%s' has no configuration block", c.Default)
	}

	c.Language = validateLanguage(c.Language, logger)

	style, err := ValidateStyle(c.Style)
	if err != nil {
		return err
	}
	c.Style = style

	return nil
}

func validateLanguage(code string, logger zerolog.Logger) string {
	if code == "none" {
		return code
	}
	if !KnownLanguage(code) {
		logger.Warn().Str("language", code).Msg("language code is not supported, falling back to 'en'")
		return "en"
	}
	return code
}

// ValidateStyle normalizes and validates a tone style. Empty input counts
// as "none"; anything outside the allowed set is a configuration error.
func ValidateStyle(style string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(style))
	if normalized == "" || normalized == "none" {
		return "none", nil
	}
	if !AllowedStyles[normalized] {
		return "", fmt.Errorf("invalid style '%s' (allowed: %s or none)", style, strings.Join(sortedStyles(), ", "))
	}
	return normalized, nil
}

func sortedStyles() []string {
	names := make([]string, 0, len(AllowedStyles))
	for name := range AllowedStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizePromptPaths expands env vars and ~ in prompt file paths and
// resolves relative paths against the directory the config came from.
func (c *Config) normalizePromptPaths(baseDir string, logger zerolog.Logger) {
	for _, field := range []*string{&c.PromptFile, &c.SquashPromptFile} {
		raw := strings.TrimSpace(*field)
		if raw == "" {
			continue
		}

		expanded := os.ExpandEnv(raw)
		if strings.HasPrefix(expanded, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
			}
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(baseDir, expanded)
		}

		logger.Debug().Str("path", expanded).Msg("normalized prompt file path")
		*field = expanded
	}
}
