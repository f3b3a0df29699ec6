// Package prompt assembles the system prompts sent to a provider: a base
// template resolved through a three-tier fallback, plus config-driven
// language, tone, and emoji instructions.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"git-cai/internal/config"
)

//go:embed defaults/commit_prompt.md
var defaultCommitPrompt string

//go:embed defaults/squash_prompt.md
var defaultSquashPrompt string

const hardcodedCommitPrompt = "You are an expert software engineer assistant. " +
	"Your task is to generate a concise, professional git commit message, " +
	"summarizing the provided git diff changes. " +
	"Keep the message clear and focused on what was changed and why. " +
	"Always include a headline, followed by a bullet-point list of changes. " +
	"If you detect sensitive information, mention it at the top, but still generate the message."

const hardcodedSquashPrompt = "You are an expert software engineer assistant. " +
	"Your task is to summarize multiple existing commit messages " +
	"into a single clean git commit message. " +
	"Do not list each commit individually. " +
	"Instead, infer the main purpose and overall change. " +
	"Format:\n" +
	"1. One short, clear headline.\n" +
	"2. A concise bullet list describing the main themes of the work."

// Builder produces the commit and squash system prompts for one
// configuration. configDir is where the default prompt files live.
type Builder struct {
	cfg       *config.Config
	configDir string
	logger    zerolog.Logger
}

func NewBuilder(cfg *config.Config, configDir string, logger zerolog.Logger) *Builder {
	return &Builder{cfg: cfg, configDir: configDir, logger: logger}
}

// Commit returns the system prompt for commit message generation.
func (b *Builder) Commit() string {
	base := b.loadBase(b.cfg.PromptFile, config.DefaultCommitPromptName, hardcodedCommitPrompt)
	return join(base, b.Instructions())
}

// Squash returns the system prompt for commit history summarization.
func (b *Builder) Squash() string {
	base := b.loadBase(b.cfg.SquashPromptFile, config.DefaultSquashPromptName, hardcodedSquashPrompt)
	return join(base, b.Instructions())
}

// join appends the instruction suffix with a single separating space. When
// there are no instructions the base is returned untouched.
func join(base, instructions string) string {
	if instructions == "" {
		return base
	}
	return base + " " + instructions
}

// Instructions returns the space-joined config-driven suffix sentences.
// Each is independently omitted when its setting is "none".
func (b *Builder) Instructions() string {
	var parts []string
	for _, instr := range []string{
		b.languageInstruction(),
		b.styleInstruction(),
		b.emojiInstruction(),
	} {
		if instr != "" {
			parts = append(parts, instr)
		}
	}
	return strings.Join(parts, " ")
}

func (b *Builder) languageInstruction() string {
	if b.cfg.Language == "none" {
		return ""
	}
	return fmt.Sprintf("Write the commit message in %s.", config.LanguageName(b.cfg.Language))
}

func (b *Builder) styleInstruction() string {
	if b.cfg.Style == "none" {
		return ""
	}
	return fmt.Sprintf("Write the commit message in the following tone style: %s.", b.cfg.Style)
}

func (b *Builder) emojiInstruction() string {
	switch b.cfg.Emoji {
	case config.EmojiOn:
		return "Use relevant emojis in the commit message where appropriate. " +
			"Emojis should enhance the clarity and tone of the message."
	case config.EmojiOff:
		return "Do not use any emojis in the commit message."
	default:
		return ""
	}
}

// loadBase resolves the base template: user-configured file, then the
// default file in the config directory, then the hardcoded fallback.
func (b *Builder) loadBase(userPath, defaultName, fallback string) string {
	if userPath != "" {
		if content, err := readNonEmpty(userPath); err == nil {
			b.logger.Info().Str("path", userPath).Msg("prompt loaded from user-defined file")
			return content
		}
		b.logger.Warn().Str("path", userPath).Msg("configured prompt file not found, falling back")
	} else {
		b.logger.Debug().Msg("no local prompt file configured")
	}

	defaultPath := filepath.Join(b.configDir, defaultName)
	if content, err := readNonEmpty(defaultPath); err == nil {
		b.logger.Info().Str("path", defaultPath).Msg("prompt loaded from default file")
		return content
	}

	b.logger.Warn().Str("file", defaultName).Msg("default prompt file unavailable, using hardcoded fallback")
	return fallback
}

func readNonEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return content, nil
}

// EnsureDefaults materializes the bundled prompt files in dir unless
// non-empty versions already exist.
func EnsureDefaults(dir string, logger zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prompt directory: %w", err)
	}
	for name, content := range map[string]string{
		config.DefaultCommitPromptName: defaultCommitPrompt,
		config.DefaultSquashPromptName: defaultSquashPrompt,
	} {
		path := filepath.Join(dir, name)
		if fi, err := os.Stat(path); err == nil && fi.Size() > 0 {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write default prompt %s: %w", name, err)
		}
		logger.Info().Str("path", path).Msg("default prompt written")
	}
	return nil
}
