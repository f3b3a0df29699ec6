// Package generator ties the prompt builder and the provider dispatcher
// together: it owns the provider for the configured backend and produces
// cleaned commit messages and squash summaries.
package generator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"git-cai/internal/config"
	"git-cai/internal/prompt"
	"git-cai/internal/provider"
)

// Generator produces commit messages and history summaries through one
// configured provider. Close must be called so a provider-owned local
// server is reaped.
type Generator struct {
	prov    provider.Provider
	prompts *prompt.Builder
	logger  zerolog.Logger
}

// New builds the generator for the configured default provider.
func New(cfg *config.Config, token, configDir string, logger zerolog.Logger) (*Generator, error) {
	prov, err := provider.New(cfg.Default, cfg.Providers[cfg.Default], token, logger)
	if err != nil {
		return nil, err
	}
	return NewWithProvider(cfg, prov, configDir, logger), nil
}

// NewWithProvider wires an explicit provider; tests use this to substitute
// a fake backend.
func NewWithProvider(cfg *config.Config, prov provider.Provider, configDir string, logger zerolog.Logger) *Generator {
	return &Generator{
		prov:    prov,
		prompts: prompt.NewBuilder(cfg, configDir, logger),
		logger:  logger,
	}
}

// CommitMessage generates a commit message for the staged diff.
func (g *Generator) CommitMessage(ctx context.Context, diff string) (string, error) {
	g.logger.Info().Str("provider", g.prov.Name()).Msg("generating commit message")

	reply, err := g.prov.Generate(ctx, g.prompts.Commit(), diff)
	if err != nil {
		g.logger.Debug().Err(err).Msg("provider call failed")
		return "", err
	}

	message := Clean(reply)
	if message == "" {
		return "", fmt.Errorf("received empty commit message from %s", g.prov.Name())
	}
	return message, nil
}

// SummarizeHistory generates a single squash commit message from the
// concatenated log of the commits being collapsed.
func (g *Generator) SummarizeHistory(ctx context.Context, commitLog string) (string, error) {
	g.logger.Info().Str("provider", g.prov.Name()).Msg("summarizing commit history")

	reply, err := g.prov.Generate(ctx, g.prompts.Squash(), commitLog)
	if err != nil {
		g.logger.Debug().Err(err).Msg("provider call failed")
		return "", err
	}

	message := Clean(reply)
	if message == "" {
		return "", fmt.Errorf("received empty summary from %s", g.prov.Name())
	}
	return message, nil
}

func (g *Generator) Close() error {
	return g.prov.Close()
}
