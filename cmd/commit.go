package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"git-cai/internal/config"
	"git-cai/internal/editor"
	"git-cai/internal/generator"
	"git-cai/internal/git"
	"git-cai/internal/prompt"
	"git-cai/internal/squash"
)

// prepare loads config, materializes default prompt files, and resolves the
// provider token. Shared by the commit and squash flows.
func prepare(g *git.Git, configDir string, logger zerolog.Logger) (*config.Config, string, error) {
	cfg, err := config.Load(g, logger)
	if err != nil {
		return nil, "", err
	}
	if configDir != "" {
		if err := prompt.EnsureDefaults(configDir, logger); err != nil {
			logger.Warn().Err(err).Msg("could not write default prompt files")
		}
	}
	token, err := config.LoadToken(cfg, logger)
	if err != nil {
		return nil, "", err
	}
	if token == "" && !config.Tokenless[cfg.Default] {
		path, _ := config.TokensPath()
		return nil, "", fmt.Errorf("no API token for provider '%s'; add it to %s", cfg.Default, path)
	}
	return cfg, token, nil
}

func runCommit(ctx context.Context, g *git.Git, configDir string, logger zerolog.Logger) error {
	if flagAll {
		if err := g.StageTracked(); err != nil {
			return err
		}
	}

	root := g.RepoRoot()
	if root == "" {
		return fmt.Errorf("not inside a git repository")
	}

	cfg, token, err := prepare(g, configDir, logger)
	if err != nil {
		return err
	}

	diff, err := g.DiffExcluding(root)
	if err != nil {
		return err
	}
	if strings.TrimSpace(diff) == "" {
		logger.Info().Msg("No changes to commit. Did you run 'git add'? Files must be staged.")
		return nil
	}

	gen, err := generator.New(cfg, token, configDir, logger)
	if err != nil {
		return err
	}
	defer gen.Close()

	message, err := gen.CommitMessage(ctx, diff)
	if err != nil {
		return err
	}

	if flagCrazy {
		if err := g.Commit(message); err != nil {
			return err
		}
		fmt.Println("Committed without review:")
		fmt.Println(message)
		return nil
	}

	session := &editor.Session{
		Command: editor.Resolve(g.ConfiguredEditor()),
		Logger:  logger,
	}
	final, saved, err := session.Review(message)
	if err != nil {
		return err
	}
	if !saved {
		logger.Warn().Msg("commit message unchanged in editor, commit aborted")
		return nil
	}
	if err := g.CommitViaFile(final); err != nil {
		return err
	}
	fmt.Println("Committed.")
	return nil
}

func runSquash(ctx context.Context, g *git.Git, configDir string, logger zerolog.Logger) error {
	cfg, token, err := prepare(g, configDir, logger)
	if err != nil {
		return err
	}

	gen, err := generator.New(cfg, token, configDir, logger)
	if err != nil {
		return err
	}
	defer gen.Close()

	orch := &squash.Orchestrator{
		Git: g,
		Gen: gen,
		Reviewer: &editor.Session{
			Command: editor.Resolve(g.ConfiguredEditor()),
			Logger:  logger,
		},
		Logger: logger,
		Out:    rootCmd.OutOrStdout(),
	}
	return orch.Run(ctx)
}
