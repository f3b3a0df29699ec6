// Package cmd is the CLI shell: flag parsing, mode routing, and the default
// commit workflow. All real work happens in the internal packages.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"git-cai/internal/config"
	"git-cai/internal/git"
	"git-cai/internal/logging"
	"git-cai/internal/prompt"
)

// version is stamped at build time via -ldflags.
var version = "<dev>"

var (
	flagAll        bool
	flagCrazy      bool
	flagDebug      bool
	flagList       bool
	flagSquash     bool
	flagUpdate     bool
	flagVersion    bool
	flagGenConfig  bool
	flagGenPrompts bool
)

var rootCmd = &cobra.Command{
	Use:   "git-cai [language|style|editor]",
	Short: "AI-powered commit message generator",
	Long: `git cai generates a commit message for your staged changes using a
configurable LLM provider, opens it in your editor, and commits only if
you save an edited message. It can also squash a branch into a single
commit with a synthesized message.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.RunE = run
	flags := rootCmd.Flags()
	flags.BoolVarP(&flagAll, "all", "a", false, "Stage modified and deleted files already tracked by git")
	flags.BoolVarP(&flagCrazy, "crazy", "c", false, "Commit immediately without opening the editor (trust the LLM output)")
	flags.BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")
	flags.BoolVarP(&flagList, "list", "l", false, "List information (language, style, or editor)")
	flags.BoolVarP(&flagSquash, "squash", "s", false, "Squash commits on this branch and summarize them")
	flags.BoolVarP(&flagUpdate, "update", "u", false, "Check for updates")
	flags.BoolVarP(&flagVersion, "version", "v", false, "Show installed version")
	flags.BoolVarP(&flagGenConfig, "generate-config", "g", false, "Write a default cai_config.yml to the current directory")
	flags.BoolVarP(&flagGenPrompts, "generate-prompts", "p", false, "Write default prompt files to the current directory")
}

// Execute runs the CLI. Errors are printed here so main stays trivial.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func run(cmd *cobra.Command, args []string) error {
	if flagVersion {
		fmt.Printf("git-cai version: %s\n", version)
		return nil
	}

	if !invokedAsGitSubcommand(os.Args[0]) {
		return fmt.Errorf("this command must be run as 'git cai'")
	}
	if err := validateFlags(); err != nil {
		return err
	}

	configDir, _ := config.Dir()
	logger := logging.New(flagDebug, configDir)
	g := git.New(logger)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case flagGenConfig:
		return generateConfig()
	case flagGenPrompts:
		return prompt.EnsureDefaults(".", logger)
	case flagList:
		return runList(args)
	case flagUpdate:
		return runUpdate(ctx)
	case flagSquash:
		return runSquash(ctx, g, configDir, logger)
	default:
		return runCommit(ctx, g, configDir, logger)
	}
}

// invokedAsGitSubcommand enforces installation behind a git alias: argv[0]
// must look like a git subcommand binary.
func invokedAsGitSubcommand(argv0 string) bool {
	return strings.HasPrefix(filepath.Base(argv0), "git-")
}

func validateFlags() error {
	var active []string
	for name, set := range map[string]bool{
		"--list":   flagList,
		"--squash": flagSquash,
		"--update": flagUpdate,
	} {
		if set {
			active = append(active, name)
		}
	}
	if len(active) > 1 {
		return fmt.Errorf("options %s cannot be used together", strings.Join(active, ", "))
	}
	if flagAll && len(active) > 0 {
		return fmt.Errorf("--all cannot be used with --list, --update, or --squash")
	}
	return nil
}

func generateConfig() error {
	cfg := config.Default()
	if tokens, err := config.TokensPath(); err == nil {
		cfg.LoadTokensFrom = tokens
	}
	if err := cfg.Write("cai_config.yml"); err != nil {
		return err
	}
	fmt.Println("Default configuration written to cai_config.yml")
	return nil
}
