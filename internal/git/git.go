// Package git wraps the git CLI operations the commit and squash workflows
// depend on. Every command goes through an injectable runner so tests never
// need a real repository.
package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ignoreFile lists diff exclusion patterns, one per line, at the repo root.
const ignoreFile = ".caiignore"

// Runner executes a git command and returns its stdout.
type Runner func(args ...string) (string, error)

// Passthrough executes a git command with the user's terminal attached.
type Passthrough func(args ...string) error

// Git runs repository operations for the commit and squash workflows.
type Git struct {
	run    Runner
	runTTY Passthrough
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Git {
	return &Git{
		run:    defaultRunner,
		runTTY: defaultPassthrough,
		logger: logger,
	}
}

// NewWithRunner is used by tests to substitute the git binary.
func NewWithRunner(run Runner, runTTY Passthrough, logger zerolog.Logger) *Git {
	return &Git{run: run, runTTY: runTTY, logger: logger}
}

func defaultRunner(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

func defaultPassthrough(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// RepoRoot returns the top-level directory of the enclosing repository, or
// an empty string when not inside one.
func (g *Git) RepoRoot() string {
	out, err := g.run("rev-parse", "--show-toplevel")
	if err != nil {
		g.logger.Debug().Err(err).Msg("not inside a git repository")
		return ""
	}
	return strings.TrimSpace(out)
}

// DiffExcluding returns the staged diff, excluding any paths matched by
// patterns listed in .caiignore at the repository root.
func (g *Git) DiffExcluding(repoRoot string) (string, error) {
	args := []string{"diff", "--cached", "--", "."}

	patterns, err := readIgnorePatterns(repoRoot)
	if err != nil {
		return "", err
	}
	if len(patterns) == 0 {
		g.logger.Debug().Msg("no diff exclusions configured")
	}
	for _, p := range patterns {
		args = append(args, ":!"+p)
	}

	out, err := g.run(args...)
	if err != nil {
		return "", fmt.Errorf("failed to get staged diff: %w", err)
	}
	return out, nil
}

func readIgnorePatterns(repoRoot string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, ignoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ignoreFile, err)
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

// StagedFiles returns the staged file list, one path per line.
func (g *Git) StagedFiles() (string, error) {
	out, err := g.run("diff", "--cached", "--name-only")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// UnstagedFiles returns files with unstaged modifications.
func (g *Git) UnstagedFiles() (string, error) {
	out, err := g.run("diff", "--name-only")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StageTracked stages modifications and deletions of already-tracked files.
func (g *Git) StageTracked() error {
	if err := g.runTTY("add", "-u"); err != nil {
		return fmt.Errorf("git add failed: %w", err)
	}
	return nil
}

// HasUpstream reports whether the current branch tracks a remote branch.
func (g *Git) HasUpstream() bool {
	_, err := g.run("rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	return err == nil
}

// ConfiguredEditor returns the editor git itself would launch, or an empty
// string when git cannot tell.
func (g *Git) ConfiguredEditor() string {
	out, err := g.run("var", "GIT_EDITOR")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// BranchBase returns the commit the current branch diverged from: the
// fork-point against the remote default branch when determinable, otherwise
// the repository's root commit.
func (g *Git) BranchBase() (string, error) {
	if ref, err := g.run("symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		defaultBranch := strings.TrimPrefix(strings.TrimSpace(ref), "refs/remotes/")
		g.logger.Info().Str("branch", defaultBranch).Msg("using default branch for base detection")

		base, err := g.run("merge-base", "--fork-point", defaultBranch, "HEAD")
		if err == nil {
			return strings.TrimSpace(base), nil
		}
		g.logger.Debug().Err(err).Msg("fork-point detection failed")
	}

	g.logger.Info().Msg("unable to determine default branch, falling back to initial commit")
	base, err := g.run("rev-list", "--max-parents=0", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to determine repository root commit: %w", err)
	}
	return strings.TrimSpace(base), nil
}

// CommitLog returns the concatenated messages of all commits after base.
func (g *Git) CommitLog(base string) (string, error) {
	out, err := g.run("--no-pager", "log", base+"..HEAD", "--pretty=format:%B")
	if err != nil {
		return "", fmt.Errorf("failed to read commit log: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ResetSoft moves HEAD to base while keeping the index and working tree.
func (g *Git) ResetSoft(base string) error {
	if err := g.runTTY("reset", "--soft", base); err != nil {
		return fmt.Errorf("git reset --soft failed: %w", err)
	}
	return nil
}

// CommitFile commits using the given file as the commit message. A file is
// used rather than -m so multiline messages survive intact.
func (g *Git) CommitFile(path string) error {
	if err := g.runTTY("commit", "-F", path); err != nil {
		return fmt.Errorf("git commit failed: %w", err)
	}
	return nil
}

// Commit creates a commit with the given message.
func (g *Git) Commit(message string) error {
	if err := g.runTTY("commit", "-m", message); err != nil {
		return fmt.Errorf("git commit failed: %w", err)
	}
	return nil
}

// CommitViaFile writes the message to a temporary file and commits with -F,
// keeping multiline messages intact on every platform.
func (g *Git) CommitViaFile(message string) error {
	tmp, err := os.CreateTemp("", "git-cai-msg-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(message); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write commit message: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	return g.CommitFile(tmp.Name())
}
