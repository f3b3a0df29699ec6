// Package squash collapses all commits since the branch base into a single
// commit with a generated, user-reviewed message. The destructive step (a
// soft reset plus one commit) runs only after the user saved the message in
// their editor.
package squash

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"git-cai/internal/git"
)

// Summarizer generates the messages the squash flow needs.
type Summarizer interface {
	CommitMessage(ctx context.Context, diff string) (string, error)
	SummarizeHistory(ctx context.Context, commitLog string) (string, error)
}

// Reviewer runs the edit-then-confirm protocol on a message and reports
// whether the user saved it.
type Reviewer interface {
	Review(message string) (final string, saved bool, err error)
}

// Orchestrator drives one squash run.
type Orchestrator struct {
	Git      *git.Git
	Gen      Summarizer
	Reviewer Reviewer
	Logger   zerolog.Logger
	Out      io.Writer
}

// Run performs the squash. Refusals and cancellations that leave the
// repository untouched return nil after logging; only real failures and the
// unstaged-changes guard return an error.
func (o *Orchestrator) Run(ctx context.Context) error {
	root := o.Git.RepoRoot()
	if root == "" {
		return fmt.Errorf("not inside a git repository")
	}

	staged, err := o.Git.StagedFiles()
	if err != nil {
		return err
	}
	unstaged, err := o.Git.UnstagedFiles()
	if err != nil {
		return err
	}

	if staged != "" {
		if err := o.commitStaged(ctx, root); err != nil {
			return err
		}
	} else if unstaged != "" {
		return fmt.Errorf("unstaged changes present; stage or discard them before squashing")
	} else {
		o.Logger.Info().Msg("working tree clean, proceeding to squash history")
	}

	base, err := o.Git.BranchBase()
	if err != nil {
		return err
	}

	commitLog, err := o.Git.CommitLog(base)
	if err != nil {
		return err
	}
	if commitLog == "" {
		o.Logger.Info().Msg("nothing to squash: branch contains only one commit")
		return nil
	}

	o.Logger.Info().Msg("summarizing commit history")
	summary, err := o.Gen.SummarizeHistory(ctx, commitLog)
	if err != nil {
		return err
	}

	o.Logger.Info().Msg("opening editor for the squash message; save to continue, exit without saving to cancel")
	final, saved, err := o.Reviewer.Review(summary)
	if err != nil {
		return err
	}
	if !saved {
		o.Logger.Info().Msg("squash cancelled (message not saved)")
		return nil
	}

	if err := o.Git.ResetSoft(base); err != nil {
		return err
	}
	if err := o.Git.Commit(final); err != nil {
		return err
	}

	fmt.Fprintln(o.Out, "Branch successfully squashed into one commit.")
	o.pushAdvisory()
	return nil
}

// commitStaged turns the staged changes into a commit before history is
// rewritten. An aborted review cancels the whole squash.
func (o *Orchestrator) commitStaged(ctx context.Context, root string) error {
	o.Logger.Info().Msg("staged changes detected, committing them before squashing")

	diff, err := o.Git.DiffExcluding(root)
	if err != nil {
		return err
	}
	if strings.TrimSpace(diff) == "" {
		return fmt.Errorf("staged changes detected but the diff is empty, aborting")
	}

	msg, err := o.Gen.CommitMessage(ctx, diff)
	if err != nil {
		return err
	}

	final, saved, err := o.Reviewer.Review(msg)
	if err != nil {
		return err
	}
	if !saved {
		return fmt.Errorf("commit aborted, squash cancelled")
	}
	return o.Git.CommitViaFile(final)
}

// pushAdvisory explains what the next push requires, once, after a squash.
// No push is ever performed here.
func (o *Orchestrator) pushAdvisory() {
	if o.Git.HasUpstream() {
		fmt.Fprintln(o.Out, "Your branch has a remote upstream. Squashing rewrites history,")
		fmt.Fprintln(o.Out, "so your next push must use:")
		fmt.Fprintln(o.Out, "")
		fmt.Fprintln(o.Out, "    git push --force-with-lease")
		fmt.Fprintln(o.Out, "")
		fmt.Fprintln(o.Out, "This is a safe force-push that refuses to overwrite others' commits.")
		return
	}
	fmt.Fprintln(o.Out, "No upstream branch detected; a normal `git push` will work as expected.")
}
