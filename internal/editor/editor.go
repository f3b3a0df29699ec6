// Package editor opens generated commit messages in the user's editor and
// decides, by comparing content hashes before and after, whether the user
// actually saved an edit. Content equality, not editor exit status alone,
// determines whether a commit may proceed.
package editor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// blockFlags maps GUI editors to the flag that makes them block until the
// file is closed. Terminal editors block by default and need nothing.
var blockFlags = map[string]string{
	"code":          "--wait",
	"code-insiders": "--wait",
	"subl":          "--wait",
	"sublime_text":  "--wait",
	"atom":          "--wait",
	"pycharm":       "--wait",
	"pycharm64":     "--wait",
	"kate":          "--block",
}

// TerminalEditors are recognized terminal-based editors, listed by
// `git cai --list editor`.
var TerminalEditors = []string{"vi", "vim", "nano", "nvim"}

// BlockFlag returns the blocking flag for an editor executable name, or an
// empty string when none is needed.
func BlockFlag(editor string) string {
	return blockFlags[filepath.Base(editor)]
}

// GUIEditors returns the recognized GUI editors and the blocking flag each
// one is launched with.
func GUIEditors() map[string]string {
	return blockFlags
}

// Resolve returns the editor command to use. gitConfigured is the output of
// `git var GIT_EDITOR` and wins when non-empty; the fallback chain mirrors
// git's own precedence.
func Resolve(gitConfigured string) string {
	if gitConfigured != "" {
		return gitConfigured
	}
	for _, env := range []string{"GIT_EDITOR", "VISUAL", "EDITOR"} {
		if val := os.Getenv(env); val != "" {
			return val
		}
	}
	for _, candidate := range []string{"vi", "nano"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "vi"
}

// Session runs the review protocol for one message.
type Session struct {
	// Command is the editor command line, possibly with arguments.
	Command string
	Logger  zerolog.Logger
}

// Review writes message to a fresh temp file, opens the editor on it, and
// reports the outcome. saved is false when the file content is unchanged,
// which is treated as the user declining. The temp file is removed on every
// path. A non-zero editor exit is an error.
func (s *Session) Review(message string) (final string, saved bool, err error) {
	tmp, err := os.CreateTemp("", "git-cai-commit-*.txt")
	if err != nil {
		return "", false, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(message); err != nil {
		tmp.Close()
		return "", false, fmt.Errorf("failed to write commit message: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", false, fmt.Errorf("failed to close temporary file: %w", err)
	}

	originalHash, err := HashFile(tmp.Name())
	if err != nil {
		return "", false, err
	}

	parts := strings.Fields(s.Command)
	if len(parts) == 0 {
		return "", false, fmt.Errorf("empty editor command")
	}
	if _, err := exec.LookPath(parts[0]); err != nil {
		return "", false, fmt.Errorf("editor %q not found in PATH; set GIT_EDITOR properly", parts[0])
	}
	if flag := BlockFlag(parts[0]); flag != "" && !contains(parts, flag) {
		parts = append(parts, flag)
	}

	cmd := exec.Command(parts[0], append(parts[1:], tmp.Name())...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("editor exited with non-zero status: %w", err)
	}

	newHash, err := HashFile(tmp.Name())
	if err != nil {
		return "", false, err
	}
	if newHash == originalHash {
		s.Logger.Warn().Msg("commit message not saved")
		return "", false, nil
	}

	edited, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", false, fmt.Errorf("failed to read edited message: %w", err)
	}
	return strings.TrimSpace(string(edited)), true, nil
}

// HashFile returns the hex SHA-256 of a file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func contains(parts []string, flag string) bool {
	for _, p := range parts {
		if p == flag {
			return true
		}
	}
	return false
}
