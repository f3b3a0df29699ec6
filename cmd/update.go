package cmd

import (
	"context"
	"fmt"

	"git-cai/internal/logging"
	"git-cai/internal/update"
)

func runUpdate(ctx context.Context) error {
	checker := update.NewChecker(logging.New(flagDebug, ""))
	latest, newer, err := checker.Check(ctx, version)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if newer {
		fmt.Printf("A new version is available: %s (installed: %s)\n", latest, version)
		fmt.Println("See https://github.com/git-cai/git-cai/releases")
	} else {
		fmt.Printf("git-cai %s is up to date.\n", version)
	}
	return nil
}
