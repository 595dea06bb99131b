package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clinsync-dev/clinsync/internal/config"
)

func newInitCommand() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new clinsync workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, apiURL)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "base URL of the practice-management API (required)")
	_ = cmd.MarkFlagRequired("api-url")

	return cmd
}

func runInit(cmd *cobra.Command, dir, apiURL string) error {
	for _, d := range []string{"exports", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(apiURL)
	if err := config.Save(filepath.Join(dir, "clinsync.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "exports/\nlogs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized clinsync workspace at %s\n", dir)
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s before running reconcile.\n", cfg.API.TokenEnv)
	return nil
}
