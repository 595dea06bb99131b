package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clinsync-dev/clinsync/internal/classify"
	"github.com/clinsync-dev/clinsync/internal/config"
	"github.com/clinsync-dev/clinsync/internal/logging"
	"github.com/clinsync-dev/clinsync/internal/platform"
)

func newCategoriesCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the effective procedure-to-category mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runCategories(cmd, absDir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")

	return cmd
}

func runCategories(cmd *cobra.Command, dir string) error {
	cfg, err := config.Load(filepath.Join(dir, "clinsync.yaml"))
	if err != nil {
		return err
	}

	token := os.Getenv(cfg.API.TokenEnv)
	if token == "" {
		return fmt.Errorf("API token not set: export %s", cfg.API.TokenEnv)
	}

	client := platform.NewClient(cfg.API.BaseURL, token, logging.New())
	groups, err := client.CategoryGroups(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading category groups: %w", err)
	}

	m := classify.BuildCategoryMap(groups, cfg.Overrides())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d procedure(s) mapped\n", m.Len())
	for _, e := range m.Entries() {
		fmt.Fprintf(out, "  %-8d %s\n", e.ProcedureID, e.Category)
	}
	return nil
}
