// Package commands wires the clinsync CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinsync-dev/clinsync/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "clinsync",
		Short:   "Reconcile clinic transactions against the practice-management platform",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newCategoriesCommand())

	return rootCmd
}
