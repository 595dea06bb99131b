package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/clinsync-dev/clinsync/internal/audit"
	"github.com/clinsync-dev/clinsync/internal/classify"
	"github.com/clinsync-dev/clinsync/internal/config"
	"github.com/clinsync-dev/clinsync/internal/enrich"
	"github.com/clinsync-dev/clinsync/internal/export"
	"github.com/clinsync-dev/clinsync/internal/logging"
	"github.com/clinsync-dev/clinsync/internal/model"
	"github.com/clinsync-dev/clinsync/internal/platform"
	"github.com/clinsync-dev/clinsync/internal/reconcile"
)

func newReconcileCommand() *cobra.Command {
	var fromStr, toStr, dir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile and classify transactions for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := civil.ParseDate(fromStr)
			if err != nil {
				return fmt.Errorf("parsing --from: %w", err)
			}
			to := from
			if toStr != "" {
				if to, err = civil.ParseDate(toStr); err != nil {
					return fmt.Errorf("parsing --to: %w", err)
				}
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runReconcile(cmd, absDir, from, to, dryRun)
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "first date to reconcile, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&toStr, "to", "", "last date to reconcile, defaults to --from")
	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "enrich and report without writing exports")

	return cmd
}

func runReconcile(cmd *cobra.Command, dir string, from, to civil.Date, dryRun bool) error {
	cfg, err := config.Load(filepath.Join(dir, "clinsync.yaml"))
	if err != nil {
		return err
	}

	token := os.Getenv(cfg.API.TokenEnv)
	if token == "" {
		return fmt.Errorf("API token not set: export %s", cfg.API.TokenEnv)
	}

	log := logging.New()
	client := platform.NewClient(cfg.API.BaseURL, token, log)

	// The category groups seed the ID index for the whole run; without them
	// no ID-based classification is possible.
	groups, err := client.CategoryGroups(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading category groups: %w", err)
	}
	classifier := classify.NewClassifier(
		classify.BuildCategoryMap(groups, cfg.Overrides()),
		patternsFromConfig(cfg.Categories.Patterns),
	)

	trail := audit.NewTrail(dir)
	enricher := enrich.NewEnricher(client, classifier, trail, log)

	exportDir := cfg.Export.Dir
	if !filepath.IsAbs(exportDir) {
		exportDir = filepath.Join(dir, exportDir)
	}
	var writers []reconcile.Writer
	if !dryRun {
		writers = []reconcile.Writer{
			export.NewSpreadsheetWriter(exportDir),
			export.NewHistoryWriter(exportDir, trail.RunID()),
		}
	}

	r := reconcile.New(reconcile.Params{
		Source:      client,
		Enricher:    enricher,
		Writers:     writers,
		Trail:       trail,
		Log:         log,
		AccountType: cfg.API.AccountType,
		DryRun:      dryRun,
	})

	summary, err := r.Run(cmd.Context(), from, to)
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func patternsFromConfig(patterns []config.PatternConfig) []classify.PatternRule {
	rules := make([]classify.PatternRule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, classify.PatternRule{
			Match:    strings.ToLower(p.Match),
			Category: model.Category(p.Category),
		})
	}
	return rules
}

func printSummary(cmd *cobra.Command, s *reconcile.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reconciled %d day(s): %d transaction(s), %d payment-only, %d failed\n",
		s.Days, s.Transactions, s.PaymentOnly, s.Failed)

	sources := make([]string, 0, len(s.BySource))
	for src := range s.BySource {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)
	for _, src := range sources {
		fmt.Fprintf(out, "  %-20s %d\n", src, s.BySource[model.Source(src)])
	}
}
