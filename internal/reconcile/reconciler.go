// Package reconcile drives a date range: it resets batch-scoped state,
// fetches raw transactions per day, enriches them strictly in sequence, and
// hands grouped results to the writers.
package reconcile

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/clinsync-dev/clinsync/internal/audit"
	"github.com/clinsync-dev/clinsync/internal/match"
	"github.com/clinsync-dev/clinsync/internal/model"
)

// Source supplies the raw transaction feed and owns the batch-scoped caches.
// *platform.Client satisfies it.
type Source interface {
	ListTransactions(ctx context.Context, from, to civil.Date, accountType string) ([]model.Transaction, error)
	ResetBatch()
}

// Enricher turns one raw transaction into an enriched record.
type Enricher interface {
	Enrich(ctx context.Context, txn model.Transaction, ledger *match.Ledger) (model.EnrichedTransaction, error)
}

// Writer consumes one processed day. This is the sole contract the
// spreadsheet and history collaborators depend on.
type Writer interface {
	WriteDay(date civil.Date, groups []model.DayGroup) error
}

// Recorder receives audit events. *audit.Trail satisfies it.
type Recorder interface {
	Record(e audit.Event) error
}

// Params configures a Reconciler.
type Params struct {
	Source      Source
	Enricher    Enricher
	Writers     []Writer
	Trail       Recorder
	Log         zerolog.Logger
	AccountType string
	DryRun      bool
}

// Reconciler runs batches. One batch is one date: the used-proposal ledger
// and the platform's batch caches live exactly that long.
type Reconciler struct {
	source      Source
	enricher    Enricher
	writers     []Writer
	trail       Recorder
	log         zerolog.Logger
	accountType string
	dryRun      bool
}

// New creates a Reconciler.
func New(p Params) *Reconciler {
	return &Reconciler{
		source:      p.Source,
		enricher:    p.Enricher,
		writers:     p.Writers,
		trail:       p.Trail,
		log:         p.Log,
		accountType: p.AccountType,
		dryRun:      p.DryRun,
	}
}

// Summary reports what a run processed.
type Summary struct {
	Days         int
	Transactions int
	PaymentOnly  int
	Failed       int
	BySource     map[model.Source]int
}

// Run reconciles every date in [from, to]. A failed transaction report
// aborts the run; a failed single enrichment is contained, audited, and
// skipped.
func (r *Reconciler) Run(ctx context.Context, from, to civil.Date) (*Summary, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s before start date %s", to, from)
	}

	summary := &Summary{BySource: make(map[model.Source]int)}
	for day := from; !day.After(to); day = day.AddDays(1) {
		if err := r.runDay(ctx, day, summary); err != nil {
			return summary, err
		}
		summary.Days++
	}
	return summary, nil
}

func (r *Reconciler) runDay(ctx context.Context, day civil.Date, summary *Summary) error {
	r.source.ResetBatch()
	ledger := match.NewLedger()

	txns, err := r.source.ListTransactions(ctx, day, day, r.accountType)
	if err != nil {
		// Nothing to reconcile without the primary feed.
		return fmt.Errorf("transaction report for %s: %w", day, err)
	}
	r.log.Info().Str("date", day.String()).Int("transactions", len(txns)).Msg("reconciling day")

	enriched := make([]model.EnrichedTransaction, 0, len(txns))
	for _, txn := range txns {
		// Strictly sequential: the ledger is single-writer shared state.
		et, err := r.enricher.Enrich(ctx, txn, ledger)
		if err != nil {
			summary.Failed++
			r.log.Error().Int("patient_id", txn.PatientID).Str("date", day.String()).Err(err).Msg("enrichment failed")
			r.record(audit.Event{
				Date:      day.String(),
				PatientID: txn.PatientID,
				Action:    audit.ActionEnrichFailed,
				Details:   err.Error(),
			})
			continue
		}
		enriched = append(enriched, et)
		summary.Transactions++
		summary.BySource[et.Source]++
		if et.PaymentOnly {
			summary.PaymentOnly++
		}
	}

	// Writers see a day only once it is fully enriched; a partially
	// completed day is never persisted.
	groups := GroupByPatient(day, enriched)
	if r.dryRun {
		return nil
	}
	for _, w := range r.writers {
		if err := w.WriteDay(day, groups); err != nil {
			return fmt.Errorf("writing day %s: %w", day, err)
		}
	}
	return nil
}

func (r *Reconciler) record(ev audit.Event) {
	if r.trail == nil {
		return
	}
	if err := r.trail.Record(ev); err != nil {
		r.log.Warn().Err(err).Msg("failed to write audit event")
	}
}
