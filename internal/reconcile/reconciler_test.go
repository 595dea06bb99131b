package reconcile

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsync-dev/clinsync/internal/match"
	"github.com/clinsync-dev/clinsync/internal/model"
)

type fakeSource struct {
	byDate map[string][]model.Transaction
	err    error
	resets int
}

func (f *fakeSource) ListTransactions(_ context.Context, from, _ civil.Date, _ string) ([]model.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byDate[from.String()], nil
}

func (f *fakeSource) ResetBatch() { f.resets++ }

type fakeEnricher struct {
	failPatient int
	ledgers     []*match.Ledger
}

func (f *fakeEnricher) Enrich(_ context.Context, txn model.Transaction, ledger *match.Ledger) (model.EnrichedTransaction, error) {
	f.ledgers = append(f.ledgers, ledger)
	if txn.PatientID == f.failPatient {
		return model.EnrichedTransaction{}, errors.New("boom")
	}
	return model.EnrichedTransaction{
		Transaction: txn,
		Source:      model.SourceReportSingle,
		PaymentOnly: txn.InvoiceID == 99,
	}, nil
}

type fakeWriter struct {
	days []civil.Date
	all  [][]model.DayGroup
	err  error
}

func (f *fakeWriter) WriteDay(date civil.Date, groups []model.DayGroup) error {
	if f.err != nil {
		return f.err
	}
	f.days = append(f.days, date)
	f.all = append(f.all, groups)
	return nil
}

func day(d int) civil.Date { return civil.Date{Year: 2026, Month: 2, Day: d} }

func txn(patientID int, name string) model.Transaction {
	return model.Transaction{PatientID: patientID, PatientName: name, Value: decimal.NewFromInt(100)}
}

func TestRunGroupsByPatient(t *testing.T) {
	source := &fakeSource{byDate: map[string][]model.Transaction{
		"2026-02-05": {txn(1, "Ana"), txn(2, "Bruno"), txn(1, "Ana")},
	}}
	writer := &fakeWriter{}
	r := New(Params{Source: source, Enricher: &fakeEnricher{}, Writers: []Writer{writer}, Log: zerolog.Nop()})

	summary, err := r.Run(context.Background(), day(5), day(5))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Days)
	assert.Equal(t, 3, summary.Transactions)
	require.Len(t, writer.all, 1)
	groups := writer.all[0]
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].PatientID)
	assert.Len(t, groups[0].Transactions, 2)
	assert.Equal(t, 2, groups[1].PatientID)
}

func TestRunResetsBatchPerDay(t *testing.T) {
	source := &fakeSource{byDate: map[string][]model.Transaction{
		"2026-02-05": {txn(1, "Ana")},
		"2026-02-06": {txn(1, "Ana")},
	}}
	enricher := &fakeEnricher{}
	r := New(Params{Source: source, Enricher: enricher, Log: zerolog.Nop()})

	_, err := r.Run(context.Background(), day(5), day(6))
	require.NoError(t, err)

	assert.Equal(t, 2, source.resets, "batch caches reset once per date")
	require.Len(t, enricher.ledgers, 2)
	assert.NotSame(t, enricher.ledgers[0], enricher.ledgers[1], "fresh ledger per date")
}

func TestRunContainsEnrichmentFailure(t *testing.T) {
	source := &fakeSource{byDate: map[string][]model.Transaction{
		"2026-02-05": {txn(1, "Ana"), txn(2, "Bruno"), txn(3, "Carla")},
	}}
	writer := &fakeWriter{}
	r := New(Params{Source: source, Enricher: &fakeEnricher{failPatient: 2}, Writers: []Writer{writer}, Log: zerolog.Nop()})

	summary, err := r.Run(context.Background(), day(5), day(5))
	require.NoError(t, err, "one bad transaction must not abort the batch")

	assert.Equal(t, 2, summary.Transactions)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, writer.all, 1)
	assert.Len(t, writer.all[0], 2, "failed transaction excluded from output")
}

func TestRunFatalOnReportFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("report down")}
	r := New(Params{Source: source, Enricher: &fakeEnricher{}, Log: zerolog.Nop()})

	_, err := r.Run(context.Background(), day(5), day(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction report")
}

func TestRunDryRunSkipsWriters(t *testing.T) {
	source := &fakeSource{byDate: map[string][]model.Transaction{
		"2026-02-05": {txn(1, "Ana")},
	}}
	writer := &fakeWriter{}
	r := New(Params{Source: source, Enricher: &fakeEnricher{}, Writers: []Writer{writer}, Log: zerolog.Nop(), DryRun: true})

	summary, err := r.Run(context.Background(), day(5), day(5))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Transactions)
	assert.Empty(t, writer.days)
}

func TestRunInvalidRange(t *testing.T) {
	r := New(Params{Source: &fakeSource{}, Enricher: &fakeEnricher{}, Log: zerolog.Nop()})
	_, err := r.Run(context.Background(), day(6), day(5))
	require.Error(t, err)
}

func TestRunCountsPaymentOnly(t *testing.T) {
	source := &fakeSource{byDate: map[string][]model.Transaction{
		"2026-02-05": {
			{PatientID: 1, InvoiceID: 99, Value: decimal.NewFromInt(100)},
			txn(2, "Bruno"),
		},
	}}
	r := New(Params{Source: source, Enricher: &fakeEnricher{}, Log: zerolog.Nop()})

	summary, err := r.Run(context.Background(), day(5), day(5))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PaymentOnly)
}

func TestGroupByPatientEmpty(t *testing.T) {
	assert.Empty(t, GroupByPatient(day(5), nil))
}
