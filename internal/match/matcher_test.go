package match

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsync-dev/clinsync/internal/model"
)

type fakeInvoices struct {
	invoice *model.Invoice
	err     error
	calls   int
}

func (f *fakeInvoices) GetInvoice(_ context.Context, _ int, _ civil.Date) (*model.Invoice, error) {
	f.calls++
	return f.invoice, f.err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func proposal(id int, value string, procedureIDs ...int) model.Proposal {
	p := model.Proposal{ID: id, Status: model.ProposalStatusExecuted, Value: dec(value)}
	for _, pid := range procedureIDs {
		p.Items = append(p.Items, model.ProposalItem{ProcedureID: pid, UnitValue: dec(value), Quantity: 1})
	}
	return p
}

func TestMatchSingleExact(t *testing.T) {
	m := NewMatcher(&fakeInvoices{})
	txn := model.Transaction{ProcedureName: "Consulta", ProcedureID: 104, Value: dec("500")}
	candidates := []model.Proposal{proposal(1, "500", 104)}

	got, err := m.Match(context.Background(), txn, candidates)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.ID)
}

func TestMatchSingleClosestValue(t *testing.T) {
	m := NewMatcher(&fakeInvoices{})
	txn := model.Transaction{ProcedureName: "Consulta", ProcedureID: 58, Value: dec("305")}
	candidates := []model.Proposal{
		proposal(1, "320", 58),
		proposal(2, "300", 58),
	}

	got, err := m.Match(context.Background(), txn, candidates)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID, "total 300 is closer to 305 (delta 5 vs 15)")
}

func TestMatchSingleNoCandidates(t *testing.T) {
	m := NewMatcher(&fakeInvoices{})
	txn := model.Transaction{ProcedureName: "Consulta", ProcedureID: 104, Value: dec("500")}

	got, err := m.Match(context.Background(), txn, []model.Proposal{proposal(1, "500", 999)})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = m.Match(context.Background(), txn, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatchSingleNoProcedureID(t *testing.T) {
	m := NewMatcher(&fakeInvoices{})
	txn := model.Transaction{ProcedureName: "Consulta", Value: dec("500")}

	got, err := m.Match(context.Background(), txn, []model.Proposal{proposal(1, "500", 104)})
	require.NoError(t, err)
	assert.Nil(t, got, "no procedure ID means no confident single match")
}

func TestMatchMultiByInvoiceOverlap(t *testing.T) {
	invoices := &fakeInvoices{invoice: &model.Invoice{
		ID: 44,
		Items: []model.InvoiceItem{
			{ProcedureID: 10, ValueCents: 30000, Quantity: 1},
			{ProcedureID: 20, ValueCents: 20000, Quantity: 1},
		},
	}}
	m := NewMatcher(invoices)

	txn := model.Transaction{ProcedureName: "Implante,Soroterapia", InvoiceID: 44, Value: dec("500")}
	candidates := []model.Proposal{
		proposal(1, "500", 10, 20), // overlap 2
		proposal(2, "500", 10, 99), // overlap 1
	}

	got, err := m.Match(context.Background(), txn, candidates)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, 1, invoices.calls)
}

func TestMatchMultiInsufficientOverlap(t *testing.T) {
	invoices := &fakeInvoices{invoice: &model.Invoice{
		ID:    44,
		Items: []model.InvoiceItem{{ProcedureID: 10, ValueCents: 30000, Quantity: 1}},
	}}
	m := NewMatcher(invoices)

	txn := model.Transaction{ProcedureName: "Implante,Soroterapia", InvoiceID: 44, Value: dec("500")}
	got, err := m.Match(context.Background(), txn, []model.Proposal{proposal(1, "500", 10, 20)})
	require.NoError(t, err)
	assert.Nil(t, got, "overlap below 2 must not be guessed")
}

func TestMatchMultiNoInvoiceID(t *testing.T) {
	invoices := &fakeInvoices{}
	m := NewMatcher(invoices)

	txn := model.Transaction{ProcedureName: "Implante,Soroterapia", Value: dec("500")}
	got, err := m.Match(context.Background(), txn, []model.Proposal{proposal(1, "500", 10, 20)})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, invoices.calls, "no invoice ID means no lookup")
}

func TestMatchMultiInvoiceUnavailable(t *testing.T) {
	invoices := &fakeInvoices{err: errors.New("upstream down")}
	m := NewMatcher(invoices)

	txn := model.Transaction{ProcedureName: "Implante,Soroterapia", InvoiceID: 44, Value: dec("500")}
	got, err := m.Match(context.Background(), txn, []model.Proposal{proposal(1, "500", 10, 20)})
	require.Error(t, err)
	assert.Nil(t, got, "lookup failure degrades to no match")
}
