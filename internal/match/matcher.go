package match

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// InvoiceLookup fetches an invoice for multi-procedure cross-referencing.
type InvoiceLookup interface {
	GetInvoice(ctx context.Context, invoiceID int, around civil.Date) (*model.Invoice, error)
}

// minOverlap is the invoice/proposal procedure overlap required before a
// multi-procedure match is accepted.
const minOverlap = 2

// Matcher resolves which proposal, if any, a transaction is settling. It
// never guesses: insufficient confidence yields nil and the caller falls
// back to other sources.
type Matcher struct {
	invoices InvoiceLookup
}

// NewMatcher creates a Matcher.
func NewMatcher(invoices InvoiceLookup) *Matcher {
	return &Matcher{invoices: invoices}
}

// Match finds the proposal backing a transaction among the given candidates.
// Candidates must already be filtered to executed, unreserved proposals.
// A returned error means the invoice cross-reference was unavailable; the
// result is still "no match".
func (m *Matcher) Match(ctx context.Context, txn model.Transaction, candidates []model.Proposal) (*model.Proposal, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(SplitProcedures(txn.ProcedureName)) > 1 {
		return m.matchMulti(ctx, txn, candidates)
	}
	return m.matchSingle(txn, candidates), nil
}

// matchSingle filters candidates by the transaction's procedure ID; a unique
// hit wins, several hits fall back to the closest total value.
func (m *Matcher) matchSingle(txn model.Transaction, candidates []model.Proposal) *model.Proposal {
	if txn.ProcedureID == 0 {
		return nil
	}

	var hits []model.Proposal
	for _, p := range candidates {
		if p.HasProcedure(txn.ProcedureID) {
			hits = append(hits, p)
		}
	}

	switch len(hits) {
	case 0:
		return nil
	case 1:
		return &hits[0]
	}

	best := 0
	bestDelta := hits[0].Value.Sub(txn.Value).Abs()
	for i := 1; i < len(hits); i++ {
		delta := hits[i].Value.Sub(txn.Value).Abs()
		if delta.LessThan(bestDelta) {
			best = i
			bestDelta = delta
		}
	}
	return &hits[best]
}

// matchMulti cross-references the transaction's invoice: the proposal sharing
// the most procedure IDs with the invoice wins, provided the overlap reaches
// minOverlap.
func (m *Matcher) matchMulti(ctx context.Context, txn model.Transaction, candidates []model.Proposal) (*model.Proposal, error) {
	if txn.InvoiceID == 0 {
		return nil, nil
	}

	invoice, err := m.invoices.GetInvoice(ctx, txn.InvoiceID, txn.Date)
	if err != nil {
		return nil, err
	}
	if invoice == nil || len(invoice.Items) == 0 {
		return nil, nil
	}

	invoiceIDs := make(map[int]bool, len(invoice.Items))
	for _, item := range invoice.Items {
		invoiceIDs[item.ProcedureID] = true
	}

	var best *model.Proposal
	bestOverlap := 0
	for i := range candidates {
		overlap := 0
		for _, id := range candidates[i].ProcedureIDs() {
			if invoiceIDs[id] {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best = &candidates[i]
			bestOverlap = overlap
		}
	}

	if bestOverlap < minOverlap {
		return nil, nil
	}
	return best, nil
}
