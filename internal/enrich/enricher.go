package enrich

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/clinsync-dev/clinsync/internal/audit"
	"github.com/clinsync-dev/clinsync/internal/classify"
	"github.com/clinsync-dev/clinsync/internal/match"
	"github.com/clinsync-dev/clinsync/internal/model"
)

// paymentOnlyThresholdDays separates an installment on an old treatment from
// payment for a new procedure. Fixed business rule, not a tunable.
const paymentOnlyThresholdDays = 30

// Enricher runs the per-transaction state machine: payment-only check,
// proposal path, report paths, classification, and the evaluation
// appointment post-check.
type Enricher struct {
	api        API
	classifier *classify.Classifier
	matcher    *match.Matcher
	validator  *AppointmentValidator
	trail      Recorder
	log        zerolog.Logger
}

// NewEnricher creates an Enricher over the given platform API.
func NewEnricher(api API, classifier *classify.Classifier, trail Recorder, log zerolog.Logger) *Enricher {
	return &Enricher{
		api:        api,
		classifier: classifier,
		matcher:    match.NewMatcher(api),
		validator:  NewAppointmentValidator(api),
		trail:      trail,
		log:        log,
	}
}

// Enrich processes one transaction. Secondary lookup failures degrade to
// documented defaults and are audited; a returned error means the
// transaction could not be processed at all and must be contained by the
// caller.
func (e *Enricher) Enrich(ctx context.Context, txn model.Transaction, ledger *match.Ledger) (model.EnrichedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return model.EnrichedTransaction{}, err
	}

	out := model.EnrichedTransaction{Transaction: txn}

	if e.isPaymentOnly(ctx, txn) {
		out.PaymentOnly = true
		out.Source = model.SourcePaymentOnly
		e.record(audit.Event{
			Date:      txn.Date.String(),
			PatientID: txn.PatientID,
			InvoiceID: txn.InvoiceID,
			Action:    audit.ActionPaymentOnly,
			Details:   fmt.Sprintf("invoice proposal date more than %d days from transaction", paymentOnlyThresholdDays),
		})
		return out, nil
	}

	if matched := e.matchProposal(ctx, txn, ledger); matched != nil {
		out.Items = e.itemsFromProposal(ctx, txn, matched)
		out.Source = model.SourceProposal
		ledger.Commit(matched.ID)
		e.record(audit.Event{
			Date:       txn.Date.String(),
			PatientID:  txn.PatientID,
			ProposalID: matched.ID,
			Action:     audit.ActionProposalMatched,
		})
	} else if tokens := match.SplitProcedures(txn.ProcedureName); len(tokens) <= 1 {
		out.Items = []model.ClassifiedItem{{
			Name:        txn.ProcedureName,
			ProcedureID: txn.ProcedureID,
			Value:       txn.Value,
			Quantity:    1,
		}}
		out.Source = model.SourceReportSingle
	} else {
		out.Items, out.Source = e.itemsFromInvoice(ctx, txn, tokens)
	}

	for i := range out.Items {
		cls := e.classifier.Classify(out.Items[i].Name, out.Items[i].ProcedureID)
		out.Items[i].Category = cls.Category
		out.Items[i].Provenance = cls.Provenance
	}

	e.applyAppointmentCheck(ctx, txn, out.Items)

	return out, nil
}

// isPaymentOnly resolves the invoice's proposal date and reports whether the
// transaction is an installment on an old treatment.
func (e *Enricher) isPaymentOnly(ctx context.Context, txn model.Transaction) bool {
	if txn.InvoiceID == 0 {
		return false
	}
	invoice, err := e.api.GetInvoice(ctx, txn.InvoiceID, txn.Date)
	if err != nil {
		e.degrade(txn, "invoice lookup", err)
		return false
	}
	if invoice == nil || !invoice.ProposalDate.IsValid() {
		return false
	}

	days := txn.Date.DaysSince(invoice.ProposalDate)
	if days < 0 {
		days = -days
	}
	return days > paymentOnlyThresholdDays
}

// matchProposal queries the patient's proposals, filters to executed and
// unreserved candidates, and runs the matcher. On acceptance the proposal is
// reserved; the caller commits it once items are built.
func (e *Enricher) matchProposal(ctx context.Context, txn model.Transaction, ledger *match.Ledger) *model.Proposal {
	proposals, err := e.api.ListProposals(ctx, txn.PatientID, txn.Date)
	if err != nil {
		e.degrade(txn, "proposal listing", err)
		return nil
	}

	var eligible []model.Proposal
	for _, p := range proposals {
		if p.Executed() && ledger.Available(p.ID) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	matched, err := e.matcher.Match(ctx, txn, eligible)
	if err != nil {
		e.degrade(txn, "invoice cross-reference", err)
		return nil
	}
	if matched == nil {
		e.record(audit.Event{
			Date:      txn.Date.String(),
			PatientID: txn.PatientID,
			Action:    audit.ActionProposalDeclined,
			Details:   fmt.Sprintf("%d eligible proposals, none matched with confidence", len(eligible)),
		})
		return nil
	}
	if !ledger.Reserve(matched.ID) {
		return nil
	}
	return matched
}

// itemsFromProposal builds one item per proposal line: unit price times
// quantity, discount and surcharge carried through.
func (e *Enricher) itemsFromProposal(ctx context.Context, txn model.Transaction, p *model.Proposal) []model.ClassifiedItem {
	items := make([]model.ClassifiedItem, 0, len(p.Items))
	for _, line := range p.Items {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, model.ClassifiedItem{
			Name:        e.displayName(ctx, txn, line.ProcedureID),
			ProcedureID: line.ProcedureID,
			Value:       line.UnitValue.Mul(decimal.NewFromInt(int64(qty))),
			Quantity:    qty,
			Discount:    line.Discount,
			Surcharge:   line.Surcharge,
		})
	}
	return items
}

// itemsFromInvoice builds items for a multi-procedure transaction from its
// invoice lines, falling back to an equal split when no invoice is usable.
func (e *Enricher) itemsFromInvoice(ctx context.Context, txn model.Transaction, tokens []string) ([]model.ClassifiedItem, model.Source) {
	if txn.InvoiceID == 0 {
		return e.distribute(txn, tokens), model.SourceReportDistributed
	}

	invoice, err := e.api.GetInvoice(ctx, txn.InvoiceID, txn.Date)
	if err != nil {
		e.degrade(txn, "invoice lookup", err)
		return e.distribute(txn, tokens), model.SourceReportDistributed
	}
	if invoice == nil || len(invoice.Items) == 0 {
		return e.distribute(txn, tokens), model.SourceReportDistributed
	}

	items := make([]model.ClassifiedItem, 0, len(invoice.Items))
	for _, line := range invoice.Items {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, model.ClassifiedItem{
			Name:        e.displayName(ctx, txn, line.ProcedureID),
			ProcedureID: line.ProcedureID,
			Value:       line.Value(),
			Quantity:    qty,
			Discount:    line.Discount(),
		})
	}
	return items, model.SourceInvoice
}

// distribute splits the transaction value equally across the name tokens.
// The last share absorbs the rounding remainder so the shares sum exactly.
func (e *Enricher) distribute(txn model.Transaction, tokens []string) []model.ClassifiedItem {
	n := decimal.NewFromInt(int64(len(tokens)))
	share := txn.Value.DivRound(n, 2)

	items := make([]model.ClassifiedItem, 0, len(tokens))
	for i, token := range tokens {
		value := share
		if i == len(tokens)-1 {
			value = txn.Value.Sub(share.Mul(decimal.NewFromInt(int64(len(tokens) - 1))))
		}
		items = append(items, model.ClassifiedItem{
			Name:          token,
			Value:         value,
			Quantity:      1,
			LowConfidence: true,
		})
	}
	return items
}

// applyAppointmentCheck reclassifies evaluation items that have no clinical
// visit backing them into advance deposits, reversing any attributed
// discount. An appointment lookup failure leaves items untouched: the
// patient is never penalized for an infrastructure fault.
func (e *Enricher) applyAppointmentCheck(ctx context.Context, txn model.Transaction, items []model.ClassifiedItem) {
	for i := range items {
		if items[i].Category != model.CategoryEvaluation {
			continue
		}

		visited, err := e.validator.HasVisit(ctx, txn.PatientID, txn.Date)
		if err != nil {
			e.degrade(txn, "appointment search", err)
			continue
		}
		if visited {
			continue
		}

		item := &items[i]
		if !item.Discount.IsZero() {
			item.Value = item.Value.Add(item.Discount)
			item.Discount = decimal.Zero
		}
		item.Category = model.CategoryAdvance
		item.Provenance = model.ProvenanceAppointment
		e.record(audit.Event{
			Date:      txn.Date.String(),
			PatientID: txn.PatientID,
			Action:    audit.ActionAppointmentOverride,
			Details:   fmt.Sprintf("no appointment on %s; %q moved to advance deposit", txn.Date, item.Name),
		})
	}
}

// displayName resolves a procedure's name, degrading to empty on failure.
func (e *Enricher) displayName(ctx context.Context, txn model.Transaction, procedureID int) string {
	name, err := e.api.ProcedureName(ctx, procedureID)
	if err != nil {
		e.degrade(txn, fmt.Sprintf("procedure %d name lookup", procedureID), err)
		return ""
	}
	return name
}

func (e *Enricher) degrade(txn model.Transaction, what string, err error) {
	e.log.Warn().Int("patient_id", txn.PatientID).Str("date", txn.Date.String()).Err(err).Msgf("%s degraded", what)
	e.record(audit.Event{
		Date:      txn.Date.String(),
		PatientID: txn.PatientID,
		Action:    audit.ActionAPIDegraded,
		Details:   fmt.Sprintf("%s: %v", what, err),
	})
}

func (e *Enricher) record(ev audit.Event) {
	if e.trail == nil {
		return
	}
	if err := e.trail.Record(ev); err != nil {
		e.log.Warn().Err(err).Msg("failed to write audit event")
	}
}
