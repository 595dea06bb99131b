package platform

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// reportDateFormat is the transaction report's textual date shape. Every
// other endpoint uses ISO dates. Both normalize to civil.Date here, at the
// boundary; nothing downstream branches on string shape.
const reportDateFormat = "02/01/2006"

// ParseDate normalizes either upstream textual date format. An empty string
// yields the zero (invalid) date.
func ParseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(reportDateFormat, s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("unrecognized date %q", s)
	}
	return civil.DateOf(t), nil
}

type transactionsResponse struct {
	Transactions []transactionRow `json:"transactions"`
}

type transactionRow struct {
	PatientID       int             `json:"patient_id"`
	PatientName     string          `json:"patient_name"`
	Date            string          `json:"date"`
	Value           decimal.Decimal `json:"value"`
	ProcedureName   string          `json:"procedure_name"`
	ProcedureID     int             `json:"procedure_id"`
	InvoiceID       int             `json:"invoice_id"`
	PaymentMethodID int             `json:"payment_method_id"`
	PaymentMethod   string          `json:"payment_method"`
	CardBrand       string          `json:"card_brand"`
	Installments    int             `json:"installments"`
}

func (r transactionRow) toModel() (model.Transaction, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction for patient %d: %w", r.PatientID, err)
	}
	return model.Transaction{
		PatientID:       r.PatientID,
		PatientName:     r.PatientName,
		Date:            date,
		Value:           r.Value,
		ProcedureName:   r.ProcedureName,
		ProcedureID:     r.ProcedureID,
		InvoiceID:       r.InvoiceID,
		PaymentMethodID: r.PaymentMethodID,
		PaymentMethod:   r.PaymentMethod,
		CardBrand:       r.CardBrand,
		Installments:    r.Installments,
	}, nil
}

type proposalsResponse struct {
	Proposals []proposalRow `json:"proposals"`
}

type proposalRow struct {
	ID     int               `json:"id"`
	Status string            `json:"status"`
	Value  decimal.Decimal   `json:"value"`
	Items  []proposalItemRow `json:"items"`
}

type proposalItemRow struct {
	ProcedureID int             `json:"procedure_id"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	Surcharge   decimal.Decimal `json:"surcharge"`
}

func (r proposalRow) toModel() model.Proposal {
	p := model.Proposal{
		ID:     r.ID,
		Status: model.ProposalStatus(r.Status),
		Value:  r.Value,
	}
	for _, item := range r.Items {
		p.Items = append(p.Items, model.ProposalItem{
			ProcedureID: item.ProcedureID,
			UnitValue:   item.UnitValue,
			Quantity:    item.Quantity,
			Discount:    item.Discount,
			Surcharge:   item.Surcharge,
		})
	}
	return p
}

type invoiceRow struct {
	ID           int              `json:"id"`
	ProposalDate string           `json:"proposal_date"`
	Items        []invoiceItemRow `json:"items"`
}

type invoiceItemRow struct {
	ProcedureID   int   `json:"procedure_id"`
	ValueCents    int64 `json:"value_cents"`
	Quantity      int   `json:"quantity"`
	DiscountCents int64 `json:"discount_cents"`
}

func (r invoiceRow) toModel() (*model.Invoice, error) {
	date, err := ParseDate(r.ProposalDate)
	if err != nil {
		return nil, fmt.Errorf("invoice %d: %w", r.ID, err)
	}
	inv := &model.Invoice{ID: r.ID, ProposalDate: date}
	for _, item := range r.Items {
		inv.Items = append(inv.Items, model.InvoiceItem{
			ProcedureID:   item.ProcedureID,
			ValueCents:    item.ValueCents,
			Quantity:      item.Quantity,
			DiscountCents: item.DiscountCents,
		})
	}
	return inv, nil
}

type procedureRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type categoryGroupsResponse struct {
	Groups []categoryGroupRow `json:"groups"`
}

type categoryGroupRow struct {
	Category     string `json:"category"`
	ProcedureIDs []int  `json:"procedure_ids"`
}

type appointmentsResponse struct {
	Appointments []appointmentRow `json:"appointments"`
}

type appointmentRow struct {
	Date       string `json:"date"`
	Telehealth bool   `json:"telehealth"`
	Notes      string `json:"notes"`
}

func (r appointmentRow) toModel() (model.Appointment, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("appointment: %w", err)
	}
	return model.Appointment{Date: date, Telehealth: r.Telehealth, Notes: r.Notes}, nil
}
