package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Invoice is a billing document with line items in minor currency units.
type Invoice struct {
	ID           int           `json:"id"`
	ProposalDate civil.Date    `json:"proposal_date"` // zero value = unknown
	Items        []InvoiceItem `json:"items"`
}

// InvoiceItem is one invoice line. Money fields are minor units (cents).
type InvoiceItem struct {
	ProcedureID   int   `json:"procedure_id"`
	ValueCents    int64 `json:"value_cents"`
	Quantity      int   `json:"quantity"`
	DiscountCents int64 `json:"discount_cents"`
}

// Value converts the line value from minor units.
func (i InvoiceItem) Value() decimal.Decimal {
	return decimal.New(i.ValueCents, -2)
}

// Discount converts the line discount from minor units.
func (i InvoiceItem) Discount() decimal.Decimal {
	return decimal.New(i.DiscountCents, -2)
}
