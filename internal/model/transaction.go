package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is a raw ledger record from the practice-management platform.
// Created upstream; read-only to the engine.
type Transaction struct {
	PatientID       int             `json:"patient_id"`
	PatientName     string          `json:"patient_name"`
	Date            civil.Date      `json:"date"`
	Value           decimal.Decimal `json:"value"`
	ProcedureName   string          `json:"procedure_name"` // may be a comma-joined list
	ProcedureID     int             `json:"procedure_id,omitempty"`
	InvoiceID       int             `json:"invoice_id,omitempty"`
	PaymentMethodID int             `json:"payment_method_id,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	CardBrand       string          `json:"card_brand,omitempty"`
	Installments    int             `json:"installments,omitempty"`
}
