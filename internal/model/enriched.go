package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ClassifiedItem is one derived line of an enriched transaction.
type ClassifiedItem struct {
	Name          string          `json:"name"`
	ProcedureID   int             `json:"procedure_id,omitempty"` // 0 = unknown
	Value         decimal.Decimal `json:"value"`
	Quantity      int             `json:"quantity"`
	Discount      decimal.Decimal `json:"discount"`
	Surcharge     decimal.Decimal `json:"surcharge"`
	Category      Category        `json:"category"`
	Provenance    Provenance      `json:"provenance"`
	LowConfidence bool            `json:"low_confidence,omitempty"`
}

// Discarded reports whether the item was explicitly dropped by classification.
func (i ClassifiedItem) Discarded() bool {
	return i.Category == CategoryDiscard
}

// EnrichedTransaction is the engine's output for one raw transaction.
type EnrichedTransaction struct {
	Transaction
	Items       []ClassifiedItem `json:"items"`
	PaymentOnly bool             `json:"payment_only"`
	Source      Source           `json:"source"`
}

// DayGroup collects a patient's enriched transactions for one date.
type DayGroup struct {
	PatientID    int                   `json:"patient_id"`
	PatientName  string                `json:"patient_name"`
	Date         civil.Date            `json:"date"`
	Transactions []EnrichedTransaction `json:"transactions"`
}
