// Package enrich turns one raw transaction into a fully itemized, classified
// record, consulting the proposal matcher, appointment validator, and
// procedure classifier.
package enrich

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/clinsync-dev/clinsync/internal/audit"
	"github.com/clinsync-dev/clinsync/internal/model"
)

// API is the slice of the practice platform the enricher depends on.
// *platform.Client satisfies it.
type API interface {
	ListProposals(ctx context.Context, patientID int, date civil.Date) ([]model.Proposal, error)
	GetInvoice(ctx context.Context, invoiceID int, around civil.Date) (*model.Invoice, error)
	ProcedureName(ctx context.Context, procedureID int) (string, error)
	SearchAppointments(ctx context.Context, patientID int, around civil.Date) ([]model.Appointment, error)
}

// Recorder receives audit events. *audit.Trail satisfies it.
type Recorder interface {
	Record(e audit.Event) error
}
