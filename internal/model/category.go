package model

// Category is the destination bookkeeping bucket a value is assigned to.
type Category string

const (
	CategoryRigatti      Category = "DR_RIGATTI"
	CategoryEvaluation   Category = "EVALUATION"
	CategoryNutrition    Category = "NUTRITION"
	CategoryConsultation Category = "CONSULTATION"
	CategorySerotherapy  Category = "SEROTHERAPY"
	CategoryImplant      Category = "IMPLANT"
	CategoryExams        Category = "EXAMS"
	CategoryMisc         Category = "MISCELLANEOUS"

	// CategoryAdvance marks an evaluation-classified value that had no
	// appointment backing it; excluded from evaluation totals.
	CategoryAdvance Category = "ADVANCE_DEPOSIT"

	// CategoryDiscard is the explicit drop sentinel for non-billable
	// interactions such as inbound inquiry calls.
	CategoryDiscard Category = "DISCARD"
)

// Provenance records how a classification decision was reached.
type Provenance string

const (
	ProvenanceID          Provenance = "id"
	ProvenanceName        Provenance = "name"
	ProvenanceFallback    Provenance = "fallback"
	ProvenanceAppointment Provenance = "appointment-override"
)

// Source tags which path produced an enriched transaction's items.
type Source string

const (
	SourceProposal          Source = "proposal"
	SourceInvoice           Source = "invoice"
	SourceReportSingle      Source = "report-single"
	SourceReportDistributed Source = "report-distributed"
	SourcePaymentOnly       Source = "payment-only"
)

// CategoryGroup is one entry of the platform's category-group listing: a
// default category and the procedure IDs that map to it.
type CategoryGroup struct {
	Category     Category `json:"category"`
	ProcedureIDs []int    `json:"procedure_ids"`
}
