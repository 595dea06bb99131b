package model

import "github.com/shopspring/decimal"

// ProposalStatus is the lifecycle state of a treatment proposal.
type ProposalStatus string

const (
	ProposalStatusDraft    ProposalStatus = "draft"
	ProposalStatusExecuted ProposalStatus = "executed"
	ProposalStatusCanceled ProposalStatus = "canceled"
)

// Proposal is an authoritative treatment plan a transaction may be settling.
type Proposal struct {
	ID     int             `json:"id"`
	Status ProposalStatus  `json:"status"`
	Value  decimal.Decimal `json:"value"`
	Items  []ProposalItem  `json:"items"`
}

// ProposalItem is a single planned procedure within a proposal.
type ProposalItem struct {
	ProcedureID int             `json:"procedure_id"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	Surcharge   decimal.Decimal `json:"surcharge"`
}

// Executed reports whether the proposal is eligible for matching.
func (p Proposal) Executed() bool {
	return p.Status == ProposalStatusExecuted
}

// HasProcedure reports whether any line item carries the given procedure ID.
func (p Proposal) HasProcedure(procedureID int) bool {
	for _, item := range p.Items {
		if item.ProcedureID == procedureID {
			return true
		}
	}
	return false
}

// ProcedureIDs returns the distinct procedure IDs across the proposal's items.
func (p Proposal) ProcedureIDs() []int {
	seen := make(map[int]bool, len(p.Items))
	var ids []int
	for _, item := range p.Items {
		if seen[item.ProcedureID] {
			continue
		}
		seen[item.ProcedureID] = true
		ids = append(ids, item.ProcedureID)
	}
	return ids
}
