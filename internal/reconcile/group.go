package reconcile

import (
	"cloud.google.com/go/civil"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// GroupByPatient groups enriched transactions by patient for one date,
// preserving first-seen patient order and per-patient transaction order.
func GroupByPatient(date civil.Date, txns []model.EnrichedTransaction) []model.DayGroup {
	index := make(map[int]int)
	var groups []model.DayGroup
	for _, t := range txns {
		i, ok := index[t.PatientID]
		if !ok {
			i = len(groups)
			index[t.PatientID] = i
			groups = append(groups, model.DayGroup{
				PatientID:   t.PatientID,
				PatientName: t.PatientName,
				Date:        date,
			})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}
