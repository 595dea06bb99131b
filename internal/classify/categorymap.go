// Package classify maps procedures to destination bookkeeping categories
// using an ID-priority / name-fallback scheme.
package classify

import (
	"sort"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// CategoryMap provides in-memory procedure-ID lookup over the platform's
// category groups with explicit per-ID overrides applied on top.
type CategoryMap struct {
	byID map[int]model.Category
}

// BuildCategoryMap flattens category groups into an ID index and applies
// overrides. An override of model.CategoryDiscard marks the procedure as
// explicitly non-billable.
func BuildCategoryMap(groups []model.CategoryGroup, overrides map[int]model.Category) *CategoryMap {
	byID := make(map[int]model.Category)
	for _, g := range groups {
		for _, id := range g.ProcedureIDs {
			byID[id] = g.Category
		}
	}
	for id, cat := range overrides {
		byID[id] = cat
	}
	return &CategoryMap{byID: byID}
}

// Lookup returns the category mapped to a procedure ID.
func (m *CategoryMap) Lookup(procedureID int) (model.Category, bool) {
	cat, ok := m.byID[procedureID]
	return cat, ok
}

// Len returns the number of mapped procedure IDs.
func (m *CategoryMap) Len() int {
	return len(m.byID)
}

// Entries returns the mapping sorted by procedure ID, for operator display.
func (m *CategoryMap) Entries() []Entry {
	entries := make([]Entry, 0, len(m.byID))
	for id, cat := range m.byID {
		entries = append(entries, Entry{ProcedureID: id, Category: cat})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProcedureID < entries[j].ProcedureID })
	return entries
}

// Entry is one resolved (procedure ID, category) pair.
type Entry struct {
	ProcedureID int
	Category    model.Category
}
