package classify

import (
	"strings"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// Classification is the outcome of classifying a single money amount.
type Classification struct {
	Category   model.Category
	Provenance model.Provenance
}

// Discarded reports whether the amount was explicitly dropped.
func (c Classification) Discarded() bool {
	return c.Category == model.CategoryDiscard
}

// Classifier assigns destination categories. It is a pure function over the
// category map and pattern table it was built with.
type Classifier struct {
	categories *CategoryMap
	patterns   []PatternRule
}

// NewClassifier creates a Classifier. A nil or empty pattern table falls back
// to DefaultPatterns.
func NewClassifier(categories *CategoryMap, patterns []PatternRule) *Classifier {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Classifier{categories: categories, patterns: patterns}
}

// Classify resolves a category for a procedure. Priority order: the category
// map by ID (which may yield the discard sentinel), then the ordered name
// pattern table, then the miscellaneous default.
func (c *Classifier) Classify(name string, procedureID int) Classification {
	if procedureID != 0 {
		if cat, ok := c.categories.Lookup(procedureID); ok {
			return Classification{Category: cat, Provenance: model.ProvenanceID}
		}
	}

	lower := strings.ToLower(name)
	for _, rule := range c.patterns {
		if strings.Contains(lower, rule.Match) {
			return Classification{Category: rule.Category, Provenance: model.ProvenanceName}
		}
	}

	return Classification{Category: model.CategoryMisc, Provenance: model.ProvenanceFallback}
}
