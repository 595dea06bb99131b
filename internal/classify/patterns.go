package classify

import "github.com/clinsync-dev/clinsync/internal/model"

// PatternRule is one ordered case-insensitive substring rule of the name
/// fallback table. Order matters: the first matching rule wins, so specific
// patterns must precede generic ones that would shadow them.
type PatternRule struct {
	Match    string
	Category model.Category
}

// DefaultPatterns is the built-in fallback table. "nutri" must stay ahead of
// "consulta" or nutritional consultations would land in the generic bucket.
func DefaultPatterns() []PatternRule {
	return []PatternRule{
		{Match: "nutri", Category: model.CategoryNutrition},
		{Match: "avalia", Category: model.CategoryEvaluation},
		{Match: "soro", Category: model.CategorySerotherapy},
		{Match: "implante", Category: model.CategoryImplant},
		{Match: "exame", Category: model.CategoryExams},
		{Match: "consulta", Category: model.CategoryConsultation},
	}
}
