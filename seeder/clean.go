package seeder

import (
	"strings"

	"github.com/giygas/nlem-api/entities"
)

// cleanString trims surrounding whitespace and turns embedded newlines into spaces.
// A value that is empty afterwards is reported as absent.
func cleanString(s string) (string, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	return cleaned, cleaned != ""
}

// optional is cleanString for nullable columns
func optional(s string) *string {
	cleaned, ok := cleanString(s)
	if !ok {
		return nil
	}
	return &cleaned
}

// splitDosageForms splits the raw dosage cell on commas, keeping the non-empty trimmed
// pieces in their original order.
func splitDosageForms(raw string) []string {
	forms := []string{}
	for _, piece := range strings.Split(raw, ",") {
		if piece = strings.TrimSpace(piece); piece != "" {
			forms = append(forms, piece)
		}
	}
	return forms
}

// categoryCode joins the trimmed group codes of levels 1..level with dots
func categoryCode(r record, level int) string {
	parts := make([]string, level)
	for l := 1; l <= level; l++ {
		parts[l-1] = strings.TrimSpace(r.groupCode(l))
	}
	return strings.Join(parts, ".")
}

// toNewDrug builds the drug insert for a row whose generic name is present
func toNewDrug(r record, genericName string, categoryID *int32) entities.NewDrug {
	return entities.NewDrug{
		CategoryID:      categoryID,
		GenericName:     genericName,
		SynName:         optional(r.get(colSynName)),
		Detail:          optional(r.get(colDetail)),
		DrugType:        optional(r.get(colDrugType)),
		DosageForms:     splitDosageForms(r.get(colDosage)),
		EDLevel:         optional(r.get(colEDLevel)),
		Recommendations: optional(r.get(colRecommendations)),
		Conditions:      optional(r.get(colConditions)),
		Warnings:        optional(r.get(colWarnings)),
		Notes:           optional(r.get(colNotes)),
		Footnote:        optional(r.get(colFootnote)),
		SourceCode:      optional(r.get(colSourceCode)),
	}
}
