package entities

// Drug is one formulary entry. Optional text fields are nil when the source cell was blank
// and serialize as null.
type Drug struct {
	ID              int32    `json:"id" db:"id"`
	CategoryID      *int32   `json:"category_id" db:"category_id"`
	GenericName     string   `json:"generic_name" db:"generic_name"`
	SynName         *string  `json:"syn_name" db:"syn_name"`
	Detail          *string  `json:"detail" db:"detail"`
	DrugType        *string  `json:"drug_type" db:"drug_type"`
	DosageForms     []string `json:"dosage_forms" db:"dosage_forms"`
	EDLevel         *string  `json:"ed_level" db:"ed_level"`
	Recommendations *string  `json:"recommendations" db:"recommendations"`
	Conditions      *string  `json:"conditions" db:"conditions"`
	Warnings        *string  `json:"warnings" db:"warnings"`
	Notes           *string  `json:"notes" db:"notes"`
	Footnote        *string  `json:"footnote" db:"footnote"`
	SourceCode      *string  `json:"source_code" db:"source_code"`
}

// NewDrug holds the values of a drug row before the database assigns it an id.
type NewDrug struct {
	CategoryID      *int32
	GenericName     string
	SynName         *string
	Detail          *string
	DrugType        *string
	DosageForms     []string
	EDLevel         *string
	Recommendations *string
	Conditions      *string
	Warnings        *string
	Notes           *string
	Footnote        *string
	SourceCode      *string
}

// WithID materializes the drug as it reads back from storage.
func (n NewDrug) WithID(id int32) Drug {
	forms := n.DosageForms
	if forms == nil {
		forms = []string{}
	}
	return Drug{
		ID:              id,
		CategoryID:      n.CategoryID,
		GenericName:     n.GenericName,
		SynName:         n.SynName,
		Detail:          n.Detail,
		DrugType:        n.DrugType,
		DosageForms:     forms,
		EDLevel:         n.EDLevel,
		Recommendations: n.Recommendations,
		Conditions:      n.Conditions,
		Warnings:        n.Warnings,
		Notes:           n.Notes,
		Footnote:        n.Footnote,
		SourceCode:      n.SourceCode,
	}
}
