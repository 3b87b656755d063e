package entities

// DrugCategory is one node of the formulary category tree (at most four levels deep).
// Code is the dotted path of the per-level group codes, e.g. "1.2.3".
type DrugCategory struct {
	ID       int32  `json:"id" db:"id"`
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	Level    int32  `json:"level" db:"level"`
	ParentID *int32 `json:"parent_id" db:"parent_id"`
}

// MaxCategoryLevel is the deepest level a category can have.
const MaxCategoryLevel = 4
