package seeder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/nlem-api/entities"
)

// ErrMissingColumn is returned when the CSV header lacks a required column
var ErrMissingColumn = errors.New("missing required column")

// Column names as they appear in the NLEM export header
const (
	colGenericName     = "generic name"
	colSynName         = "syn name"
	colDetail          = "detail of generic name"
	colDrugType        = "ประเภทยา"
	colDosage          = "dosage"
	colEDLevel         = "ED"
	colRecommendations = "คำแนะนำ"
	colConditions      = "เงื่อนไข"
	colWarnings        = "คำเตือนและข้อควรระวัง"
	colNotes           = "หมายเหตุ"
	colFootnote        = "Footnote"
	colSourceCode      = "Code ฉ.67"
)

func groupCodeColumn(level int) string { return fmt.Sprintf("grcode%d", level) }
func groupNameColumn(level int) string { return fmt.Sprintf("name%d", level) }

func requiredColumns() []string {
	cols := make([]string, 0, 2*entities.MaxCategoryLevel+12)
	for level := 1; level <= entities.MaxCategoryLevel; level++ {
		cols = append(cols, groupCodeColumn(level), groupNameColumn(level))
	}
	return append(cols,
		colGenericName, colSynName, colDetail, colDrugType, colDosage, colEDLevel,
		colRecommendations, colConditions, colWarnings, colNotes, colFootnote, colSourceCode,
	)
}

// columnIndex maps header names to field positions
type columnIndex map[string]int

// newColumnIndex checks that every required column is present. Extra columns are ignored.
func newColumnIndex(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns() {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return idx, nil
}

// record is one CSV row addressed by column name
type record struct {
	fields []string
	cols   columnIndex
}

func (r record) get(col string) string {
	return r.fields[r.cols[col]]
}

func (r record) groupCode(level int) string { return r.get(groupCodeColumn(level)) }
func (r record) groupName(level int) string { return r.get(groupNameColumn(level)) }
