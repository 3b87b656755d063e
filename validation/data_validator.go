// Package validation checks user input before it reaches the database.
package validation

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/giygas/nlem-api/interfaces"
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateSearchQuery accepts any text PostgreSQL can store, Thai included. Length is not
// limited; the result set is. The empty string is valid and matches every drug.
func (v *DataValidatorImpl) ValidateSearchQuery(q string) error {
	if !utf8.ValidString(q) {
		return fmt.Errorf("search query must be valid UTF-8")
	}
	return nil
}

// ValidateDrugID parses a drug id path segment as a 32-bit integer. Zero and negative ids
// are well formed; they simply never match a row.
func (v *DataValidatorImpl) ValidateDrugID(input string) (int32, error) {
	if input == "" {
		return -1, fmt.Errorf("drug id cannot be empty")
	}

	id, err := strconv.ParseInt(input, 10, 32)
	if err != nil {
		return -1, fmt.Errorf("drug id must be a 32-bit integer")
	}

	return int32(id), nil
}
