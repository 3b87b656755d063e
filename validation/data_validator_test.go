package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSearchQuery(t *testing.T) {
	validator := NewDataValidator()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty query matches all", "", ""},
		{"latin name", "Paracetamol", ""},
		{"thai name", "ยาแก้ไอ", ""},
		{"punctuation is plain text", "50% dextrose; 5_ml", ""},
		{"long query", strings.Repeat("a", 500), ""},
		{"tab", "a\tb", ""},
		{"newline", "para\ncetamol", ""},
		{"invalid utf-8", "para\xff", "valid UTF-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateSearchQuery(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDrugID(t *testing.T) {
	validator := NewDataValidator()

	tests := []struct {
		input    string
		expected int32
		wantErr  bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"007", 7, false},
		{"2147483647", 2147483647, false},
		{"0", 0, false},
		{"-5", -5, false},
		{"-2147483648", -2147483648, false},
		{"+1", 1, false},
		{"2147483648", -1, true},
		{"99999999999999999999", -1, true},
		{" 1", -1, true},
		{"1.5", -1, true},
		{"abc", -1, true},
		{"", -1, true},
		{"๑", -1, true}, // Thai digit one
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, err := validator.ValidateDrugID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, id)
		})
	}
}
