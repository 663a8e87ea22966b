package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInvariantDecimal(t *testing.T) {
	tests := []struct {
		input  string
		valid  bool
		value  string
		places int
	}{
		{"12", true, "12", 0},
		{"12.345", true, "12.345", 3},
		{"12.50", true, "12.5", 2},
		{"-3.5", true, "-3.5", 1},
		{"1,234,567.25", true, "1234567.25", 2},
		{"12.", true, "12", 0},
		{" 42 ", true, "42", 0},
		{"1,23", false, "", 0},
		{"12,5", false, "", 0},
		{"1.2.3", false, "", 0},
		{"1e5", false, "", 0},
		{".", false, "", 0},
		{"", false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, ok := parseInvariantDecimal(tt.input)

			assert.Equal(t, tt.valid, ok)

			if tt.valid {
				assert.Equal(t, tt.value, value.String())
				assert.Equal(t, tt.places, decimalPlaces(value))
			}
		})
	}
}

func TestErrorCodeNames(t *testing.T) {
	assert.Equal(t, "ProjectByIdNotFound", ProjectByIDNotFound.String())
	assert.Equal(t, "ErrorCode(999)", ErrorCode(999).String())

	var code ErrorCode
	assert.NoError(t, code.UnmarshalText([]byte("DateOutOfRange")))
	assert.Equal(t, DateOutOfRange, code)
	assert.Error(t, code.UnmarshalText([]byte("Nope")))

	for code := WorkflowNameNotUnique; code <= UserNotFoundByName; code++ {
		assert.NotEmpty(t, errorCodeNames[code], "missing name for %d", int(code))
		assert.NotEmpty(t, code.Description(), "missing description for %s", code)
	}
}
