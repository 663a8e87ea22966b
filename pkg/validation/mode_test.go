package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"", ModeCreate, false},
		{"create", ModeCreate, false},
		{"update", ModeUpdate, false},
		{"Update", "", true},
		{"merge", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownMode)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestIDPolicies(t *testing.T) {
	id := int64(10)

	create := nameAuthority{}
	assert.False(t, create.trusts(&id))
	assert.True(t, create.resolvesProjectPaths())
	assert.Equal(t, int64(-10), create.artifactTypeID(10))

	update := idAuthority{}
	assert.True(t, update.trusts(&id))
	assert.False(t, update.trusts(nil))
	assert.False(t, update.resolvesProjectPaths())
	assert.Equal(t, int64(10), update.artifactTypeID(10))
}
