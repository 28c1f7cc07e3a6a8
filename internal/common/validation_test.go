package common

import (
	"testing"

	"atscore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		allowed []string
		wantErr bool
	}{
		{"json allowed", "json", []string{"json", "text", "markdown"}, false},
		{"markdown allowed", "markdown", []string{"json", "text", "markdown"}, false},
		{"not in allowed list", "markdown", []string{"json"}, true},
		{"no formatter", "xml", []string{"json", "xml"}, true},
		{"no restrictions", "text", nil, false},
		{"no restrictions unknown", "yaml", nil, true},
		{"empty format", "", []string{"json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.allowed)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			assert.Equal(t, errors.ErrCodeUnsupportedFormat, errors.CodeOf(err))
		})
	}
}

func TestUsableFormats(t *testing.T) {
	assert.ElementsMatch(t, []string{"json", "markdown", "text"}, UsableFormats(nil))
	assert.Equal(t, []string{"text", "json"}, UsableFormats([]string{"text", "xml", "json", "text"}))
	assert.Empty(t, UsableFormats([]string{"xml"}))
}
