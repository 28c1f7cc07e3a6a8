package common

import (
	"fmt"
	"slices"

	"atscore/internal/errors"
	"atscore/internal/formatters"
)

// ValidateOutputFormat accepts format when a formatter exists for it and, if
// allowed is non-empty, when it is also listed there.
func ValidateOutputFormat(format string, allowed []string) error {
	usable := UsableFormats(allowed)
	if slices.Contains(usable, format) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported output format %q, use one of %v", format, usable), nil).
		WithContext("format", format)
}

// UsableFormats lists the registered formats, narrowed to allowed when set.
func UsableFormats(allowed []string) []string {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if len(allowed) == 0 {
		return registered
	}
	usable := make([]string, 0, len(allowed))
	for _, f := range allowed {
		if slices.Contains(registered, f) && !slices.Contains(usable, f) {
			usable = append(usable, f)
		}
	}
	return usable
}
