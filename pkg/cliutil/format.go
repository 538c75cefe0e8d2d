package cliutil

import (
	"fmt"
	"strings"
)

// ColorModes lists the allowed values for the --color global flag.
var ColorModes = []string{"always", "ansi", "auto", "never"}

// ValidateFormat checks if the given value is in the allowed list.
func ValidateFormat(value string, allowed []string) error {
	for _, f := range allowed {
		if value == f {
			return nil
		}
	}
	return fmt.Errorf("invalid value: %s (allowed: %s)", value, strings.Join(allowed, ", "))
}

// IsAlwaysColor reports whether value is one of the two --color modes that
// force color output regardless of terminal detection. "ansi" and "always"
// are distinct flag values but both return true here, so the renderer treats
// them the same, as documented in DESIGN.md.
func IsAlwaysColor(value string) bool {
	v := strings.ToLower(value)
	return v == "always" || v == "ansi"
}
