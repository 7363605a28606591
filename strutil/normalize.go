package strutil

import "strings"

// NormalizeLower trims surrounding whitespace and converts to lower case.
// Use for colormap names, scale modes, and other tokens where case is not
// significant.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeUpper trims surrounding whitespace and converts to upper case.
// Use for horizon labels (Z1.0, Z2.5) where convention is upper case.
func NormalizeUpper(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
