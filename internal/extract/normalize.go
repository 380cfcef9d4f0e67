package extract

import "strings"

// Normalize collapses all runs of whitespace (newlines included) to single
// spaces and trims the ends. Idempotent.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
