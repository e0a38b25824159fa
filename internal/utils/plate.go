package utils

import "strings"

// NormalizePlate canonicalizes a plate for comparison: trimmed,
// uppercased, inner whitespace collapsed. Separators like dashes are
// kept so that administrative entries and detections written the same
// way compare equal.
func NormalizePlate(plate string) string {
	fields := strings.Fields(strings.ToUpper(plate))
	return strings.Join(fields, " ")
}
