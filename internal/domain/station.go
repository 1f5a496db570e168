package domain

import (
	"regexp"
	"strings"
)

var parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)

// NormalizeStationName maps a raw station label such as "Siam (Sukhumvit)"
// to the rider-facing display name "Siam".
func NormalizeStationName(raw string) string {
	return strings.TrimSpace(parentheticalRe.ReplaceAllString(raw, ""))
}
