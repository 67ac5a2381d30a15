package tabular

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9]+`)
	parentheticRe = regexp.MustCompile(`\s*\([^)]*\)`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// FoldHeader trims whitespace and non-breaking spaces and lower-cases a
// header for case-insensitive column lookup.
func FoldHeader(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeHeader folds a source header into the form used for alias
// matching: lower-cased with every non-alphanumeric run collapsed to a
// single space. Source sheets disagree on punctuation and spacing; this
// makes "Description per C-Cure" and "description_per_ccure" compare equal.
func NormalizeHeader(s string) string {
	s = FoldHeader(s)
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanName derives the lookup key for a person's display name: strips
// parenthetical annotations, collapses whitespace, lower-cases. Two
// records are assumed not to share a clean name.
func CleanName(name string) string {
	name = parentheticRe.ReplaceAllString(name, "")
	name = spacesRe.ReplaceAllString(name, " ")
	return strings.ToLower(strings.TrimSpace(name))
}

// CleanCell removes non-breaking spaces and trims a cell value.
func CleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
}
