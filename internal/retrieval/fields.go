package retrieval

import (
	"strings"

	"github.com/Barry1701/AutoAgent/internal/tabular"
)

// FieldAlias maps a natural-language phrase to one canonical field.
type FieldAlias struct {
	Phrase string
	Field  string
}

// GroupAlias maps a phrase to several canonical fields at once, in a
// fixed presentation order.
type GroupAlias struct {
	Phrase string
	Fields []string
}

// Vocabulary is the static alias configuration for one domain. Singles
// and Groups are ordered slices because resolution order follows the
// vocabulary, not the query.
type Vocabulary struct {
	Singles   []FieldAlias
	Groups    []GroupAlias
	Fallbacks []string // generic header substrings, the last resort
}

// ResolveFields infers which table columns answer a field request.
// Priority, first matching rule wins:
//
//  1. an explicit expiry/expiration alias returns only its field;
//  2. a group alias returns the whole group in group order;
//  3. otherwise every single alias contained in the query contributes its
//     field, in vocabulary order;
//  4. failing all that, the first column whose normalized header contains
//     a fallback substring is selected, whether or not the query mentions
//     it.
//
// The result only ever names columns actually present in the table;
// absent fields are dropped silently. An empty result means "no field
// determined" and is the caller's cue to prompt for clarification.
func ResolveFields(query string, vocab Vocabulary, table tabular.Table) []string {
	q := strings.ToLower(query)

	// Explicit expiry request outranks everything, including groups.
	for _, alias := range vocab.Singles {
		if !isExpiryPhrase(alias.Phrase) {
			continue
		}
		if strings.Contains(q, alias.Phrase) {
			return columnsPresent(table, []string{alias.Field})
		}
	}

	for _, group := range vocab.Groups {
		if strings.Contains(q, group.Phrase) {
			return columnsPresent(table, group.Fields)
		}
	}

	var hits []string
	for _, alias := range vocab.Singles {
		if strings.Contains(q, alias.Phrase) {
			hits = append(hits, alias.Field)
		}
	}
	if len(hits) > 0 {
		return columnsPresent(table, hits)
	}

	for _, sub := range vocab.Fallbacks {
		for _, c := range table.Columns {
			if strings.Contains(tabular.FoldHeader(c), sub) {
				return []string{c}
			}
		}
	}

	return nil
}

// isExpiryPhrase marks the alias subset handled by the explicit-expiry rule.
func isExpiryPhrase(phrase string) bool {
	return strings.Contains(phrase, "expiry") || strings.Contains(phrase, "expiration")
}

// columnsPresent keeps only the fields that exist in the table (matched
// case-insensitively), resolved to their real headers, first occurrence
// wins.
func columnsPresent(table tabular.Table, fields []string) []string {
	var out []string
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		real := table.ResolveColumn(f)
		if real == "" || seen[real] {
			continue
		}
		seen[real] = true
		out = append(out, real)
	}
	return out
}
