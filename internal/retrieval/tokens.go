// Package retrieval provides the fuzzy entity-resolution and intent
// classification core shared by all lookup engines.
package retrieval

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize splits text into lower-cased word tokens, treating any run of
// punctuation or whitespace as a delimiter. "unsecure_corridor_no6" and
// "unsecure corridor no6" tokenize identically.
func Tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// TokenSet returns the distinct tokens of text.
func TokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokenize(text) {
		set[tok] = true
	}
	return set
}
