package retrieval

import (
	"sort"
	"strings"
)

// Candidate is one entity the matcher can resolve: a normalized lookup
// key plus the display name shown back to the user.
type Candidate struct {
	Key     string
	Display string
}

// MatchKind classifies a match result.
type MatchKind int

const (
	// MatchNone means no candidate matched at all.
	MatchNone MatchKind = iota
	// MatchOne means exactly one candidate won.
	MatchOne
	// MatchAmbiguous means several candidates tied; Candidates holds the
	// ranked list for the caller to present, never a silent guess.
	MatchAmbiguous
)

// Match is the result of resolving free text against a candidate set.
type Match struct {
	Kind       MatchKind
	Key        string
	Candidates []Candidate
}

// DefaultCandidateLimit caps the ambiguous-candidate list.
const DefaultCandidateLimit = 5

// Matcher resolves free text to the best-matching candidate in two
// phases: contiguous substring first, token overlap second.
type Matcher struct {
	limit int
}

// NewMatcher creates a matcher with the default candidate limit.
func NewMatcher() *Matcher {
	return &Matcher{limit: DefaultCandidateLimit}
}

// NewMatcherWithLimit creates a matcher with a custom ambiguity cap.
func NewMatcherWithLimit(limit int) *Matcher {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	return &Matcher{limit: limit}
}

// FindBest resolves query against candidates.
//
// Phase A picks the candidate whose key occurs as a contiguous substring
// of the lower-cased query, preferring the longest such key (first wins
// on equal length). A substring hit is decisive.
//
// Phase B tokenizes query and keys and ranks candidates by
// (matched tokens, total key tokens) descending. The top candidate wins
// only when its matched count strictly exceeds the runner-up's;
// otherwise the ranked list is returned for disambiguation.
func (m *Matcher) FindBest(query string, candidates []Candidate) Match {
	q := strings.ToLower(query)

	// Phase A: longest contiguous substring.
	bestIdx := -1
	bestLen := 0
	for i, cand := range candidates {
		if cand.Key == "" {
			continue
		}
		if strings.Contains(q, cand.Key) && len(cand.Key) > bestLen {
			bestIdx = i
			bestLen = len(cand.Key)
		}
	}
	if bestIdx >= 0 {
		return Match{Kind: MatchOne, Key: candidates[bestIdx].Key}
	}

	// Phase B: token overlap.
	queryTokens := TokenSet(query)

	type scored struct {
		cand    Candidate
		matched int
		total   int
		order   int
	}
	var ranked []scored
	for i, cand := range candidates {
		keyTokens := Tokenize(cand.Key)
		matched := 0
		seen := make(map[string]bool, len(keyTokens))
		for _, tok := range keyTokens {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			if queryTokens[tok] {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		ranked = append(ranked, scored{cand: cand, matched: matched, total: len(keyTokens), order: i})
	}

	if len(ranked) == 0 {
		return Match{Kind: MatchNone}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].matched != ranked[j].matched {
			return ranked[i].matched > ranked[j].matched
		}
		if ranked[i].total != ranked[j].total {
			return ranked[i].total > ranked[j].total
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) == 1 || ranked[0].matched > ranked[1].matched {
		return Match{Kind: MatchOne, Key: ranked[0].cand.Key}
	}

	limit := m.limit
	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]Candidate, 0, limit)
	for _, s := range ranked[:limit] {
		out = append(out, s.cand)
	}
	return Match{Kind: MatchAmbiguous, Candidates: out}
}
