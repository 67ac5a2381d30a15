package retrieval

import (
	"regexp"
	"strings"
)

// Intent is the inferred target domain for a free-text query.
type Intent string

const (
	IntentStaff   Intent = "staff"
	IntentCamera  Intent = "camera"
	IntentDoor    Intent = "door"
	IntentUnknown Intent = "unknown"
)

var (
	// Door codes look like 032E or 2052A: 2-4 digits followed by a letter.
	doorCodeRe = regexp.MustCompile(`\b\d{2,4}[A-Za-z]\b`)
	// A bare number with nothing else around it, e.g. "204".
	pureNumberRe = regexp.MustCompile(`^\D*(\d{2,6})\D*$`)
	// "for Jane Doe" style mentions.
	forNameRe = regexp.MustCompile(`\bfor\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+`)
	// Capitalized word tokens; two or more suggest a person's name.
	capWordRe = regexp.MustCompile(`\b[A-Z][a-z]+`)
)

// IntentClassifier classifies query text into a domain via keyword sets
// and pattern signatures. It is a pure function of the query; the check
// order door, camera, staff is part of the contract.
type IntentClassifier struct {
	staffKeywords  []string
	cameraKeywords []string
	doorKeywords   []string
}

// NewIntentClassifier creates the classifier with the operational
// keyword sets.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		staffKeywords: []string{
			"psa", "contact", "pin", "ldap", "l-dap", "first aid", "safepass",
			"badge", "earpiece", "emergency", "licence", "license", "expiry", "expiration",
		},
		cameraKeywords: []string{
			"camera", "cctv", "flir", "ppk1", "ppk 1", "ppk2", "ppk 2",
		},
		doorKeywords: []string{
			"door", "reader", "badge reader", "c-cure", "ccure", "ccure 900", "access",
		},
	}
}

// Classify infers the intent for a query, checking door, then camera,
// then staff. Returns IntentUnknown when no heuristic fires.
func (c *IntentClassifier) Classify(query string) Intent {
	q := strings.TrimSpace(query)

	if c.LooksLikeDoor(q) {
		return IntentDoor
	}
	if c.LooksLikeCamera(q) {
		return IntentCamera
	}
	if c.LooksLikeStaff(q) {
		return IntentStaff
	}
	return IntentUnknown
}

// LooksLikeDoor reports whether the query carries a door keyword or a
// door-code-shaped token.
func (c *IntentClassifier) LooksLikeDoor(query string) bool {
	t := strings.ToLower(query)
	for _, kw := range c.doorKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return doorCodeRe.MatchString(query)
}

// LooksLikeCamera reports whether the query carries a camera keyword or
// is a short bare number (at most 4 digits), which operators type to
// look up a camera.
func (c *IntentClassifier) LooksLikeCamera(query string) bool {
	t := strings.ToLower(query)
	for _, kw := range c.cameraKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	if m := pureNumberRe.FindStringSubmatch(query); m != nil && len(m[1]) <= 4 {
		return true
	}
	return false
}

// LooksLikeStaff reports whether the query carries a staff keyword, a
// "for <Name Surname>" mention, or at least two capitalized word tokens.
func (c *IntentClassifier) LooksLikeStaff(query string) bool {
	t := strings.ToLower(query)
	for _, kw := range c.staffKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	if forNameRe.MatchString(query) {
		return true
	}
	return len(capWordRe.FindAllString(query, -1)) >= 2
}
