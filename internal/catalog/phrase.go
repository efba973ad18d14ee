package catalog

import "strings"

// TagPhrase is a parsed user-supplied tag filter: comma separated tag
// substrings matched with OR semantics. Both half-width and full-width
// commas act as separators.
type TagPhrase struct {
	raw   string
	terms []string
}

// ParseTagPhrase parses a free-form tag filter into a TagPhrase.
func ParseTagPhrase(s string) TagPhrase {
	raw := strings.TrimSpace(s)
	normalized := strings.ReplaceAll(raw, "，", ",")

	var terms []string
	for _, part := range strings.Split(normalized, ",") {
		if term := strings.TrimSpace(part); term != "" {
			terms = append(terms, term)
		}
	}

	return TagPhrase{raw: raw, terms: terms}
}

// Empty reports whether no tag filter was supplied at all. This is
// distinct from a non-empty phrase that parses to zero terms, which must
// exclude everything.
func (p TagPhrase) Empty() bool {
	return p.raw == ""
}

// Terms returns the trimmed, non-empty sub-phrases.
func (p TagPhrase) Terms() []string {
	return p.terms
}

// LikePatterns returns the terms wrapped for SQL LIKE containment matching.
func (p TagPhrase) LikePatterns() []string {
	patterns := make([]string, len(p.terms))
	for i, term := range p.terms {
		patterns[i] = "%" + term + "%"
	}
	return patterns
}

// String returns the raw trimmed phrase.
func (p TagPhrase) String() string {
	return p.raw
}
