// Package keywords turns user-supplied keyword sets into canonical cache keys.
//
// A keyword set may arrive as a list of terms or as a single comma-separated
// string. Both shapes go through the same pipeline:
//
//	split on "," → trim → drop empty → lowercase → dedupe → sort → join(",")
//
// so that ["Nvidia", "nvidia", " AI "] and "ai, nvidia" both produce the key
// "ai,nvidia". The empty key "" is valid and names the "no keywords" bucket.
package keywords

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separator joins tokens in a normalized key and splits raw terms.
const Separator = ","

// Split returns the canonical token list for terms: every term is split on
// Separator, trimmed, lowercased, deduplicated and sorted ascending. The
// result is never nil.
func Split(terms ...string) []string {
	// cases.Caser is stateful; one per call keeps Split safe for concurrent use.
	lower := cases.Lower(language.Und)

	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		for _, raw := range strings.Split(term, Separator) {
			tok := strings.TrimSpace(raw)
			if tok == "" {
				continue
			}
			tok = lower.String(tok)
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

// Normalize returns the canonical cache key for terms. Pass a
// comma-separated string as a single argument or a list as many arguments.
// List elements are split on commas too, so ["nvidia,ai"] and
// ["nvidia", "ai"] name the same entry; this departs from plain list
// semantics on purpose.
func Normalize(terms ...string) string {
	return strings.Join(Split(terms...), Separator)
}

// Query renders terms the way the remote search API expects them: the
// original terms trimmed and joined with commas, case and order preserved.
func Query(terms ...string) string {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		for _, raw := range strings.Split(term, Separator) {
			if tok := strings.TrimSpace(raw); tok != "" {
				parts = append(parts, tok)
			}
		}
	}
	return strings.Join(parts, Separator)
}
