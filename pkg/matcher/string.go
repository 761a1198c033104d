// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import "strings"

// stringMatcher matches a literal. Anchors turn a substring match into a prefix,
// suffix or full match.
type stringMatcher struct {
	s     string
	start bool
	end   bool
}

// NewStringMatcher creates a string matcher. startWith and endWith anchor the match.
func NewStringMatcher(s string, startWith, endWith bool) (Matcher, error) {
	return stringMatcher{s: s, start: startWith, end: endWith}, nil
}

func (m stringMatcher) MatchString(name string) bool {
	switch {
	case m.start && m.end:
		return name == m.s
	case m.start:
		return strings.HasPrefix(name, m.s)
	case m.end:
		return strings.HasSuffix(name, m.s)
	default:
		return strings.Contains(name, m.s)
	}
}
