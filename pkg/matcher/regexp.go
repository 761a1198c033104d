// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import (
	"regexp"
	"regexp/syntax"
	"strings"
)

// NewRegExpMatcher creates an unanchored regexp matcher. An expression that is a
// plain literal, optionally anchored with '^' and '$', is served by a string matcher.
func NewRegExpMatcher(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	body, start := strings.CutPrefix(expr, "^")
	body, end := strings.CutSuffix(body, "$")

	lit, ok := literal(body)
	switch {
	case !ok:
		return re, nil
	case lit == "" && !(start && end):
		return TRUE(), nil
	default:
		return NewStringMatcher(lit, start, end)
	}
}

// literal reports the text body matches when it matches nothing but that text.
func literal(body string) (string, bool) {
	re, err := syntax.Parse(body, syntax.Perl)
	if err != nil {
		return "", false
	}
	switch {
	case re.Op == syntax.OpEmptyMatch:
		return "", true
	case re.Op == syntax.OpLiteral && re.Flags&syntax.FoldCase == 0:
		return string(re.Rune), true
	default:
		return "", false
	}
}
