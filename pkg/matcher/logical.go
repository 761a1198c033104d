// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

type constMatcher bool

func (m constMatcher) MatchString(string) bool { return bool(m) }

type (
	allOf []Matcher
	anyOf []Matcher
	none  struct{ m Matcher }
)

func (ms allOf) MatchString(s string) bool {
	for _, m := range ms {
		if !m.MatchString(s) {
			return false
		}
	}
	return true
}

func (ms anyOf) MatchString(s string) bool {
	for _, m := range ms {
		if m.MatchString(s) {
			return true
		}
	}
	return false
}

func (n none) MatchString(s string) bool { return !n.m.MatchString(s) }

// TRUE matches every name.
func TRUE() Matcher { return constMatcher(true) }

// FALSE matches nothing.
func FALSE() Matcher { return constMatcher(false) }

func isConst(m Matcher) (bool, bool) {
	c, ok := m.(constMatcher)
	return bool(c), ok
}

// Not negates m.
func Not(m Matcher) Matcher {
	if v, ok := isConst(m); ok {
		return constMatcher(!v)
	}
	if n, ok := m.(none); ok {
		return n.m
	}
	return none{m}
}

// And matches names every operand matches. TRUE operands are dropped and a FALSE
// operand makes the whole expression FALSE.
func And(ms ...Matcher) Matcher {
	var res allOf
	for _, m := range ms {
		if v, ok := isConst(m); ok {
			if !v {
				return FALSE()
			}
			continue
		}
		res = append(res, m)
	}
	return collapse(res, TRUE())
}

// Or matches names any operand matches. FALSE operands are dropped and a TRUE
// operand makes the whole expression TRUE.
func Or(ms ...Matcher) Matcher {
	var res anyOf
	for _, m := range ms {
		if v, ok := isConst(m); ok {
			if v {
				return TRUE()
			}
			continue
		}
		res = append(res, m)
	}
	return collapse(res, FALSE())
}

func collapse[T interface {
	~[]Matcher
	Matcher
}](ms T, empty Matcher) Matcher {
	switch len(ms) {
	case 0:
		return empty
	case 1:
		return ms[0]
	default:
		return ms
	}
}
