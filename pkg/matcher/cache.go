// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import "sync"

// cachedMatcher memoizes results. Broker listings repeat a handful of vhost
// names across thousands of queues.
type cachedMatcher struct {
	Matcher
	results sync.Map
}

// WithCache adds cache to the matcher. Constant matchers are returned as is.
func WithCache(m Matcher) Matcher {
	if _, ok := isConst(m); ok {
		return m
	}
	return &cachedMatcher{Matcher: m}
}

func (m *cachedMatcher) MatchString(s string) bool {
	if v, ok := m.results.Load(s); ok {
		return v.(bool)
	}
	v := m.Matcher.MatchString(s)
	m.results.Store(s, v)
	return v
}
