// SPDX-License-Identifier: GPL-3.0-or-later

// Package queuesel picks the queues a check evaluates out of a broker snapshot.
package queuesel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/pkg/matcher"
	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/rabbitmq"
)

// Criteria describes which queues to select.
//
// Without Regex, Names is an allow-list and Exclude a deny-list; Names wins when both are set.
// With Regex, the first element of each list is an unanchored regular expression
// and a queue must match the include pattern and not match the exclude pattern.
type Criteria struct {
	Names   []string
	Exclude []string
	Regex   bool
}

// NewCriteria builds criteria from comma separated command line values.
// Values are split on commas in regex mode too, so a pattern cannot contain a comma.
func NewCriteria(queue, exclude string, regex bool) Criteria {
	return Criteria{
		Names:   splitList(queue),
		Exclude: splitList(exclude),
		Regex:   regex,
	}
}

// splitList keeps surrounding whitespace: queue names may contain spaces.
func splitList(s string) []string {
	var list []string
	for _, v := range strings.Split(s, ",") {
		if v != "" {
			list = append(list, v)
		}
	}
	return list
}

type Selector struct {
	criteria Criteria
	names    map[string]bool
	exclude  map[string]bool
	match    matcher.Matcher
}

func New(c Criteria) (*Selector, error) {
	s := &Selector{criteria: c}

	if c.Regex {
		m, err := regexMatcher(c)
		if err != nil {
			return nil, err
		}
		s.match = m
		return s, nil
	}

	s.names = toSet(c.Names)
	s.exclude = toSet(c.Exclude)
	return s, nil
}

func regexMatcher(c Criteria) (matcher.Matcher, error) {
	var expr matcher.SimpleExpr
	if len(c.Names) > 0 && c.Names[0] != "" {
		expr.Includes = []string{"~ " + c.Names[0]}
	}
	if len(c.Exclude) > 0 && c.Exclude[0] != "" {
		expr.Excludes = []string{"~ " + c.Exclude[0]}
	}

	m, err := expr.Parse()
	if errors.Is(err, matcher.ErrEmptyExpr) {
		return matcher.TRUE(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue selection: %v", err)
	}
	return m, nil
}

// Select returns the selected queues in snapshot order and the requested names
// that were not present, in request order. Missing is always empty in regex mode.
func (s *Selector) Select(queues []rabbitmq.Queue) (selected []rabbitmq.Queue, missing []string) {
	seen := make(map[string]bool)

	for _, q := range queues {
		if !s.selects(q.Name) {
			continue
		}
		seen[q.Name] = true
		selected = append(selected, q)
	}

	if s.criteria.Regex {
		return selected, nil
	}

	dups := make(map[string]bool)
	for _, name := range s.criteria.Names {
		if seen[name] || dups[name] {
			continue
		}
		dups[name] = true
		missing = append(missing, name)
	}

	return selected, missing
}

func (s *Selector) selects(name string) bool {
	switch {
	case s.criteria.Regex:
		return s.match.MatchString(name)
	case len(s.names) > 0:
		return s.names[name]
	case len(s.exclude) > 0:
		return !s.exclude[name]
	default:
		return true
	}
}

func toSet(list []string) map[string]bool {
	if len(list) == 0 {
		return nil
	}
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}
