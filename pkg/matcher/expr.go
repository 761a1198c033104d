// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import (
	"errors"
	"fmt"
)

// SimpleExpr matches a name when any include matches and no exclude does.
// Without includes every name not excluded matches.
type SimpleExpr struct {
	Includes []string `yaml:"includes,omitempty" json:"includes"`
	Excludes []string `yaml:"excludes,omitempty" json:"excludes"`
}

var ErrEmptyExpr = errors.New("empty expression")

// Empty returns true if both Includes and Excludes are empty.
func (s *SimpleExpr) Empty() bool {
	return len(s.Includes) == 0 && len(s.Excludes) == 0
}

func (s *SimpleExpr) Parse() (Matcher, error) {
	if s.Empty() {
		return nil, ErrEmptyExpr
	}

	includes, err := parseAll(s.Includes)
	if err != nil {
		return nil, err
	}
	excludes, err := parseAll(s.Excludes)
	if err != nil {
		return nil, err
	}

	include := TRUE()
	if len(includes) > 0 {
		include = Or(includes...)
	}

	return And(include, Not(Or(excludes...))), nil
}

func parseAll(lines []string) ([]Matcher, error) {
	ms := make([]Matcher, 0, len(lines))
	for _, line := range lines {
		m, err := Parse(line)
		if err != nil {
			return nil, fmt.Errorf("parse matcher %q error: %v", line, err)
		}
		ms = append(ms, m)
	}
	return ms, nil
}
