// SPDX-License-Identifier: GPL-3.0-or-later

package matcher

import (
	"errors"
	"fmt"
	"strings"
)

// Matcher reports whether a broker object name matches.
// *regexp.Regexp satisfies it.
type Matcher interface {
	MatchString(string) bool
}

const (
	FmtString = '='
	FmtRegExp = '~'
)

var errNotShortSyntax = errors.New("not short syntax")

// Must is a helper that wraps a call to a function returning (Matcher, error) and panics if the error is non-nil.
// It is intended for use in variable initializations such as
//
//	var m = matcher.Must(matcher.New(matcher.FmtString, "hello world"))
func Must(m Matcher, err error) Matcher {
	if err != nil {
		panic(err)
	}
	return m
}

// New create a matcher
func New(format rune, expr string) (Matcher, error) {
	switch format {
	case FmtString:
		return NewStringMatcher(expr, true, true)
	case FmtRegExp:
		return NewRegExpMatcher(expr)
	default:
		return nil, fmt.Errorf("unsupported matcher format: '%c'", format)
	}
}

// Parse parses line and returns appropriate matcher based on prefix.
//
// Short Syntax
//
//	<line>      ::= [ <not> ] <format> <space> <expr>
//	<not>       ::= '!'
//	                  negative expression
//	<format>    ::= [ '=', '~' ]
//	                  '=' means string match
//	                  '~' means regexp match
//	<space>     ::= { ' ' | '\t' | '\n' | '\n' | '\r' }
//	<expr>      ::= any string
//
// A line that is not in short syntax is a regular expression.
func Parse(line string) (Matcher, error) {
	m, err := parseShortFormat(line)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, errNotShortSyntax) {
		return nil, err
	}
	return NewRegExpMatcher(line)
}

func parseShortFormat(line string) (Matcher, error) {
	if len(line) < 2 {
		return nil, errNotShortSyntax
	}

	var negative bool
	if line[0] == '!' {
		negative = true
		line = line[1:]
		if len(line) < 2 {
			return nil, errNotShortSyntax
		}
	}

	format := rune(line[0])
	if format != FmtString && format != FmtRegExp {
		return nil, errNotShortSyntax
	}
	if !strings.ContainsRune(" \t\n\r", rune(line[1])) {
		return nil, errNotShortSyntax
	}

	m, err := New(format, strings.TrimLeft(line[2:], " \t\n\r"))
	if err != nil {
		return nil, err
	}
	if negative {
		m = Not(m)
	}
	return m, nil
}
