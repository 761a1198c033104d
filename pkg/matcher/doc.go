// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package matcher implements string matchers used to select broker objects by name.

Supported formats

	= string    the value equals the string
	~ regexp    the value matches the regular expression (unanchored)
	regexp      a line without a format prefix is a regular expression

The regexp matcher degrades to a plain string matcher (contains, prefix, suffix or equality)
when the expression has no meta characters besides the '^' and '$' anchors.
The RegExp syntax is described at https://golang.org/pkg/regexp/syntax/.

Matchers compose with TRUE, FALSE, Not, And and Or. SimpleExpr describes the common
"any include and no exclude" condition.
*/
package matcher
