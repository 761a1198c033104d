// SPDX-License-Identifier: GPL-3.0-or-later

package queuecheck

import (
	"math"
	"strconv"
	"strings"
)

// RoundHalfUp rounds x to the given number of decimal digits, halves away from zero.
// It corrects for the representation error of x*10^digits so that 0.285 rounds to 0.29.
func RoundHalfUp(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || digits < 0 {
		return x
	}

	s := math.Pow(10, float64(digits))
	f := math.Round(x * s)

	if x > 0 {
		if (f+0.5)/s <= x {
			f++
		}
	} else if x < 0 {
		if (f-0.5)/s >= x {
			f--
		}
	}

	return f / s
}

// FormatFloat renders v with the shortest representation that round-trips,
// always keeping a fractional part: 23 -> "23.0", 1e16 -> "1.0e+16".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0.0"
	}

	if abs := math.Abs(v); abs >= 1e16 || abs < 1e-4 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		if !strings.Contains(mant, ".") {
			mant += ".0"
		}
		return mant + "e" + exp
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
