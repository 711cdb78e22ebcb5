package confval

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders v in the shortest form that parses back to the same
// float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseFloatPrefix returns the number at the start of s, ignoring leading
// whitespace and any trailing text. Input without a numeric prefix yields 0.
func parseFloatPrefix(s string) float64 {
	v, _, _ := scanFloat(s)
	return v
}

// scanFloat reads a decimal float (optionally signed, with fraction and
// exponent, or one of inf/infinity/nan) from the start of s and returns the
// value together with the unread remainder.
func scanFloat(s string) (float64, string, bool) {
	i := skipSpace(s, 0)
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if end, ok := scanSpecial(s, i); ok {
		lower := strings.ToLower(s[i:end])
		if strings.HasPrefix(lower, "nan") {
			return math.NaN(), s[end:], true
		}
		v, err := strconv.ParseFloat(s[start:end], 64)
		if err != nil {
			return 0, s, false
		}
		return v, s[end:], true
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, s, false
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	// ParseFloat reports ErrRange together with ±Inf or 0, which is the
	// saturated value atof would produce as well.
	v, _ := strconv.ParseFloat(s[start:end], 64)
	return v, s[end:], true
}

func scanSpecial(s string, i int) (int, bool) {
	rest := strings.ToLower(s[i:])
	switch {
	case strings.HasPrefix(rest, "infinity"):
		return i + len("infinity"), true
	case strings.HasPrefix(rest, "inf"):
		return i + len("inf"), true
	case strings.HasPrefix(rest, "nan"):
		return i + len("nan"), true
	}
	return 0, false
}

// parseIntPrefix returns the integer at the start of s with atoi semantics:
// leading whitespace is skipped, parsing stops at the first non-digit and text
// without digits yields 0. Out of range values saturate.
func parseIntPrefix(s string) int {
	i := skipSpace(s, 0)
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == digitsStart {
		return 0
	}
	v, _ := strconv.ParseInt(s[start:i], 10, strconv.IntSize)
	return int(v)
}

// parsePoint reads "<x><sep><y>" where sep is any single byte from seps.
// Missing components are left at zero.
func parsePoint(s, seps string) Pointf {
	x, rest, ok := scanFloat(s)
	if !ok {
		return Pointf{}
	}
	if rest == "" || strings.IndexByte(seps, rest[0]) < 0 {
		return Pointf{X: x}
	}
	y, _, _ := scanFloat(rest[1:])
	return Pointf{X: x, Y: y}
}

// splitList splits s on sep like a getline loop: an empty string has no items
// and a trailing separator does not produce a trailing empty item.
func splitList(s string, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
