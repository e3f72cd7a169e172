package text

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinRoman is the smallest number RomanNumeral will convert.
	MinRoman = 1

	// MaxRoman is the largest number RomanNumeral will convert.
	//
	// There's no numeral for 5000 without overlines, so we stop
	// at MMMMCMXCIX.
	MaxRoman = 4999
)

var romanTable = []struct {
	value   int
	numeral string
}{
	{1000, "M"},
	{900, "CM"},
	{500, "D"},
	{400, "CD"},
	{100, "C"},
	{90, "XC"},
	{50, "L"},
	{40, "XL"},
	{10, "X"},
	{9, "IX"},
	{5, "V"},
	{4, "IV"},
	{1, "I"},
}

// ErrEmptyNumeral is returned by ParseRomanNumeral for an empty
// string.
var ErrEmptyNumeral = errors.New("empty roman numeral")

// RomanNumeral converts n into upper-case roman numerals.
//
// Returns a *RangeError if n is not in [MinRoman,MaxRoman].
func RomanNumeral(n int) (string, error) {
	if n < MinRoman || MaxRoman < n {
		return "", &RangeError{N: n, Min: MinRoman, Max: MaxRoman}
	}
	var b strings.Builder
	for _, r := range romanTable {
		for r.value <= n {
			b.WriteString(r.numeral)
			n -= r.value
		}
	}
	return b.String(), nil
}

// ParseRomanNumeral is the inverse of RomanNumeral.  Case is ignored.
//
// Only canonical numerals are accepted, so "IIII" and "IM" are errors
// even though some people would read them.
func ParseRomanNumeral(s string) (int, error) {
	if s == "" {
		return 0, ErrEmptyNumeral
	}
	u := strings.ToUpper(s)

	n := 0
	rest := u
	for _, r := range romanTable {
		for strings.HasPrefix(rest, r.numeral) {
			n += r.value
			rest = rest[len(r.numeral):]
		}
	}
	if rest != "" || n < MinRoman || MaxRoman < n {
		return 0, fmt.Errorf("bad roman numeral %q", s)
	}

	// The greedy scan above accepts things like "IIII" and "VV".
	// Round-trip to make sure we saw the canonical form.
	canonical, err := RomanNumeral(n)
	if err != nil {
		return 0, err
	}
	if canonical != u {
		return 0, fmt.Errorf("bad roman numeral %q (did you mean %s?)", s, canonical)
	}
	return n, nil
}
