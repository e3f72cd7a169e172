package text

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRomanNumeralBoundaries(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "I"},
		{4, "IV"},
		{9, "IX"},
		{14, "XIV"},
		{40, "XL"},
		{90, "XC"},
		{400, "CD"},
		{1990, "MCMXC"},
		{2024, "MMXXIV"},
		{3999, "MMMCMXCIX"},
		{4000, "MMMM"},
		{4999, "MMMMCMXCIX"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := RomanNumeral(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRomanNumeralRange(t *testing.T) {
	for _, n := range []int{-1, 0, 5000, 100000} {
		_, err := RomanNumeral(n)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Fatalf("%d: wanted a RangeError, got %v", n, err)
		}
		assert.Equal(t, n, re.N)
	}
}

func TestRomanRoundTrip(t *testing.T) {
	for n := MinRoman; n <= MaxRoman; n++ {
		s, err := RomanNumeral(n)
		if err != nil {
			t.Fatal(err)
		}
		m, err := ParseRomanNumeral(s)
		if err != nil {
			t.Fatalf("%d (%s): %v", n, s, err)
		}
		if m != n {
			t.Fatalf("%s parsed as %d, not %d", s, m, n)
		}
	}
}

func TestParseRomanNumeral(t *testing.T) {
	n, err := ParseRomanNumeral("mcmxc")
	require.NoError(t, err)
	assert.Equal(t, 1990, n)

	for _, bad := range []string{"IIII", "VV", "IM", "ABC", "MMMMM", "XIVX"} {
		_, err := ParseRomanNumeral(bad)
		assert.Error(t, err, bad)
	}

	_, err = ParseRomanNumeral("")
	assert.ErrorIs(t, err, ErrEmptyNumeral)
}
