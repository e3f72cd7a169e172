package text

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

func padding(s string, width int) int {
	pad := width - runewidth.StringWidth(s)
	if pad < 0 {
		return 0
	}
	return pad
}

// Center pads s on both sides to width display cells.  When the
// padding is odd, the extra space goes on the right.
func Center(s string, width int) string {
	pad := padding(s, width)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

// LeftJustify pads s on the right to width display cells.
func LeftJustify(s string, width int) string {
	return s + strings.Repeat(" ", padding(s, width))
}

// RightJustify pads s on the left to width display cells.
func RightJustify(s string, width int) string {
	return strings.Repeat(" ", padding(s, width)) + s
}
