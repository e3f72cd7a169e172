package cmdline

import (
	"fmt"
	"io"
	"strings"

	"github.com/bmc/javautil-sub002/text"
)

// Option describes an option for usage messages and for recognizing
// options during parsing.
//
// Either Short or Long may be empty (zero), but not both.  Arg is the
// name of the option's value (e.g. "FILE"), or "" if the option
// doesn't take one.
type Option struct {
	Short       rune
	Long        string
	Arg         string
	Explanation string
}

func (o *Option) String() string {
	var s string
	switch {
	case o.Short != 0 && o.Long != "":
		s = "-" + string(o.Short) + ", --" + o.Long
	case o.Short != 0:
		s = "-" + string(o.Short)
	default:
		s = "    --" + o.Long
	}
	if o.Arg != "" {
		s += " " + o.Arg
	}
	return s
}

// Parameter describes a positional parameter.
type Parameter struct {
	Name        string
	Explanation string
	Required    bool
}

// UsageInfo holds everything needed to describe a command's
// invocation.
type UsageInfo struct {
	// Prologue is printed after the "Usage:" line.
	Prologue string

	// Epilogue is printed last.
	Epilogue string

	Options    []*Option
	Parameters []*Parameter
}

// NewUsageInfo makes an empty UsageInfo.
func NewUsageInfo() *UsageInfo {
	return &UsageInfo{}
}

// AddOption declares an option.  Use 0 for no short name and "" for
// no long name.  Returns u for chaining.
func (u *UsageInfo) AddOption(short rune, long, arg, explanation string) *UsageInfo {
	u.Options = append(u.Options, &Option{
		Short:       short,
		Long:        long,
		Arg:         arg,
		Explanation: explanation,
	})
	return u
}

// AddParameter declares a positional parameter.  Returns u for
// chaining.
func (u *UsageInfo) AddParameter(name, explanation string, required bool) *UsageInfo {
	u.Parameters = append(u.Parameters, &Parameter{
		Name:        name,
		Explanation: explanation,
		Required:    required,
	})
	return u
}

func (u *UsageInfo) short(r rune) *Option {
	for _, o := range u.Options {
		if o.Short != 0 && o.Short == r {
			return o
		}
	}
	return nil
}

func (u *UsageInfo) long(s string) *Option {
	for _, o := range u.Options {
		if o.Long != "" && o.Long == s {
			return o
		}
	}
	return nil
}

func (u *UsageInfo) required() []*Parameter {
	acc := make([]*Parameter, 0, len(u.Parameters))
	for _, p := range u.Parameters {
		if p.Required {
			acc = append(acc, p)
		}
	}
	return acc
}

// builtins are the options every command gets.
var builtins = []*Option{
	{Short: '?', Long: "help", Explanation: "Show this message and exit."},
	{Long: "log-level", Arg: "LEVEL", Explanation: "Log at LEVEL (debug, info, warn, error)."},
}

// maxColumn limits how wide the left column of the option and
// parameter tables can get.
const maxColumn = 30

// Format writes a usage message for program to w, wrapped to width
// columns.
func (u *UsageInfo) Format(w io.Writer, program string, width int) error {
	if width <= 0 {
		width = text.DefaultWrapWidth
	}

	var b strings.Builder

	b.WriteString("Usage: " + program + " [OPTIONS]")
	for _, p := range u.Parameters {
		if p.Required {
			b.WriteString(" " + p.Name)
		} else {
			b.WriteString(" [" + p.Name + "]")
		}
	}
	b.WriteString("\n")

	ww := text.NewWordWrapper(width)
	if u.Prologue != "" {
		b.WriteString("\n" + ww.Wrap(u.Prologue) + "\n")
	}

	opts := append(append([]*Option{}, u.Options...), builtins...)
	rows := make([][2]string, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, [2]string{o.String(), o.Explanation})
	}
	b.WriteString("\nOPTIONS:\n\n")
	table(&b, rows, width)

	if 0 < len(u.Parameters) {
		rows = rows[:0]
		for _, p := range u.Parameters {
			rows = append(rows, [2]string{p.Name, p.Explanation})
		}
		b.WriteString("\nPARAMETERS:\n\n")
		table(&b, rows, width)
	}

	if u.Epilogue != "" {
		b.WriteString("\n" + ww.Wrap(u.Epilogue) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// table writes two-column rows, wrapping the right column and
// indenting its continuation lines.  A left cell wider than the
// column gets the right cell on the following line.
func table(b *strings.Builder, rows [][2]string, width int) {
	col := 0
	for _, row := range rows {
		if n := len(row[0]) + 2; col < n && n <= maxColumn {
			col = n
		}
	}

	ww := &text.WordWrapper{
		Width:  width,
		Indent: col,
	}
	for _, row := range rows {
		left, right := row[0], row[1]
		wrapped := strings.TrimLeft(ww.Wrap(right), " ")
		if len(left)+2 > col {
			fmt.Fprintf(b, "%s\n%s%s\n", left, strings.Repeat(" ", col), wrapped)
			continue
		}
		fmt.Fprintf(b, "%s%s\n", text.LeftJustify(left, col), wrapped)
	}
}
