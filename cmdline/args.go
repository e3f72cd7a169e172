package cmdline

import (
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// ArgIterator walks the command-line arguments.  A Utility's
// ParseOption uses it to pull an option's value, and
// ParsePostOptions uses it to read the parameters.
type ArgIterator struct {
	args []string
	pos  int
}

// NewArgIterator makes an ArgIterator.  The slice isn't copied.
func NewArgIterator(args []string) *ArgIterator {
	return &ArgIterator{
		args: args,
	}
}

// HasNext reports whether any arguments remain.
func (it *ArgIterator) HasNext() bool {
	return it.pos < len(it.args)
}

// Remaining returns the number of arguments not yet consumed.
func (it *ArgIterator) Remaining() int {
	return len(it.args) - it.pos
}

// Peek returns the next argument without consuming it.
func (it *ArgIterator) Peek() (string, bool) {
	if !it.HasNext() {
		return "", false
	}
	return it.args[it.pos], true
}

// Next consumes and returns the next argument.
func (it *ArgIterator) Next() (string, bool) {
	if !it.HasNext() {
		return "", false
	}
	s := it.args[it.pos]
	it.pos++
	return s, true
}

// NextArg consumes the value of the given option.  If there is no
// next argument, NextArg returns a *UsageError that names the option.
func (it *ArgIterator) NextArg(option string) (string, error) {
	s, ok := it.Next()
	if !ok {
		return "", &UsageError{Msg: fmt.Sprintf("option %s requires an argument", option)}
	}
	return s, nil
}

// Rest consumes and returns all remaining arguments.
func (it *ArgIterator) Rest() []string {
	rest := it.args[it.pos:]
	it.pos = len(it.args)
	return rest
}

// insert puts s in front of the remaining arguments.
func (it *ArgIterator) insert(s string) {
	acc := make([]string, 0, len(it.args)+1)
	acc = append(acc, it.args[:it.pos]...)
	acc = append(acc, s)
	acc = append(acc, it.args[it.pos:]...)
	it.args = acc
}

// ExpandResponseFiles replaces each "@file" argument with the
// arguments in that file.  The file is split into words with shell
// quoting rules, and $VAR references are expanded from the
// environment.  "@@x" is the literal argument "@x".  Expansion isn't
// recursive.
func ExpandResponseFiles(args []string) ([]string, error) {
	acc := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "@@"):
			acc = append(acc, arg[1:])
		case strings.HasPrefix(arg, "@") && 1 < len(arg):
			filename := arg[1:]
			bs, err := os.ReadFile(filename)
			if err != nil {
				return nil, fmt.Errorf("response file: %w", err)
			}
			words, err := shell.Fields(string(bs), os.Getenv)
			if err != nil {
				return nil, fmt.Errorf("response file %s: %w", filename, err)
			}
			log.Debugf("response file %s: %d args", filename, len(words))
			acc = append(acc, words...)
		default:
			acc = append(acc, arg)
		}
	}
	return acc, nil
}
