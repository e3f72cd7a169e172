// Command roman converts numbers to Roman numerals and back.
//
// Each argument that's a number is converted to a numeral, and each
// argument that isn't is parsed as a numeral.  With no arguments,
// lines are read from standard input.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bmc/javautil-sub002/cmdline"
	"github.com/bmc/javautil-sub002/text"
)

type roman struct {
	in  io.Reader
	out io.Writer

	lower bool
	args  []string
}

func (r *roman) UsageInfo() *cmdline.UsageInfo {
	u := cmdline.NewUsageInfo()
	u.Prologue = fmt.Sprintf("Convert numbers (%d to %d) to Roman numerals and Roman numerals to numbers.", text.MinRoman, text.MaxRoman)
	u.AddOption('l', "lower", "", "Write numerals in lower case.").
		AddParameter("value...", "Numbers or numerals. Read from standard input if absent.", false)
	return u
}

func (r *roman) ParseOption(short rune, long string, it *cmdline.ArgIterator) error {
	switch short {
	case 'l':
		r.lower = true
	}
	return nil
}

func (r *roman) ParsePostOptions(it *cmdline.ArgIterator) error {
	r.args = it.Rest()
	return nil
}

func (r *roman) convert(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		numeral, err := text.RomanNumeral(n)
		if err != nil {
			return "", err
		}
		if r.lower {
			numeral = strings.ToLower(numeral)
		}
		return numeral, nil
	}
	n, err := text.ParseRomanNumeral(s)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

func (r *roman) Run(ctx context.Context) error {
	if len(r.args) == 0 {
		in := bufio.NewScanner(r.in)
		for in.Scan() {
			if strings.TrimSpace(in.Text()) == "" {
				continue
			}
			r.args = append(r.args, in.Text())
		}
		if err := in.Err(); err != nil {
			return err
		}
	}
	for _, s := range r.args {
		x, err := r.convert(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, x)
	}
	return nil
}

func main() {
	cmdline.Main("roman", &roman{
		in:  os.Stdin,
		out: os.Stdout,
	})
}
