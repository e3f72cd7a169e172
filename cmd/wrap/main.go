// Command wrap fills lines of text to a width.
package main

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/bmc/javautil-sub002/cmdline"
	"github.com/bmc/javautil-sub002/text"
)

type wrap struct {
	in  io.Reader
	out io.Writer

	ww    *text.WordWrapper
	files []string
}

func newWrap() *wrap {
	return &wrap{
		in:  os.Stdin,
		out: os.Stdout,
		ww:  text.NewWordWrapper(text.DefaultWrapWidth),
	}
}

func (w *wrap) UsageInfo() *cmdline.UsageInfo {
	u := cmdline.NewUsageInfo()
	u.Prologue = "Wrap text at word boundaries. Existing line breaks are kept."
	u.AddOption('w', "width", "n", "Wrap at n columns (default "+strconv.Itoa(text.DefaultWrapWidth)+").").
		AddOption('i', "indent", "n", "Indent each line n spaces.").
		AddOption('p', "prefix", "string", "Start each line with this string.").
		AddParameter("file...", "Input files. Standard input if absent.", false)
	return u
}

func (w *wrap) intArg(it *cmdline.ArgIterator, option string) (int, error) {
	s, err := it.NextArg(option)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, cmdline.Usagef("%s wants a non-negative number, not %q", option, s)
	}
	return n, nil
}

func (w *wrap) ParseOption(short rune, long string, it *cmdline.ArgIterator) (err error) {
	switch short {
	case 'w':
		w.ww.Width, err = w.intArg(it, "-w")
	case 'i':
		w.ww.Indent, err = w.intArg(it, "-i")
	case 'p':
		w.ww.Prefix, err = it.NextArg("-p")
	}
	return
}

func (w *wrap) ParsePostOptions(it *cmdline.ArgIterator) error {
	w.files = it.Rest()
	return nil
}

func (w *wrap) Run(ctx context.Context) error {
	ww := text.NewWrapWriter(w.out, w.ww)
	if len(w.files) == 0 {
		if _, err := io.Copy(ww, w.in); err != nil {
			return err
		}
		return ww.Close()
	}
	for _, filename := range w.files {
		f, err := os.Open(filename)
		if err != nil {
			return err
		}
		_, err = io.Copy(ww, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return ww.Close()
}

func main() {
	cmdline.Main("wrap", newWrap())
}
