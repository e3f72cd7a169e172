// Command htmlent converts between characters and HTML entities.
//
// Usage:
//
//	htmlent encode|decode|escape|strip|text [file...]
package main

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmc/javautil-sub002/cmdline"
	"github.com/bmc/javautil-sub002/htmlutil"
)

var conversions = map[string]func(string) string{
	"encode": htmlutil.MakeCharacterEntities,
	"decode": htmlutil.ConvertCharacterEntities,
	"escape": htmlutil.EscapeHTML,
	"strip":  htmlutil.StripHTMLTags,
	"text":   htmlutil.TextFromHTML,
}

func conversionNames() string {
	acc := make([]string, 0, len(conversions))
	for name := range conversions {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return strings.Join(acc, ", ")
}

type htmlent struct {
	in  io.Reader
	out io.Writer

	convert func(string) string
	files   []string
}

func (h *htmlent) UsageInfo() *cmdline.UsageInfo {
	u := cmdline.NewUsageInfo()
	u.Prologue = "Convert HTML entities and markup."
	u.AddParameter("operation", "One of "+conversionNames()+".", true).
		AddParameter("file...", "Input files. Standard input if absent.", false)
	return u
}

func (h *htmlent) ParseOption(short rune, long string, it *cmdline.ArgIterator) error {
	return nil
}

func (h *htmlent) ParsePostOptions(it *cmdline.ArgIterator) error {
	op, _ := it.Next()
	f, have := conversions[op]
	if !have {
		return cmdline.Usagef("unknown operation %q (want one of %s)", op, conversionNames())
	}
	h.convert = f
	h.files = it.Rest()
	return nil
}

func (h *htmlent) do(r io.Reader) error {
	bs, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, err = io.WriteString(h.out, h.convert(string(bs)))
	return err
}

func (h *htmlent) Run(ctx context.Context) error {
	if len(h.files) == 0 {
		return h.do(h.in)
	}
	for _, filename := range h.files {
		f, err := os.Open(filename)
		if err != nil {
			return err
		}
		err = h.do(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cmdline.Main("htmlent", &htmlent{
		in:  os.Stdin,
		out: os.Stdout,
	})
}
