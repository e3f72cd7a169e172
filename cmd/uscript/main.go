// Command uscript runs a script with any of the standard engines.
//
// The engine is chosen by -l or else by the script file's extension.
// Bindings come from -b YAML files and -D definitions.  A non-nil
// result is written to standard output as YAML.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bmc/javautil-sub002/cmdline"
	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/scripting"
	"github.com/bmc/javautil-sub002/scripting/ecmascript"
	"github.com/bmc/javautil-sub002/scripting/engines"

	"github.com/jsccast/yaml"
)

var log = logging.New("uscript")

type uscript struct {
	in  io.Reader
	out io.Writer

	lang     string
	bs       scripting.Bindings
	requires []string
	libDir   string
	timeout  time.Duration
	list     bool

	filename string
}

func newUscript() *uscript {
	return &uscript{
		in:  os.Stdin,
		out: os.Stdout,
		bs:  scripting.NewBindings(),
	}
}

func (u *uscript) UsageInfo() *cmdline.UsageInfo {
	ui := cmdline.NewUsageInfo()
	ui.Prologue = "Run a script. Use - to read the script from standard input (which needs -l)."
	ui.AddOption('l', "language", "name", "Script language. Defaults to the one for the file's extension.").
		AddOption('b', "bindings", "file", "Read bindings from a YAML file. Can be repeated.").
		AddOption('D', "define", "name=value", "Bind a string.").
		AddOption('r', "require", "library", "Load an ECMAScript library first. Can be repeated.").
		AddOption('L', "library-dir", "dir", "Directory for ECMAScript libraries.").
		AddOption('t', "timeout", "duration", "Interrupt the script after this long (e.g. 10s).").
		AddOption(0, "languages", "", "List the languages and exit.").
		AddParameter("script", "The script file.", false)
	return ui
}

func readBindings(filename string) (map[string]interface{}, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err = yaml.Unmarshal(bs, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

func (u *uscript) ParseOption(short rune, long string, it *cmdline.ArgIterator) error {
	if long == "languages" {
		u.list = true
		return nil
	}

	s, err := it.NextArg("-" + string(short))
	if err != nil {
		return err
	}

	switch short {
	case 'l':
		u.lang = s
	case 'b':
		m, err := readBindings(s)
		if err != nil {
			return err
		}
		for k, v := range m {
			u.bs[k] = v
		}
	case 'D':
		i := strings.IndexByte(s, '=')
		if i <= 0 {
			return cmdline.Usagef("bad definition %q (want name=value)", s)
		}
		u.bs[s[:i]] = s[i+1:]
	case 'r':
		u.requires = append(u.requires, s)
	case 'L':
		u.libDir = s
	case 't':
		d, err := time.ParseDuration(s)
		if err != nil {
			return cmdline.Usagef("bad timeout %q", s)
		}
		u.timeout = d
	}
	return nil
}

func (u *uscript) ParsePostOptions(it *cmdline.ArgIterator) error {
	if u.list {
		return nil
	}
	s, have := it.Next()
	if !have {
		return cmdline.Usagef("no script")
	}
	if s == "-" && u.lang == "" {
		return cmdline.Usagef("reading from standard input needs -l")
	}
	u.filename = s
	return nil
}

func (u *uscript) configure(r *scripting.Registry) error {
	e, err := r.Find("ecmascript")
	if err != nil {
		return err
	}
	es, is := e.(*ecmascript.Engine)
	if !is {
		return fmt.Errorf("ecmascript engine is a %T", e)
	}
	es.Requires = u.requires
	if u.libDir != "" {
		es.LibraryProvider = ecmascript.MakeFileLibraryProvider(u.libDir)
	}
	return nil
}

func (u *uscript) Run(ctx context.Context) error {
	r := engines.Standard()

	if u.list {
		for _, lang := range r.Languages() {
			fmt.Fprintln(u.out, lang)
		}
		return nil
	}

	if err := u.configure(r); err != nil {
		return err
	}

	uni := scripting.NewUnified(r)
	uni.Output = u.out
	for k, v := range u.bs {
		uni.Put(k, v)
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	var (
		x   interface{}
		err error
	)
	switch {
	case u.lang == "":
		x, err = uni.EvalFile(ctx, u.filename)
	default:
		var bs []byte
		if u.filename == "-" {
			bs, err = io.ReadAll(u.in)
		} else {
			bs, err = os.ReadFile(u.filename)
		}
		if err != nil {
			return err
		}
		x, err = uni.Eval(ctx, u.lang, string(bs))
	}
	if err != nil {
		return err
	}
	if x == nil {
		return nil
	}

	log.Debug("result", "type", fmt.Sprintf("%T", x))
	bs, err := yaml.Marshal(x)
	if err != nil {
		return err
	}
	_, err = u.out.Write(bs)
	return err
}

func main() {
	cmdline.Main("uscript", newUscript())
}
