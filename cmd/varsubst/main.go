// Command varsubst copies its input to its output, substituting
// variable references along the way.  It's meant to be called from
// build scripts.
//
// Variables come from, in order of precedence, -D definitions, -f
// YAML files, a -d variable store and (with -e) the environment.
//
// Usage:
//
//	varsubst [-D name=value]... [-f vars.yaml]... [-d vars.db] [-e] [-u] [-s] [-w] [-o out] [file...]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmc/javautil-sub002/cmdline"
	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/text"
	"github.com/bmc/javautil-sub002/varstore"

	"github.com/jsccast/yaml"
)

var log = logging.New("varsubst")

type varsubst struct {
	in  io.Reader
	out io.Writer

	defs      text.MapDereferencer
	varsFiles []string
	storeFile string
	bucket    string
	env       bool
	save      bool

	abortUndefined bool
	abortSyntax    bool
	windows        bool

	output string
	files  []string
}

func newVarsubst() *varsubst {
	return &varsubst{
		in:   os.Stdin,
		out:  os.Stdout,
		defs: text.MapDereferencer{},
	}
}

func (v *varsubst) UsageInfo() *cmdline.UsageInfo {
	u := cmdline.NewUsageInfo()
	u.Prologue = "Copy the files (or standard input) to the output, substituting $name, ${name} and ${name?default} references."
	u.AddOption('D', "define", "name=value", "Define a variable.").
		AddOption('f', "vars", "file", "Read variables from a YAML file. Nested maps give dotted names.").
		AddOption('d', "store", "file", "Read variables from a variable store.").
		AddOption('n', "bucket", "name", "Use this bucket of the variable store.").
		AddOption('S', "save", "", "Save -D definitions in the variable store.").
		AddOption('e', "env", "", "Fall back to environment variables.").
		AddOption('u', "abort-undefined", "", "Fail on undefined variables instead of substituting nothing.").
		AddOption('s', "abort-syntax", "", "Fail on malformed references instead of copying them.").
		AddOption('w', "windows", "", "Use %name% references instead.").
		AddOption('o', "output", "file", "Write to this file instead of standard output.").
		AddParameter("file...", "Input files.", false)
	return u
}

func (v *varsubst) ParseOption(short rune, long string, it *cmdline.ArgIterator) error {
	switch short {
	case 'D':
		s, err := it.NextArg("-D")
		if err != nil {
			return err
		}
		i := strings.IndexByte(s, '=')
		if i <= 0 {
			return cmdline.Usagef("bad definition %q (want name=value)", s)
		}
		v.defs[s[:i]] = s[i+1:]
	case 'f':
		s, err := it.NextArg("-f")
		if err != nil {
			return err
		}
		v.varsFiles = append(v.varsFiles, s)
	case 'd':
		s, err := it.NextArg("-d")
		if err != nil {
			return err
		}
		v.storeFile = s
	case 'n':
		s, err := it.NextArg("-n")
		if err != nil {
			return err
		}
		v.bucket = s
	case 'S':
		v.save = true
	case 'e':
		v.env = true
	case 'u':
		v.abortUndefined = true
	case 's':
		v.abortSyntax = true
	case 'w':
		v.windows = true
	case 'o':
		s, err := it.NextArg("-o")
		if err != nil {
			return err
		}
		v.output = s
	}
	return nil
}

func (v *varsubst) ParsePostOptions(it *cmdline.ArgIterator) error {
	if v.save && v.storeFile == "" {
		return cmdline.Usagef("-S needs -d")
	}
	v.files = it.Rest()
	return nil
}

// flatten turns a YAML document into variables.  Nested maps give
// dotted names, and other values are formatted with fmt.
func flatten(acc map[string]string, prefix string, x interface{}) {
	switch vv := x.(type) {
	case map[string]interface{}:
		for k, y := range vv {
			name := k
			if prefix != "" {
				name = prefix + "." + k
			}
			flatten(acc, name, y)
		}
	case nil:
		acc[prefix] = ""
	default:
		acc[prefix] = fmt.Sprint(vv)
	}
}

func readVars(filename string) (text.MapDereferencer, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err = yaml.Unmarshal(bs, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	acc := make(map[string]string, len(m))
	flatten(acc, "", m)
	return text.MapDereferencer(acc), nil
}

func (v *varsubst) substituter() text.Substituter {
	if v.windows {
		return &text.WindowsCmdSubstituter{
			AbortOnUndefined:   v.abortUndefined,
			AbortOnSyntaxError: v.abortSyntax,
		}
	}
	return &text.UnixShellSubstituter{
		AbortOnUndefined:   v.abortUndefined,
		AbortOnSyntaxError: v.abortSyntax,
		HonorEscapes:       true,
	}
}

func (v *varsubst) Run(ctx context.Context) error {
	log.Debug("definitions", "names", names(v.defs))
	d := text.ChainDereferencer{v.defs}

	for _, filename := range v.varsFiles {
		m, err := readVars(filename)
		if err != nil {
			return err
		}
		d = append(d, m)
	}

	if v.storeFile != "" {
		s, err := varstore.Open(v.storeFile)
		if err != nil {
			return err
		}
		defer s.Close()
		if v.bucket != "" {
			s = s.Bucket(v.bucket)
		}
		if v.save {
			if err = s.SetAll(ctx, v.defs); err != nil {
				return err
			}
		}
		d = append(d, s)
	}

	if v.env {
		d = append(d, text.EnvDereferencer{})
	}

	var (
		sub = v.substituter()
		acc strings.Builder
	)
	do := func(name string, r io.Reader) error {
		bs, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		s, err := sub.Substitute(string(bs), d, ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		acc.WriteString(s)
		return nil
	}

	if len(v.files) == 0 {
		if err := do("stdin", v.in); err != nil {
			return err
		}
	}
	for _, filename := range v.files {
		log.Debug("substituting", "file", filename)
		f, err := os.Open(filename)
		if err != nil {
			return err
		}
		err = do(filename, f)
		f.Close()
		if err != nil {
			return err
		}
	}

	if v.output == "" {
		_, err := io.WriteString(v.out, acc.String())
		return err
	}
	return replaceFile(v.output, acc.String())
}

// replaceFile writes s to a temporary file next to filename and then
// renames it over filename.  Nothing happens to filename if anything
// goes wrong.
func replaceFile(filename, s string) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(filename); err == nil {
		mode = fi.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	_, err = io.WriteString(f, s)
	if err == nil {
		err = f.Chmod(mode)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, filename)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

// names is for debugging.
func names(m map[string]string) []string {
	acc := make([]string, 0, len(m))
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}

func main() {
	cmdline.Main("varsubst", newVarsubst())
}
