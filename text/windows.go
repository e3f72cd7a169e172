package text

import (
	"strings"
)

// WindowsCmdSubstituter handles cmd.exe-style references: %name%.
//
// "%%" is a literal '%'.  A '%' with no closing '%' is a syntax
// error, which is reported or passed through depending on
// AbortOnSyntaxError.
//
// Names aren't checked with a NameChecker since cmd.exe is pretty
// liberal about what a name can be.  A name can't contain '%' or a
// newline though.
type WindowsCmdSubstituter struct {
	AbortOnUndefined   bool
	AbortOnSyntaxError bool
}

// HasReferences implements the Substituter method of the same name.
func (w *WindowsCmdSubstituter) HasReferences(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			i++
			continue
		}
		end := strings.IndexAny(s[i+1:], "%\n")
		if end < 0 {
			return false
		}
		if s[i+1+end] == '%' {
			return true
		}
		i += end
	}
	return false
}

// Substitute implements the Substituter method of the same name.
func (w *WindowsCmdSubstituter) Substitute(s string, d Dereferencer, ctx interface{}) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			b.WriteByte('%')
			i += 2
			continue
		}
		end := strings.IndexAny(s[i+1:], "%\n")
		if end < 0 || s[i+1+end] != '%' {
			if w.AbortOnSyntaxError {
				return "", &SyntaxError{Input: s, Pos: i, Msg: `unterminated "%"`}
			}
			b.WriteByte(c)
			i++
			continue
		}
		name := s[i+1 : i+1+end]
		v, err := lookup(d, name, ctx, nil, w.AbortOnUndefined)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
		i += end + 2
	}

	return b.String(), nil
}
