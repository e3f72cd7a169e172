package text

import (
	"strings"
	"unicode/utf8"
)

// UnixShellSubstituter handles references of the form
//
//    $name
//    ${name}
//    ${name?default}
//
// An unbraced name is the longest run of runes that NameChecker
// accepts.  A braced reference runs to the matching '}', so braces
// nest: "${a${b}}" looks up "a" followed by the value of b.  The name
// is everything before the first unnested '?'.  The default (if any)
// is used when the variable is undefined or empty, and it is not
// itself substituted.
//
// A '$' that isn't followed by '{' or a name rune is just a '$'.
type UnixShellSubstituter struct {
	// AbortOnUndefined makes Substitute return an
	// *UndefinedVariableError instead of substituting an empty
	// string.
	AbortOnUndefined bool

	// AbortOnSyntaxError makes Substitute return a *SyntaxError
	// for an unterminated or empty "${".  Otherwise the offending
	// text is copied through unchanged.
	AbortOnSyntaxError bool

	// HonorEscapes makes "\$" a literal '$' and "\\" a literal
	// '\'.
	HonorEscapes bool

	// NameChecker defaults to DefaultNameChecker.
	NameChecker NameChecker
}

// NewUnixShellSubstituter makes a UnixShellSubstituter that escapes
// with backslashes and otherwise carries on quietly.
func NewUnixShellSubstituter() *UnixShellSubstituter {
	return &UnixShellSubstituter{
		HonorEscapes: true,
	}
}

func (u *UnixShellSubstituter) checker() NameChecker {
	if u.NameChecker == nil {
		return DefaultNameChecker
	}
	return u.NameChecker
}

// HasReferences implements the Substituter method of the same name.
func (u *UnixShellSubstituter) HasReferences(s string) bool {
	check := u.checker()
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if u.HonorEscapes {
				i++
			}
		case '$':
			if i+1 >= len(s) {
				return false
			}
			if s[i+1] == '{' {
				return true
			}
			r, _ := utf8.DecodeRuneInString(s[i+1:])
			if check(r, true) {
				return true
			}
		}
	}
	return false
}

// Substitute implements the Substituter method of the same name.
func (u *UnixShellSubstituter) Substitute(s string, d Dereferencer, ctx interface{}) (string, error) {
	var (
		check = u.checker()
		b     strings.Builder
		i     = 0
	)

	b.Grow(len(s))

	for i < len(s) {
		c := s[i]

		if c == '\\' && u.HonorEscapes && i+1 < len(s) && (s[i+1] == '$' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}

		if c != '$' || i+1 == len(s) {
			b.WriteByte(c)
			i++
			continue
		}

		// We're looking at a '$' with something after it.
		start := i

		if s[i+1] == '{' {
			end := matchingBrace(s[i+2:])
			if end < 0 {
				if u.AbortOnSyntaxError {
					return "", &SyntaxError{Input: s, Pos: start, Msg: `unterminated "${"`}
				}
				b.WriteString(s[start:])
				break
			}
			ref := s[i+2 : i+2+end]
			next := i + 2 + end + 1

			name, def := splitDefault(ref)
			if strings.IndexByte(name, '$') >= 0 {
				var err error
				if name, err = u.Substitute(name, d, ctx); err != nil {
					return "", err
				}
			}

			if name == "" {
				if u.AbortOnSyntaxError {
					return "", &SyntaxError{Input: s, Pos: start, Msg: "empty variable name"}
				}
				b.WriteString(s[start:next])
				i = next
				continue
			}

			v, err := lookup(d, name, ctx, def, u.AbortOnUndefined)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i = next
			continue
		}

		// Maybe an unbraced name.
		j := i + 1
		first := true
		for j < len(s) {
			r, size := utf8.DecodeRuneInString(s[j:])
			if !check(r, first) {
				break
			}
			first = false
			j += size
		}
		if j == i+1 {
			// Not a reference.
			b.WriteByte(c)
			i++
			continue
		}

		v, err := lookup(d, s[i+1:j], ctx, nil, u.AbortOnUndefined)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
		i = j
	}

	return b.String(), nil
}

// matchingBrace returns the index of the '}' that closes a '{' just
// before s, or -1.
func matchingBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// splitDefault splits a braced reference at its first unnested '?'.
func splitDefault(ref string) (string, *string) {
	depth := 0
	for i := 0; i < len(ref); i++ {
		switch ref[i] {
		case '{':
			depth++
		case '}':
			depth--
		case '?':
			if depth == 0 {
				dflt := ref[i+1:]
				return ref[:i], &dflt
			}
		}
	}
	return ref, nil
}
