package text

import (
	"os"
	"unicode"
)

// Dereferencer looks up the value of a variable.
//
// The ctx is whatever the caller handed to Substitute.  Most
// Dereferencers ignore it.
//
// A Dereferencer reports an undefined variable by returning false.
// An error stops the substitution.
type Dereferencer interface {
	Dereference(name string, ctx interface{}) (value string, defined bool, err error)
}

// DereferencerFunc adapts a function to a Dereferencer.
type DereferencerFunc func(name string, ctx interface{}) (string, bool, error)

func (f DereferencerFunc) Dereference(name string, ctx interface{}) (string, bool, error) {
	return f(name, ctx)
}

// MapDereferencer is a Dereferencer backed by a map.
type MapDereferencer map[string]string

func (m MapDereferencer) Dereference(name string, ctx interface{}) (string, bool, error) {
	v, have := m[name]
	return v, have, nil
}

// EnvDereferencer looks up environment variables.
type EnvDereferencer struct{}

func (EnvDereferencer) Dereference(name string, ctx interface{}) (string, bool, error) {
	v, have := os.LookupEnv(name)
	return v, have, nil
}

// ChainDereferencer asks each Dereferencer in turn.  The first one
// that knows the variable wins.
type ChainDereferencer []Dereferencer

func (c ChainDereferencer) Dereference(name string, ctx interface{}) (string, bool, error) {
	for _, d := range c {
		if d == nil {
			continue
		}
		v, have, err := d.Dereference(name, ctx)
		if err != nil {
			return "", false, err
		}
		if have {
			return v, true, nil
		}
	}
	return "", false, nil
}

// NameChecker decides whether r can appear in an unbraced variable
// name.  first is true for the first rune of the name.
type NameChecker func(r rune, first bool) bool

// DefaultNameChecker accepts letters, underscores, and (except at the
// start) digits.
func DefaultNameChecker(r rune, first bool) bool {
	switch {
	case r == '_':
		return true
	case unicode.IsLetter(r):
		return true
	case unicode.IsDigit(r):
		return !first
	}
	return false
}
