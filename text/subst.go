package text

// Substituter replaces variable references in strings.
type Substituter interface {
	// Substitute returns s with its variable references replaced
	// by the values d provides.  ctx is passed through to d.
	Substitute(s string, d Dereferencer, ctx interface{}) (string, error)

	// HasReferences reports whether s appears to contain any
	// variable references.
	HasReferences(s string) bool
}

// Substitute is a convenience that runs a default
// UnixShellSubstituter over s with the given variables.
//
// Undefined variables become empty strings, and malformed references
// are passed through.
func Substitute(s string, vars map[string]string) string {
	sub := &UnixShellSubstituter{}
	// A MapDereferencer never errors, and we don't abort on
	// anything, so no error is possible here.
	t, _ := sub.Substitute(s, MapDereferencer(vars), nil)
	return t
}

// lookup is the shared policy for resolving a reference.
//
// If the variable is undefined (or empty, when a default is present),
// the default is used if there is one.  Otherwise an undefined
// variable is either an error or the empty string.
func lookup(d Dereferencer, name string, ctx interface{}, def *string, abort bool) (string, error) {
	var (
		v    string
		have bool
		err  error
	)
	if d != nil {
		if v, have, err = d.Dereference(name, ctx); err != nil {
			return "", err
		}
	}
	if def != nil && (!have || v == "") {
		return *def, nil
	}
	if !have {
		if abort {
			return "", &UndefinedVariableError{Name: name}
		}
		return "", nil
	}
	return v, nil
}
