// Package scripting is a facade over several script engines.
//
// An Engine compiles and executes source in one language.  A Registry
// maps language names and file extensions to Engines, and Unified
// keeps a set of Bindings that it hands to whichever engine runs a
// script.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrEngineNotFound is returned when no engine is registered for a
// language or file extension.
var ErrEngineNotFound = errors.New("script engine not found")

// Engine runs scripts in one language.
type Engine interface {
	// Name is the engine's primary language name.
	Name() string

	// Compile can make something that helps when Exec()ing the
	// source later.  The result might be nil.
	Compile(ctx context.Context, src string) (interface{}, error)

	// Exec executes the source.  The result of a previous
	// Compile() might be provided.  Anything the script prints
	// goes to out.
	Exec(ctx context.Context, bs Bindings, src string, compiled interface{}, out io.Writer) (interface{}, error)
}

// Registry maps language names and file extensions to Engines.
type Registry struct {
	sync.RWMutex

	langs map[string]Engine
	exts  map[string]Engine
}

// NewRegistry makes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		langs: make(map[string]Engine),
		exts:  make(map[string]Engine),
	}
}

// Register adds the engine under its name and the given aliases.
// Aliases that start with "." are file extensions.
func (r *Registry) Register(e Engine, aliases ...string) {
	r.Lock()
	defer r.Unlock()

	r.langs[strings.ToLower(e.Name())] = e
	for _, a := range aliases {
		a = strings.ToLower(a)
		if strings.HasPrefix(a, ".") {
			r.exts[a] = e
		} else {
			r.langs[a] = e
		}
	}
}

// Find returns the engine for the language.
func (r *Registry) Find(lang string) (Engine, error) {
	r.RLock()
	e, have := r.langs[strings.ToLower(lang)]
	r.RUnlock()
	if !have {
		return nil, fmt.Errorf("%w: language %q", ErrEngineNotFound, lang)
	}
	return e, nil
}

// ForFile returns the engine for the file's extension.
func (r *Registry) ForFile(filename string) (Engine, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	r.RLock()
	e, have := r.exts[ext]
	r.RUnlock()
	if !have {
		return nil, fmt.Errorf("%w: file %q", ErrEngineNotFound, filename)
	}
	return e, nil
}

// Languages returns the sorted language names and aliases.
func (r *Registry) Languages() []string {
	r.RLock()
	defer r.RUnlock()

	acc := make([]string, 0, len(r.langs))
	for lang := range r.langs {
		acc = append(acc, lang)
	}
	sort.Strings(acc)
	return acc
}
