package scripting

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/bmc/javautil-sub002/logging"
)

var log = logging.New("scripting")

// Unified runs scripts in any registered language against a shared
// set of Bindings.
type Unified struct {
	Registry *Registry

	// Output receives whatever scripts print.  Defaults to
	// os.Stdout.
	Output io.Writer

	sync.Mutex
	bs Bindings
}

// NewUnified makes a Unified with no bindings.
func NewUnified(r *Registry) *Unified {
	return &Unified{
		Registry: r,
		bs:       NewBindings(),
	}
}

// Put binds a name to a value.
func (u *Unified) Put(name string, value interface{}) {
	u.Lock()
	u.bs[name] = value
	u.Unlock()
}

// Get returns the value bound to the name.
func (u *Unified) Get(name string) (interface{}, bool) {
	u.Lock()
	defer u.Unlock()
	x, have := u.bs[name]
	return x, have
}

// Remove unbinds the name.
func (u *Unified) Remove(name string) {
	u.Lock()
	delete(u.bs, name)
	u.Unlock()
}

// Clear removes all bindings.
func (u *Unified) Clear() {
	u.Lock()
	u.bs = NewBindings()
	u.Unlock()
}

// Bindings returns a copy of the current bindings.
func (u *Unified) Bindings() Bindings {
	u.Lock()
	defer u.Unlock()
	return u.bs.Copy()
}

func (u *Unified) output() io.Writer {
	if u.Output == nil {
		return os.Stdout
	}
	return u.Output
}

// Eval runs the source with the engine for the language.
func (u *Unified) Eval(ctx context.Context, lang, src string) (interface{}, error) {
	e, err := u.Registry.Find(lang)
	if err != nil {
		return nil, err
	}
	return u.exec(ctx, e, src)
}

// EvalFile runs the file with the engine for the file's extension.
func (u *Unified) EvalFile(ctx context.Context, filename string) (interface{}, error) {
	e, err := u.Registry.ForFile(filename)
	if err != nil {
		return nil, err
	}
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return u.exec(ctx, e, string(bs))
}

func (u *Unified) exec(ctx context.Context, e Engine, src string) (interface{}, error) {
	log.Debug("eval", "engine", e.Name(), "bytes", len(src))
	compiled, err := e.Compile(ctx, src)
	if err != nil {
		return nil, err
	}
	return e.Exec(ctx, u.Bindings(), src, compiled, u.output())
}
