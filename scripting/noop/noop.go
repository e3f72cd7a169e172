// Package noop provides an engine that runs nothing.
package noop

import (
	"context"
	"io"

	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/scripting"
)

var log = logging.New("noop")

// Engine is a scripting.Engine which just returns the bindings
// without modification.
type Engine struct {
	// Silent suppresses warning log messages.
	Silent bool
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return "noop"
}

func (e *Engine) Compile(ctx context.Context, src string) (interface{}, error) {
	if !e.Silent {
		log.Warn("using noop engine for compilation")
	}
	return nil, nil
}

func (e *Engine) Exec(ctx context.Context, bs scripting.Bindings, src string, compiled interface{}, out io.Writer) (interface{}, error) {
	if !e.Silent {
		log.Warn("using noop engine for execution")
	}
	return bs, nil
}
