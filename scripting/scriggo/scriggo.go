// Package scriggo provides a template engine for the scripting
// facade using github.com/open2b/scriggo.
//
// Bindings become global variables of the template, with the types
// of their values.  A few helpers are also declared:
//
//	roman(n int) string
//	wrap(s string, width int) string
//	escapeHTML(s string) string
//	markdown(s string) string
package scriggo

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/bmc/javautil-sub002/htmlutil"
	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/scripting"
	"github.com/bmc/javautil-sub002/text"

	"github.com/open2b/scriggo"
	"github.com/open2b/scriggo/native"
	"github.com/russross/blackfriday/v2"
)

var log = logging.New("scriggo")

// Engine implements scripting.Engine with Scriggo templates.
type Engine struct {
	// Filename determines the template's format by extension.
	// Defaults to "template.txt".
	Filename string
}

// NewEngine makes a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return "scriggo"
}

func (e *Engine) filename() string {
	if e.Filename == "" {
		return "template.txt"
	}
	return e.Filename
}

// Compile does nothing because the types of the template's globals
// aren't known until Exec.
func (e *Engine) Compile(ctx context.Context, src string) (interface{}, error) {
	return nil, nil
}

func helpers() native.Declarations {
	return native.Declarations{
		"roman": func(n int) string {
			s, err := text.RomanNumeral(n)
			if err != nil {
				return ""
			}
			return s
		},
		"wrap": func(s string, width int) string {
			return text.NewWordWrapper(width).Wrap(s)
		},
		"escapeHTML": htmlutil.EscapeHTML,
		"markdown": func(s string) string {
			return string(blackfriday.Run([]byte(s)))
		},
	}
}

// declare makes a variable declaration with the type of x.
func declare(x interface{}) interface{} {
	if x == nil {
		var v interface{}
		return &v
	}
	p := reflect.New(reflect.TypeOf(x))
	p.Elem().Set(reflect.ValueOf(x))
	return p.Interface()
}

// Exec builds the template with the bindings as globals and renders
// it to out.  The result is nil.
func (e *Engine) Exec(ctx context.Context, bs scripting.Bindings, src string, compiled interface{}, out io.Writer) (interface{}, error) {
	if out == nil {
		out = io.Discard
	}

	globals := helpers()
	for name, x := range bs {
		if _, have := globals[name]; have {
			log.Debug("binding shadows helper", "name", name)
		}
		globals[name] = declare(x)
	}

	name := e.filename()
	fsys := scriggo.Files{name: []byte(src)}
	t, err := scriggo.BuildTemplate(fsys, name, &scriggo.BuildOptions{
		Globals: globals,
		MarkdownConverter: func(src []byte, out io.Writer) error {
			_, err := out.Write(blackfriday.Run(src))
			return err
		},
	})
	if err != nil {
		return nil, err
	}

	opts := &scriggo.RunOptions{
		Context: ctx,
		Print: func(x interface{}) {
			fmt.Fprint(out, x)
		},
	}
	if err = t.Run(out, nil, opts); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return nil, nil
}

// Extensions are the file extensions registered for this engine.
var Extensions = []string{".tmpl", ".txt"}
