/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ecmascript provides an ECMAScript engine for the scripting
// facade.
package ecmascript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/bmc/javautil-sub002/logging"
	"github.com/bmc/javautil-sub002/scripting"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)

	log = logging.New("ecmascript")
)

// Engine implements scripting.Engine using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Engine struct {

	// Testing exposes sleep(ms).
	Testing bool

	// Requires names libraries that are loaded before every
	// script.
	Requires []string

	// LibraryProvider resolves library names.  If nil,
	// DefaultLibraryProvider is used.
	LibraryProvider LibraryProvider
}

// NewEngine makes a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return "ecmascript"
}

// ProvideLibrary resolves the library name into source.
func (e *Engine) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if e.LibraryProvider != nil {
		return e.LibraryProvider(ctx, name)
	}
	return DefaultLibraryProvider(ctx, name)
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// AsSource accepts either a string or a map with "code" and
// "requires" properties, which is what a YAML or JSON script
// document gives.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	case map[interface{}]interface{}:
		m := make(map[string]interface{})
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				err = fmt.Errorf("bad src key (%T)", k)
				return
			}
			m[str] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		err = fmt.Errorf("bad ECMAScript source (%T)", src)
		return
	}
}

func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	s, is := vv["code"].(string)
	if !is {
		err = errors.New("bad ECMAScript code")
		return
	}
	code = s

	switch vv := vv["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				err = fmt.Errorf("bad library name (%T)", x)
				return
			}
			libs = append(libs, s)
		}
	default:
		err = fmt.Errorf("bad requires (%T)", vv)
	}
	return
}

// Compile calls goja.Compile on the wrapped source after prepending
// any required libraries.
//
// This method can block if the LibraryProvider blocks.
func (e *Engine) Compile(ctx context.Context, src string) (interface{}, error) {
	return e.CompileSource(ctx, src)
}

// CompileSource is Compile for anything AsSource accepts.
func (e *Engine) CompileSource(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	var libsSrc string
	for _, lib := range append(e.Requires[:len(e.Requires):len(e.Requires)], libs...) {
		libSrc, err := e.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lib, err)
		}
		libsSrc += libSrc + "\n"
	}

	code = libsSrc + code

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

// Exec implements the scripting.Engine method of the same name.
//
// The source runs inside a function, so a script gives its result
// with a return statement.  The following properties are available
// from the runtime at _:
//
//	bindings: a deep copy of the given bindings.
//	print(args...): write the arguments to out.
//	log(x): log x as JSON.
//	gensym(): generate a random string.
//	esc(s): URL query-escape the given string.
//	cronNext(s): the next time (RFC3339Nano, UTC) for the crontab
//	  expression.
//
// With Testing, sleep(ms) is also available at the top level.
//
// If the script returns an object, the result is scripting.Bindings.
func (e *Engine) Exec(ctx context.Context, bs scripting.Bindings, src string, compiled interface{}, out io.Writer) (interface{}, error) {
	if compiled == nil {
		var err error
		if compiled, err = e.Compile(ctx, src); err != nil {
			return nil, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return nil, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	env := map[string]interface{}{}

	if bs != nil {
		// Scripts can modify values, and we don't want any
		// side effects.
		bsCopy, err := bs.Canonicalize()
		if err != nil {
			return nil, err
		}
		env["bindings"] = map[string]interface{}(bsCopy)
	} else {
		env["bindings"] = map[string]interface{}{}
	}

	o := goja.New()

	o.Set("_", env)

	if e.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	env["print"] = func(call goja.FunctionCall) goja.Value {
		if out == nil {
			return goja.Undefined()
		}
		ss := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			ss[i] = arg.String()
		}
		if _, err := io.WriteString(out, strings.Join(ss, " ")+"\n"); err != nil {
			protest(o, err.Error())
		}
		return goja.Undefined()
	}

	env["log"] = func(x interface{}) interface{} {
		x = export(x)
		js, err := json.Marshal(&x)
		if err != nil {
			log.Warn("can't marshal", "err", err)
		} else {
			log.Info(string(js))
		}
		return x
	}

	env["gensym"] = func() interface{} {
		return scripting.Gensym(32)
	}

	env["esc"] = func(x interface{}) interface{} {
		s, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}
		return url.QueryEscape(s)
	}

	// cronNext parses the given string as a crontab expression
	// using github.com/gorhill/cronexpr.
	env["cronNext"] = func(x interface{}) interface{} {
		cronExpr, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If Exec calls cancel() after RunProgram returns,
		// the interrupt is harmless.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := runProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	switch vv := v.Export().(type) {
	case map[string]interface{}:
		return scripting.Bindings(vv), nil
	default:
		return vv, nil
	}
}

func runProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}
