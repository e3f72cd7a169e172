/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package ecmascript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bmc/javautil-sub002/scripting"
)

func run(t *testing.T, e *Engine, bs scripting.Bindings, code string) (interface{}, string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	compiled, err := e.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	x, err := e.Exec(ctx, bs, code, compiled, &out)
	if err != nil {
		t.Fatal(err)
	}
	return x, out.String()
}

func TestSimple(t *testing.T) {
	x, _ := run(t, NewEngine(), nil, `return {likes:"chips"};`)
	bs, is := x.(scripting.Bindings)
	if !is {
		t.Fatalf("%#v is a %T, not Bindings", x, x)
	}
	if s, _ := bs["likes"].(string); s != "chips" {
		t.Fatalf("didn't want %#v", bs["likes"])
	}
}

func TestBindings(t *testing.T) {
	bs := scripting.Bindings{"n": 41}
	x, _ := run(t, NewEngine(), bs, `_.bindings.n++; return _.bindings.n;`)
	if fmt.Sprint(x) != "42" {
		t.Fatalf("didn't want %#v", x)
	}
	if bs["n"] != 41 {
		t.Fatalf("bindings were modified: %#v", bs)
	}
}

func TestPrint(t *testing.T) {
	x, out := run(t, NewEngine(), nil, `_.print("hello", 42); _.print("bye");`)
	if x != nil {
		t.Fatalf("didn't want %#v", x)
	}
	if out != "hello 42\nbye\n" {
		t.Fatalf("didn't want %q", out)
	}
}

func TestNoCompile(t *testing.T) {
	e := NewEngine()
	x, err := e.Exec(context.Background(), nil, `return 1+2;`, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(x) != "3" {
		t.Fatalf("didn't want %#v", x)
	}
}

func TestBadCompiled(t *testing.T) {
	e := NewEngine()
	if _, err := e.Exec(context.Background(), nil, ``, "tacos", nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); }`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	e := NewEngine()
	e.Testing = true
	compiled, err := e.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Exec(ctx, nil, code, compiled, nil)
	if !errors.Is(err, Interrupted) {
		t.Fatalf("surprised by %v", err)
	}
}

func TestError(t *testing.T) {
	code := `likes + tacos;`
	e := NewEngine()
	compiled, err := e.Compile(context.Background(), code)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = e.Exec(context.Background(), nil, code, compiled, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestSyntaxError(t *testing.T) {
	if _, err := NewEngine().Compile(context.Background(), `return {;`); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestCronNext(t *testing.T) {
	x, _ := run(t, NewEngine(), nil, `return {next: _.cronNext("* 0 * * *")};`)
	s, is := x.(scripting.Bindings)["next"].(string)
	if !is {
		t.Fatalf("didn't want %#v", x)
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		t.Fatal(err)
	}
}

func TestCronNextBad(t *testing.T) {
	code := `return {next: _.cronNext("tacos")};`
	if _, err := NewEngine().Exec(context.Background(), nil, code, nil, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestEsc(t *testing.T) {
	x, _ := run(t, NewEngine(), nil, `return _.esc("a b&c");`)
	if x != "a+b%26c" {
		t.Fatalf("didn't want %#v", x)
	}
}

func TestGensym(t *testing.T) {
	x, _ := run(t, NewEngine(), nil, `return [_.gensym(), _.gensym()];`)
	xs, is := x.([]interface{})
	if !is || len(xs) != 2 {
		t.Fatalf("didn't want %#v", x)
	}
	if len(xs[0].(string)) != 32 || xs[0] == xs[1] {
		t.Fatalf("bad gensyms %#v", xs)
	}
}

func TestRequiresMap(t *testing.T) {
	e := NewEngine()
	e.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"double": `function double(x) { return 2*x; }`,
	})

	src := map[string]interface{}{
		"code":     `return double(21);`,
		"requires": []interface{}{"double"},
	}
	compiled, err := e.CompileSource(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	x, err := e.Exec(context.Background(), nil, "", compiled, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(x) != "42" {
		t.Fatalf("didn't want %#v", x)
	}

	src["requires"] = "triple"
	if _, err = e.CompileSource(context.Background(), src); err == nil {
		t.Fatal("should have complained about triple")
	}
}

func TestRequiresFile(t *testing.T) {
	dir := t.TempDir()
	lib := `function greet(who) { return "hello " + who; }`
	if err := os.WriteFile(filepath.Join(dir, "greet.js"), []byte(lib), 0644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine()
	e.LibraryProvider = MakeFileLibraryProvider(dir)
	e.Requires = []string{"file://greet.js"}

	x, _ := run(t, e, nil, `return greet("homer");`)
	if x != "hello homer" {
		t.Fatalf("didn't want %#v", x)
	}

	p := MakeFileLibraryProvider(dir)
	for _, name := range []string{"../greet.js", "http://example.com/greet.js", "missing.js"} {
		if _, err := p(context.Background(), name); err == nil {
			t.Fatalf("should have complained about %s", name)
		}
	}
}

func TestAsSource(t *testing.T) {
	code, libs, err := AsSource(map[interface{}]interface{}{
		"code":     "return 1;",
		"requires": []string{"a", "b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if code != "return 1;" || len(libs) != 2 {
		t.Fatalf("didn't want %q %#v", code, libs)
	}

	if _, _, err = AsSource(42); err == nil {
		t.Fatal("should have complained about 42")
	}
	if _, _, err = AsSource(map[string]interface{}{"code": 1}); err == nil {
		t.Fatal("should have complained about code")
	}
}
