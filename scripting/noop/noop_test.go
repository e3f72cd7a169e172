package noop

import (
	"context"
	"testing"

	"github.com/bmc/javautil-sub002/scripting"
)

func TestNoop(t *testing.T) {
	e := NewEngine()
	e.Silent = true

	compiled, err := e.Compile(context.Background(), "anything at all")
	if err != nil {
		t.Fatal(err)
	}

	bs := scripting.Bindings{"likes": "tacos"}
	x, err := e.Exec(context.Background(), bs, "anything at all", compiled, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, is := x.(scripting.Bindings)
	if !is {
		t.Fatalf("%#v is a %T", x, x)
	}
	if got["likes"] != "tacos" {
		t.Fatalf("didn't want %#v", got)
	}
}
