package scripting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo is an Engine that prints its source and returns its bindings.
type echo struct {
	compiles int
}

func (e *echo) Name() string { return "echo" }

func (e *echo) Compile(ctx context.Context, src string) (interface{}, error) {
	e.compiles++
	if src == "fail" {
		return nil, errors.New("can't compile")
	}
	return src, nil
}

func (e *echo) Exec(ctx context.Context, bs Bindings, src string, compiled interface{}, out io.Writer) (interface{}, error) {
	fmt.Fprint(out, compiled)
	return bs, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	e := &echo{}
	r.Register(e, "Parrot", ".ECHO")

	for _, lang := range []string{"echo", "ECHO", "parrot"} {
		got, err := r.Find(lang)
		require.NoError(t, err, lang)
		assert.Same(t, e, got)
	}
	got, err := r.ForFile("/tmp/x.echo")
	require.NoError(t, err)
	assert.Same(t, e, got)

	assert.Equal(t, []string{"echo", "parrot"}, r.Languages())

	_, err = r.Find(".echo")
	assert.True(t, errors.Is(err, ErrEngineNotFound))
	_, err = r.ForFile("x")
	assert.True(t, errors.Is(err, ErrEngineNotFound))
}

func TestUnifiedExec(t *testing.T) {
	r := NewRegistry()
	e := &echo{}
	r.Register(e)

	var out bytes.Buffer
	u := NewUnified(r)
	u.Output = &out
	u.Put("likes", "tacos")

	x, err := u.Eval(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out.String())
	assert.Equal(t, Bindings{"likes": "tacos"}, x)
	assert.Equal(t, 1, e.compiles)

	// The engine gets a copy.
	x.(Bindings)["likes"] = "chips"
	v, _ := u.Get("likes")
	assert.Equal(t, "tacos", v)

	_, err = u.Eval(context.Background(), "echo", "fail")
	assert.Error(t, err)
}
