package scripting

import (
	"testing"

	"github.com/bmc/javautil-sub002/util/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingsCopy(t *testing.T) {
	bs := Bindings{"likes": "tacos"}
	c := bs.Copy()
	c["likes"] = "chips"
	assert.Equal(t, "tacos", bs["likes"])
}

func TestBindingsCanonicalize(t *testing.T) {
	bs := Bindings{
		"n":     3,
		"names": []string{"homer", "marge"},
	}
	c, err := bs.Canonicalize()
	require.NoError(t, err)
	assert.Equal(t, testutil.Dwimjs(`{"n":3,"names":["homer","marge"]}`), map[string]interface{}(c))
	assert.Equal(t, `{"n":3,"names":["homer","marge"]}`, testutil.JS(c))

	_, err = Bindings{"f": func() {}}.Canonicalize()
	assert.Error(t, err)
}

func TestGensym(t *testing.T) {
	s := Gensym(16)
	assert.Len(t, s, 16)
	assert.NotEqual(t, s, Gensym(16))
}
