package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmc/javautil-sub002/cmdline"
	"github.com/bmc/javautil-sub002/text"
	"github.com/bmc/javautil-sub002/util/testutil"
	"github.com/bmc/javautil-sub002/varstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVarsubst(t *testing.T, in string, args ...string) (string, error) {
	var out bytes.Buffer
	v := newVarsubst()
	v.in = strings.NewReader(in)
	v.out = &out
	err := cmdline.Execute(context.Background(), "varsubst", v, args)
	return out.String(), err
}

func TestDefines(t *testing.T) {
	out, err := runVarsubst(t, "$who likes ${food?tacos} and \\$5 ${drink}.", "-D", "who=Homer", "--define=drink=beer")
	require.NoError(t, err)
	assert.Equal(t, "Homer likes tacos and $5 beer.", out)
}

func TestVarsFile(t *testing.T) {
	filename := testutil.WriteFile(t, "vars.yaml", "who: Marge\nhair:\n  color: blue\n  height: 2\n")

	out, err := runVarsubst(t, "$who ${hair.color} ${hair.height}", "-f", filename, "-D", "who=Lisa")
	require.NoError(t, err)
	assert.Equal(t, "Lisa blue 2", out)
}

func TestStore(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "vars.db")

	_, err := runVarsubst(t, "", "-d", filename, "-S", "-D", "who=Bart")
	require.NoError(t, err)

	out, err := runVarsubst(t, "Hi $who", "-d", filename)
	require.NoError(t, err)
	assert.Equal(t, "Hi Bart", out)

	s, err := varstore.Open(filename)
	require.NoError(t, err)
	defer s.Close()
	v, have, err := s.Get(context.Background(), "who")
	require.NoError(t, err)
	assert.True(t, have)
	assert.Equal(t, "Bart", v)
}

func TestEnv(t *testing.T) {
	t.Setenv("VARSUBST_TEST", "from env")
	out, err := runVarsubst(t, "$VARSUBST_TEST", "-e")
	require.NoError(t, err)
	assert.Equal(t, "from env", out)

	out, err = runVarsubst(t, "[$VARSUBST_TEST]")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestWindows(t *testing.T) {
	out, err := runVarsubst(t, "%who% is 100%% yellow", "-w", "-D", "who=Maggie")
	require.NoError(t, err)
	assert.Equal(t, "Maggie is 100% yellow", out)
}

func TestAbort(t *testing.T) {
	_, err := runVarsubst(t, "$nobody", "-u")
	var ue *text.UndefinedVariableError
	assert.True(t, errors.As(err, &ue))

	_, err = runVarsubst(t, "${oops", "-s")
	var se *text.SyntaxError
	assert.True(t, errors.As(err, &se))

	out, err := runVarsubst(t, "${oops")
	require.NoError(t, err)
	assert.Equal(t, "${oops", out)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	o := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(a, []byte("one $x\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("two $x\n"), 0644))

	_, err := runVarsubst(t, "", "-D", "x=!", "-o", o, a, b)
	require.NoError(t, err)
	bs, err := os.ReadFile(o)
	require.NoError(t, err)
	assert.Equal(t, "one !\ntwo !\n", string(bs))
}

func TestOutputInPlace(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("hello $who\n"), 0600))

	_, err := runVarsubst(t, "", "-D", "who=Homer", "-o", in, in)
	require.NoError(t, err)
	bs, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "hello Homer\n", string(bs))

	fi, err := os.Stat(in)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
}

func TestOutputKeptOnFailure(t *testing.T) {
	dir := t.TempDir()
	o := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(o, []byte("previous good output\n"), 0644))

	_, err := runVarsubst(t, "a $nope", "-u", "-o", o)
	var ue *text.UndefinedVariableError
	require.True(t, errors.As(err, &ue), "%v", err)

	bs, err := os.ReadFile(o)
	require.NoError(t, err)
	assert.Equal(t, "previous good output\n", string(bs))

	// No temporary files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-D", "novalue"},
		{"-S"},
		{"-D"},
		{"-z"},
	} {
		_, err := runVarsubst(t, "", args...)
		var ue *cmdline.UsageError
		assert.True(t, errors.As(err, &ue), "%v: %v", args, err)
	}
}
