package varstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bmc/javautil-sub002/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Store {
	s, err := Open(filepath.Join(t.TempDir(), "vars.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBasics(t *testing.T) {
	ctx := context.Background()
	s := open(t)

	_, have, err := s.Get(ctx, "likes")
	require.NoError(t, err)
	assert.False(t, have)

	require.NoError(t, s.Set(ctx, "likes", "tacos"))
	require.NoError(t, s.SetAll(ctx, map[string]string{
		"name":  "homer",
		"empty": "",
	}))

	v, have, err := s.Get(ctx, "likes")
	require.NoError(t, err)
	assert.True(t, have)
	assert.Equal(t, "tacos", v)

	v, have, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, have)
	assert.Equal(t, "", v)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"likes": "tacos", "name": "homer", "empty": ""}, all)

	vs, err := s.Variables(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 3)
	assert.Equal(t, "empty", vs[0].Name)
	assert.False(t, vs[0].Updated.IsZero())

	require.NoError(t, s.Delete(ctx, "likes"))
	require.NoError(t, s.Delete(ctx, "likes"))
	_, have, err = s.Get(ctx, "likes")
	require.NoError(t, err)
	assert.False(t, have)

	assert.Error(t, s.Set(ctx, "", "x"))
}

func TestBuckets(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	dev := s.Bucket("dev")

	require.NoError(t, s.Set(ctx, "host", "prod.example.com"))
	require.NoError(t, dev.Set(ctx, "host", "localhost"))

	v, _, err := s.Get(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, "prod.example.com", v)
	v, _, err = dev.Get(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", v)

	bs, err := s.Buckets(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{DefaultBucket, "dev"}, bs)

	all, err := s.Bucket("nothing").All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	filename := filepath.Join(t.TempDir(), "vars.db")

	s, err := Open(filename)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "likes", "chips"))
	require.NoError(t, s.Close())

	_, _, err = s.Get(ctx, "likes")
	assert.ErrorIs(t, err, ErrClosed)

	s, err = Open(filename)
	require.NoError(t, err)
	defer s.Close()
	v, have, err := s.Get(ctx, "likes")
	require.NoError(t, err)
	assert.True(t, have)
	assert.Equal(t, "chips", v)
}

func TestSubstitution(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	require.NoError(t, s.Set(ctx, "name", "Homer"))

	d := text.ChainDereferencer{s, text.MapDereferencer{"food": "donuts"}}
	out, err := text.NewUnixShellSubstituter().Substitute("$name likes ${food} and ${drink?beer}", d, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Homer likes donuts and beer", out)
}
