package kv_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/monedero-app/monedero/internal/kv"
	"github.com/monedero-app/monedero/internal/kv/kvtest"
)

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &kvtest.StoreSuite{Open: func() kv.Store { return kv.NewMemory() }})
}

func TestDirStore(t *testing.T) {
	suite.Run(t, &kvtest.StoreSuite{Open: func() kv.Store {
		d, err := kv.OpenDir(filepath.Join(t.TempDir(), "store"))
		require.NoError(t, err)
		return d
	}})
}

func TestDirStore_FileLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	d, err := kv.OpenDir(dir)
	require.NoError(t, err)

	ctx := t.Context()
	require.NoError(t, d.Set(ctx, "@transactions_42", []byte(`[]`)))
	require.NoError(t, d.Set(ctx, "a/b", []byte(`{}`)))

	_, err = os.Stat(filepath.Join(dir, "@transactions_42.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "a%2Fb.json"))
	assert.NoError(t, err, "slashes must not create subdirectories")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files should be left behind")
}

func TestDirStore_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	d, err := kv.OpenDir(dir)
	require.NoError(t, err)
	require.NoError(t, d.Set(t.Context(), "@user", []byte(`{"id":"u1"}`)))
	require.NoError(t, d.Close())

	again, err := kv.OpenDir(dir)
	require.NoError(t, err)
	v, found, err := again.Get(t.Context(), "@user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":"u1"}`, string(v))
}
