package filekv_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locktodo/internal/backend/filekv"
	"locktodo/internal/kv"
)

func newStore(t *testing.T) (*filekv.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := filekv.New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestNewCreatesDirectory(t *testing.T) {
	_, dir := newStore(t)
	assert.DirExists(t, dir)
}

func TestGetMissingKey(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Get(context.Background(), "@todos")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestSetGetRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "@todos", []byte(`[1]`)))
	got, err := s.Get(ctx, "@todos")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	require.NoError(t, s.Set(ctx, "@todos", []byte(`[2]`)))
	got, err = s.Get(ctx, "@todos")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))
}

func TestKeysAreEscaped(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a/b", []byte(`x`)))
	assert.Equal(t, filepath.Join(dir, "a%2Fb.json"), s.Path("a/b"))
	assert.FileExists(t, s.Path("a/b"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "unexpected subdirectory %s", e.Name())
	}
}

func TestSetLeavesNoTempFiles(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, s.Set(context.Background(), "@todos", []byte(`[]`)))

	matches, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "@todos", []byte(`[]`)))
	require.NoError(t, s.Delete(ctx, "@todos"))
	_, err := s.Get(ctx, "@todos")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "@todos"), "deleting a missing key is not an error")
}

func TestCancelledContext(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Set(ctx, "@todos", []byte(`[]`)), context.Canceled)
}

func TestConcurrentWritersProduceWholeDocuments(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	docs := []string{`["a"]`, `["b","b"]`, `["c","c","c"]`}
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(doc string) {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, "@todos", []byte(doc)))
		}(docs[i%len(docs)])
	}
	wg.Wait()

	got, err := s.Get(ctx, "@todos")
	require.NoError(t, err)
	assert.Contains(t, docs, string(got))
}
