package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GoldenUpdateEnv, when set, makes Golden rewrite golden files instead of
// comparing against them.
const GoldenUpdateEnv = "LOCKTODO_GOLDEN_UPDATE"

// GoldenPath returns testdata/<name>.golden.
func GoldenPath(name string) string {
	return filepath.Join("testdata", name+".golden")
}

// Golden compares got with testdata/<name>.golden.
func Golden(t testing.TB, name string, got []byte) {
	t.Helper()

	path := GoldenPath(name)
	if os.Getenv(GoldenUpdateEnv) != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, got, 0644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "read golden file %s; got:\n%s", path, got)
	assert.Equal(t, string(want), string(got), "output mismatch for %s", name)
}

// GoldenString is like Golden but takes a string.
func GoldenString(t testing.TB, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}
