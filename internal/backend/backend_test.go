package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locktodo/internal/backend"
	"locktodo/internal/backend/filekv"
	"locktodo/internal/backend/sqlkv"
	"locktodo/internal/config"
)

func newConfig(t *testing.T, backendName string) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.Settings.Storage.Backend = backendName
	return cfg
}

func TestOpenFile(t *testing.T) {
	cfg := newConfig(t, config.BackendFile)
	s, err := backend.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &filekv.Store{}, s)
	assert.DirExists(t, cfg.DataPath())
}

func TestOpenSQLite(t *testing.T) {
	cfg := newConfig(t, config.BackendSQLite)
	s, err := backend.Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &sqlkv.Store{}, s)
	assert.FileExists(t, cfg.DatabasePath())
}

func TestOpenUnknown(t *testing.T) {
	cfg := newConfig(t, "redis")
	_, err := backend.Open(context.Background(), cfg)
	assert.EqualError(t, err, "unknown storage backend: redis")
}
