package store

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locktodo/internal/task"
	"locktodo/internal/testutil"
)

func TestStoreSkipsStaleGeneration(t *testing.T) {
	mem := testutil.NewMemoryKV()
	s := New(mem)

	newer := []task.Task{{ID: "b", Text: "newer"}}
	older := []task.Task{{ID: "a", Text: "older"}}

	superseded, err := s.store(2, newer)
	require.NoError(t, err)
	assert.False(t, superseded)

	superseded, err = s.store(1, older)
	require.NoError(t, err)
	assert.True(t, superseded)

	data, _ := mem.Value(DefaultKey)
	got, _, err := task.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, newer, got)
	assert.Equal(t, 1, mem.Sets())
}

func TestPersistAssignsIncreasingGenerations(t *testing.T) {
	mem := testutil.NewMemoryKV()
	s := New(mem)

	s.persist()
	s.persist()
	require.NoError(t, s.Wait(context.Background()))

	assert.Equal(t, uint64(2), s.gen)
	assert.Equal(t, uint64(2), s.written)
}

func TestWaitGivesUpWithoutLeaking(t *testing.T) {
	mem := testutil.NewMemoryKV()
	release := make(chan struct{})
	mem.BeforeSet = func(string, []byte) { <-release }
	s := New(mem)

	s.persist()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	before := runtime.NumGoroutine()
	for i := 0; i < 100; i++ {
		assert.ErrorIs(t, s.Wait(cancelled), context.Canceled)
	}
	assert.Less(t, runtime.NumGoroutine()-before, 10, "Wait should not leave goroutines behind")

	close(release)
	require.NoError(t, s.Wait(context.Background()))
	assert.Nil(t, s.nextInflight())
	assert.Equal(t, 1, mem.Sets())
}
