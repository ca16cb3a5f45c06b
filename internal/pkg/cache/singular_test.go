package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingularMutexGetSet(t *testing.T) {
	c := NewSingular[[]string]("users")

	var calls int
	var mu sync.Mutex
	fill := func() ([]string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return []string{"kim", "lee"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got []string
			assert.NoError(t, c.MutexGetSet(&got, fill, time.Minute))
			assert.Equal(t, []string{"kim", "lee"}, got)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete())
	var got []string
	assert.ErrorIs(t, c.Get(&got), ErrNotFound)
}

func TestSingularValueFuncError(t *testing.T) {
	c := NewSingular[int]("count")
	boom := errors.New("boom")

	var got int
	err := c.MutexGetSet(&got, func() (int, error) { return 0, boom }, time.Minute)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.Get(&got), ErrNotFound)
}
