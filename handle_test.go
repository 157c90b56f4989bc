package objc

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStore_Basic(t *testing.T) {
	hs := newHandleStore()
	require.NotNil(t, hs)

	assert.Equal(t, 0, hs.Count())

	id := hs.Store("boxed value")
	assert.Greater(t, id, int32(0))
	assert.Equal(t, 1, hs.Count())

	value, ok := hs.Load(id)
	assert.True(t, ok)
	assert.Equal(t, "boxed value", value)

	assert.True(t, hs.Delete(id))
	assert.Equal(t, 0, hs.Count())

	value, ok = hs.Load(id)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestHandleStore_Take(t *testing.T) {
	hs := newHandleStore()
	id := hs.Store(42)

	value, ok := hs.Take(id)
	assert.True(t, ok)
	assert.Equal(t, 42, value)
	assert.Equal(t, 0, hs.Count())

	// a second Take must miss: the reclaim path relies on exactly-once
	value, ok = hs.Take(id)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestHandleStore_MultipleValues(t *testing.T) {
	hs := newHandleStore()

	testValues := []any{
		"string",
		42,
		[]int{1, 2, 3},
		map[string]int{"key": 123},
		nil,
	}

	ids := make([]int32, len(testValues))
	for i, value := range testValues {
		ids[i] = hs.Store(value)
		assert.Greater(t, ids[i], int32(0))
	}
	assert.Equal(t, len(testValues), hs.Count())

	for i, id := range ids {
		value, ok := hs.Load(id)
		assert.True(t, ok)
		assert.Equal(t, testValues[i], value)
	}

	// handles are unique
	seen := make(map[int32]bool)
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestHandleStore_ZeroNeverIssued(t *testing.T) {
	hs := newHandleStore()
	for i := 0; i < 100; i++ {
		assert.NotEqual(t, int32(0), hs.Store(i))
	}
}

func TestHandleStore_OverflowPanics(t *testing.T) {
	hs := newHandleStoreWithStartID(math.MaxInt32 - 1)

	assert.Panics(t, func() {
		hs.Store("first")  // MaxInt32
		hs.Store("second") // wraps negative
	})
}

func TestHandleStore_Concurrent(t *testing.T) {
	hs := newHandleStore()

	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	idsCh := make(chan int32, goroutines*perGoroutine)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				idsCh <- hs.Store(g*perGoroutine + i)
			}
		}(g)
	}
	wg.Wait()
	close(idsCh)

	assert.Equal(t, goroutines*perGoroutine, hs.Count())

	seen := make(map[int32]bool)
	for id := range idsCh {
		assert.False(t, seen[id], "duplicate handle %d", id)
		seen[id] = true
		_, ok := hs.Load(id)
		assert.True(t, ok)
	}
}
