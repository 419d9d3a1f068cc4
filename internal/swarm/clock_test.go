package swarm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := NewClock()
	assert.Equal(t, uint64(0), c.Current())
	assert.Equal(t, uint64(1), c.Next())
	assert.Equal(t, uint64(1), c.Current())
}

func TestClock_ResumesFromStart(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, uint64(41), c.Current())
	assert.Equal(t, uint64(42), c.Next())
}

func TestClock_ConcurrentNextIsUnique(t *testing.T) {
	c := NewClock()
	const n = 100

	var mu sync.Mutex
	seen := make(map[uint64]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := c.Next()
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "every Next() must return a distinct round")
	assert.Equal(t, uint64(n), c.Current())
}
