package fsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinlockTryLock(t *testing.T) {
	var s Spinlock
	assert.True(t, s.TryLock())
	assert.False(t, s.TryLock(), "TryLock should fail while already held")
	s.Unlock()
	assert.True(t, s.TryLock(), "TryLock should succeed once released")
}

func TestSpinlockMutualExclusion(t *testing.T) {
	var s Spinlock
	var counter int
	var wg sync.WaitGroup

	const goroutines = 50
	const iterations = 1000

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				s.Lock()
				counter++
				s.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
}
