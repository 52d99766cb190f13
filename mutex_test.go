package fsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutexTryLock(t *testing.T) {
	var m Mutex
	assert.True(t, m.TryLock())
	assert.False(t, m.TryLock(), "TryLock should fail while already held")
	m.Unlock()
	assert.True(t, m.TryLock(), "TryLock should succeed once released")
}

func TestMutexUnlockOfUnlockedPanicsInDebug(t *testing.T) {
	if !fsyncDebugBuild {
		t.Skip("assertUnreachable only panics when built with -tags fsync_debug")
	}
	var m Mutex
	assert.Panics(t, func() { m.Unlock() })
}

func TestMutexMutualExclusion(t *testing.T) {
	var m Mutex
	var counter int
	var wg sync.WaitGroup

	const goroutines = 100
	const iterations = 100

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
}

func TestMutexContendedWakesWaiters(t *testing.T) {
	var m Mutex
	m.Lock()

	var wg sync.WaitGroup
	const waiters = 20
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			m.Lock()
			m.Unlock()
		}()
	}

	m.Unlock()
	wg.Wait()
}
