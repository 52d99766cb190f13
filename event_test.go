package fsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventTryWait(t *testing.T) {
	var e Event
	assert.False(t, e.TryWait())
	e.Notify()
	assert.True(t, e.TryWait())
}

func TestEventNotifyIsIdempotent(t *testing.T) {
	var e Event
	e.Notify()
	e.Notify()
	e.Wait()
	assert.True(t, e.TryWait())
}

func TestEventWaitBlocksUntilNotify(t *testing.T) {
	var e Event
	done := make(chan struct{})

	go func() {
		e.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Notify")
	case <-time.After(20 * time.Millisecond):
	}

	e.Notify()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after Notify")
	}
}

func TestEventManyWaiters(t *testing.T) {
	var e Event
	var wg sync.WaitGroup

	const waiters = 50
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			e.Wait()
		}()
	}

	e.Notify()
	wg.Wait()
}
