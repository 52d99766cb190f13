package fsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCondVarWaitForPredicate(t *testing.T) {
	var mu Mutex
	cv := NewCondVar(&mu)
	ready := false

	done := make(chan struct{})
	mu.Lock()
	go func() {
		mu.Lock()
		cv.WaitFor(func() bool { return ready })
		mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitFor returned before the predicate became true")
	case <-time.After(20 * time.Millisecond):
	}

	ready = true
	mu.Unlock()
	cv.NotifyAll()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitFor never returned after NotifyAll")
	}
}

func TestCondVarNotifyOneWakesSingleWaiter(t *testing.T) {
	var mu Mutex
	cv := NewCondVar(&mu)

	var woken int32
	var mu2 sync.Mutex
	const waiters = 10
	var wg sync.WaitGroup
	wg.Add(waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			mu.Lock()
			cv.Wait()
			mu.Unlock()
			mu2.Lock()
			woken++
			mu2.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	cv.NotifyOne()
	time.Sleep(20 * time.Millisecond)

	mu2.Lock()
	got := woken
	mu2.Unlock()
	assert.EqualValues(t, 1, got, "NotifyOne should wake exactly one waiter")

	cv.NotifyAll()
	wg.Wait()
}

func TestCondVarNotifyAllWakesEveryWaiter(t *testing.T) {
	var mu Mutex
	cv := NewCondVar(&mu)

	const waiters = 30
	var wg sync.WaitGroup
	wg.Add(waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			mu.Lock()
			cv.Wait()
			mu.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	cv.NotifyAll()
	wg.Wait()
}
