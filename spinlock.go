package fsync

import (
	"runtime"
	"sync/atomic"
)

// spinTries is how many times Spinlock.Lock retries the exchange before it
// starts yielding the remainder of its scheduling quantum between attempts.
const spinTries = 8

// Spinlock is a pure userspace exclusive lock: it never parks on the futex
// wait queue, so it is only appropriate for critical sections expected to be
// held for a handful of instructions. Anything longer should use Mutex,
// which parks contending goroutines instead of burning CPU for them.
//
// The zero value is an unlocked Spinlock.
type Spinlock struct {
	locked uint32
}

// Lock spins until the lock is acquired, yielding the scheduler quantum
// after spinTries failed attempts.
func (s *Spinlock) Lock() {
	for attempt := 0; atomic.SwapUint32(&s.locked, 1) != 0; attempt++ {
		if attempt >= spinTries {
			runtime.Gosched()
		}
	}
}

// TryLock attempts to acquire the lock without spinning or blocking.
func (s *Spinlock) TryLock() bool {
	return atomic.SwapUint32(&s.locked, 1) == 0
}

// Unlock releases the lock. Unlocking a Spinlock that isn't held is
// undefined behavior.
func (s *Spinlock) Unlock() {
	atomic.StoreUint32(&s.locked, 0)
}
