package fsync

import "sync/atomic"

// Semaphore word layout: available count in the low 31 bits, a
// "waiters present" flag in bit 31. That flag may be set conservatively
// (a false positive, "possibly waiters") but must never be cleared while a
// waiter has definitely parked since the last wake — every algorithm below
// that clears it either holds a guarantee nobody could have newly arrived,
// or re-sets the bit on discovering that guarantee didn't hold.
const (
	semWaitersBit uint32 = 1 << 31
	semCountMask  uint32 = semWaitersBit - 1
)

// MaxSemaphoreValue is the largest count a Semaphore can represent.
const MaxSemaphoreValue = semCountMask

// Semaphore is a counting semaphore. The zero value is a Semaphore with no
// permits available, the same as NewSemaphore(0).
type Semaphore struct {
	state uint32
}

// NewSemaphore returns a Semaphore with the given initial count. initial
// must not exceed MaxSemaphoreValue.
func NewSemaphore(initial uint32) *Semaphore {
	if initial > MaxSemaphoreValue {
		panic("fsync: Semaphore initial value overflows the 31-bit count")
	}
	return &Semaphore{state: initial}
}

// Down blocks until a permit is available, then takes one.
func (s *Semaphore) Down() {
	state := atomic.LoadUint32(&s.state)
	responsibleForWaking := false

	for {
		count := state &^ semWaitersBit
		if count > 0 {
			waitersBit := state & semWaitersBit
			goingToWake := false
			if responsibleForWaking && waitersBit == 0 {
				// We were ourselves woken previously, and nobody else has
				// claimed responsibility for waking further threads: if
				// there's more than one permit available, that's us.
				if count > 1 {
					goingToWake = true
				}
				// Future Up calls, not further Down calls in the threads
				// we're about to wake, become responsible for waking
				// anyone else.
				waitersBit = semWaitersBit
			}
			desired := (count - 1) | waitersBit
			if !atomic.CompareAndSwapUint32(&s.state, state, desired) {
				state = atomic.LoadUint32(&s.state)
				continue
			}
			if goingToWake {
				futexWake(&s.state, int(count-1))
			}
			return
		}
		if state == 0 {
			if !atomic.CompareAndSwapUint32(&s.state, state, semWaitersBit) {
				state = atomic.LoadUint32(&s.state)
				continue
			}
			state = semWaitersBit
		}
		responsibleForWaking = true
		futexWait(&s.state, state)
		// The state we expect to see on waking is one permit available and
		// no waiters bit; if that guess is wrong the CAS above fails and we
		// reload and reevaluate.
		state = 1
	}
}

// TryDown attempts to take a permit without blocking, reporting whether it
// succeeded.
func (s *Semaphore) TryDown() bool {
	state := atomic.LoadUint32(&s.state)
	count := state &^ semWaitersBit
	if count == 0 {
		return false
	}
	desired := (count - 1) | (state & semWaitersBit)
	return atomic.CompareAndSwapUint32(&s.state, state, desired)
}

// Up releases a permit, waking a waiter if one was parked on Down. Calling
// Up enough times to exceed MaxSemaphoreValue is undefined behavior; debug
// builds assert against it.
func (s *Semaphore) Up() {
	if atomic.LoadUint32(&s.state)&semCountMask == semCountMask {
		assertUnreachable("fsync: Semaphore.Up overflowed the 31-bit count")
	}
	state := atomic.AddUint32(&s.state, 1)
	if state&semWaitersBit == 0 {
		return
	}
	// Clear the waiters bit; the thread we're about to wake becomes
	// responsible for waking further threads if more permits are available.
	state = fetchAndUint32(&s.state, ^semWaitersBit)
	if state&semWaitersBit == 0 {
		// Someone else already handled it.
		return
	}
	futexWake(&s.state, 1)
}
