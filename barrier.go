package fsync

import "sync/atomic"

// barrierWaitersBit occupies the top bit of Barrier's word; the remaining
// 31 bits hold the number of participants still to check in for the
// current episode.
const barrierWaitersBit uint32 = 1 << 31

// Barrier is a reusable rendezvous point for a fixed number of
// participants. After an episode completes (every participant has checked
// in), the barrier's word returns to 0 and stays there: the Barrier does not
// rearm itself, and checking in again without reinitializing it (for example
// with NewBarrier) is not supported. "Reusable" here means reusable by the
// caller's agreement on when and how the next episode begins.
type Barrier struct {
	state uint32
}

// NewBarrier returns a Barrier configured for party participants per
// episode. party must be at least 1.
func NewBarrier(party int) *Barrier {
	if party < 1 {
		panic("fsync: Barrier party size must be >= 1")
	}
	return &Barrier{state: uint32(party)}
}

// CheckIn records the caller's arrival for the current episode without
// waiting for the others.
func (b *Barrier) CheckIn() {
	state := atomic.AddUint32(&b.state, ^uint32(0))
	if state == barrierWaitersBit {
		atomic.StoreUint32(&b.state, 0)
		futexWake(&b.state, wakeAll)
	}
}

// Wait blocks until every participant of the current episode has checked
// in, without itself checking in.
func (b *Barrier) Wait() {
	state := atomic.LoadUint32(&b.state)
	for state&^barrierWaitersBit != 0 {
		if state&barrierWaitersBit == 0 {
			if !atomic.CompareAndSwapUint32(&b.state, state, state|barrierWaitersBit) {
				state = atomic.LoadUint32(&b.state)
				continue
			}
			state |= barrierWaitersBit
		}
		futexWait(&b.state, state)
		state = atomic.LoadUint32(&b.state)
	}
}

// TryWait reports whether the current episode has already completed,
// without blocking.
func (b *Barrier) TryWait() bool {
	return atomic.LoadUint32(&b.state)&^barrierWaitersBit == 0
}

// CheckInAndWait records the caller's arrival and blocks until every other
// participant of the current episode has also checked in.
func (b *Barrier) CheckInAndWait() {
	state := atomic.AddUint32(&b.state, ^uint32(0))
	if state&^barrierWaitersBit == 0 {
		// We observed 0 (or just the waiters bit) immediately after our own
		// decrement, so we are the last participant to arrive.
		if state == barrierWaitersBit {
			atomic.StoreUint32(&b.state, 0)
			futexWake(&b.state, wakeAll)
		}
		return
	}
	// From here on, seeing the count reach 0 means somebody else checked in
	// last and already woke everyone; we only need to wake ourselves up.
	for state&^barrierWaitersBit != 0 {
		if state&barrierWaitersBit == 0 {
			if !atomic.CompareAndSwapUint32(&b.state, state, state|barrierWaitersBit) {
				state = atomic.LoadUint32(&b.state)
				continue
			}
			state |= barrierWaitersBit
		}
		futexWait(&b.state, state)
		state = atomic.LoadUint32(&b.state)
	}
}

// CheckInAndTryWait records the caller's arrival and reports whether that
// check-in completed the current episode, without blocking.
func (b *Barrier) CheckInAndTryWait() bool {
	state := atomic.AddUint32(&b.state, ^uint32(0))
	if state&^barrierWaitersBit != 0 {
		return false
	}
	if state == barrierWaitersBit {
		atomic.StoreUint32(&b.state, 0)
		futexWake(&b.state, wakeAll)
	}
	return true
}
