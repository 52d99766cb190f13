package fsync

import "sync/atomic"

// RWLock word layout: reader count in bits 0..29, write-held flag in bit
// 30, waiters-present flag in bit 31. The reader and writer wait-bitset
// masks partition waiters parked on the same word so a wake can target one
// cohort without disturbing the other.
const (
	rwWaitersBit   uint32 = 1 << 31
	rwWriteHeldBit uint32 = 1 << 30
	rwReaderMask   uint32 = 1
	rwWriterMask   uint32 = 2
)

// RWLock is a multi-reader/single-writer lock. It is writer-preferring: no
// new reader may acquire while a writer is waiting, so a continuous stream
// of readers cannot starve a writer. The zero value is a free RWLock.
type RWLock struct {
	state uint32
}

// LockRead blocks until a read lock is acquired.
func (l *RWLock) LockRead() {
	state := atomic.LoadUint32(&l.state)
	for {
		if state&(rwWriteHeldBit|rwWaitersBit) == 0 {
			if !atomic.CompareAndSwapUint32(&l.state, state, state+1) {
				state = atomic.LoadUint32(&l.state)
				continue
			}
			return
		}
		if state&rwWaitersBit == 0 {
			desired := rwWriteHeldBit | rwWaitersBit
			if !atomic.CompareAndSwapUint32(&l.state, state, desired) {
				state = atomic.LoadUint32(&l.state)
				continue
			}
			state = desired
		}
		futexWaitBitset(&l.state, state, rwReaderMask)
		// Once somebody has woken the readers, we expect a clean 0.
		state = 0
	}
}

// TryLockRead attempts to acquire a read lock without blocking.
func (l *RWLock) TryLockRead() bool {
	state := atomic.LoadUint32(&l.state)
	if state&(rwWriteHeldBit|rwWaitersBit) != 0 {
		return false
	}
	return atomic.CompareAndSwapUint32(&l.state, state, state+1)
}

// UnlockRead releases a read lock. Calling UnlockRead without holding a
// read lock is undefined behavior.
func (l *RWLock) UnlockRead() {
	newState := atomic.AddUint32(&l.state, ^uint32(0))
	oldState := newState + 1
	if oldState&rwWriteHeldBit != 0 {
		assertUnreachable("fsync: UnlockRead while write-locked")
	}
	count := oldState &^ rwWaitersBit
	if count == 0 {
		assertUnreachable("fsync: UnlockRead with no readers held")
	}
	if count == 1 && oldState&rwWaitersBit != 0 {
		expect := rwWaitersBit
		atomic.CompareAndSwapUint32(&l.state, expect, 0)
		futexWakeBitset(&l.state, 1, rwWriterMask)
	}
}

// LockWrite blocks until a write lock is acquired.
func (l *RWLock) LockWrite() {
	if atomic.CompareAndSwapUint32(&l.state, 0, rwWriteHeldBit) {
		return
	}
	state := atomic.LoadUint32(&l.state)
	for {
		if state&^rwWaitersBit == 0 {
			desired := rwWriteHeldBit | rwWaitersBit
			if !atomic.CompareAndSwapUint32(&l.state, state, desired) {
				state = atomic.LoadUint32(&l.state)
				continue
			}
			return
		}
		if state&rwWaitersBit == 0 {
			desired := state | rwWaitersBit
			if !atomic.CompareAndSwapUint32(&l.state, state, desired) {
				state = atomic.LoadUint32(&l.state)
				continue
			}
			state = desired
		}
		futexWaitBitset(&l.state, state, rwWriterMask)
		// Once somebody has woken a writer, we expect either 0 or just the
		// waiters bit; guess 0 first.
		state = 0
	}
}

// TryLockWrite attempts to acquire a write lock without blocking.
func (l *RWLock) TryLockWrite() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, rwWriteHeldBit)
}

// UnlockWrite releases a write lock. Calling UnlockWrite without holding a
// write lock is undefined behavior.
func (l *RWLock) UnlockWrite() {
	state := atomic.SwapUint32(&l.state, 0)
	if state&rwWriteHeldBit == 0 {
		assertUnreachable("fsync: UnlockWrite without a held write lock")
	}
	if state&rwWaitersBit != 0 {
		// Fair handoff: wake every parked reader and one parked writer; the
		// kernel picks which of them actually runs first.
		futexWakeBitset(&l.state, wakeAll, rwReaderMask)
		futexWakeBitset(&l.state, 1, rwWriterMask)
	}
}

// TryUpgrade attempts to upgrade the caller's sole held read lock to a
// write lock without blocking. The caller must hold a read lock and no
// other goroutine may hold one concurrently (reader count == 1); an
// upgrade attempt with more than one reader held always fails, even if the
// caller happens to own all of them.
func (l *RWLock) TryUpgrade() bool {
	if atomic.CompareAndSwapUint32(&l.state, 1, rwWriteHeldBit) {
		return true
	}
	state := atomic.LoadUint32(&l.state)
	if state == (1 | rwWaitersBit) {
		// No new readers or writers can enter while waiters are present, so
		// this transition is safe even though it's an unconditional
		// exchange rather than a CAS.
		atomic.SwapUint32(&l.state, rwWriteHeldBit|rwWaitersBit)
		return true
	}
	return false
}

// Downgrade converts the caller's held write lock into a read lock. The
// caller must hold a write lock.
func (l *RWLock) Downgrade() {
	state := atomic.SwapUint32(&l.state, 1)
	if state&rwWriteHeldBit == 0 {
		assertUnreachable("fsync: Downgrade without a held write lock")
	}
	if state&rwWaitersBit != 0 {
		// Wake the parked readers, not the writers: a writer still has to
		// wait behind the read lock the caller now holds.
		futexWakeBitset(&l.state, wakeAll, rwReaderMask)
	}
}
