package fsync

import "sync/atomic"

// Mutex state values. The word is three-valued rather than a plain bool so
// that an uncontended Unlock is a store with no wake obligation: only a
// thread that has itself taken the slow path publishes lockedContended, and
// only lockedContended pays for a futexWake on release.
const (
	mutexUnlocked        uint32 = 0
	mutexLockedQuiet     uint32 = 1
	mutexLockedContended uint32 = 2
)

// Mutex is a blocking, futex-backed exclusive lock. The zero value is an
// unlocked Mutex.
//
// A thread that has ever taken the slow path in Lock always publishes
// mutexLockedContended on acquiring, even at a moment the word was observed
// unlocked. Without that pessimism, Unlock would sometimes wake nobody,
// because a prior waiter could acquire quietly and strand everyone behind
// it: waking one waiter on release is only safe because every slow-path
// acquirer commits to waking the next one in turn.
type Mutex struct {
	state uint32
}

// TryLock attempts to acquire m without blocking.
func (m *Mutex) TryLock() bool {
	return atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLockedQuiet)
}

// Lock blocks until m is acquired.
func (m *Mutex) Lock() {
	if atomic.CompareAndSwapUint32(&m.state, mutexUnlocked, mutexLockedQuiet) {
		return
	}
	m.lockSlow()
}

// lockPessimistic behaves like Lock but never attempts the fast path: it
// always publishes mutexLockedContended, even if the mutex turns out to
// have been free. It exists only for CondVar.Wait's post-wait relock; see
// CondVar's doc comment for why NotifyAll's requeue needs this. It must
// not be exposed outside the package.
func (m *Mutex) lockPessimistic() {
	m.lockSlow()
}

// lockSlow performs the blocking swap-and-park loop shared by Lock's slow
// path and lockPessimistic. It always publishes mutexLockedContended on
// acquisition, which is the key invariant described in Mutex's doc comment.
func (m *Mutex) lockSlow() {
	state := atomic.SwapUint32(&m.state, mutexLockedContended)
	for state != mutexUnlocked {
		futexWait(&m.state, mutexLockedContended)
		state = atomic.SwapUint32(&m.state, mutexLockedContended)
	}
}

// Unlock releases m. Unlocking a Mutex that isn't held by the caller is
// undefined behavior; debug builds abort at the assertion below when m is
// not locked at all.
func (m *Mutex) Unlock() {
	switch atomic.SwapUint32(&m.state, mutexUnlocked) {
	case mutexUnlocked:
		assertUnreachable("fsync: Unlock of an unlocked Mutex")
	case mutexLockedQuiet:
		// No thread has ever taken the slow path for this holder; nobody
		// can be parked, so there's nothing to wake.
	case mutexLockedContended:
		// Wake exactly one waiter. That waiter took the slow path to get
		// here, so it will itself publish lockedContended on acquiring,
		// propagating the wake obligation to whoever is behind it.
		futexWake(&m.state, 1)
	}
}
