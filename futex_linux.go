//go:build linux

package fsync

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux futex(2) operation numbers and flags, from linux/futex.h. These are
// defined locally rather than referenced from golang.org/x/sys/unix so this
// facade doesn't depend on which of them a given vendored x/sys happens to
// export; only the generic unix.Syscall6, unix.SYS_FUTEX and the errno
// values unix.EAGAIN and unix.EINTR are needed from the package itself.
const (
	futexWaitOp       = 0
	futexWakeOp       = 1
	futexRequeueOp    = 3
	futexWaitBitsetOp = 9
	futexWakeBitsetOp = 10
	futexPrivateFlag  = 128

	futexBitsetMatchAny = 0xffffffff
)

// futexWait blocks until addr is woken or its value no longer equals
// expected. The comparison and the sleep are atomic with respect to a
// concurrent futexWake/futexWakeBitset/futexRequeue touching addr.
func futexWait(addr *uint32, expected uint32) {
	futexWaitBitset(addr, expected, futexBitsetMatchAny)
}

// futexWake wakes up to n waiters currently parked on addr.
func futexWake(addr *uint32, n int) int {
	return futexWakeBitset(addr, n, futexBitsetMatchAny)
}

// futexWaitBitset is futexWait, restricted to waiters whose mask intersects
// the given mask. Used by RWLock to park readers and writers on the shared
// state word while letting wakes target one cohort or the other.
func futexWaitBitset(addr *uint32, expected, mask uint32) {
	for {
		_, _, errno := unix.Syscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(addr)),
			uintptr(futexWaitBitsetOp|futexPrivateFlag),
			uintptr(expected),
			0,
			0,
			uintptr(mask),
		)
		switch errno {
		case 0, unix.EAGAIN:
			return
		case unix.EINTR:
			// Interrupted by a signal; re-issue the wait, which has the
			// kernel compare the word against expected again before it
			// sleeps.
			continue
		default:
			return
		}
	}
}

// futexWakeBitset wakes up to n waiters parked on addr whose mask
// intersects the given mask, returning the number actually woken.
func futexWakeBitset(addr *uint32, n int, mask uint32) int {
	woken, _, _ := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(futexWakeBitsetOp|futexPrivateFlag),
		uintptr(n),
		0,
		0,
		uintptr(mask),
	)
	return int(woken)
}

// futexRequeue wakes up to wakeN waiters on addr and moves up to requeueN
// of the remaining waiters from addr onto addr2 without waking them.
func futexRequeue(addr *uint32, wakeN int, addr2 *uint32, requeueN int) int {
	woken, _, _ := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(futexRequeueOp|futexPrivateFlag),
		uintptr(wakeN),
		uintptr(requeueN),
		uintptr(unsafe.Pointer(addr2)),
		0,
	)
	return int(woken)
}
