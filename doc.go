// Copyright (c) 2024 The go-fsync Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package fsync implements a small family of synchronization primitives
// built directly on top of the kernel's futex facility: Mutex, RWLock,
// Semaphore, Event, Once, Barrier, CondVar, and Spinlock.
//
// Each primitive keeps its entire state in a single uint32 word. Fast,
// uncontended transitions are a single atomic compare-and-swap or exchange
// and never enter the kernel; a thread only parks on the futex wait queue
// once it has established that it must wait, and the word it parks on is
// the same word the corresponding unlock/notify/up call publishes to. There
// is no per-primitive allocation and no waiter list kept in user space: the
// kernel's futex wait queue, keyed by the address of the word, serves as the
// waiter list.
//
// # Ordering
//
// Go's sync/atomic only offers sequentially consistent operations, which is
// strictly stronger than the acquire/release/relaxed distinctions a C or C++
// implementation of these algorithms would use. Every release-then-acquire
// pairing documented on the individual types (Mutex.Unlock synchronizing
// with Mutex.Lock, Event.Notify with Event.Wait, and so on) therefore holds
// by construction.
//
// # Platform support
//
// futex_linux.go issues the real futex(2) syscall on linux/amd64 and
// linux/arm64, the two platforms this module supports in production.
// futex_fallback.go provides a goroutine-and-channel emulation of the same
// wait-queue semantics (wake-one, wake-all, wake-bitset, and requeue) for
// every other GOOS, so the package and its test suite build and run
// (functionally, if not with the same performance characteristics)
// elsewhere too.
//
// # Misuse
//
// As with the kernel's own futex-based primitives, misuse is undefined
// behavior rather than a reported error: unlocking a lock you don't hold,
// double-unlocking, or destroying a primitive that a goroutine is still
// inside are all programming errors, not runtime conditions to recover
// from. Building with the fsync_debug build tag turns the invariant checks
// sprinkled through this package from no-ops into panics, which is useful
// in tests but not intended to run in production (it costs real cycles on
// every slow-path transition).
package fsync
