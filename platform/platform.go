/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package platform declares the external collaborators GID/GIP/GMR never
// implement themselves: PDU allocation, the scheduler's timer primitives,
// and the panic hook used for invariant violations that the protocol layer
// cannot recover from on its own. A single in-process implementation
// (New) is provided so the module runs end-to-end and is exercised by
// tests; a real deployment swaps it for one backed by its own event loop.
package platform

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Pdu is an allocated protocol data unit buffer. ID lets log lines
// correlate allocation, fill and transmit across what looks like an async
// handoff but, per the single-threaded cooperative model, never actually
// runs concurrently with the caller.
type Pdu struct {
	ID  uuid.UUID
	Buf []byte
}

// Services is what GID, GIP and GMR depend on instead of talking to the
// operating system directly: allocate a PDU, arm or cancel a timer, and
// escalate an unrecoverable condition. Timer callbacks are dispatched one
// at a time, never concurrently with the caller that armed them — the
// protocol layer is cooperative and single-threaded, and every expiry is a
// fresh invocation rather than a resumed one.
type Services interface {
	// AllocPdu returns a PDU buffer of at least size bytes.
	AllocPdu(size int) (*Pdu, error)

	// StartTimer arms a one-shot timer that invokes fn after d elapses,
	// tagged with instanceID for cancellation via CancelTimer. Starting a
	// timer under an instanceID that already has one running replaces it.
	StartTimer(instanceID string, d time.Duration, fn func())

	// StartRandomTimer is StartTimer with an actual delay uniformly chosen
	// in [d/2, d), the jitter the Applicant's join timer needs to avoid
	// every port on a shared LAN segment retransmitting in lockstep.
	StartRandomTimer(instanceID string, d time.Duration, fn func())

	// CancelTimer disarms a previously started timer, if any. It is a
	// no-op if instanceID has none running.
	CancelTimer(instanceID string)

	// Panic escalates an unrecoverable invariant violation. Unlike Go's
	// panic, it is a platform decision: Services may choose to restart
	// only the owning application instance rather than the process.
	Panic(reason string)
}

// services is the bundled in-process Services implementation: an
// in-memory PDU allocator plus a context-driven timer wheel good enough to
// run the module standalone and under test.
type services struct {
	timers  *timerWheel
	onPanic func(reason string)
}

// Option customizes New.
type Option func(*services)

// WithPanicHook overrides the default Panic behavior (which ignores the
// reason and returns) with fn.
func WithPanicHook(fn func(reason string)) Option {
	return func(s *services) { s.onPanic = fn }
}

// New returns an in-process Services. ctx bounds the lifetime of every
// timer it arms; canceling ctx stops the driving goroutine and all
// outstanding timers.
func New(ctx context.Context, opts ...Option) Services {
	s := &services{
		timers:  newTimerWheel(ctx),
		onPanic: func(string) {},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *services) AllocPdu(size int) (*Pdu, error) {
	if size < 0 {
		size = 0
	}
	return &Pdu{ID: uuid.New(), Buf: make([]byte, 0, size)}, nil
}

func (s *services) StartTimer(instanceID string, d time.Duration, fn func()) {
	s.timers.start(instanceID, d, fn)
}

func (s *services) StartRandomTimer(instanceID string, d time.Duration, fn func()) {
	s.timers.startRandom(instanceID, d, fn)
}

func (s *services) CancelTimer(instanceID string) {
	s.timers.cancel(instanceID)
}

func (s *services) Panic(reason string) {
	s.onPanic(reason)
}
