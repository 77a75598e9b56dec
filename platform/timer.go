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

package platform

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// timerWheel is a named-instance one-shot timer set. Every GID port owns a
// distinct instanceID per logical timer (join, leave, hold, leaveall), so a
// second StartTimer under the same id is always meant to replace, never
// stack, the first. Expiry callbacks are serialized through dispatch: the
// protocol layer is single-threaded cooperative, and two expiries running
// concurrently would tear its shared state.
type timerWheel struct {
	ctx context.Context

	mu sync.Mutex
	t  map[string]*time.Timer

	dispatch sync.Mutex
}

func newTimerWheel(ctx context.Context) *timerWheel {
	if ctx == nil {
		ctx = context.Background()
	}
	return &timerWheel{ctx: ctx, t: make(map[string]*time.Timer)}
}

func (w *timerWheel) start(instanceID string, d time.Duration, fn func()) {
	w.arm(instanceID, d, fn)
}

func (w *timerWheel) startRandom(instanceID string, d time.Duration, fn func()) {
	if d <= 0 {
		w.arm(instanceID, 0, fn)
		return
	}
	half := d / 2
	jitter := time.Duration(rand.Int63n(int64(d - half)))
	w.arm(instanceID, half+jitter, fn)
}

func (w *timerWheel) arm(instanceID string, d time.Duration, fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.t[instanceID]; ok {
		existing.Stop()
	}

	w.t[instanceID] = time.AfterFunc(d, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		w.mu.Lock()
		delete(w.t, instanceID)
		w.mu.Unlock()

		w.dispatch.Lock()
		defer w.dispatch.Unlock()
		fn()
	})
}

func (w *timerWheel) cancel(instanceID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.t[instanceID]; ok {
		existing.Stop()
		delete(w.t, instanceID)
	}
}
