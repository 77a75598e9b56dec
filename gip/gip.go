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

// Package gip is GARP Information Propagation: the dead-reckoning
// reference counts that mirror attribute registrations across every
// currently-forwarding ("connected") port of one application instance, and
// the connect/disconnect fan-out that keeps them correct as ports join or
// leave that ring. It implements gid.Propagator, so gid drives it through
// a narrow interface and never imports this package directly.
package gip

import (
	"fmt"

	"github.com/sabouaram/garpd/garp"
	"github.com/sabouaram/garpd/gid"
	"github.com/sabouaram/garpd/logger"
)

var _ gid.Propagator = (*Ring)(nil)

// Ring is one application's connected-port ring plus its per-attribute
// propagation counts. The ring itself is not stored as linked pointers: it
// is recomputed, on every connect/disconnect, as the subsequence of
// app.Ports() (already kept in ascending port-number order by package gid)
// whose ports currently report IsConnected — the same arena-plus-filter
// shape gid.Application uses for its own port ring, applied one level up.
type Ring struct {
	app *gid.Application
	log logger.Logger

	counts []uint32
	order  []int // port numbers, ring order, subset of app.Ports()

	metrics *metricsSink
}

// New returns a Ring tracking up to maxAttributes independent attribute
// indices for app. maxAttributes must be at least app.MaxGidIndex+1.
func New(app *gid.Application, maxAttributes int, log logger.Logger) *Ring {
	r := &Ring{
		app:    app,
		log:    log,
		counts: make([]uint32, maxAttributes),
	}
	r.metrics = newMetricsSink(r)
	app.Metrics = r.metrics
	return r
}

// Count returns the current number of connected ports on which attribute
// index is registered.
func (r *Ring) Count(index int) uint32 {
	if index < 0 || index >= len(r.counts) {
		return 0
	}
	return r.counts[index]
}

// Connected returns every port currently in the ring, in ring order.
func (r *Ring) Connected() []*gid.Port {
	out := make([]*gid.Port, 0, len(r.order))
	for _, no := range r.order {
		if p, ok := r.app.FindPort(no); ok {
			out = append(out, p)
		}
	}
	return out
}

func asGidPort(port garp.Port) (*gid.Port, bool) {
	gp, ok := port.(*gid.Port)
	return gp, ok
}

// Connect splices port into the connected ring and raises whatever local
// join requests and cross-ring join propagations are needed to reconcile
// its (possibly already non-quiescent) machines with the rest of the ring.
// It is idempotent: connecting an already-connected port is a no-op.
func (r *Ring) Connect(port garp.Port) error {
	gp, ok := asGidPort(port)
	if !ok {
		return ErrorPortType.Error(fmt.Errorf("got %T", port))
	}
	if gp.IsConnected() {
		return nil
	}

	gp.SetConnected(true)
	r.rebuildOrder()

	last := r.app.LastGidUsed
	for idx := 0; idx <= last; idx++ {
		if r.propagatesTo(gp, idx) {
			gp.JoinRequest(idx)
		}
		if gp.RegisteredHere(idx) {
			r.propagateJoinFrom(gp, idx)
		}
	}
	r.DoActions()
	return nil
}

// Disconnect unsplices port from the connected ring, first propagating a
// leave for every attribute it still holds registered so the rest of the
// ring adjusts before it stops counting toward anyone's propagates_to.
func (r *Ring) Disconnect(port garp.Port) {
	gp, ok := asGidPort(port)
	if !ok || !gp.IsConnected() {
		return
	}

	last := r.app.LastGidUsed
	for idx := 0; idx <= last; idx++ {
		if r.propagatesTo(gp, idx) {
			gp.LeaveRequest(idx)
		}
		if gp.RegisteredHere(idx) {
			r.propagateLeaveFrom(gp, idx)
		}
	}
	r.DoActions()

	gp.SetConnected(false)
	r.rebuildOrder()
}

// PropagateJoin fans a local join indication on port, for attribute index,
// across the rest of the connected ring. gid.Port.raise calls this
// directly whenever gidtt.Advance or gidtt.LeaveTimerTick reports
// IndicationJoin; it is also used internally by Connect.
func (r *Ring) PropagateJoin(port garp.Port, index int) {
	gp, ok := asGidPort(port)
	if !ok || !gp.IsConnected() {
		return
	}
	r.propagateJoinFrom(gp, index)
}

// PropagateLeave is PropagateJoin's symmetric counterpart for leaves.
func (r *Ring) PropagateLeave(port garp.Port, index int) {
	gp, ok := asGidPort(port)
	if !ok || !gp.IsConnected() {
		return
	}
	r.propagateLeaveFrom(gp, index)
}

// propagateJoinFrom is the heart of GIP: increment the
// dead-reckoning count for index, and, while the count is at or below the
// threshold where a peer's view of the attribute can actually change (≤2),
// raise a join_request on every other connected port that is either the
// very first registrant (count==1) or already registered_here itself
// (count==2, so that port is downstream of a lone registrar elsewhere and
// must now also account for this one).
func (r *Ring) propagateJoinFrom(source *gid.Port, index int) {
	r.counts[index]++
	count := r.counts[index]
	r.metrics.setCount(index, count)

	if count > 2 {
		return
	}

	for _, no := range r.order {
		if no == source.PortNo() {
			continue
		}
		p, ok := r.app.FindPort(no)
		if !ok {
			continue
		}
		if count == 1 || p.RegisteredHere(index) {
			p.JoinRequest(index)
			if r.app.Callbacks != nil {
				r.app.Callbacks.JoinPropagated(p, uint32(index))
			}
		}
	}
}

// propagateLeaveFrom mirrors propagateJoinFrom: decrement the count, and
// while at or below 1, raise a leave_request on every other connected port
// whose registration can no longer be explained by anyone else (count==0,
// everyone must leave) or who is itself the last remaining registrant
// (count==1, so only that port still needs to carry the attribute).
func (r *Ring) propagateLeaveFrom(source *gid.Port, index int) {
	if r.counts[index] > 0 {
		r.counts[index]--
	}
	count := r.counts[index]
	r.metrics.setCount(index, count)

	if count > 1 {
		return
	}

	for _, no := range r.order {
		if no == source.PortNo() {
			continue
		}
		p, ok := r.app.FindPort(no)
		if !ok {
			continue
		}
		if count == 0 || p.RegisteredHere(index) {
			p.LeaveRequest(index)
			if r.app.Callbacks != nil {
				r.app.Callbacks.LeavePropagated(p, uint32(index))
			}
		}
	}
}

// PropagatesTo reports whether index currently propagates to port: the
// count sits at exactly 2 (removing port's own contribution would leave a
// lone registrar elsewhere, so port must be carrying it on behalf of the
// ring), or the count is exactly 1 and port itself is not the registrant
// (so port would need to start forwarding on behalf of that one peer).
// GMR's mode B filtering policy is built directly on this query.
func (r *Ring) PropagatesTo(port garp.Port, index int) bool {
	gp, ok := asGidPort(port)
	if !ok {
		return false
	}
	return r.propagatesTo(gp, index)
}

func (r *Ring) propagatesTo(port *gid.Port, index int) bool {
	if !port.IsConnected() {
		return false
	}
	count := r.counts[index]
	if count == 2 {
		return true
	}
	return count == 1 && !port.RegisteredHere(index)
}

// DoActions commits the scratchpad GID accumulated on every port currently
// in the connected ring, including whichever port triggered this round of
// propagation.
func (r *Ring) DoActions() {
	for _, no := range r.order {
		if p, ok := r.app.FindPort(no); ok {
			p.DoActions()
		}
	}
}

func (r *Ring) rebuildOrder() {
	full := r.app.Ports()
	out := make([]int, 0, len(full))
	for _, p := range full {
		if p.IsConnected() {
			out = append(out, p.PortNo())
		}
	}
	r.order = out
}
