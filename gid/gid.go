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

// Package gid is the GID core: per-port, per-attribute Applicant/Registrar
// machines (package gidtt supplies the tables), the transmit cursor, the
// four timer expiries, and the port ring one application instance drives.
// A port ring is modeled as an arena (Application.ports, keyed by port
// number) plus an ascending traversal order, not as raw linked pointers,
// so ports stay movable and garbage-collectable while ring traversal
// remains cheap.
package gid

import (
	"fmt"
	"sort"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/sabouaram/garpd/garp"
	"github.com/sabouaram/garpd/gidtt"
	"github.com/sabouaram/garpd/logger"
	"github.com/sabouaram/garpd/platform"
)

// Propagator is the subset of GIP an Application drives: connect/disconnect
// a port into the ring of currently forwarding ports, propagate a local
// join/leave indication across it, and answer whether a given attribute is
// currently expected to propagate to a specific port. gid depends on this
// narrow interface rather than on package gip directly, the same capability
// shape garp.Application uses for the layer above GID.
type Propagator interface {
	Connect(port garp.Port) error
	Disconnect(port garp.Port)
	PropagateJoin(port garp.Port, index int)
	PropagateLeave(port garp.Port, index int)
	PropagatesTo(port garp.Port, index int) bool
	DoActions()
}

// Metrics is an optional observability sink a host can install on
// Application.Metrics to be notified every time one of a port's four
// timers actually fires. A nil Metrics is valid and simply means no hook
// is called; gip.New installs its Ring's metrics sink here to expose
// timer-fire counts as Prometheus counters.
type Metrics interface {
	TimerFired(portNo int, timer string)
}

// Timers holds the four GID timer durations.
type Timers struct {
	JoinTimeout         time.Duration
	LeaveStepTimeout    time.Duration // one of the four leave-timer countdown steps
	HoldTimeout         time.Duration
	LeaveallStepTimeout time.Duration // one of the four leaveall countdown steps
}

// DefaultTimers carries the standard GARP timer values: join 200ms, leave
// 600ms (so each of the four countdown steps is 150ms), hold 100ms, and
// leaveall 10s spread over its 4 countdown steps.
func DefaultTimers() Timers {
	return Timers{
		JoinTimeout:         200 * time.Millisecond,
		LeaveStepTimeout:    150 * time.Millisecond,
		HoldTimeout:         100 * time.Millisecond,
		LeaveallStepTimeout: 2500 * time.Millisecond,
	}
}

const leaveallCount = 4

// Application is one GARP application instance: the port ring, the shared
// attribute index space [0, MaxGidIndex], and the capability callbacks
// installed once at creation. The propagation counts live in package gip,
// reached through Propagator, and the application's upcalls arrive through
// the garp.Application interface.
type Application struct {
	Callbacks garp.Application
	Prop      Propagator
	Log       logger.Logger
	Platform  platform.Services
	Timers    Timers
	Metrics   Metrics

	MaxGidIndex int
	LastGidUsed int

	ports map[int]*Port
	order []int // port numbers in ascending ring order
}

// New returns an Application with no ports yet. maxGidIndex bounds the
// attribute index space; lastGidUsed is the initial prefix of that space
// already in use (GMR starts this at its last legacy-control index and
// grows it as multicast entries are created).
func New(callbacks garp.Application, prop Propagator, log logger.Logger, svc platform.Services, timers Timers, maxGidIndex, lastGidUsed int) *Application {
	return &Application{
		Callbacks:   callbacks,
		Prop:        prop,
		Log:         log,
		Platform:    svc,
		Timers:      timers,
		MaxGidIndex: maxGidIndex,
		LastGidUsed: lastGidUsed,
		ports:       make(map[int]*Port),
	}
}

// CreatePort splices a new port, numbered portNo, into the ring in
// ascending order and starts its leaveall timer. Creating a port number
// that already exists is an unrecoverable usage error: it escalates via
// Platform.Panic rather than silently overwriting state.
func (a *Application) CreatePort(portNo int) *Port {
	if _, exists := a.ports[portNo]; exists {
		a.Platform.Panic(fmt.Sprintf("gid: duplicate port %d", portNo))
		return a.ports[portNo]
	}

	p := &Port{
		no:       portNo,
		app:      a,
		enabled:  true,
		machines: make([]gidtt.Machine, a.MaxGidIndex+1),
		active:   bitset.New(uint(a.MaxGidIndex + 1)),
		log:      a.Log.WithField("port", portNo),
	}
	for i := range p.machines {
		p.machines[i] = gidtt.Zero()
	}
	p.lastTransmitted = a.LastGidUsed
	p.lastToTransmit = a.LastGidUsed
	p.leaveallCountdown = leaveallCount

	a.ports[portNo] = p
	a.insertRing(portNo)

	a.Platform.StartTimer(p.leaveallTimerID(), a.Timers.LeaveallStepTimeout, p.onLeaveallTimerExpired)

	if a.Callbacks != nil {
		a.Callbacks.AddedPort(portNo)
	}
	return p
}

func (a *Application) insertRing(portNo int) {
	i := sort.SearchInts(a.order, portNo)
	a.order = append(a.order, 0)
	copy(a.order[i+1:], a.order[i:])
	a.order[i] = portNo
}

func (a *Application) removeRing(portNo int) {
	i := sort.SearchInts(a.order, portNo)
	if i < len(a.order) && a.order[i] == portNo {
		a.order = append(a.order[:i], a.order[i+1:]...)
	}
}

// DestroyPort disconnects port from GIP (if connected), raises a leave
// indication for every attribute it still holds registered, and removes it
// from the ring.
func (a *Application) DestroyPort(portNo int) {
	p, ok := a.ports[portNo]
	if !ok {
		return
	}

	if a.Prop != nil {
		a.Prop.Disconnect(p)
	}

	for idx := 0; idx <= a.LastGidUsed; idx++ {
		if gidtt.In(p.machines[idx]) {
			if a.Callbacks != nil {
				a.Callbacks.LeaveIndication(p, uint32(idx))
			}
		}
	}

	p.cancelAllTimers()
	delete(a.ports, portNo)
	a.removeRing(portNo)

	if a.Callbacks != nil {
		a.Callbacks.RemovedPort(portNo)
	}
}

// FindPort returns the port numbered portNo, if any.
func (a *Application) FindPort(portNo int) (*Port, bool) {
	p, ok := a.ports[portNo]
	return p, ok
}

// NextPort returns the port immediately after portNo in ring order,
// wrapping back to the lowest-numbered port. It reports false if the ring
// is empty.
func (a *Application) NextPort(portNo int) (*Port, bool) {
	if len(a.order) == 0 {
		return nil, false
	}
	i := sort.SearchInts(a.order, portNo)
	if i >= len(a.order) || a.order[i] != portNo {
		return nil, false
	}
	next := a.order[(i+1)%len(a.order)]
	return a.ports[next], true
}

// Ports returns every port in ascending ring order.
func (a *Application) Ports() []*Port {
	out := make([]*Port, 0, len(a.order))
	for _, no := range a.order {
		out = append(out, a.ports[no])
	}
	return out
}

// FindUnused reports the lowest attribute index, at or after from, that no
// port currently shows active (gidtt.MachineActive). It is used to reclaim
// an index abandoned by every port when the attribute table is full; an
// index only counts as free once every single port in the ring agrees it
// is inactive.
func (a *Application) FindUnused(from int) (int, bool) {
	for idx := from; idx <= a.LastGidUsed; idx++ {
		inUse := false
		for _, no := range a.order {
			if a.ports[no].active.Test(uint(idx)) {
				inUse = true
				break
			}
		}
		if !inUse {
			return idx, true
		}
	}
	return 0, false
}
