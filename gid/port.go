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

package gid

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/sabouaram/garpd/gidtt"
	"github.com/sabouaram/garpd/logger"
)

// Port is one (application, port number) GID instance: the Applicant and
// Registrar machines for every attribute, the transmit cursor, and the
// commitment state DoActions commits scratchpad requests into.
type Port struct {
	no  int
	app *Application
	log logger.Logger

	enabled      bool
	pointToPoint bool
	connected    bool

	machines []gidtt.Machine
	active   *bitset.BitSet
	scratch  gidtt.Scratchpad

	txNowScheduled    bool
	joinTimerRunning  bool
	leaveTimerRunning bool
	holdTx            bool
	txPending         bool

	leaveallCountdown int

	lastTransmitted   int
	lastToTransmit    int
	pushbackValid     bool
	pushbackIndex     int
	pushbackApplicant gidtt.ApplicantState
}

// PortNo implements garp.Port.
func (p *Port) PortNo() int { return p.no }

// Enabled reports whether the port currently participates in GID (a
// disabled port still holds its machine state but neither transmits nor
// accepts received PDUs).
func (p *Port) Enabled() bool { return p.enabled }

// SetEnabled toggles participation.
func (p *Port) SetEnabled(enabled bool) { p.enabled = enabled }

// PointToPoint reports whether this port is modeled as a point-to-point
// link. The flag is carried for management visibility; no GID or GIP code
// path in this module branches on it.
func (p *Port) PointToPoint() bool { return p.pointToPoint }

// SetPointToPoint sets the point-to-point flag.
func (p *Port) SetPointToPoint(pointToPoint bool) { p.pointToPoint = pointToPoint }

// IsConnected reports whether this port is currently spliced into GIP's
// connected ring. Package gip is the only writer, through SetConnected.
func (p *Port) IsConnected() bool { return p.connected }

// SetConnected records ring membership. It is exported so package gip,
// which owns the connected ring, can update it without gid importing gip
// back (avoiding the import cycle the Propagator indirection exists to
// avoid in the first place).
func (p *Port) SetConnected(connected bool) { p.connected = connected }

func (p *Port) joinTimerID() string     { return fmt.Sprintf("gid/%d/join", p.no) }
func (p *Port) leaveTimerID() string    { return fmt.Sprintf("gid/%d/leave", p.no) }
func (p *Port) holdTimerID() string     { return fmt.Sprintf("gid/%d/hold", p.no) }
func (p *Port) leaveallTimerID() string { return fmt.Sprintf("gid/%d/leaveall", p.no) }

func (p *Port) cancelAllTimers() {
	p.app.Platform.CancelTimer(p.joinTimerID())
	p.app.Platform.CancelTimer(p.leaveTimerID())
	p.app.Platform.CancelTimer(p.holdTimerID())
	p.app.Platform.CancelTimer(p.leaveallTimerID())
}

func (p *Port) refreshActive(index int) {
	if gidtt.MachineActive(p.machines[index]) {
		p.active.Set(uint(index))
	} else {
		p.active.Clear(uint(index))
	}
}

// ReadAttributeState reports the human-readable state of attribute index.
func (p *Port) ReadAttributeState(index int) gidtt.States {
	return p.machines[index].States()
}

// RegisteredHere reports whether attribute index is currently considered
// registered on this port.
func (p *Port) RegisteredHere(index int) bool {
	return gidtt.In(p.machines[index])
}

// RcvMsg advances attribute index on a received protocol event and raises
// the resulting indication, propagating it across GIP when a Propagator is
// installed.
func (p *Port) RcvMsg(index int, event gidtt.Event) {
	ind := gidtt.Advance(&p.machines[index], &p.scratch, event)
	p.refreshActive(index)
	p.raise(index, ind)
	p.DoActions()
}

// JoinRequest and LeaveRequest are local requests: they only ever move the
// Applicant, so gidtt.Advance's returned indication is always
// IndicationNone and is discarded.
func (p *Port) JoinRequest(index int) {
	gidtt.Advance(&p.machines[index], &p.scratch, gidtt.Join)
	p.refreshActive(index)
	p.DoActions()
}

func (p *Port) LeaveRequest(index int) {
	gidtt.Advance(&p.machines[index], &p.scratch, gidtt.Leave)
	p.refreshActive(index)
	p.DoActions()
}

// ManageAttribute applies a management directive (NormalOperation,
// NoProtocol, NormalRegistration, FixRegistration, ForbidRegistration) to
// attribute index, raising and propagating any resulting indication exactly
// like a received message would.
func (p *Port) ManageAttribute(index int, event gidtt.Event) {
	ind := gidtt.Advance(&p.machines[index], &p.scratch, event)
	p.refreshActive(index)
	p.raise(index, ind)
	p.DoActions()
}

func (p *Port) raise(index int, ind gidtt.Indication) {
	switch ind {
	case gidtt.IndicationJoin:
		if p.app.Callbacks != nil {
			p.app.Callbacks.JoinIndication(p, uint32(index))
		}
		if p.app.Prop != nil {
			p.app.Prop.PropagateJoin(p, index)
		}
	case gidtt.IndicationLeave:
		if p.app.Callbacks != nil {
			p.app.Callbacks.LeaveIndication(p, uint32(index))
		}
		if p.app.Prop != nil {
			p.app.Prop.PropagateLeave(p, index)
		}
	}
}

// RcvPdu hands a received PDU to the application for parsing (which calls
// back into RcvMsg per contained message) and then commits any propagation
// fan-out the whole connected ring now owes.
func (p *Port) RcvPdu(pdu []byte) {
	if !p.enabled {
		return
	}
	if p.app.Callbacks != nil {
		p.app.Callbacks.Receive(p, pdu)
	}
	if p.app.Prop != nil {
		p.app.Prop.DoActions()
	} else {
		p.DoActions()
	}
}

// RcvLeaveall resets the LeaveAll countdown and immediately declares every
// attribute as leaving-empty, without waiting for the next timer tick.
func (p *Port) RcvLeaveall() {
	p.leaveallCountdown = leaveallCount
	p.leaveall()
}

func (p *Port) leaveall() {
	for idx := 0; idx <= p.app.LastGidUsed; idx++ {
		// LeaveAll never causes a direct indication: every attribute is
		// simply re-declared, and normal Join/Leave traffic that follows
		// produces whatever indications are actually warranted.
		gidtt.Advance(&p.machines[idx], &p.scratch, gidtt.RcvLeaveEmpty)
		p.refreshActive(idx)
	}
}
