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

import "github.com/sabouaram/garpd/gidtt"

// NextTx returns the next message a transmission opportunity should send:
// TxLeaveAll when the LeaveAll countdown has reached zero, otherwise the
// next pending attribute in [lastTransmitted+1, lastToTransmit] (wrapping
// through 0) that Tx turns into an actual message. ok is false when there
// is nothing to send — hold-down is active, or the cursor has nothing
// pending.
func (p *Port) NextTx() (event gidtt.Event, index int, ok bool) {
	if p.holdTx {
		return gidtt.Null, 0, false
	}

	if p.leaveallCountdown == 0 {
		p.leaveallCountdown = leaveallCount
		p.app.Platform.StartTimer(p.leaveallTimerID(), p.app.Timers.LeaveallStepTimeout, p.onLeaveallTimerExpired)
		return gidtt.TxLeaveAll, 0, true
	}

	if !p.txPending {
		return gidtt.Null, 0, false
	}

	// The sweep runs from lastTransmitted+1 up to lastToTransmit inclusive,
	// wrapping once through LastGidUsed -> 0. A cursor parked exactly on the
	// last index restarts from 0 immediately.
	checkIndex := p.lastTransmitted + 1
	stopAfter := p.lastToTransmit
	if stopAfter < checkIndex {
		stopAfter = p.app.LastGidUsed
	}
	if checkIndex > p.app.LastGidUsed {
		checkIndex = 0
		stopAfter = p.lastToTransmit
	}

	for {
		before := p.machines[checkIndex].Applicant
		msg := gidtt.Tx(&p.machines[checkIndex], &p.scratch)
		p.refreshActive(checkIndex)

		if msg != gidtt.Null {
			p.lastTransmitted = checkIndex
			p.pushbackValid = true
			p.pushbackIndex = checkIndex
			p.pushbackApplicant = before
			p.txPending = checkIndex != p.lastToTransmit
			return msg, checkIndex, true
		}

		if checkIndex == stopAfter {
			if stopAfter == p.lastToTransmit {
				p.txPending = false
				return gidtt.Null, 0, false
			}
			checkIndex = 0
			stopAfter = p.lastToTransmit
			continue
		}
		checkIndex++
	}
}

// Untx undoes the last message NextTx handed out: the application calls it
// when that message did not fit in the PDU currently being assembled, so
// the attribute is retried on the next transmission opportunity instead of
// being silently dropped.
func (p *Port) Untx() {
	if !p.pushbackValid {
		return
	}

	p.machines[p.pushbackIndex].Applicant = p.pushbackApplicant
	p.refreshActive(p.pushbackIndex)
	p.pushbackValid = false

	if p.lastTransmitted == 0 {
		p.lastTransmitted = p.app.LastGidUsed
	} else {
		p.lastTransmitted--
	}
	p.txPending = true
}

// DoActions commits the scratchpad accumulated since the last commit:
// starting the join timer when a transmission has become due, scheduling
// an immediate transmission when requested, and arming the leave timer
// when a leave-timer start was requested. cschedule_tx_now only clears in
// the non-hold branch below — intentionally: if the port is in its
// post-transmit hold window, the request must survive until the hold timer
// expires and DoActions runs again.
func (p *Port) DoActions() {
	if p.scratch.StartJoinTimer {
		p.lastToTransmit = p.lastTransmitted
		p.txPending = true
		p.scratch.StartJoinTimer = false
	}

	if !p.holdTx {
		if p.scratch.ScheduleTxNow {
			if !p.txNowScheduled {
				p.app.Platform.StartTimer(p.joinTimerID(), 0, p.onJoinTimerExpired)
				p.txNowScheduled = true
			}
			p.scratch.ScheduleTxNow = false
		} else if (p.txPending || p.leaveallCountdown == 0) && !p.joinTimerRunning {
			p.app.Platform.StartRandomTimer(p.joinTimerID(), p.app.Timers.JoinTimeout, p.onJoinTimerExpired)
			p.joinTimerRunning = true
		}
	}

	if p.scratch.StartLeaveTimer && !p.leaveTimerRunning {
		p.app.Platform.StartTimer(p.leaveTimerID(), p.app.Timers.LeaveStepTimeout, p.onLeaveTimerExpired)
		p.leaveTimerRunning = true
	}
	p.scratch.StartLeaveTimer = false
}

func (p *Port) onJoinTimerExpired() {
	p.joinTimerRunning = false
	p.txNowScheduled = false
	p.reportTimerFired("join")

	if p.enabled {
		if p.app.Callbacks != nil {
			p.app.Callbacks.Transmit(p)
		}
		p.holdTx = true
		p.app.Platform.StartTimer(p.holdTimerID(), p.app.Timers.HoldTimeout, p.onHoldTimerExpired)
	}
}

func (p *Port) onHoldTimerExpired() {
	p.holdTx = false
	p.reportTimerFired("hold")
	p.DoActions()
}

func (p *Port) reportTimerFired(timer string) {
	if p.app.Metrics != nil {
		p.app.Metrics.TimerFired(p.no, timer)
	}
}

// onLeaveTimerExpired ticks every attribute's leave-timer countdown one
// step. The loop runs through index app.LastGidUsed inclusive — stopping
// one short would silently never expire the very last attribute.
func (p *Port) onLeaveTimerExpired() {
	p.leaveTimerRunning = false
	p.reportTimerFired("leave")

	for idx := 0; idx <= p.app.LastGidUsed; idx++ {
		ind := gidtt.LeaveTimerTick(&p.machines[idx], &p.scratch)
		p.refreshActive(idx)
		if ind == gidtt.IndicationLeave {
			if p.app.Callbacks != nil {
				p.app.Callbacks.LeaveIndication(p, uint32(idx))
			}
			if p.app.Prop != nil {
				p.app.Prop.PropagateLeave(p, idx)
			}
		}
	}
	p.DoActions()
}

// onLeaveallTimerExpired steps the LeaveAll countdown. While more than one
// step remains it just re-arms itself; on the final step it declares every
// attribute leaving-empty and ensures a transmission opportunity is coming
// soon so the TxLeaveAll NextTx now owes actually goes out — restarting the
// leaveall timer itself is NextTx's job once that transmission happens.
func (p *Port) onLeaveallTimerExpired() {
	p.reportTimerFired("leaveall")
	if p.leaveallCountdown > 1 {
		p.leaveallCountdown--
		p.app.Platform.StartTimer(p.leaveallTimerID(), p.app.Timers.LeaveallStepTimeout, p.onLeaveallTimerExpired)
		return
	}

	p.leaveall()
	p.leaveallCountdown = 0

	if !p.holdTx && !p.joinTimerRunning {
		p.app.Platform.StartRandomTimer(p.joinTimerID(), p.app.Timers.JoinTimeout, p.onJoinTimerExpired)
		p.joinTimerRunning = true
	}
}
