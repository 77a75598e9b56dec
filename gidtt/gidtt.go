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

package gidtt

// Advance drives machine through event, updating both the Applicant and
// Registrar in place and OR-merging any timer requests into scratch. It
// returns the indication the caller (GID's message/request dispatch) must
// raise to the application layer: IndicationJoin, IndicationLeave, or
// IndicationNone. event must be one of the numEventRows table events (Null
// through ForbidRegistration); LeaveAll and the Tx* events are not valid
// here.
func Advance(machine *Machine, scratch *Scratchpad, event Event) Indication {
	at := applicantTT[event][machine.Applicant]
	rt := registrarTT[event][machine.Registrar]

	machine.Applicant = at.state
	machine.Registrar = rt.state

	if event == Join && at.startJoinTimer {
		scratch.ScheduleTxNow = true
	}
	scratch.orJoinTimer(at.startJoinTimer)
	scratch.orLeaveTimer(rt.startLeaveTimer)

	return rt.indication
}

// In reports whether machine currently counts as registered here: the
// Registrar is In or leaving under normal or fixed registration, or is the
// fixed Empty state Mtr; no forbidden state counts. GID's gid_registered_here
// and GMR's mode checks are both built on this.
func In(machine Machine) bool {
	return registrarInTable[machine.Registrar]
}

// MachineActive reports whether machine still occupies a meaningful slot:
// false only for the fully quiescent (Very-anxious Observer, Empty) pair,
// the state Zero returns. GID's find_unused scans for inactive machines
// across every port to locate a reusable attribute index.
func MachineActive(machine Machine) bool {
	return !(machine.Applicant == Vo && machine.Registrar == Mt)
}

// Tx consumes one transmission opportunity for machine's Applicant,
// advancing it and returning the wire event to send (Null if nothing is
// due). JoinIn/JoinEmpty and LeaveIn/LeaveEmpty are resolved here using the
// Registrar's current state, since the message format distinguishes whether
// the attribute is still considered registered.
func Tx(machine *Machine, scratch *Scratchpad) Event {
	entry := applicantTxTT[machine.Applicant]
	in := registrarInTable[machine.Registrar]
	machine.Applicant = entry.state
	scratch.orJoinTimer(entry.startJoinTimer)

	switch entry.msg {
	case msgJoin:
		if in {
			return TxJoinIn
		}
		return TxJoinEmpty
	case msgLeave:
		if in {
			return TxLeaveIn
		}
		return TxLeaveEmpty
	default:
		return Null
	}
}

// LeaveTimerTick advances one step of machine's Registrar leave-timer
// countdown, OR-merging a leave-timer restart request into scratch when
// another step remains. It returns IndicationLeave only on the step that
// reaches the terminal Empty state, IndicationNone otherwise.
func LeaveTimerTick(machine *Machine, scratch *Scratchpad) Indication {
	entry := registrarLeaveTimerTT[machine.Registrar]
	machine.Registrar = entry.state
	scratch.orLeaveTimer(entry.startLeaveTimer)
	return entry.indication
}

// States decomposes m into the four human-readable axes used for
// management reporting.
func (m Machine) States() States {
	return States{
		ApplicantMajor: applicantMajorTable[m.Applicant],
		ApplicantMgt:   applicantMgtTable[m.Applicant],
		RegistrarMajor: registrarMajorTable[m.Registrar],
		RegistrarMgt:   registrarMgtTable[m.Registrar],
	}
}
