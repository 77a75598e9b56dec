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

// Package gidtt holds the GID transition tables: a pure, stateless layer of
// constant data plus the small lookup functions that drive one Applicant /
// Registrar pair through a single event. Nothing here owns a port, a timer,
// or an attribute index — that belongs to package gid. A single event enum
// covers received messages, local requests, management directives, and
// transmit-side outputs; package gmf maps each transmit-side event to its
// receive-side counterpart when it writes a PDU.
package gidtt

// Event enumerates every GID event: received-message events, local
// join/leave requests, applicant/registrar management directives, the two
// LeaveAll variants, and the transmit-side outputs produced by Tx.
type Event uint8

const (
	Null Event = iota
	RcvLeaveEmpty
	RcvLeaveIn
	RcvEmpty
	RcvJoinEmpty
	RcvJoinIn
	Join
	Leave
	NormalOperation
	NoProtocol
	NormalRegistration
	FixRegistration
	ForbidRegistration
	RcvLeaveAll
	RcvLeaveAllRange
	TxLeaveEmpty
	TxLeaveIn
	TxEmpty
	TxJoinEmpty
	TxJoinIn
	TxLeaveAll
	TxLeaveAllRange
)

// numEventRows is the number of rows shared by applicantTT and registrarTT:
// the Null row, the five received-message events, the two local requests, the two
// applicant management directives and the three registrar management
// directives (13 total). LeaveAll and the transmit events never index these
// tables directly.
const numEventRows = 13

func (e Event) String() string {
	switch e {
	case Null:
		return "Null"
	case RcvLeaveEmpty:
		return "RcvLeaveEmpty"
	case RcvLeaveIn:
		return "RcvLeaveIn"
	case RcvEmpty:
		return "RcvEmpty"
	case RcvJoinEmpty:
		return "RcvJoinEmpty"
	case RcvJoinIn:
		return "RcvJoinIn"
	case Join:
		return "Join"
	case Leave:
		return "Leave"
	case NormalOperation:
		return "NormalOperation"
	case NoProtocol:
		return "NoProtocol"
	case NormalRegistration:
		return "NormalRegistration"
	case FixRegistration:
		return "FixRegistration"
	case ForbidRegistration:
		return "ForbidRegistration"
	case RcvLeaveAll:
		return "RcvLeaveAll"
	case RcvLeaveAllRange:
		return "RcvLeaveAllRange"
	case TxLeaveEmpty:
		return "TxLeaveEmpty"
	case TxLeaveIn:
		return "TxLeaveIn"
	case TxEmpty:
		return "TxEmpty"
	case TxJoinEmpty:
		return "TxJoinEmpty"
	case TxJoinIn:
		return "TxJoinIn"
	case TxLeaveAll:
		return "TxLeaveAll"
	case TxLeaveAllRange:
		return "TxLeaveAllRange"
	default:
		return "Unknown"
	}
}

// ApplicantState is one of the 14 canonical Applicant states, partitioned on
// major state (Very-anxious, Anxious, Quiet, Leaving), participation
// (Active, Passive, Observer) and management (Normal, No-protocol).
type ApplicantState uint8

const (
	Va  ApplicantState = iota // Very anxious, active
	Aa                        // Anxious, active
	Qa                        // Quiet, active
	La                        // Leaving, active
	Vp                        // Very anxious, passive
	Ap                        // Anxious, passive
	Qp                        // Quiet, passive
	Vo                        // Very anxious, observer
	Ao                        // Anxious, observer
	Qo                        // Quiet, observer
	Lo                        // Leaving, observer
	Von                       // Very anxious, observer, no-protocol
	Aon                       // Anxious, observer, no-protocol
	Qon                       // Quiet, observer, no-protocol

	numApplicantStates
)

// ApplicantMajor is the major-state axis reported by States.
type ApplicantMajor uint8

const (
	VeryAnxious ApplicantMajor = iota
	Anxious
	Quiet
	Leaving
)

// ApplicantMgt is the management-control axis reported by States.
type ApplicantMgt uint8

const (
	Normal ApplicantMgt = iota
	NoProtocolMgt
)

// RegistrarState is one of the 18 canonical Registrar states: major state
// {In, Leave, Empty}, management {Normal, Fixed, Forbidden}, and, within
// Leave, a four-step countdown {Lv, L3, L2, L1} storing leave-timer
// progress inside the state itself.
type RegistrarState uint8

const (
	Inn RegistrarState = iota // In, normal registration
	Lv                        // Leave, countdown just started
	L3
	L2
	L1
	Mt // Empty, normal registration

	Inr // In, registration fixed
	Lvr
	L3r
	L2r
	L1r
	Mtr // Empty, registration fixed

	Inf // In, registration forbidden
	Lvf
	L3f
	L2f
	L1f
	Mtf // Empty, registration forbidden

	numRegistrarStates
)

// RegistrarMajor is the major-state axis reported by States.
type RegistrarMajor uint8

const (
	InMajor RegistrarMajor = iota
	LeaveMajor
	Empty
)

// RegistrarMgt is the management-control axis reported by States.
type RegistrarMgt uint8

const (
	NormalRegistrationMgt RegistrarMgt = iota
	RegistrationFixed
	RegistrationForbidden
)

// Indication is the event the layer above GID (GIP, the application) must
// observe after advancing a machine.
type Indication uint8

const (
	IndicationNone Indication = iota
	IndicationLeave
	IndicationJoin
)

// Machine is the per-(port, attribute) pair GID state: the Applicant and
// Registrar states advanced by Advance, Tx and LeaveTimerTick. It carries
// no behavior of its own — gidtt operates on it by pointer, gid owns it.
type Machine struct {
	Applicant ApplicantState
	Registrar RegistrarState
}

// Zero returns a Machine in the quiescent (Very-anxious Observer, Empty)
// pair, the state every newly allocated GID machine starts in.
func Zero() Machine {
	return Machine{Applicant: Vo, Registrar: Mt}
}

// States is the human-readable decomposition of a Machine's two packed
// fields, used for management reporting (gid_read_attribute_state).
type States struct {
	ApplicantMajor ApplicantMajor
	ApplicantMgt   ApplicantMgt
	RegistrarMajor RegistrarMajor
	RegistrarMgt   RegistrarMgt
}

// Scratchpad is the per-invocation transient view the tables OR-merge their
// deferred timer requests into. It has no behavior beyond OR-accumulation;
// gid.Port embeds one and commits it via DoActions. Flags merge by OR only
// and are never cleared except by the owning DoActions pass, so an event
// touching many machines still causes at most one real timer start of each
// kind.
type Scratchpad struct {
	ScheduleTxNow   bool
	StartJoinTimer  bool
	StartLeaveTimer bool
}

func (s *Scratchpad) orJoinTimer(b bool) {
	s.StartJoinTimer = s.StartJoinTimer || b
}

func (s *Scratchpad) orLeaveTimer(b bool) {
	s.StartLeaveTimer = s.StartLeaveTimer || b
}
