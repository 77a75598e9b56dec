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

// applicantEntry is one cell of the Applicant transition table: the state
// to move to and whether the join timer must be (re)started.
type applicantEntry struct {
	state          ApplicantState
	startJoinTimer bool
}

// registrarEntry is one cell of the Registrar transition table: the state
// to move to, the indication (if any) that transition raises, and whether
// the leave timer must be (re)started.
type registrarEntry struct {
	state           RegistrarState
	indication      Indication
	startLeaveTimer bool
}

func a(s ApplicantState) applicantEntry { return applicantEntry{state: s} }
func aj(s ApplicantState) applicantEntry {
	return applicantEntry{state: s, startJoinTimer: true}
}

func r(s RegistrarState) registrarEntry { return registrarEntry{state: s} }
func rl(s RegistrarState) registrarEntry {
	return registrarEntry{state: s, startLeaveTimer: true}
}

// identityApplicantRow leaves every applicant state unchanged; used for the
// rows (Null and the three registrar management directives) that never move
// the Applicant.
func identityApplicantRow() [numApplicantStates]applicantEntry {
	var row [numApplicantStates]applicantEntry
	for s := ApplicantState(0); s < numApplicantStates; s++ {
		row[s] = a(s)
	}
	return row
}

// identityRegistrarRow leaves every registrar state unchanged and raises no
// indication; used for Null, the two local requests (Join, Leave) and the
// two applicant management directives, which only the Applicant observes.
func identityRegistrarRow() [numRegistrarStates]registrarEntry {
	var row [numRegistrarStates]registrarEntry
	for s := RegistrarState(0); s < numRegistrarStates; s++ {
		row[s] = r(s)
	}
	return row
}

// applicantTT[event][state] is the Applicant transition table, indexed by
// the numEventRows received/request/management events in their Event
// ordinal order (Null through ForbidRegistration).
var applicantTT = [numEventRows][numApplicantStates]applicantEntry{
	// Null: identity.
	identityApplicantRow(),

	// RcvLeaveEmpty.
	{Va: a(Vp), Aa: a(Vp), Qa: aj(Vp), La: a(Vo),
		Vp: a(Vp), Ap: a(Vp), Qp: aj(Vp),
		Vo: a(Lo), Ao: a(Lo), Qo: aj(Lo), Lo: a(Vo),
		Von: a(Von), Aon: a(Von), Qon: a(Von)},

	// RcvLeaveIn.
	{Va: a(Va), Aa: a(Va), Qa: aj(Vp), La: a(La),
		Vp: a(Vp), Ap: a(Vp), Qp: aj(Vp),
		Vo: a(Lo), Ao: a(Lo), Qo: aj(Lo), Lo: a(Vo),
		Von: a(Von), Aon: a(Von), Qon: a(Von)},

	// RcvEmpty.
	{Va: a(Va), Aa: a(Va), Qa: aj(Va), La: a(La),
		Vp: a(Vp), Ap: a(Vp), Qp: aj(Vp),
		Vo: a(Vo), Ao: a(Vo), Qo: a(Vo), Lo: a(Vo),
		Von: a(Von), Aon: a(Von), Qon: a(Von)},

	// RcvJoinEmpty.
	{Va: a(Va), Aa: a(Va), Qa: aj(Va), La: a(Vo),
		Vp: a(Vp), Ap: a(Vp), Qp: aj(Vp),
		Vo: a(Vo), Ao: a(Vo), Qo: aj(Vo), Lo: a(Vo),
		Von: a(Von), Aon: a(Von), Qon: aj(Von)},

	// RcvJoinIn.
	{Va: a(Aa), Aa: a(Qa), Qa: a(Qa), La: a(La),
		Vp: a(Ap), Ap: a(Qp), Qp: a(Qp),
		Vo: a(Ao), Ao: a(Qo), Qo: a(Qo), Lo: a(Ao),
		Von: a(Aon), Aon: a(Qon), Qon: a(Qon)},

	// Join (local request).
	{Va: a(Va), Aa: a(Aa), Qa: a(Qa), La: a(Va),
		Vp: a(Vp), Ap: a(Ap), Qp: a(Qp),
		Vo: aj(Vp), Ao: aj(Ap), Qo: a(Qp), Lo: a(Vp),
		Von: a(Von), Aon: a(Aon), Qon: a(Qon)},

	// Leave (local request).
	{Va: a(La), Aa: a(La), Qa: aj(La), La: a(La),
		Vp: a(Vo), Ap: a(Ao), Qp: a(Qo),
		Vo: a(Vo), Ao: a(Ao), Qo: a(Qo), Lo: a(Lo),
		Von: a(Von), Aon: a(Aon), Qon: a(Qon)},

	// NormalOperation.
	{Va: a(Vp), Aa: a(Vp), Qa: aj(Vp), La: a(La),
		Vp: a(Vp), Ap: a(Vp), Qp: aj(Vp),
		Vo: a(Va), Ao: a(Va), Qo: aj(Va), Lo: a(Lo),
		Von: a(Va), Aon: a(Va), Qon: aj(Va)},

	// NoProtocol.
	{Va: a(Von), Aa: a(Aon), Qa: a(Qon), La: a(Von),
		Vp: a(Von), Ap: a(Aon), Qp: a(Qon),
		Vo: a(Von), Ao: a(Aon), Qo: a(Qon), Lo: a(Von),
		Von: a(Von), Aon: a(Aon), Qon: a(Qon)},

	// NormalRegistration, FixRegistration, ForbidRegistration: the Applicant
	// does not react to registrar management directives.
	identityApplicantRow(),
	identityApplicantRow(),
	identityApplicantRow(),
}

// registrarTT[event][state] is the Registrar transition table. RcvLeaveEmpty
// and RcvLeaveIn are identical: from the Registrar's perspective a leave-type
// message arrived, full stop, regardless of whether the sender's own state
// was In or Empty. Join and Leave (local requests) never touch the
// Registrar — only the Applicant observes those.
var registrarTT = [numEventRows][numRegistrarStates]registrarEntry{
	// Null: identity.
	identityRegistrarRow(),

	// RcvLeaveEmpty.
	registrarRcvLeaveRow(),

	// RcvLeaveIn: identical treatment to RcvLeaveEmpty.
	registrarRcvLeaveRow(),

	// RcvEmpty.
	{Inn: r(Inn), Lv: r(Lv), L3: r(L3), L2: r(L2), L1: r(L1), Mt: r(Mt),
		Inr: r(Inr), Lvr: r(Lvr), L3r: r(L3r), L2r: r(L2r), L1r: r(L1r), Mtr: r(Mtr),
		Inf: r(Inf), Lvf: r(Lvf), L3f: r(L3f), L2f: r(L2f), L1f: r(L1f), Mtf: r(Mtf)},

	// RcvJoinEmpty.
	{Inn: r(Inn), Lv: r(Inn), L3: r(Inn), L2: r(Inn), L1: r(Inn), Mt: registrarEntry{state: Inn, indication: IndicationJoin},
		Inr: r(Inr), Lvr: r(Inr), L3r: r(Inr), L2r: r(Inr), L1r: r(Inr), Mtr: r(Inr),
		Inf: r(Inf), Lvf: r(Inf), L3f: r(Inf), L2f: r(Inf), L1f: r(Inf), Mtf: r(Inf)},

	// RcvJoinIn: same destination states as RcvJoinEmpty — what matters to
	// the Registrar is that a Join of either flavor arrived.
	{Inn: r(Inn), Lv: r(Inn), L3: r(Inn), L2: r(Inn), L1: r(Inn), Mt: registrarEntry{state: Inn, indication: IndicationJoin},
		Inr: r(Inr), Lvr: r(Inr), L3r: r(Inr), L2r: r(Inr), L1r: r(Inr), Mtr: r(Inr),
		Inf: r(Inf), Lvf: r(Inf), L3f: r(Inf), L2f: r(Inf), L1f: r(Inf), Mtf: r(Inf)},

	// Join (local request): Registrar unaffected.
	identityRegistrarRow(),

	// Leave (local request): Registrar unaffected.
	identityRegistrarRow(),

	// NormalOperation: identity, same as Null for the Registrar.
	identityRegistrarRow(),

	// NoProtocol: identity, same as Null for the Registrar.
	identityRegistrarRow(),

	// NormalRegistration: drop any fixed/forbidden override, falling back to
	// whatever major state (In/Leave/Empty) currently applies. Dropping a
	// forbidden override raises a Join indication (the attribute becomes
	// visible again); dropping a fixed Empty raises a Leave indication (the
	// countdown that Fixed mode had been suppressing is now reported).
	{Inn: r(Inn), Lv: r(Lv), L3: r(L3), L2: r(L2), L1: r(L1), Mt: r(Mt),
		Inr: r(Inn), Lvr: r(Lv), L3r: r(L3), L2r: r(L2), L1r: r(L1), Mtr: registrarEntry{state: Mt, indication: IndicationLeave},
		Inf: registrarEntry{state: Inn, indication: IndicationJoin}, Lvf: registrarEntry{state: Lv, indication: IndicationJoin}, L3f: registrarEntry{state: L3, indication: IndicationJoin}, L2f: registrarEntry{state: L2, indication: IndicationJoin}, L1f: registrarEntry{state: L1, indication: IndicationJoin}, Mtf: r(Mt)},

	// FixRegistration: force the Fixed management flag while preserving the
	// leave countdown position; dropping a forbidden override raises a Join
	// indication, and so does the Empty major state since Fixed forces it
	// back to reporting In.
	{Inn: r(Inr), Lv: r(Lvr), L3: r(L3r), L2: r(L2r), L1: r(L1r), Mt: registrarEntry{state: Mtr, indication: IndicationJoin},
		Inr: r(Inr), Lvr: r(Lvr), L3r: r(L3r), L2r: r(L2r), L1r: r(L1r), Mtr: r(Mtr),
		Inf: registrarEntry{state: Inr, indication: IndicationJoin}, Lvf: registrarEntry{state: Lvr, indication: IndicationJoin}, L3f: registrarEntry{state: L3r, indication: IndicationJoin}, L2f: registrarEntry{state: L2r, indication: IndicationJoin}, L1f: registrarEntry{state: L1r, indication: IndicationJoin}, Mtf: registrarEntry{state: Mtr, indication: IndicationJoin}},

	// ForbidRegistration: move each normal-registration state to its
	// Forbidden counterpart, preserving the leave countdown position, with a
	// Leave indication from every one of them except Mt. The fixed states
	// keep their Fixed flag and raise a Leave indication; the forbidden
	// states are unchanged.
	{Inn: registrarEntry{state: Inf, indication: IndicationLeave}, Lv: registrarEntry{state: Lvf, indication: IndicationLeave}, L3: registrarEntry{state: L3f, indication: IndicationLeave}, L2: registrarEntry{state: L2f, indication: IndicationLeave}, L1: registrarEntry{state: L1f, indication: IndicationLeave}, Mt: r(Mtf),
		Inr: registrarEntry{state: Inr, indication: IndicationLeave}, Lvr: registrarEntry{state: Lvr, indication: IndicationLeave}, L3r: registrarEntry{state: L3r, indication: IndicationLeave}, L2r: registrarEntry{state: L2r, indication: IndicationLeave}, L1r: registrarEntry{state: L1r, indication: IndicationLeave}, Mtr: registrarEntry{state: Mtr, indication: IndicationLeave},
		Inf: r(Inf), Lvf: r(Lvf), L3f: r(L3f), L2f: r(L2f), L1f: r(L1f), Mtf: r(Mtf)},
}

// registrarRcvLeaveRow is the shared RcvLeaveEmpty/RcvLeaveIn row: any
// registered state starts the leave-countdown; an already-leaving or empty
// state is unaffected (a leave of an already-leaving attribute does not
// restart its countdown from scratch).
func registrarRcvLeaveRow() [numRegistrarStates]registrarEntry {
	return [numRegistrarStates]registrarEntry{
		Inn: rl(Lv), Lv: r(Lv), L3: r(L3), L2: r(L2), L1: r(L1), Mt: r(Mt),
		Inr: rl(Lvr), Lvr: r(Lvr), L3r: r(L3r), L2r: r(L2r), L1r: r(L1r), Mtr: r(Mtr),
		Inf: rl(Lvf), Lvf: r(Lvf), L3f: r(L3f), L2f: r(L2f), L1f: r(L1f), Mtf: r(Mtf),
	}
}

// applicantTxEntry is one cell of the Applicant transmit table: the state to
// move to and the message class to transmit (Null/Join/Leave/Empty — Tx
// resolves Join/Leave into their In/Empty variants using the current
// Registrar state).
type applicantTxEntry struct {
	state          ApplicantState
	msg            txMsg
	startJoinTimer bool
}

type txMsg uint8

const (
	msgNull txMsg = iota
	msgJoin
	msgLeave
	msgEmpty
)

// applicantTxTT[state] drives a single transmission opportunity: Very
// anxious and Anxious applicants (active or passive alike) transmit a Join
// and advance; Quiet does not retransmit; Leaving transmits a Leave and
// resets to Very-anxious-observer. Observer states never own a transmission.
var applicantTxTT = [numApplicantStates]applicantTxEntry{
	Va:  {state: Aa, msg: msgJoin, startJoinTimer: true},
	Aa:  {state: Qa, msg: msgJoin},
	Qa:  {state: Qa, msg: msgNull},
	La:  {state: Vo, msg: msgLeave},
	Vp:  {state: Aa, msg: msgJoin, startJoinTimer: true},
	Ap:  {state: Qa, msg: msgJoin},
	Qp:  {state: Qp, msg: msgNull},
	Vo:  {state: Vo, msg: msgNull},
	Ao:  {state: Ao, msg: msgNull},
	Qo:  {state: Qo, msg: msgNull},
	Lo:  {state: Vo, msg: msgNull},
	Von: {state: Von, msg: msgNull},
	Aon: {state: Aon, msg: msgNull},
	Qon: {state: Qon, msg: msgNull},
}

// registrarLeaveTimerTT[state] advances one step of a running leave-timer
// countdown. A Registrar reaches the terminal Empty state only on the last
// step, which is also the only step that raises a leave indication — the
// three intermediate steps exist purely to debounce a Join arriving shortly
// after a Leave was received.
var registrarLeaveTimerTT = [numRegistrarStates]registrarEntry{
	Inn: r(Inn),
	Lv:  rl(L3),
	L3:  rl(L2),
	L2:  rl(L1),
	L1:  registrarEntry{state: Mt, indication: IndicationLeave},
	Mt:  r(Mt),

	Inr: r(Inr),
	Lvr: rl(L3r),
	L3r: rl(L2r),
	L2r: rl(L1r),
	L1r: r(Mtr),
	Mtr: r(Mtr),

	Inf: r(Inf),
	Lvf: rl(L3f),
	L3f: rl(L2f),
	L2f: rl(L1f),
	L1f: r(Mtf),
	Mtf: r(Mtf),
}

// applicantMajorTable[state] is the major-state axis reported by States.
var applicantMajorTable = [numApplicantStates]ApplicantMajor{
	Va: VeryAnxious, Aa: Anxious, Qa: Quiet, La: Leaving,
	Vp: VeryAnxious, Ap: Anxious, Qp: Quiet,
	Vo: VeryAnxious, Ao: Anxious, Qo: Quiet, Lo: Leaving,
	Von: VeryAnxious, Aon: Anxious, Qon: Quiet,
}

// applicantMgtTable[state] is the management-control axis reported by States.
var applicantMgtTable = [numApplicantStates]ApplicantMgt{
	Va: Normal, Aa: Normal, Qa: Normal, La: Normal,
	Vp: Normal, Ap: Normal, Qp: Normal,
	Vo: Normal, Ao: Normal, Qo: Normal, Lo: Normal,
	Von: NoProtocolMgt, Aon: NoProtocolMgt, Qon: NoProtocolMgt,
}

// registrarMajorTable[state] is the major-state axis reported by States.
var registrarMajorTable = [numRegistrarStates]RegistrarMajor{
	Inn: InMajor, Lv: LeaveMajor, L3: LeaveMajor, L2: LeaveMajor, L1: LeaveMajor, Mt: Empty,
	Inr: InMajor, Lvr: LeaveMajor, L3r: LeaveMajor, L2r: LeaveMajor, L1r: LeaveMajor, Mtr: Empty,
	Inf: InMajor, Lvf: LeaveMajor, L3f: LeaveMajor, L2f: LeaveMajor, L1f: LeaveMajor, Mtf: Empty,
}

// registrarMgtTable[state] is the management-control axis reported by States.
var registrarMgtTable = [numRegistrarStates]RegistrarMgt{
	Inn: NormalRegistrationMgt, Lv: NormalRegistrationMgt, L3: NormalRegistrationMgt, L2: NormalRegistrationMgt, L1: NormalRegistrationMgt, Mt: NormalRegistrationMgt,
	Inr: RegistrationFixed, Lvr: RegistrationFixed, L3r: RegistrationFixed, L2r: RegistrationFixed, L1r: RegistrationFixed, Mtr: RegistrationFixed,
	Inf: RegistrationForbidden, Lvf: RegistrationForbidden, L3f: RegistrationForbidden, L2f: RegistrationForbidden, L1f: RegistrationForbidden, Mtf: RegistrationForbidden,
}

// registrarInTable[state] reports whether state counts as a live
// registration for wire-message purposes: Tx uses it to choose between the
// -In and -Empty variants of the Join/Leave message it transmits. This
// tracks what the management mode reports externally, not the raw major
// state — Fixed registration always reports In (even its Empty substate,
// Mtr), and Forbidden registration always reports Empty (even its In
// substate, Inf), matching the Registrar's two management overrides.
var registrarInTable = [numRegistrarStates]bool{
	Inn: true, Lv: true, L3: true, L2: true, L1: true, Mt: false,
	Inr: true, Lvr: true, L3r: true, L2r: true, L1r: true, Mtr: true,
	Inf: false, Lvf: false, L3f: false, L2f: false, L1f: false, Mtf: false,
}
