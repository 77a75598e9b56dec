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

package gmr

import (
	"github.com/sabouaram/garpd/garp"
	"github.com/sabouaram/garpd/gid"
	"github.com/sabouaram/garpd/gidtt"
	"github.com/sabouaram/garpd/gmd"
	"github.com/sabouaram/garpd/gmf"
)

// Receive implements garp.Application: parse pdu message-at-a-time and
// dispatch each into rcvMsg. A malformed record stops the whole PDU —
// records after a parse failure cannot be trusted to be framed correctly.
func (i *Instance) Receive(port garp.Port, pdu []byte) {
	gp := i.portOf(port)
	if gp == nil {
		return
	}

	r := gmf.NewReader(pdu)
	for {
		msg, ok, err := r.ReadMsg()
		if err != nil {
			i.log.Warning("gmr: malformed pdu on port %d: %v", gp.PortNo(), err)
			return
		}
		if !ok {
			return
		}
		i.rcvMsg(gp, msg)
	}
}

// rcvMsg processes one received message: LeaveAll (in either variant)
// resets the port unconditionally; a legacy-control message resolves
// directly to its fixed index; a multicast message looks its key up in the
// GMD table, creating or salvaging an entry as needed, and is otherwise
// silently dropped (Leave/Empty on an unknown key) or escalated to dbFull
// (Join on an unknown key with no room left).
func (i *Instance) rcvMsg(gp *gid.Port, msg gmf.Msg) {
	if msg.Event == gidtt.RcvLeaveAll || msg.Event == gidtt.RcvLeaveAllRange {
		gp.RcvLeaveall()
		return
	}

	gmdIndex := unusedIndex
	gidIndex := unusedIndex

	switch msg.Attribute {
	case gmf.LegacyAttribute:
		if int(msg.LegacyControl) >= NumberOfLegacyControls {
			i.log.Warning("gmr: unknown legacy control %d on port %d, dropping", msg.LegacyControl, gp.PortNo())
			return
		}
		gidIndex = int(msg.LegacyControl)
	case gmf.MulticastAttribute:
		key := gmd.Key(msg.Key)
		if idx, ok := i.gmdTable.Find(key); ok {
			gmdIndex = idx
		} else if msg.Event == gidtt.RcvJoinIn || msg.Event == gidtt.RcvJoinEmpty {
			gmdIndex = i.createGmdEntry(gp, key)
		}
	}

	if gmdIndex != unusedIndex {
		gidIndex = gmdIndex + NumberOfLegacyControls
		if gmdIndex+1 > i.lastGmdUsedPlus1 {
			i.lastGmdUsedPlus1 = gmdIndex + 1
		}
		// Every scan loop in gid (transmit cursor, leave and leaveall
		// expiry, FindUnused) is bounded by LastGidUsed; it has to track
		// the high-water index handed out here or new multicast machines
		// would be invisible to all of them.
		if gidIndex > i.App.LastGidUsed {
			i.App.LastGidUsed = gidIndex
		}
	}
	if gidIndex != unusedIndex {
		gp.RcvMsg(gidIndex, msg.Event)
	}
}

// createGmdEntry assigns key a fresh GMD slot: the next never-used index
// while the table has room, or, once full, a slot reclaimed from an
// attribute index every port in the ring currently shows inactive
// (gid.Application.FindUnused), before giving up and calling dbFull.
func (i *Instance) createGmdEntry(gp *gid.Port, key gmd.Key) int {
	if i.lastGmdUsedPlus1 < i.gmdTable.Capacity() {
		idx := i.lastGmdUsedPlus1
		if i.gmdTable.Create(key, idx) {
			return idx
		}
	}

	if gidIdx, ok := i.App.FindUnused(NumberOfLegacyControls); ok {
		reclaimed := gidIdx - NumberOfLegacyControls
		i.gmdTable.Delete(reclaimed)
		if i.gmdTable.Create(key, reclaimed) {
			return reclaimed
		}
	}

	i.dbFull(gp, key)
	return unusedIndex
}

// dbFull is the database-full escalation hook. A full deployment could pin
// ForwardAll to Registration-Fixed on every port that dropped a join for
// lack of database space, arm a retry timer, and revert once space is
// scavenged; none of that retry machinery is modeled here, so the join is
// simply dropped and logged.
func (i *Instance) dbFull(gp *gid.Port, key gmd.Key) {
	i.log.Warning("gmr: multicast database full on vlan %d, discarding join for %s on port %d", i.VlanID, gmf.Key(key), gp.PortNo())
}

// Transmit implements garp.Application: drain port's transmit cursor into
// a single PDU via the gmf Writer, falling back to Untx and stopping once
// a message no longer fits; the pushback is retried on the next
// transmission opportunity. Exactly one PDU is produced per Transmit call,
// handed to Transport.Send.
func (i *Instance) Transmit(port garp.Port) {
	gp := i.portOf(port)
	if gp == nil {
		return
	}

	w := gmf.NewWriter(i.MaxRecords)
	for {
		event, gidIndex, ok := gp.NextTx()
		if !ok {
			break
		}
		if !w.WriteMsg(i.txMsg(gidIndex, event)) {
			gp.Untx()
			break
		}
	}

	pdu := w.Bytes()
	if i.transport != nil {
		i.transport.Send(i.VlanID, gp.PortNo(), pdu)
	}
}

// txMsg decorates one transmit-cursor output with its wire attribute type:
// LeaveAll carries no index, an index below NumberOfLegacyControls is a
// legacy control, everything else is a multicast attribute keyed through
// the GMD table.
func (i *Instance) txMsg(gidIndex int, event gidtt.Event) gmf.Msg {
	if event == gidtt.TxLeaveAll || event == gidtt.TxLeaveAllRange {
		return gmf.Msg{Attribute: gmf.AllAttributes, Event: event}
	}
	if gidIndex < NumberOfLegacyControls {
		return gmf.Msg{Attribute: gmf.LegacyAttribute, Event: event, LegacyControl: uint8(gidIndex)}
	}
	return gmf.Msg{
		Attribute: gmf.MulticastAttribute,
		Event:     event,
		Key:       i.keyFor(gidIndex - NumberOfLegacyControls),
	}
}
