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

import "github.com/sabouaram/garpd/garp"

// JoinIndication updates the filtering database for the port that raised
// the indication alone, under three legacy forwarding modes:
//
//  1. Neither ForwardAll nor ForwardUnregistered registered here:
//     filter_by_default, only explicitly registered multicasts forward.
//  2. ForwardUnregistered registered, ForwardAll not: forward_by_default,
//     but an explicit entry still filters on this port when the multicast
//     is not registered here and GIP currently propagates it here.
//  3. ForwardAll registered (takes precedence): forward_by_default
//     unconditionally for every known multicast.
//
// Effects on other ports sharing Mode B are not this port's job — they
// arrive through JoinPropagated, called as a consequence of GIP's fan-out.
func (i *Instance) JoinIndication(port garp.Port, joiningGidIndex uint32) {
	gp := i.portOf(port)
	if gp == nil {
		return
	}
	joining := int(joiningGidIndex)

	// A join indication only fires for an attribute that was not
	// previously registered, so when the joining attribute is ForwardAll
	// itself the port is entering Mode A right now and the sweep below
	// must run. For any other attribute, an established ForwardAll means
	// the port already forwards everything and nothing needs revisiting.
	if joining != ForwardAll && gp.RegisteredHere(ForwardAll) {
		return
	}

	if joining == ForwardAll || joining == ForwardUnregistered {
		gmdIndex := 0
		gidIndex := gmdIndex + NumberOfLegacyControls
		for gmdIndex < i.lastGmdUsedPlus1 {
			if !gp.RegisteredHere(gidIndex) {
				switch {
				case joining == ForwardAll:
					i.fdbDB.Forward(i.VlanID, gp.PortNo(), i.keyFor(gmdIndex))
				case !i.Prop.PropagatesTo(gp, gidIndex):
					// joining == ForwardUnregistered
					i.fdbDB.Forward(i.VlanID, gp.PortNo(), i.keyFor(gmdIndex))
				}
			}
			gmdIndex++
			gidIndex++
		}
		i.fdbDB.ForwardByDefault(i.VlanID, gp.PortNo())
		return
	}

	// Multicast attribute.
	gmdIndex := joining - NumberOfLegacyControls
	i.fdbDB.Forward(i.VlanID, gp.PortNo(), i.keyFor(gmdIndex))
}

// JoinPropagated reacts to a join GIP fanned out on behalf of some other
// port: only Mode B ports (ForwardUnregistered set, ForwardAll not) are
// affected, and only when the newly registered multicast is not itself
// registered here — in that case the port must now start filtering it
// explicitly, because the propagation that used to justify forwarding it
// by default no longer applies once some other port owns the registration.
func (i *Instance) JoinPropagated(port garp.Port, joiningGidIndex uint32) {
	gp := i.portOf(port)
	if gp == nil {
		return
	}
	joining := int(joiningGidIndex)
	if joining < NumberOfLegacyControls {
		return
	}

	if !gp.RegisteredHere(ForwardAll) && gp.RegisteredHere(ForwardUnregistered) && !gp.RegisteredHere(joining) {
		gmdIndex := joining - NumberOfLegacyControls
		i.fdbDB.Filter(i.VlanID, gp.PortNo(), i.keyFor(gmdIndex))
	}
}

// LeaveIndication is JoinIndication's mirror. modeA is whether ForwardAll
// is (still) registered here; modeC is whether ForwardUnregistered is NOT
// registered here (strict filter-by-default). A departing multicast
// attribute is judged by its own index — the leaving attribute is the one
// whose database entry needs revisiting, not whichever index the legacy
// sweep last touched.
func (i *Instance) LeaveIndication(port garp.Port, leavingGidIndex uint32) {
	gp := i.portOf(port)
	if gp == nil {
		return
	}
	leaving := int(leavingGidIndex)

	modeA := gp.RegisteredHere(ForwardAll)
	modeC := !gp.RegisteredHere(ForwardUnregistered)

	if leaving == ForwardAll || (!modeA && leaving == ForwardUnregistered) {
		gmdIndex := 0
		gidIndex := gmdIndex + NumberOfLegacyControls
		for gmdIndex < i.lastGmdUsedPlus1 {
			if !gp.RegisteredHere(gidIndex) {
				if modeC || i.Prop.PropagatesTo(gp, gidIndex) {
					i.fdbDB.Filter(i.VlanID, gp.PortNo(), i.keyFor(gmdIndex))
				}
			}
			gmdIndex++
			gidIndex++
		}
		if modeC {
			i.fdbDB.FilterByDefault(i.VlanID, gp.PortNo())
		}
		return
	}

	if !modeA {
		if modeC || i.Prop.PropagatesTo(gp, leaving) {
			// Multicast attribute.
			gmdIndex := leaving - NumberOfLegacyControls
			i.fdbDB.Filter(i.VlanID, gp.PortNo(), i.keyFor(gmdIndex))
		}
	}
}

// LeavePropagated mirrors JoinPropagated: a Mode B port that was filtering
// a multicast on some other port's behalf must resume forwarding it once
// that registration is gone, provided it still isn't registered here
// itself.
func (i *Instance) LeavePropagated(port garp.Port, leavingGidIndex uint32) {
	gp := i.portOf(port)
	if gp == nil {
		return
	}
	leaving := int(leavingGidIndex)
	if leaving < NumberOfLegacyControls {
		return
	}

	if !gp.RegisteredHere(ForwardAll) && gp.RegisteredHere(ForwardUnregistered) && !gp.RegisteredHere(leaving) {
		gmdIndex := leaving - NumberOfLegacyControls
		i.fdbDB.Forward(i.VlanID, gp.PortNo(), i.keyFor(gmdIndex))
	}
}
