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

// Package gmr is GARP Multicast Registration: the application built on top
// of GID and GIP that turns attribute registrations into filtering-database
// directives under one of three legacy policies (forward nothing but what
// is registered, forward unregistered traffic with propagation-aware
// pruning, or forward everything), and that drives the receive/transmit
// loop translating wire PDUs to and from GID events. It implements
// garp.Application, so GID and GIP never know GMR exists.
package gmr

import (
	"github.com/sabouaram/garpd/fdb"
	"github.com/sabouaram/garpd/garp"
	"github.com/sabouaram/garpd/gid"
	"github.com/sabouaram/garpd/gip"
	"github.com/sabouaram/garpd/gmd"
	"github.com/sabouaram/garpd/gmf"
	"github.com/sabouaram/garpd/logger"
	"github.com/sabouaram/garpd/platform"
)

// Legacy control indices. Both controls need a GID machine index of their
// own: the forwarding-mode checks in modes.go branch on whether
// ForwardUnregistered is registered here, so the second mode (forward
// unregistered multicasts, subject to GIP pruning) is only reachable if
// ForwardUnregistered is independently registerable. Multicast attribute
// indices start immediately after the legacy block.
const (
	ForwardAll             = 0
	ForwardUnregistered    = 1
	NumberOfLegacyControls = 2
)

// DefaultMaxMulticasts is the GMD table sizing used when nothing more
// specific is configured.
const DefaultMaxMulticasts = 100

const unusedIndex = -1

// Transport is the system's PDU delivery collaborator: the octet-level
// send GMR hands a fully assembled PDU to once it has packed it. Like PDU
// allocation, it belongs to the host system, so it is wired in here only
// as a narrow capability interface.
type Transport interface {
	Send(vlanID uint16, portNo int, pdu []byte)
}

var _ garp.Application = (*Instance)(nil)

// Instance is one GMR control block: the GID application it drives, the
// GIP ring it owns, the multicast address table (GMD) keying attribute
// indices to group MAC addresses, and the filtering database it programs.
type Instance struct {
	App        *gid.Application
	Prop       *gip.Ring
	VlanID     uint16
	MaxRecords int

	gmdTable  *gmd.Table
	fdbDB     fdb.Database
	transport Transport
	log       logger.Logger

	lastGmdUsedPlus1 int
}

// New returns a ready Instance for vlanID, sized to hold up to
// maxMulticasts concurrently registered group addresses and bounding every
// outgoing PDU to maxRecords messages. It wires a fresh gid.Application
// and gip.Ring together, sizing the machine-index space to
// NumberOfLegacyControls+maxMulticasts with the legacy controls already
// "used" from the start.
func New(vlanID uint16, maxMulticasts, maxRecords int, fdbDB fdb.Database, transport Transport, log logger.Logger, svc platform.Services, timers gid.Timers) *Instance {
	i := &Instance{
		VlanID:     vlanID,
		MaxRecords: maxRecords,
		gmdTable:   gmd.New(maxMulticasts),
		fdbDB:      fdbDB,
		transport:  transport,
		log:        log,
	}

	numMachines := NumberOfLegacyControls + maxMulticasts
	app := gid.New(i, nil, log, svc, timers, numMachines-1, NumberOfLegacyControls-1)
	ring := gip.New(app, numMachines, log)
	app.Prop = ring

	i.App = app
	i.Prop = ring
	return i
}

// GMD returns the multicast address table backing this instance, mostly
// useful for tests asserting on what got registered.
func (i *Instance) GMD() *gmd.Table { return i.gmdTable }

func (i *Instance) portOf(port garp.Port) *gid.Port {
	gp, ok := port.(*gid.Port)
	if !ok {
		i.log.Error("gmr: port %d is not a gid.Port, ignoring callback", port.PortNo())
		return nil
	}
	return gp
}

// AddedPort is the management-initialization hook: a full deployment would
// seed legacy-control or multicast template state here for the freshly
// created port. Nothing persistent is modeled in this module, so there is
// nothing to seed.
func (i *Instance) AddedPort(portNo int) {}

// RemovedPort is the symmetric cleanup hook.
func (i *Instance) RemovedPort(portNo int) {}

func (i *Instance) keyFor(gmdIndex int) gmf.Key {
	key, _ := i.gmdTable.GetKey(gmdIndex)
	return gmf.Key(key)
}
