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

// Package garp defines the capability interface shared by GID and the
// applications built on top of it (GMR today, any future GARP application
// tomorrow). It carries no state of its own.
package garp

// Port is the subset of a GID port control block that callbacks need to
// reach back into: its number and, via Application, its owning instance.
// gid.Port implements this; it is declared here, not in gid, so garp has no
// import-cycle back onto gid.
type Port interface {
	PortNo() int
}

// Application is the capability block an application instance installs
// once, at creation, and that GID/GIP invoke to signal protocol events
// upward: eight operations, deliberately thin and stateless.
type Application interface {
	// JoinIndication signals that attribute index has a new effective
	// registration on port (the Registrar has become In or Fixed).
	JoinIndication(port Port, index uint32)

	// LeaveIndication signals that attribute index has lost its effective
	// registration on port.
	LeaveIndication(port Port, index uint32)

	// JoinPropagated signals a join GIP fanned out to port on behalf of some
	// other port in the connected ring.
	JoinPropagated(port Port, index uint32)

	// LeavePropagated is the symmetric leave notification.
	LeavePropagated(port Port, index uint32)

	// Transmit is invoked when port's join timer fires; the application is
	// expected to drain the port's transmit cursor into one or more PDUs.
	Transmit(port Port)

	// Receive is invoked with a PDU addressed to port; the application
	// parses it and calls back into GID once per contained message.
	Receive(port Port, pdu []byte)

	// AddedPort is invoked once a new GID port has been spliced into the
	// port ring, letting the application seed any management state.
	AddedPort(portNo int)

	// RemovedPort is invoked after a GID port has been unhooked and freed.
	RemovedPort(portNo int)
}
