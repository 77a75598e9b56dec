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

// Package fdb is the filtering-database collaborator GMR drives: the
// per-VLAN, per-port forwarding decision for a multicast MAC, or the
// port's unregistered-group default. GMR never inspects forwarding state
// itself, only issues these four directives.
package fdb

// Database is the filtering database GMR's three registration modes (A, B,
// C) program. Every method is a directive, not a query: GMR is the only
// source of truth for what should be filtered, and the database itself
// carries no registration logic.
type Database interface {
	// Filter stops forwarding frames addressed to address, on vlanID, out
	// port.
	Filter(vlanID uint16, port int, address [6]byte)

	// Forward starts forwarding frames addressed to address, on vlanID,
	// out port.
	Forward(vlanID uint16, port int, address [6]byte)

	// FilterByDefault sets port's default policy, on vlanID, to filter any
	// multicast address with no explicit registration.
	FilterByDefault(vlanID uint16, port int)

	// ForwardByDefault sets port's default policy, on vlanID, to forward
	// any multicast address with no explicit registration.
	ForwardByDefault(vlanID uint16, port int)
}

type entry struct {
	vlanID  uint16
	port    int
	address [6]byte
}

var _ Database = (*Memory)(nil)

// Memory is an in-memory Database good enough to run the module end-to-end
// and to assert against in tests: it just remembers the last directive for
// every (vlan, port, address) and (vlan, port) default.
type Memory struct {
	explicit map[entry]bool
	defaults map[[2]uint64]bool // key: (vlanID, port) -> forward-by-default
}

// NewMemory returns an in-memory Database with every port defaulting to
// filter (the safe default: unregistered multicast traffic is dropped
// until GMR says otherwise).
func NewMemory() *Memory {
	return &Memory{
		explicit: make(map[entry]bool),
		defaults: make(map[[2]uint64]bool),
	}
}

func defaultKey(vlanID uint16, port int) [2]uint64 {
	return [2]uint64{uint64(vlanID), uint64(port)}
}

func (m *Memory) Filter(vlanID uint16, port int, address [6]byte) {
	m.explicit[entry{vlanID, port, address}] = false
}

func (m *Memory) Forward(vlanID uint16, port int, address [6]byte) {
	m.explicit[entry{vlanID, port, address}] = true
}

func (m *Memory) FilterByDefault(vlanID uint16, port int) {
	m.defaults[defaultKey(vlanID, port)] = false
}

func (m *Memory) ForwardByDefault(vlanID uint16, port int) {
	m.defaults[defaultKey(vlanID, port)] = true
}

// Forwards reports whether address is currently forwarded on vlanID/port,
// falling back to the port's default policy when there is no explicit
// entry. It exists for tests that assert on GMR's effect rather than on
// the directive calls themselves.
func (m *Memory) Forwards(vlanID uint16, port int, address [6]byte) bool {
	if v, ok := m.explicit[entry{vlanID, port, address}]; ok {
		return v
	}
	return m.defaults[defaultKey(vlanID, port)]
}
