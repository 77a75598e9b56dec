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

// Package gmd is the multicast address table GMR keys its GID attribute
// indices against: a fixed-capacity, creation-time-sized table mapping a
// group MAC address to the GID index assigned to it, and back. Entries
// never expire on their own — GMR decides when a slot is reclaimed — so
// the table is just a dual-indexed map pair behind an RWMutex.
package gmd

import (
	"sync"
)

// Key is a 6-byte group MAC address.
type Key [6]byte

// Table is a GMD instance: capacity entries, each either free or bound to
// a Key. GMR calls Find before Create to avoid double-registering an
// address already present.
type Table struct {
	mu       sync.RWMutex
	byKey    map[Key]int
	byIndex  map[int]Key
	capacity int
	used     int
}

// New returns an empty Table able to hold up to capacity entries.
func New(capacity int) *Table {
	return &Table{
		byKey:    make(map[Key]int, capacity),
		byIndex:  make(map[int]Key, capacity),
		capacity: capacity,
	}
}

// Capacity returns the table's fixed size.
func (t *Table) Capacity() int {
	return t.capacity
}

// Used returns the number of entries currently bound.
func (t *Table) Used() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.used
}

// Find returns the index key is bound to, if any.
func (t *Table) Find(key Key) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, ok := t.byKey[key]
	return idx, ok
}

// Create binds key to index. It reports false, binding nothing, when key is
// already bound or the table is at capacity — GMR's recovery path is to
// call gid.Application.FindUnused to salvage an inactive slot and retry.
func (t *Table) Create(key Key, index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.byKey[key]; exists {
		return false
	}
	if t.used >= t.capacity {
		return false
	}

	t.byKey[key] = index
	t.byIndex[index] = key
	t.used++
	return true
}

// Delete unbinds the entry at index, if any, freeing its slot.
func (t *Table) Delete(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key, ok := t.byIndex[index]
	if !ok {
		return false
	}

	delete(t.byIndex, index)
	delete(t.byKey, key)
	t.used--
	return true
}

// GetKey returns the MAC address bound to index, if any — GMR uses it to
// fill the wire key of an outgoing multicast message.
func (t *Table) GetKey(index int) (Key, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	key, ok := t.byIndex[index]
	return key, ok
}
