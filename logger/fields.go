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

package logger

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields is a thread-safe key/value bag attached to a log entry.
// It is intentionally narrower than a generic context-aware store: GID and GMR
// only ever attach a handful of identifiers (port, attribute index, application
// name) to a message, so a plain mutex-guarded map is enough.
type Fields interface {
	// Add inserts or updates a key and returns the receiver for chaining.
	Add(key string, val interface{}) Fields
	// Logrus renders the fields as logrus.Fields for emission.
	Logrus() logrus.Fields
	// Clone returns an independent copy of the fields.
	Clone() Fields
}

type fldModel struct {
	mu sync.RWMutex
	m  map[string]interface{}
}

// NewFields returns an empty, ready to use Fields instance.
func NewFields() Fields {
	return &fldModel{m: make(map[string]interface{})}
}

func (o *fldModel) Add(key string, val interface{}) Fields {
	if o == nil {
		return o
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.m[key] = val
	return o
}

func (o *fldModel) Logrus() logrus.Fields {
	res := make(logrus.Fields)

	if o == nil {
		return res
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	for k, v := range o.m {
		res[k] = v
	}

	return res
}

func (o *fldModel) Clone() Fields {
	if o == nil {
		return NewFields()
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	n := make(map[string]interface{}, len(o.m))
	for k, v := range o.m {
		n[k] = v
	}

	return &fldModel{m: n}
}
