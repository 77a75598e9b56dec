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

// Package logger provides the structured logging facade shared by every GARP
// component (GID, GIP, GMR). It wraps logrus the same way the rest of the
// codebase wraps third-party backends: a small interface the domain code
// depends on, one concrete implementation that can be swapped in tests.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	loglvl "github.com/sabouaram/garpd/logger/level"
)

// Logger is the logging contract used throughout the module. Every GID port,
// GIP instance and GMR application holds one, usually derived from a parent
// via WithFields so log lines carry (application, port, attribute) context
// without every call site formatting it by hand.
type Logger interface {
	// SetLevel changes the minimal severity emitted by this logger.
	SetLevel(lvl loglvl.Level)
	// GetLevel returns the minimal severity currently emitted.
	GetLevel() loglvl.Level

	// WithFields returns a derived Logger that always attaches the given fields.
	WithFields(f Fields) Logger
	// WithField is a shorthand for WithFields(NewFields().Add(key, val)).
	WithField(key string, val interface{}) Logger

	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warning(message string, args ...interface{})
	Error(message string, args ...interface{})
	// Fatal logs at error level with a "FATAL: " prefix and does not terminate
	// the process itself; callers that truly need to stop call platform's
	// Services.Panic.
	Fatal(message string, args ...interface{})
}

type lgr struct {
	mu  sync.RWMutex
	l   *logrus.Logger
	lvl loglvl.Level
	fld Fields
}

// New returns a Logger writing to w (os.Stderr when w is nil) at InfoLevel.
func New(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	g := &lgr{
		l:   l,
		fld: NewFields(),
	}
	g.SetLevel(loglvl.InfoLevel)

	return g
}

func (o *lgr) SetLevel(lvl loglvl.Level) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lvl = lvl
	o.l.SetLevel(lvl.Logrus())
}

func (o *lgr) GetLevel() loglvl.Level {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.lvl
}

func (o *lgr) WithFields(f Fields) Logger {
	o.mu.RLock()
	defer o.mu.RUnlock()

	merged := o.fld.Clone()
	if f != nil {
		for k, v := range f.Logrus() {
			merged.Add(k, v)
		}
	}

	return &lgr{
		l:   o.l,
		lvl: o.lvl,
		fld: merged,
	}
}

func (o *lgr) WithField(key string, val interface{}) Logger {
	return o.WithFields(NewFields().Add(key, val))
}

func (o *lgr) entry() *logrus.Entry {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.l.WithFields(o.fld.Logrus())
}

func (o *lgr) Debug(message string, args ...interface{}) {
	o.entry().Debugf(message, args...)
}

func (o *lgr) Info(message string, args ...interface{}) {
	o.entry().Infof(message, args...)
}

func (o *lgr) Warning(message string, args ...interface{}) {
	o.entry().Warnf(message, args...)
}

func (o *lgr) Error(message string, args ...interface{}) {
	o.entry().Errorf(message, args...)
}

func (o *lgr) Fatal(message string, args ...interface{}) {
	o.entry().Errorf("FATAL: "+message, args...)
}
