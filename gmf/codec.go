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

// Package gmf is the GMR PDU formatter: it reads and writes the wire
// encoding of one message at a time. A PDU is just a stream of fixed-shape
// records closed by a terminating record id, carried over the
// ioutils/bufferReadCloser buffer so gmr.Receive and gmr.Transmit work on
// the same byte-stream plumbing as the rest of the module. The codec owns
// the wire event vocabulary: transmit-side events are written as the
// receive-side event the peer must observe, so a Writer's output always
// parses back into events gid can be driven with directly.
package gmf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"

	"github.com/sabouaram/garpd/gidtt"
	"github.com/sabouaram/garpd/ioutils/bufferReadCloser"
)

// Attribute is the wire attribute-type tag carried by one record.
type Attribute uint8

const (
	AllAttributes Attribute = iota
	LegacyAttribute
	MulticastAttribute
)

// Key is a 6-octet group MAC address, the wire form of gmd.Key.
type Key [6]byte

// String formats the key the way every other MAC address in this codebase's
// logs is expected to read (colon-separated hex octets), via
// net.HardwareAddr rather than a hand-rolled hex loop.
func (k Key) String() string {
	return net.HardwareAddr(k[:]).String()
}

// TerminatingRecordID ends a PDU's record stream.
const TerminatingRecordID uint16 = 0x0000

// Msg is one parsed or to-be-written GMR message: the attribute it concerns,
// the GID event carried, and, depending on Attribute, either a legacy
// control index or a multicast MAC key.
type Msg struct {
	Attribute     Attribute
	Event         gidtt.Event
	LegacyControl uint8
	Key           Key
}

var errShortRead = errors.New("gmf: truncated record")

// recordID packs Attribute and Event into the non-zero tag that prefixes
// every record; the terminator (0x0000) can never collide with it because
// Event is never Null for a message actually worth transmitting.
func recordID(attr Attribute, event gidtt.Event) uint16 {
	return uint16(attr)<<8 | uint16(event)
}

func splitRecordID(id uint16) (Attribute, gidtt.Event) {
	return Attribute(id >> 8), gidtt.Event(id & 0xff)
}

// wireEvent maps a transmit-side event to the receive-side event the peer
// observes; receive-side events pass through unchanged, anything else
// (local requests, management directives) has no wire form and maps to
// Null.
func wireEvent(event gidtt.Event) gidtt.Event {
	switch event {
	case gidtt.TxLeaveEmpty:
		return gidtt.RcvLeaveEmpty
	case gidtt.TxLeaveIn:
		return gidtt.RcvLeaveIn
	case gidtt.TxEmpty:
		return gidtt.RcvEmpty
	case gidtt.TxJoinEmpty:
		return gidtt.RcvJoinEmpty
	case gidtt.TxJoinIn:
		return gidtt.RcvJoinIn
	case gidtt.TxLeaveAll:
		return gidtt.RcvLeaveAll
	case gidtt.TxLeaveAllRange:
		return gidtt.RcvLeaveAllRange
	case gidtt.RcvLeaveEmpty, gidtt.RcvLeaveIn, gidtt.RcvEmpty,
		gidtt.RcvJoinEmpty, gidtt.RcvJoinIn,
		gidtt.RcvLeaveAll, gidtt.RcvLeaveAllRange:
		return event
	default:
		return gidtt.Null
	}
}

func validWireEvent(attr Attribute, event gidtt.Event) bool {
	switch attr {
	case AllAttributes:
		return event == gidtt.RcvLeaveAll || event == gidtt.RcvLeaveAllRange
	default:
		switch event {
		case gidtt.RcvLeaveEmpty, gidtt.RcvLeaveIn, gidtt.RcvEmpty,
			gidtt.RcvJoinEmpty, gidtt.RcvJoinIn:
			return true
		}
		return false
	}
}

// Reader parses the record stream of one received PDU.
type Reader struct {
	r io.Reader
}

// NewReader wraps buf's contents (the octets of one received PDU) for
// message-at-a-time parsing.
func NewReader(buf []byte) *Reader {
	return &Reader{r: bufferReadCloser.NewBuffer(bytes.NewBuffer(buf), nil)}
}

// ReadMsg reads the next record, reporting ok=false once the terminating
// record id is reached (or the stream is exhausted).
func (r *Reader) ReadMsg() (msg Msg, ok bool, err error) {
	var hdr [2]byte
	if _, err = io.ReadFull(r.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Msg{}, false, nil
		}
		return Msg{}, false, err
	}

	id := binary.BigEndian.Uint16(hdr[:])
	if id == TerminatingRecordID {
		return Msg{}, false, nil
	}

	attr, event := splitRecordID(id)
	if !validWireEvent(attr, event) {
		return Msg{}, false, errors.New("gmf: record event not valid for attribute type")
	}
	msg = Msg{Attribute: attr, Event: event}

	switch attr {
	case AllAttributes:
		// No further payload: a LeaveAll applies to every attribute at once.
	case LegacyAttribute:
		var b [1]byte
		if _, err = io.ReadFull(r.r, b[:]); err != nil {
			return Msg{}, false, errShortRead
		}
		msg.LegacyControl = b[0]
	case MulticastAttribute:
		var k Key
		if _, err = io.ReadFull(r.r, k[:]); err != nil {
			return Msg{}, false, errShortRead
		}
		msg.Key = k
	default:
		return Msg{}, false, errors.New("gmf: unknown attribute type")
	}

	return msg, true, nil
}

// Writer assembles the record stream for one outgoing PDU, bounded to
// maxRecords messages so a single PDU cannot outgrow what the underlying
// transport's buffer can carry.
type Writer struct {
	raw        *bytes.Buffer
	buf        bufferReadCloser.Buffer
	maxRecords int
	count      int
}

// NewWriter returns a Writer that packs up to maxRecords messages.
func NewWriter(maxRecords int) *Writer {
	raw := bytes.NewBuffer(nil)
	return &Writer{
		raw:        raw,
		buf:        bufferReadCloser.NewBuffer(raw, nil),
		maxRecords: maxRecords,
	}
}

// WriteMsg appends msg's wire encoding. It reports ok=false, without
// mutating the buffer, once maxRecords has already been packed — the
// caller (gmr.Transmit) responds by calling gid.Port.Untx and flushing what
// it already has.
func (w *Writer) WriteMsg(msg Msg) (ok bool) {
	if w.count >= w.maxRecords {
		return false
	}

	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], recordID(msg.Attribute, wireEvent(msg.Event)))
	_, _ = w.buf.Write(hdr[:])

	switch msg.Attribute {
	case LegacyAttribute:
		_ = w.buf.WriteByte(msg.LegacyControl)
	case MulticastAttribute:
		_, _ = w.buf.Write(msg.Key[:])
	}

	w.count++
	return true
}

// Bytes finalizes the PDU: appends the terminating record id and returns the
// assembled octets.
func (w *Writer) Bytes() []byte {
	var term [2]byte
	binary.BigEndian.PutUint16(term[:], TerminatingRecordID)
	_, _ = w.buf.Write(term[:])

	return append([]byte(nil), w.raw.Bytes()...)
}
