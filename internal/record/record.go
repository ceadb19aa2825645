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

// Package record defines the message record that flows from the transport
// engines, through the manipulation hook, the delay queue, the forwarder,
// and finally the sequence-diagram writer.
package record

import (
	"net"
	"time"
)

// SocketType distinguishes the two transports the router splices.
type SocketType uint8

const (
	TCP SocketType = iota
	UDP
)

func (s SocketType) String() string {
	if s == UDP {
		return "udp"
	}
	return "tcp"
}

// Status is the outcome the forwarder reports to the sequence-diagram
// writer for a given record.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusDropped
	StatusFailure
	StatusRouterError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusDropped:
		return "dropped"
	case StatusFailure:
		return "failure"
	default:
		return "router_error"
	}
}

// Record carries one message through the pipeline from receipt to
// delivery, plus an open side-table for instructor-supplied annotations
// the manipulation hook may want to stash without the router itself
// interpreting them.
//
// Exactly one of TCPSocket/UDPSocket is populated, selected by SocketType:
// a TCP record carries the already-connected peer socket to write the
// complete message to; a UDP record carries the bound forwarding socket
// plus Recipient/RecvPort, since a forwarding socket is never itself
// connected to a single peer and must name its destination on every send.
type Record struct {
	Sender    string
	Recipient string
	SendPort  int
	RecvPort  int
	Message   []byte

	SocketType SocketType
	TCPSocket  net.Conn
	UDPSocket  *net.UDPConn

	MessageNumber uint64

	ReceiptTime        time.Time
	ForwardTime        time.Time
	TimeSinceTestStart time.Duration

	DropMessage  bool
	DiagramLabel string

	Annotations map[string]interface{}
}

// Clone returns a deep-enough copy for the manipulation hook to mutate
// without racing the producer that still holds the original: the hook
// takes and returns the record by value.
func (r Record) Clone() Record {
	n := r
	n.Message = append([]byte(nil), r.Message...)
	if r.Annotations != nil {
		n.Annotations = make(map[string]interface{}, len(r.Annotations))
		for k, v := range r.Annotations {
			n.Annotations[k] = v
		}
	}
	return n
}

// Annotate stores an instructor-supplied side-table value, creating the map
// lazily.
func (r *Record) Annotate(key string, value interface{}) {
	if r.Annotations == nil {
		r.Annotations = make(map[string]interface{})
	}
	r.Annotations[key] = value
}

// Valid reports whether the fields the forwarder needs to act on this
// record are all present; a record failing this check is a router error
// rather than a send failure.
func (r Record) Valid() bool {
	if r.Sender == "" || r.Recipient == "" || r.RecvPort <= 0 {
		return false
	}
	if r.SocketType == TCP {
		return r.TCPSocket != nil
	}
	return r.UDPSocket != nil
}
