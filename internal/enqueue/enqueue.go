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

// Package enqueue is the single choke point every transport engine uses to
// turn raw bytes into a committed queue entry: assign the message number,
// stamp the receipt time, run the manipulation hook exactly once, and
// commit the result to the delay queue.
package enqueue

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/internal/manipulate"
	"github.com/submitty/router/internal/queue"
	"github.com/submitty/router/internal/record"
)

// Enqueuer is shared by the TCP splice engine and the UDP reflection
// engine so message numbers are assigned in one global receive order
// across both transports.
type Enqueuer struct {
	q         *queue.Queue
	hook      manipulate.Hook
	log       logger.FuncLog
	startedAt time.Time
	counter   uint64
}

// New returns an Enqueuer. startedAt anchors every record's
// TimeSinceTestStart.
func New(q *queue.Queue, hook manipulate.Hook, log logger.FuncLog, startedAt time.Time) *Enqueuer {
	return &Enqueuer{q: q, hook: hook, log: log, startedAt: startedAt}
}

func (e *Enqueuer) next(sender, recipient string, sendPort, recvPort int, message []byte, socketType record.SocketType) record.Record {
	now := time.Now()
	num := atomic.AddUint64(&e.counter, 1)

	return record.Record{
		Sender:             sender,
		Recipient:          recipient,
		SendPort:           sendPort,
		RecvPort:           recvPort,
		Message:            message,
		SocketType:         socketType,
		MessageNumber:      num,
		ReceiptTime:        now,
		ForwardTime:        now,
		TimeSinceTestStart: now.Sub(e.startedAt),
		DropMessage:        false,
	}
}

func (e *Enqueuer) commit(rec record.Record) {
	if e.log != nil {
		e.log().Debug("enqueueing message (%s,%d)-(%s)->(%s,%d): %d bytes", nil,
			rec.Sender, rec.SendPort, rec.SocketType, rec.Recipient, rec.RecvPort, len(rec.Message))
	}

	rec = manipulate.Apply(e.hook, rec, e.log)

	e.q.Enqueue(rec.ForwardTime, rec)
}

// EnqueueTCP records a chunk read off an established byte-splice
// connection. socket is the peer side the forwarder eventually writes the
// (possibly manipulated) message to.
func (e *Enqueuer) EnqueueTCP(sender, recipient string, port int, message []byte, socket net.Conn) {
	rec := e.next(sender, recipient, port, port, message, record.TCP)
	rec.TCPSocket = socket
	e.commit(rec)
}

// EnqueueUDP records one datagram. socket is the forwarding socket bound
// to the sender's ephemeral source port; the forwarder addresses its send
// to (recipient, recvPort) rather than to any fixed peer, since the same
// forwarding socket outlives any single datagram.
func (e *Enqueuer) EnqueueUDP(sender, recipient string, sendPort, recvPort int, message []byte, socket *net.UDPConn) {
	rec := e.next(sender, recipient, sendPort, recvPort, message, record.UDP)
	rec.UDPSocket = socket
	e.commit(rec)
}
