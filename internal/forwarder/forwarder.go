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

// Package forwarder implements the single consumer that drains the delay
// queue as records become due, dispatches them on their stored socket,
// and reports the outcome to the sequence-diagram writer.
package forwarder

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/internal/queue"
	"github.com/submitty/router/internal/record"
	"github.com/submitty/router/internal/runnerstate"
)

// pollInterval is how often the forwarder checks the queue for a due
// record when it finds none ready.
const pollInterval = time.Millisecond

// Reporter receives the outcome of every dispatch attempt, successful or
// not. The sequence-diagram writer and internal/metrics both implement
// this.
type Reporter interface {
	Report(rec record.Record, status record.Status)
}

// MultiReporter fans one outcome out to every reporter in order.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(rec record.Record, status record.Status) {
	for _, r := range m {
		if r != nil {
			r.Report(rec, status)
		}
	}
}

// Forwarder is the single queue consumer.
type Forwarder struct {
	q      *queue.Queue
	report Reporter
	log    logger.FuncLog
	runner runnerstate.StartStop
}

// New returns a Forwarder draining q and reporting every outcome to
// report.
func New(q *queue.Queue, report Reporter, log logger.FuncLog) *Forwarder {
	f := &Forwarder{q: q, report: report, log: log}
	f.runner = runnerstate.New(f.run, nil)
	return f
}

// Runner exposes the forwarder's lifecycle handle.
func (f *Forwarder) Runner() runnerstate.StartStop { return f.runner }

func (f *Forwarder) run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		for {
			rec, ok := f.q.PopIfDue(time.Now())
			if !ok {
				break
			}
			f.dispatch(rec)
		}
	}
}

func (f *Forwarder) dispatch(rec record.Record) {
	if !rec.Valid() {
		if f.log != nil {
			f.log().Error("invalid record (%s,%d)->(%s,%d)", nil, rec.Sender, rec.SendPort, rec.Recipient, rec.RecvPort)
		}
		f.reportStatus(rec, record.StatusRouterError)
		return
	}

	if rec.DropMessage {
		f.reportStatus(rec, record.StatusDropped)
		return
	}

	var err error
	if rec.SocketType == record.UDP {
		err = f.sendUDP(rec)
	} else {
		err = f.sendTCP(rec)
	}

	if err != nil {
		if f.log != nil {
			f.log().Error("send failed (%s,%d)->(%s,%d)", err, rec.Sender, rec.SendPort, rec.Recipient, rec.RecvPort)
		}
		f.reportStatus(rec, record.StatusFailure)
		return
	}

	f.reportStatus(rec, record.StatusSuccess)
}

// sendTCP writes the complete message, retrying partial writes until the
// buffer is exhausted or an error occurs.
func (f *Forwarder) sendTCP(rec record.Record) error {
	buf := rec.Message
	for len(buf) > 0 {
		n, err := rec.TCPSocket.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// sendUDP sends one datagram to (recipient, recv_port) via the stored
// forwarding socket; the socket itself is never bound to a single peer,
// so the destination is resolved fresh on every send.
func (f *Forwarder) sendUDP(rec record.Record) error {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(rec.Recipient, strconv.Itoa(rec.RecvPort)))
	if err != nil {
		return err
	}
	_, err = rec.UDPSocket.WriteToUDP(rec.Message, addr)
	return err
}

func (f *Forwarder) reportStatus(rec record.Record, status record.Status) {
	if f.report != nil {
		f.report.Report(rec, status)
	}
}
