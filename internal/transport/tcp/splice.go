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

// Package tcp implements the TCP accept/splice engine: for each host entry
// and each port in its TCP range, a listener impersonates the host, opens
// a twin outbound connection to its `_Actual` peer, and splices the two
// sides with a pair of half-duplex pumps.
package tcp

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/submitty/router/internal/errors"
	"github.com/submitty/router/internal/hostdir"
	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/internal/runnerstate"
)

// chunkSize bounds a single pump read.
const chunkSize = 1024

// acceptPollTimeout lets the accept loop observe the running flag roughly
// once a second, so shutdown does not require a hard cancel of an
// in-flight Accept.
const acceptPollTimeout = time.Second

// Enqueuer is the narrow interface the splice engine needs from
// internal/enqueue.Enqueuer.
type Enqueuer interface {
	EnqueueTCP(sender, recipient string, port int, message []byte, socket net.Conn)
}

// Dialer opens the outbound connection to a host's `_Actual` peer. In
// production this is net.Dial; tests substitute a fake to avoid requiring
// the hosts-file aliasing the real grading environment provides.
type Dialer func(network, address string) (net.Conn, error)

// Listener owns one TCP port for one host entry.
type Listener struct {
	host   hostdir.Entry
	port   int
	dir    *hostdir.Directory
	dial   Dialer
	enq    Enqueuer
	log    logger.FuncLog
	runner runnerstate.StartStop
}

// New returns a Listener for the given host entry and port. dial defaults
// to net.Dial when nil.
func New(host hostdir.Entry, port int, dir *hostdir.Directory, dial Dialer, enq Enqueuer, log logger.FuncLog) *Listener {
	if dial == nil {
		dial = net.Dial
	}
	l := &Listener{host: host, port: port, dir: dir, dial: dial, enq: enq, log: log}
	l.runner = runnerstate.New(l.run, nil)
	return l
}

// Runner exposes the listener's lifecycle handle.
func (l *Listener) Runner() runnerstate.StartStop { return l.runner }

func (l *Listener) run(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(l.port)))
	if err != nil {
		if l.log != nil {
			l.log().Error("tcp listen on port %d failed", err, l.port)
		}
		return err
	}
	defer ln.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if tl, ok := ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(acceptPollTimeout))
		}

		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if l.log != nil {
				l.log().Warning("tcp accept on port %d failed", err, l.port)
			}
			continue
		}

		go l.handleAccept(conn)
	}
}

func (l *Listener) handleAccept(conn net.Conn) {
	remoteIP, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		_ = conn.Close()
		return
	}

	sender, rerr := l.dir.LookupNameByIP(net.ParseIP(remoteIP))
	if rerr != nil {
		if l.log != nil {
			l.log().Warning("rejecting tcp connection from unknown peer %s", rerr, remoteIP)
		}
		_ = conn.Close()
		return
	}

	actual := hostdir.ActualAlias(l.host.Name)
	outbound, err := l.dial("tcp", net.JoinHostPort(actual, strconv.Itoa(l.port)))
	if err != nil {
		// no record enqueued, no sequence-diagram line: a connect
		// failure never reaches the forwarder.
		if l.log != nil {
			l.log().Error("connect to %s:%d failed", errors.New(errors.ConnectFailure, "dial actual peer", err), actual, l.port)
		}
		_ = conn.Close()
		return
	}

	go l.pump(conn, outbound, sender, actual)
	go l.pump(outbound, conn, actual, sender)
}

// pump is a half-duplex reader: it reads from "from" and enqueues a record
// addressed sender->recipient, with the opposite socket stored for
// eventual delivery.
func (l *Listener) pump(from, to net.Conn, sender, recipient string) {
	buf := make([]byte, chunkSize)

	for {
		n, err := from.Read(buf)
		if n > 0 {
			msg := make([]byte, n)
			copy(msg, buf[:n])

			l.enq.EnqueueTCP(sender, recipient, l.port, msg, to)
		}

		if err != nil {
			_ = from.Close()
			return
		}
	}
}
