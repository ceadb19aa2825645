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

// Package udp implements the UDP reflection engine: for each host entry
// and each port in its UDP range, a receive socket lazily creates one
// forwarding socket per distinct source port and keeps it for the
// router's lifetime, preserving the student process's notion of its
// peer's source port across manipulation delays and drops.
package udp

import (
	"context"
	"net"
	"time"

	ratm "github.com/submitty/router/internal/atomic"
	"github.com/submitty/router/internal/hostdir"
	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/internal/runnerstate"
)

// datagramSize bounds a single receive.
const datagramSize = 1024

// recvPollTimeout lets every UDP read loop observe the running flag
// roughly once a second.
const recvPollTimeout = time.Second

// Enqueuer is the narrow interface the reflection engine needs from
// internal/enqueue.Enqueuer.
type Enqueuer interface {
	EnqueueUDP(sender, recipient string, sendPort, recvPort int, message []byte, socket *net.UDPConn)
}

// forwardSocket is one lazily created per-source-port relay: sender names
// the student who owns that source port, fixing the recipient every
// datagram arriving on this socket (almost always a reply) gets enqueued
// with.
type forwardSocket struct {
	conn   *net.UDPConn
	sender string
}

// Listener owns one UDP port for one host entry, plus the forwarding-socket
// table shared by every ephemeral source port it ever sees.
type Listener struct {
	host hostdir.Entry
	port int
	dir  *hostdir.Directory
	enq  Enqueuer
	log  logger.FuncLog

	// sockets is keyed by the sender's ephemeral source port: a single
	// UDP conversation is represented by exactly one forwarding socket
	// for the lifetime of the router. Guarded with LoadOrStore so two
	// datagrams racing to create the same source-port socket never both
	// win.
	sockets ratm.Map[int, *forwardSocket]

	runner runnerstate.StartStop
}

// New returns a Listener for the given host entry and UDP port.
func New(host hostdir.Entry, port int, dir *hostdir.Directory, enq Enqueuer, log logger.FuncLog) *Listener {
	l := &Listener{host: host, port: port, dir: dir, enq: enq, log: log, sockets: ratm.NewMap[int, *forwardSocket]()}
	l.runner = runnerstate.New(l.run, nil)
	return l
}

// Runner exposes the listener's lifecycle handle.
func (l *Listener) Runner() runnerstate.StartStop { return l.runner }

func (l *Listener) run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: l.port})
	if err != nil {
		if l.log != nil {
			l.log().Error("udp listen on port %d failed", err, l.port)
		}
		return err
	}
	defer conn.Close()

	recipient := hostdir.ActualAlias(l.host.Name)
	l.recvLoop(ctx, conn, l.port, recipient, true)
	return nil
}

// recvLoop is shared by the primary host-port listener and every lazily
// spawned per-source-port forwarding socket. Both receive datagrams and
// enqueue each one to the fixed recipient the caller passes in (the
// listening host's alias for the primary listener, the original sender's
// alias for a forwarding socket); they also differ in whether this socket is the one responsible for
// lazily creating new forwarding sockets (the primary listener only, to
// avoid unbounded recursive relay chains a reply can never need).
func (l *Listener) recvLoop(ctx context.Context, conn *net.UDPConn, recvPort int, recipient string, primary bool) {
	buf := make([]byte, datagramSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(recvPollTimeout))

		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			continue
		}
		if n == 0 {
			continue
		}

		sender, rerr := l.dir.LookupNameByIP(addr.IP)
		if rerr != nil {
			if l.log != nil {
				l.log().Warning("discarding datagram from unknown peer %s", rerr, addr.IP.String())
			}
			continue
		}

		msg := make([]byte, n)
		copy(msg, buf[:n])

		if !primary {
			l.enq.EnqueueUDP(sender, recipient, addr.Port, recvPort, msg, conn)
			continue
		}

		fwd := l.forwardingSocket(ctx, addr.Port, sender)
		if fwd == nil {
			continue
		}

		l.enq.EnqueueUDP(sender, recipient, addr.Port, recvPort, msg, fwd)
	}
}

// forwardingSocket returns the existing forwarding socket bound to sp, or
// lazily creates one and spawns its reply handler. sender is the student
// who owns sp, recorded so replies arriving on this socket are framed
// back to sender's `_Actual` alias rather than to this listener's own
// host.
func (l *Listener) forwardingSocket(ctx context.Context, sp int, sender string) *net.UDPConn {
	if existing, ok := l.sockets.Load(sp); ok {
		return existing.conn
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: sp})
	if err != nil {
		if l.log != nil {
			l.log().Error("could not bind udp forwarding socket on port %d", err, sp)
		}
		return nil
	}

	entry := &forwardSocket{conn: conn, sender: sender}
	actual, loaded := l.sockets.LoadOrStore(sp, entry)
	if loaded {
		// lost the race: another goroutine created the socket first.
		_ = conn.Close()
		return actual.conn
	}

	go l.recvLoop(ctx, conn, sp, hostdir.ActualAlias(sender), false)

	return conn
}
