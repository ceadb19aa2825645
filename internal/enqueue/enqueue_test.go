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

package enqueue_test

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/submitty/router/internal/enqueue"
	"github.com/submitty/router/internal/manipulate"
	"github.com/submitty/router/internal/queue"
	"github.com/submitty/router/internal/record"
)

var _ = Describe("Enqueuer", func() {
	It("assigns strictly increasing message numbers across both transports", func() {
		q := queue.New()
		e := enqueue.New(q, manipulate.Identity, nil, time.Now())

		e.EnqueueTCP("alpha", "bravo", 9000, []byte("one"), nil)
		e.EnqueueUDP("alpha", "bravo", 5000, 9500, []byte("two"), nil)
		e.EnqueueTCP("alpha", "bravo", 9000, []byte("three"), nil)

		far := time.Now().Add(time.Hour)
		var got []uint64
		for i := 0; i < 3; i++ {
			rec, ok := q.PopIfDue(far)
			Expect(ok).To(BeTrue())
			got = append(got, rec.MessageNumber)
		}

		Expect(got).To(Equal([]uint64{1, 2, 3}))
	})

	It("stamps the correct socket type and embedded socket", func() {
		q := queue.New()
		e := enqueue.New(q, manipulate.Identity, nil, time.Now())

		conn := &net.TCPConn{}
		e.EnqueueTCP("alpha", "bravo", 9000, []byte("hi"), conn)

		far := time.Now().Add(time.Hour)
		rec, ok := q.PopIfDue(far)
		Expect(ok).To(BeTrue())
		Expect(rec.SocketType).To(Equal(record.TCP))
		Expect(rec.TCPSocket).To(BeIdenticalTo(net.Conn(conn)))
	})

	It("runs the manipulation hook before committing to the queue", func() {
		q := queue.New()
		hook := func(rec record.Record) record.Record {
			rec.DropMessage = true
			return rec
		}
		e := enqueue.New(q, hook, nil, time.Now())

		e.EnqueueUDP("alpha", "bravo", 5000, 9500, []byte("hi"), nil)

		far := time.Now().Add(time.Hour)
		rec, ok := q.PopIfDue(far)
		Expect(ok).To(BeTrue())
		Expect(rec.DropMessage).To(BeTrue())
	})
})
