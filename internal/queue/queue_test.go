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

package queue_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/submitty/router/internal/queue"
	"github.com/submitty/router/internal/record"
)

var _ = Describe("Queue", func() {
	var q *queue.Queue

	BeforeEach(func() {
		q = queue.New()
	})

	It("reports not due when empty", func() {
		_, ok := q.PopIfDue(time.Now())
		Expect(ok).To(BeFalse())
	})

	It("holds back a record until its release time", func() {
		future := time.Now().Add(time.Hour)
		q.Enqueue(future, record.Record{Sender: "alpha"})

		_, ok := q.PopIfDue(time.Now())
		Expect(ok).To(BeFalse())

		rec, ok := q.PopIfDue(future.Add(time.Nanosecond))
		Expect(ok).To(BeTrue())
		Expect(rec.Sender).To(Equal("alpha"))
	})

	It("pops records due at the same instant in insertion order", func() {
		now := time.Now()
		q.Enqueue(now, record.Record{Sender: "first"})
		q.Enqueue(now, record.Record{Sender: "second"})
		q.Enqueue(now, record.Record{Sender: "third"})

		var got []string
		for {
			rec, ok := q.PopIfDue(now)
			if !ok {
				break
			}
			got = append(got, rec.Sender)
		}

		Expect(got).To(Equal([]string{"first", "second", "third"}))
	})

	It("orders strictly by release time regardless of insertion order", func() {
		base := time.Now()
		q.Enqueue(base.Add(30*time.Millisecond), record.Record{Sender: "late"})
		q.Enqueue(base.Add(10*time.Millisecond), record.Record{Sender: "early"})
		q.Enqueue(base.Add(20*time.Millisecond), record.Record{Sender: "middle"})

		far := base.Add(time.Hour)
		var got []string
		for {
			rec, ok := q.PopIfDue(far)
			if !ok {
				break
			}
			got = append(got, rec.Sender)
		}

		Expect(got).To(Equal([]string{"early", "middle", "late"}))
	})

	It("tracks depth as records are pushed and popped", func() {
		Expect(q.Len()).To(Equal(0))

		now := time.Now()
		q.Enqueue(now, record.Record{})
		q.Enqueue(now, record.Record{})
		Expect(q.Len()).To(Equal(2))

		_, ok := q.PopIfDue(now)
		Expect(ok).To(BeTrue())
		Expect(q.Len()).To(Equal(1))
	})

	It("serializes concurrent producers without losing records", func() {
		const n = 200
		now := time.Now()

		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				q.Enqueue(now, record.Record{})
			}()
		}
		wg.Wait()

		Expect(q.Len()).To(Equal(n))
	})
})
