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

package record_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/submitty/router/internal/record"
)

var _ = Describe("Record.Clone", func() {
	It("deep-copies the message buffer", func() {
		orig := record.Record{Message: []byte("hello")}
		clone := orig.Clone()

		clone.Message[0] = 'H'

		Expect(orig.Message).To(Equal([]byte("hello")))
		Expect(clone.Message).To(Equal([]byte("Hello")))
	})

	It("deep-copies annotations", func() {
		orig := record.Record{}
		orig.Annotate("key", "value")

		clone := orig.Clone()
		clone.Annotate("key", "other")

		Expect(orig.Annotations["key"]).To(Equal("value"))
		Expect(clone.Annotations["key"]).To(Equal("other"))
	})

	It("leaves a nil Annotations map nil", func() {
		orig := record.Record{}
		clone := orig.Clone()
		Expect(clone.Annotations).To(BeNil())
	})
})

var _ = Describe("Record.Valid", func() {
	It("rejects a record with no sender", func() {
		r := record.Record{Recipient: "bravo", RecvPort: 100, SocketType: record.TCP, TCPSocket: &net.TCPConn{}}
		Expect(r.Valid()).To(BeFalse())
	})

	It("rejects a record with a non-positive recv port", func() {
		r := record.Record{Sender: "a", Recipient: "b", RecvPort: 0, SocketType: record.TCP, TCPSocket: &net.TCPConn{}}
		Expect(r.Valid()).To(BeFalse())
	})

	It("rejects a TCP record with no socket", func() {
		r := record.Record{Sender: "a", Recipient: "b", RecvPort: 100, SocketType: record.TCP}
		Expect(r.Valid()).To(BeFalse())
	})

	It("rejects a UDP record with no socket", func() {
		r := record.Record{Sender: "a", Recipient: "b", RecvPort: 100, SocketType: record.UDP}
		Expect(r.Valid()).To(BeFalse())
	})

	It("accepts a complete TCP record", func() {
		r := record.Record{Sender: "a", Recipient: "b", RecvPort: 100, SocketType: record.TCP, TCPSocket: &net.TCPConn{}}
		Expect(r.Valid()).To(BeTrue())
	})

	It("accepts a complete UDP record", func() {
		r := record.Record{Sender: "a", Recipient: "b", RecvPort: 100, SocketType: record.UDP, UDPSocket: &net.UDPConn{}}
		Expect(r.Valid()).To(BeTrue())
	})
})

var _ = Describe("SocketType.String", func() {
	It("renders tcp and udp", func() {
		Expect(record.TCP.String()).To(Equal("tcp"))
		Expect(record.UDP.String()).To(Equal("udp"))
	})
})
