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

package tcp_test

import (
	"context"
	"net"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/submitty/router/internal/hostdir"
	"github.com/submitty/router/internal/transport/tcp"
)

type tcpCall struct {
	sender, recipient string
	port              int
	message           []byte
	socket            net.Conn
}

type collectEnq chan tcpCall

func (c collectEnq) EnqueueTCP(sender, recipient string, port int, message []byte, socket net.Conn) {
	c <- tcpCall{sender: sender, recipient: recipient, port: port, message: message, socket: socket}
}

func reservePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	port := l.Addr().(*net.TCPAddr).Port
	Expect(l.Close()).To(Succeed())
	return port
}

var _ = Describe("Listener", func() {
	It("splices an accepted connection onto a dialed one, enqueuing the client's bytes", func() {
		actualListener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer actualListener.Close()

		acceptedOnActual := make(chan net.Conn, 1)
		go func() {
			conn, err := actualListener.Accept()
			if err == nil {
				acceptedOnActual <- conn
			}
		}()

		port := reservePort()
		dir := hostdir.New([]hostdir.Entry{
			{Name: "alpha", IP: net.ParseIP("127.0.0.1"), TCPPortLow: port, TCPPortHigh: port},
		})
		host, _ := dir.LookupByName("alpha")

		dial := func(network, address string) (net.Conn, error) {
			return net.Dial("tcp", actualListener.Addr().String())
		}

		enq := make(collectEnq, 4)
		l := tcp.New(host, port, dir, dial, enq, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = l.Runner().Start(ctx) }()

		client, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		_, err = client.Write([]byte("hello"))
		Expect(err).NotTo(HaveOccurred())

		var call tcpCall
		Eventually(enq).Should(Receive(&call))
		Expect(call.sender).To(Equal("alpha"))
		Expect(call.recipient).To(Equal("alpha_Actual"))
		Expect(call.message).To(Equal([]byte("hello")))

		actual := <-acceptedOnActual
		defer actual.Close()
	})

	It("rejects a connection from an IP not present in the host directory", func() {
		port := reservePort()
		dir := hostdir.New([]hostdir.Entry{
			{Name: "alpha", IP: net.ParseIP("10.99.99.99"), TCPPortLow: port, TCPPortHigh: port},
		})
		host, _ := dir.LookupByName("alpha")

		enq := make(collectEnq, 1)
		l := tcp.New(host, port, dir, nil, enq, nil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = l.Runner().Start(ctx) }()

		client, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		Expect(err).NotTo(HaveOccurred())
		defer client.Close()

		Consistently(enq).ShouldNot(Receive())
	})
})

