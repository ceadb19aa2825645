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

// Package metrics exposes the router's Prometheus instrumentation: counts
// of forwarded, dropped, and failed messages, plus a live queue-depth
// gauge sampled from internal/queue.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/submitty/router/internal/queue"
	"github.com/submitty/router/internal/record"
)

// Metrics owns the router's Prometheus collectors and can be registered
// into any prometheus.Registerer.
type Metrics struct {
	forwarded *prometheus.CounterVec
	dropped   prometheus.Counter
	failed    prometheus.Counter
	queueLen  prometheus.GaugeFunc
}

// New builds the collector set. q, if non-nil, backs the queue-depth
// gauge; pass nil in tests that don't construct a queue.
func New(q *queue.Queue) *Metrics {
	m := &Metrics{
		forwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "router_messages_forwarded_total",
			Help: "Messages successfully delivered to their recipient, by transport.",
		}, []string{"transport"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "router_messages_dropped_total",
			Help: "Messages suppressed by the manipulation hook.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "router_messages_failed_total",
			Help: "Messages whose delivery attempt raised an error.",
		}),
	}

	m.queueLen = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "router_queue_depth",
		Help: "Number of records currently waiting in the delay queue.",
	}, func() float64 {
		if q == nil {
			return 0
		}
		return float64(q.Len())
	})

	return m
}

// MustRegister registers every collector into reg, panicking on a
// duplicate registration -- the same convention prometheus.MustRegister
// itself uses.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.forwarded, m.dropped, m.failed, m.queueLen)
}

// Report records the outcome of one forward attempt. It implements
// internal/forwarder.Reporter so it can be chained alongside the
// sequence-diagram writer via forwarder.MultiReporter.
func (m *Metrics) Report(rec record.Record, status record.Status) {
	switch status {
	case record.StatusSuccess:
		m.forwarded.WithLabelValues(rec.SocketType.String()).Inc()
	case record.StatusDropped:
		m.dropped.Inc()
	case record.StatusFailure, record.StatusRouterError:
		m.failed.Inc()
	}
}
