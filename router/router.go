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

// Package router wires the host directory, delay queue, transport
// engines, forwarder, and sequence-diagram writer into the single
// long-running process described by the router's external interfaces:
// Init loads the host inventory, Run starts every listener and the
// forwarder and blocks until the context is cancelled.
package router

import (
	"context"
	"fmt"
	mrand "math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/submitty/router/internal/diagram"
	"github.com/submitty/router/internal/enqueue"
	"github.com/submitty/router/internal/forwarder"
	"github.com/submitty/router/internal/hostdir"
	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/internal/manipulate"
	"github.com/submitty/router/internal/metrics"
	"github.com/submitty/router/internal/queue"
	"github.com/submitty/router/internal/runnerstate"
	"github.com/submitty/router/internal/transport/tcp"
	"github.com/submitty/router/internal/transport/udp"
)

// Router owns every long-lived component for one grading run.
type Router struct {
	entries []hostdir.Entry
	dir     *hostdir.Directory

	hook manipulate.Hook
	log  logger.Logger
	lvl  logger.Level

	logFile     string
	diagramFile string

	seeded bool
	seed   int64
	rand   *mrand.Rand

	metricsReg prometheus.Registerer

	q   *queue.Queue
	enq *enqueue.Enqueuer

	tcpListeners []*tcp.Listener
	udpListeners []*udp.Listener
	fwd          *forwarder.Forwarder
	diagramW     *diagram.Writer
	metrics      *metrics.Metrics

	runners []runnerstate.StartStop
}

// Option configures a Router at construction time.
type Option func(*Router)

// WithManipulate installs the instructor's manipulation hook. Without
// this option, manipulate.Identity runs.
func WithManipulate(hook manipulate.Hook) Option {
	return func(r *Router) { r.hook = hook }
}

// WithSeed seeds a private math/rand.Rand reachable through Router.Rand,
// for instructor hooks that want reproducible pseudo-randomness (e.g. a
// hook that randomly drops messages across otherwise-identical runs).
// The router itself makes no random choices.
func WithSeed(seed int64) Option {
	return func(r *Router) { r.seeded = true; r.seed = seed }
}

// WithLogLevel sets the minimum severity the router's logger emits.
func WithLogLevel(lvl logger.Level) Option {
	return func(r *Router) { r.lvl = lvl }
}

// WithLogFile additionally mirrors log entries to path.
func WithLogFile(path string) Option {
	return func(r *Router) { r.logFile = path }
}

// WithDiagramFile sets the sequence-diagram output path. Defaults to
// "sequence_diagram.txt".
func WithDiagramFile(path string) Option {
	return func(r *Router) { r.diagramFile = path }
}

// WithMetricsRegisterer registers the router's Prometheus collectors into
// reg. Without this option, metrics are collected in memory but never
// exposed.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(r *Router) { r.metricsReg = reg }
}

// New returns a Router over the given host directory entries. Init must
// be called before Run.
func New(entries []hostdir.Entry, opts ...Option) *Router {
	r := &Router{
		entries:     entries,
		hook:        manipulate.Identity,
		lvl:         logger.InfoLevel,
		diagramFile: "sequence_diagram.txt",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.seeded {
		r.rand = mrand.New(mrand.NewSource(r.seed))
	} else {
		r.rand = mrand.New(mrand.NewSource(1))
	}
	return r
}

// Rand returns the router's seeded random source, for use by a
// manipulation hook that wants reproducible pseudo-randomness.
func (r *Router) Rand() *mrand.Rand { return r.rand }

func (r *Router) funcLog() logger.Logger { return r.log }

// Init builds the host directory and every listener the inventory
// describes. It must be called exactly once, before Run.
func (r *Router) Init() error {
	r.dir = hostdir.New(r.entries)

	r.log = logger.New()
	r.log.SetLevel(r.lvl)
	if r.logFile != "" {
		if err := r.log.SetOutputFile(r.logFile); err != nil {
			return fmt.Errorf("setting log output file: %w", err)
		}
	}

	r.q = queue.New()
	r.enq = enqueue.New(r.q, r.hook, r.funcLog, time.Now())

	r.diagramW = diagram.New(r.diagramFile, r.funcLog)
	r.metrics = metrics.New(r.q)
	if r.metricsReg != nil {
		r.metrics.MustRegister(r.metricsReg)
	}

	r.fwd = forwarder.New(r.q, forwarder.MultiReporter{r.diagramW, r.metrics}, r.funcLog)
	r.runners = append(r.runners, r.fwd.Runner())

	for _, host := range r.entries {
		for _, port := range host.TCPPorts() {
			l := tcp.New(host, port, r.dir, nil, r.enq, r.funcLog)
			r.tcpListeners = append(r.tcpListeners, l)
			r.runners = append(r.runners, l.Runner())
		}
		for _, port := range host.UDPPorts() {
			l := udp.New(host, port, r.dir, r.enq, r.funcLog)
			r.udpListeners = append(r.udpListeners, l)
			r.runners = append(r.runners, l.Runner())
		}
	}

	return nil
}

// Run starts every listener and the forwarder, blocking until ctx is
// cancelled or any one of them returns an error. On return, every
// started component has been asked to stop.
func (r *Router) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, runner := range r.runners {
		runner := runner
		g.Go(func() error {
			return runner.Start(gctx)
		})
	}

	err := g.Wait()
	if err != nil && r.log != nil {
		r.log.Error("router run exited with error", err)
	}
	return err
}

// Close requests every component stop, without waiting for Run to
// return.
func (r *Router) Close() error {
	for _, runner := range r.runners {
		_ = runner.Close()
	}
	return nil
}
