/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package runnerstate gives every listener goroutine and the forwarder a
// uniform start/stop lifecycle: one StartStop per loop instead of a
// single shared running flag, so each loop's own start/stop errors
// surface independently.
package runnerstate

import (
	"context"
	"sync"
	"time"

	ratm "github.com/submitty/router/internal/atomic"
)

// StartStop wraps a start/stop function pair with running-state tracking.
type StartStop interface {
	// Start runs the start function in the current goroutine and blocks
	// until ctx is cancelled or the start function returns, then runs
	// the stop function.
	Start(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
	Close() error
}

type fnStart func(ctx context.Context) error
type fnStop func(ctx context.Context) error

type startStop struct {
	start fnStart
	stop  fnStop

	running ratm.Value[bool]
	began   ratm.Value[time.Time]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a StartStop around the given start/stop pair. Either may be
// nil, in which case that phase is a no-op.
func New(start fnStart, stop fnStop) StartStop {
	return &startStop{start: start, stop: stop}
}

func (s *startStop) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.began.Store(time.Now())
	s.running.Store(true)
	defer s.running.Store(false)

	var err error
	if s.start != nil {
		err = s.start(ctx)
	} else {
		<-ctx.Done()
	}

	if s.stop != nil {
		_ = s.stop(context.Background())
	}

	return err
}

func (s *startStop) IsRunning() bool {
	return s.running.Load()
}

func (s *startStop) Uptime() time.Duration {
	if !s.IsRunning() {
		return 0
	}
	return time.Since(s.began.Load())
}

func (s *startStop) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}
