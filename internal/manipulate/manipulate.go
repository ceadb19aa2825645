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

// Package manipulate defines the instructor-overridable transform applied
// exactly once to each intercepted record between creation and queue
// commit.
package manipulate

import (
	"time"

	"github.com/submitty/router/internal/logger"
	"github.com/submitty/router/internal/record"
)

// Hook is the extension point. The default, Identity, returns the record
// unchanged. Implementations may push ForwardTime forward, set
// DropMessage, set DiagramLabel, or rewrite Message; mutating Sender,
// Recipient, the sockets, SocketType or the ports is outside the contract.
type Hook func(rec record.Record) record.Record

// Identity is the default manipulation hook.
func Identity(rec record.Record) record.Record { return rec }

// watchdogThreshold is how long a hook may run before it is logged as
// slow. Hooks must implement delay by setting ForwardTime rather than
// blocking, so a hook taking anywhere near this long is almost certainly
// misusing the API rather than legitimately busy.
const watchdogThreshold = 50 * time.Millisecond

// Apply runs hook inline on the producing goroutine, enforces the
// only-push-forward invariant on ForwardTime, and logs a warning if the
// hook runs suspiciously long.
func Apply(hook Hook, rec record.Record, log logger.FuncLog) record.Record {
	if hook == nil {
		hook = Identity
	}

	start := time.Now()
	before := rec.ForwardTime

	out := hook(rec.Clone())

	if elapsed := time.Since(start); elapsed > watchdogThreshold && log != nil {
		log().Warning("manipulation hook ran for %s, exceeding the soft watchdog threshold", nil, elapsed)
	}

	if out.ForwardTime.Before(before) {
		out.ForwardTime = before
	}

	return out
}
