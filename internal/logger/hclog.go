/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package logger

import (
	"io"
	"log"

	"github.com/hashicorp/go-hclog"
)

// hcLog bridges a router Logger into an hclog.Logger, the interface
// third-party libraries that accept a pluggable logger commonly expect.
type hcLog struct {
	l Logger
	n string
}

// AsHCLog adapts l to hclog.Logger.
func AsHCLog(l Logger) hclog.Logger {
	return &hcLog{l: l}
}

func (h *hcLog) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Off, hclog.NoLevel:
		return
	case hclog.Trace, hclog.Debug:
		h.l.Debug(msg, nil, args...)
	case hclog.Info:
		h.l.Info(msg, nil, args...)
	case hclog.Warn:
		h.l.Warning(msg, nil, args...)
	case hclog.Error:
		h.l.Error(msg, nil, args...)
	}
}

func (h *hcLog) Trace(msg string, args ...interface{}) { h.l.Debug(msg, nil, args...) }
func (h *hcLog) Debug(msg string, args ...interface{}) { h.l.Debug(msg, nil, args...) }
func (h *hcLog) Info(msg string, args ...interface{})  { h.l.Info(msg, nil, args...) }
func (h *hcLog) Warn(msg string, args ...interface{})  { h.l.Warning(msg, nil, args...) }
func (h *hcLog) Error(msg string, args ...interface{}) { h.l.Error(msg, nil, args...) }

func (h *hcLog) IsTrace() bool { return h.l.GetLevel() >= DebugLevel }
func (h *hcLog) IsDebug() bool { return h.l.GetLevel() >= DebugLevel }
func (h *hcLog) IsInfo() bool  { return h.l.GetLevel() >= InfoLevel }
func (h *hcLog) IsWarn() bool  { return h.l.GetLevel() >= WarnLevel }
func (h *hcLog) IsError() bool { return h.l.GetLevel() >= ErrorLevel }

func (h *hcLog) ImpliedArgs() []interface{} { return nil }

func (h *hcLog) With(args ...interface{}) hclog.Logger { return h }

func (h *hcLog) Name() string { return h.n }

func (h *hcLog) Named(name string) hclog.Logger {
	return &hcLog{l: h.l, n: name}
}

func (h *hcLog) ResetNamed(name string) hclog.Logger {
	return &hcLog{l: h.l, n: name}
}

func (h *hcLog) SetLevel(level hclog.Level) {
	switch level {
	case hclog.Off, hclog.NoLevel, hclog.Error:
		h.l.SetLevel(ErrorLevel)
	case hclog.Warn:
		h.l.SetLevel(WarnLevel)
	case hclog.Info:
		h.l.SetLevel(InfoLevel)
	default:
		h.l.SetLevel(DebugLevel)
	}
}

func (h *hcLog) GetLevel() hclog.Level {
	switch h.l.GetLevel() {
	case ErrorLevel:
		return hclog.Error
	case WarnLevel:
		return hclog.Warn
	case InfoLevel:
		return hclog.Info
	default:
		return hclog.Debug
	}
}

func (h *hcLog) StandardLogger(_ *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(h.l, "", 0)
}

func (h *hcLog) StandardWriter(_ *hclog.StandardLoggerOptions) io.Writer {
	return h.l
}
