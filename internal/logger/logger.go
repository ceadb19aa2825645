/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package logger provides the router's structured logging: a Logger
// interface over logrus, mirrored to an append-only file and to standard
// output.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// FuncLog is the lazy-injection alias every component receives instead of
// a concrete Logger, so a nil default can be swapped for a real logger
// after construction without restructuring callers.
type FuncLog func() Logger

// Logger is the surface every component needs: leveled entries plus
// io.WriteCloser so third-party code (the hclog bridge) can use it as a
// plain writer.
type Logger interface {
	io.WriteCloser

	SetLevel(lvl Level)
	GetLevel() Level
	SetOutputFile(path string) error

	Debug(message string, err error, args ...interface{})
	Info(message string, err error, args ...interface{})
	Warning(message string, err error, args ...interface{})
	Error(message string, err error, args ...interface{})
}

type logger struct {
	mu  sync.Mutex
	log *logrus.Logger
	lvl Level
}

// New returns a Logger writing to stdout. Use SetOutputFile to additionally
// mirror entries to an append-only file.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})

	o := &logger{log: l, lvl: InfoLevel}
	o.SetLevel(InfoLevel)
	return o
}

// SetOutputFile mirrors every subsequent entry to the given append-only
// file in addition to stdout.
func (o *logger) SetOutputFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.log.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

func (o *logger) SetLevel(lvl Level) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lvl = lvl
	o.log.SetLevel(lvl.logrus())
}

func (o *logger) GetLevel() Level {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lvl
}

func (o *logger) entry(lvl Level, message string, err error, args ...interface{}) {
	o.mu.Lock()
	l := o.log
	o.mu.Unlock()

	fields := logrus.Fields{}
	if err != nil {
		fields["error"] = err.Error()
	}

	msg := message
	if len(args) > 0 {
		msg = fmt.Sprintf(message, args...)
	}

	l.WithFields(fields).Log(lvl.logrus(), msg)
}

func (o *logger) Debug(message string, err error, args ...interface{}) {
	o.entry(DebugLevel, message, err, args...)
}

func (o *logger) Info(message string, err error, args ...interface{}) {
	o.entry(InfoLevel, message, err, args...)
}

func (o *logger) Warning(message string, err error, args ...interface{}) {
	o.entry(WarnLevel, message, err, args...)
}

func (o *logger) Error(message string, err error, args ...interface{}) {
	o.entry(ErrorLevel, message, err, args...)
}

func (o *logger) Write(p []byte) (n int, err error) {
	o.mu.Lock()
	out := o.log.Out
	o.mu.Unlock()
	return out.Write(p)
}

func (o *logger) Close() error {
	return nil
}
