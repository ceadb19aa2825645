/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package errors implements the router's error taxonomy: UnknownPeer,
// ConnectFailure, SendFailure, RouterError and InventoryParse. Each
// CodeError carries the file/line where it was raised and an optional
// parent error.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// CodeError classifies a raised Error against a small closed set of
// numeric codes.
type CodeError uint16

const (
	// UnknownPeer: source IP not present in the host directory.
	UnknownPeer CodeError = iota + 1
	// ConnectFailure: outbound connect to the `_Actual` peer failed on accept.
	ConnectFailure
	// SendFailure: the forwarder's send on a stored socket failed.
	SendFailure
	// RouterError: a record reached the forwarder missing required fields.
	RouterError
	// InventoryParse: the host inventory document is malformed.
	InventoryParse
)

func (c CodeError) String() string {
	switch c {
	case UnknownPeer:
		return "UnknownPeer"
	case ConnectFailure:
		return "ConnectFailure"
	case SendFailure:
		return "SendFailure"
	case RouterError:
		return "RouterError"
	case InventoryParse:
		return "InventoryParse"
	default:
		return "Unknown"
	}
}

// Error extends the standard error with a CodeError classification, a
// capture site, and an optional parent chain.
type Error interface {
	error
	IsCode(code CodeError) bool
	GetCode() CodeError
	GetFile() string
	GetLine() int
	Add(parent ...error)
	Unwrap() error
}

type routerError struct {
	code CodeError
	msg  string
	file string
	line int
	prt  error
}

// New captures the call site of the caller and wraps the given message and
// optional parent into a CodeError-classified Error.
func New(code CodeError, msg string, parent error) Error {
	file, line := captureCaller()
	return &routerError{code: code, msg: msg, file: file, line: line, prt: parent}
}

func captureCaller() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown", 0
	}
	return file, line
}

func (e *routerError) Error() string {
	if e.prt != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.prt.Error())
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *routerError) IsCode(code CodeError) bool { return e.code == code }
func (e *routerError) GetCode() CodeError         { return e.code }
func (e *routerError) GetFile() string            { return e.file }
func (e *routerError) GetLine() int               { return e.line }
func (e *routerError) Unwrap() error              { return e.prt }

func (e *routerError) Add(parent ...error) {
	for _, p := range parent {
		if p == nil {
			continue
		}
		if e.prt == nil {
			e.prt = p
		} else {
			e.prt = fmt.Errorf("%w; %s", e.prt, p.Error())
		}
	}
}

// Is reports whether target is (or wraps) a routerError with the same
// code, satisfying the standard errors.Is contract.
func (e *routerError) Is(target error) bool {
	var other *routerError
	if errors.As(target, &other) {
		return e.code == other.code
	}
	return false
}

// HasCode walks the parent chain looking for a matching CodeError.
func HasCode(err error, code CodeError) bool {
	for err != nil {
		if re, ok := err.(*routerError); ok && re.code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
