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

// Package hostdir implements the host directory: an immutable table,
// loaded once at startup, mapping a logical hostname to its IP and
// TCP/UDP port ranges, with total lookups in both directions.
package hostdir

import (
	"net"

	rterr "github.com/submitty/router/internal/errors"
)

// Entry is one participant's identity: the IP its own traffic originates
// from, and the TCP/UDP port ranges the router listens on to impersonate
// it.
type Entry struct {
	Name         string
	IP           net.IP
	TCPPortLow   int
	TCPPortHigh  int
	UDPPortLow   int
	UDPPortHigh  int
}

// TCPPorts returns every inclusive TCP port in the entry's range.
func (e Entry) TCPPorts() []int {
	return portRange(e.TCPPortLow, e.TCPPortHigh)
}

// UDPPorts returns every inclusive UDP port in the entry's range.
func (e Entry) UDPPorts() []int {
	return portRange(e.UDPPortLow, e.UDPPortHigh)
}

func portRange(lo, hi int) []int {
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	return out
}

// Directory is the immutable, concurrency-safe-by-construction host table.
// Once built it is never mutated, so no locking is required.
type Directory struct {
	byName map[string]Entry
	byIP   map[string]string // IP.String() -> name
}

// New builds a Directory from the given entries. Hostnames and IPs are
// assumed unique: a later entry with a duplicate name or IP overwrites the
// earlier one in that lookup. Duplicates are not rejected here, and the
// inventory loader does not check for duplicate IPs either.
func New(entries []Entry) *Directory {
	d := &Directory{
		byName: make(map[string]Entry, len(entries)),
		byIP:   make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		d.byName[e.Name] = e
		d.byIP[e.IP.String()] = e.Name
	}
	return d
}

// LookupByName is total over configured hosts.
func (d *Directory) LookupByName(name string) (Entry, bool) {
	e, ok := d.byName[name]
	return e, ok
}

// LookupNameByIP is total over configured hosts; an unknown IP fails with
// UnknownPeer.
func (d *Directory) LookupNameByIP(ip net.IP) (string, rterr.Error) {
	name, ok := d.byIP[ip.String()]
	if !ok {
		return "", rterr.New(rterr.UnknownPeer, "unknown ip "+ip.String(), nil)
	}
	return name, nil
}

// ActualAlias returns the hostname alias that resolves to the real
// student process behind a logical host name, rather than to the router.
func ActualAlias(name string) string {
	return name + "_Actual"
}
