/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package atomic provides the two generic primitives the router needs for
// its process-wide shared state: a typed atomic Value for per-loop running
// flags, and a typed concurrent Map for the UDP forwarding-socket table.
package atomic

import (
	"sync"
	"sync/atomic"
)

// Value is a type-safe wrapper around sync/atomic.Value.
type Value[T any] interface {
	Load() T
	Store(val T)
	Swap(new T) (old T)
	CompareAndSwap(old, new T) (swapped bool)
}

type val[T any] struct {
	av *atomic.Value
	zero T
}

// NewValue returns a Value[T] whose Load returns the zero value of T until
// the first Store.
func NewValue[T any]() Value[T] {
	return &val[T]{av: new(atomic.Value)}
}

type boxed[T any] struct{ v T }

func (o *val[T]) Load() T {
	if v, ok := o.av.Load().(boxed[T]); ok {
		return v.v
	}
	return o.zero
}

func (o *val[T]) Store(val T) {
	o.av.Store(boxed[T]{v: val})
}

func (o *val[T]) Swap(new T) (old T) {
	if v, ok := o.av.Swap(boxed[T]{v: new}).(boxed[T]); ok {
		return v.v
	}
	return o.zero
}

func (o *val[T]) CompareAndSwap(old, new T) bool {
	return o.av.CompareAndSwap(boxed[T]{v: old}, boxed[T]{v: new})
}

// Map is a type-safe wrapper around sync.Map, guarding inserts with
// LoadOrStore so producers racing to create the same key never clobber
// each other.
type Map[K comparable, V any] interface {
	Load(key K) (value V, ok bool)
	Store(key K, value V)
	LoadOrStore(key K, value V) (actual V, loaded bool)
	Delete(key K)
	Range(f func(key K, value V) bool)
}

type syncMap[K comparable, V any] struct {
	m sync.Map
}

// NewMap returns an empty concurrent Map.
func NewMap[K comparable, V any]() Map[K, V] {
	return &syncMap[K, V]{}
}

func (o *syncMap[K, V]) Load(key K) (value V, ok bool) {
	v, found := o.m.Load(key)
	if !found {
		return value, false
	}
	value, ok = v.(V)
	return value, ok
}

func (o *syncMap[K, V]) Store(key K, value V) {
	o.m.Store(key, value)
}

func (o *syncMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := o.m.LoadOrStore(key, value)
	actual, _ = v.(V)
	return actual, loaded
}

func (o *syncMap[K, V]) Delete(key K) {
	o.m.Delete(key)
}

func (o *syncMap[K, V]) Range(f func(key K, value V) bool) {
	o.m.Range(func(key, value any) bool {
		k, ok := key.(K)
		if !ok {
			return true
		}
		v, ok := value.(V)
		if !ok {
			return true
		}
		return f(k, v)
	})
}
