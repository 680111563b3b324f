// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

// Package task contains a small poll-based future abstraction.
// A Future never blocks; it is polled repeatedly by a driver until it
// reports a ready result.
package task

// Unit is the value type of futures that only signal completion.
type Unit = struct{}

// Waker is handed to a future when it is polled.
// A future that returns Pending may call Wake (once the watched state
// changed) to ask the driver for another poll.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to a Waker.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }

// NoopWaker is a waker that ignores wake-up requests.
var NoopWaker Waker = WakerFunc(func() {})

// Poll is the outcome of a single poll of a future.
// It is either pending, ready with a value, or ready with an error.
type Poll[T any] struct {
	ready bool
	value T
	err   error
}

// Pending returns a pending poll result.
func Pending[T any]() Poll[T] {
	return Poll[T]{}
}

// Ready returns a ready poll result holding the given value.
func Ready[T any](value T) Poll[T] {
	return Poll[T]{ready: true, value: value}
}

// Failed returns a ready poll result holding the given error.
func Failed[T any](err error) Poll[T] {
	return Poll[T]{ready: true, err: err}
}

// IsPending returns true when the future has not completed yet.
func (p Poll[T]) IsPending() bool { return !p.ready }

// IsReady returns true when the future has completed (with value or error).
func (p Poll[T]) IsReady() bool { return p.ready }

// Result returns the value and error of a ready poll.
// For a pending poll the zero value and a nil error are returned.
func (p Poll[T]) Result() (T, error) {
	return p.value, p.err
}

// Err returns the error of a ready poll.
func (p Poll[T]) Err() error { return p.err }

// Future is a computation that completes at some point in the future.
type Future[T any] interface {
	// Poll attempts to make progress.
	// It must not block.
	Poll(w Waker) Poll[T]
}

// FutureFunc adapts a poll function to a Future.
type FutureFunc[T any] func(w Waker) Poll[T]

// Poll calls f.
func (f FutureFunc[T]) Poll(w Waker) Poll[T] { return f(w) }

// Done returns a future that is ready with the given value on first poll.
func Done[T any](value T) Future[T] {
	return FutureFunc[T](func(Waker) Poll[T] { return Ready(value) })
}

// Fail returns a future that is ready with the given error on first poll.
func Fail[T any](err error) Future[T] {
	return FutureFunc[T](func(Waker) Poll[T] { return Failed[T](err) })
}

// Defer returns a future that calls build on its first poll and
// forwards all polls to the future built.
func Defer[T any](build func() Future[T]) Future[T] {
	var inner Future[T]
	return FutureFunc[T](func(w Waker) Poll[T] {
		if inner == nil {
			inner = build()
		}
		return inner.Poll(w)
	})
}

// Then returns a future that first completes first and, only once first is
// ready with a value, builds the second future using next and completes that.
// An error from first completes the returned future without calling next.
// The final result is remembered, so polling after completion returns it again.
func Then[A, B any](first Future[A], next func(A) Future[B]) Future[B] {
	var second Future[B]
	var done bool
	var result Poll[B]
	return FutureFunc[B](func(w Waker) Poll[B] {
		if done {
			return result
		}
		if second == nil {
			p := first.Poll(w)
			if p.IsPending() {
				return Pending[B]()
			}
			value, err := p.Result()
			if err != nil {
				done, result = true, Failed[B](err)
				return result
			}
			second = next(value)
		}
		p := second.Poll(w)
		if p.IsReady() {
			done, result = true, p
		}
		return p
	})
}
