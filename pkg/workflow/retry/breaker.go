// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package retry

import (
	"sync"
	"time"
)

// State is a circuit breaker state.
type State int

const (
	// StateClosed lets requests flow; failures increment the counter.
	StateClosed State = iota
	// StateOpen rejects every request.
	StateOpen
	// StateHalfOpen lets a test request through after the reset timeout.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// Breaker trips after FailureThreshold consecutive failures and rejects
// requests while open. The Open to HalfOpen transition is lazy: it is
// computed from the last failure timestamp on every state query, never by
// a background timer.
type Breaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	lastFailure  time.Time

	now func() time.Time
}

// NewBreaker creates a closed Breaker.
func NewBreaker(failureThreshold int, resetTimeout time.Duration) *Breaker {
	return &Breaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

// State returns the current state, applying the lazy Open to HalfOpen
// transition when the reset timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.lastFailure) >= b.resetTimeout {
		b.state = StateHalfOpen
	}
	return b.state
}

// Available reports whether the breaker admits requests.
func (b *Breaker) Available() bool {
	return b.State() != StateOpen
}

// RecordSuccess resets the failure counter and closes the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
	b.successCount++
	b.state = StateClosed
}

// RecordFailure increments the failure counter and opens the circuit once
// the threshold is reached.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount++
	b.lastFailure = b.now()
	if b.failureCount >= b.failureThreshold {
		b.state = StateOpen
	}
}

// Reset returns the breaker to its initial closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
}

// Status is a point-in-time breaker snapshot.
type Status struct {
	State            State
	FailureCount     int
	SuccessCount     int
	FailureThreshold int
	Available        bool
}

// Status returns the current breaker snapshot.
func (b *Breaker) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.stateLocked()
	return Status{
		State:            state,
		FailureCount:     b.failureCount,
		SuccessCount:     b.successCount,
		FailureThreshold: b.failureThreshold,
		Available:        state != StateOpen,
	}
}
