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

// Package retry provides the resilience layer wrapped around every dispatched
// operation: bounded exponential-backoff retry policies and a per-operation
// circuit breaker with a lazy Open to HalfOpen transition.
package retry

import (
	"math"
	"time"
)

// Policy configures retry behavior for one operation dispatch.
type Policy struct {
	// MaxRetries is the number of re-invocations after the first attempt.
	MaxRetries int

	// BaseDelay is the backoff before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff.
	MaxDelay time.Duration

	// BackoffFactor multiplies the delay per attempt.
	BackoffFactor float64

	// Retryable decides whether an error is worth retrying.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Preset policies.
var (
	NoRetry      = Policy{MaxRetries: 0, BaseDelay: time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 2.0}
	Conservative = Policy{MaxRetries: 2, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 3.0}
	Aggressive   = Policy{MaxRetries: 5, BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second, BackoffFactor: 1.5}
	APIRetry     = Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 2.0}
)

// DefaultPolicy is used when callers pass a zero Policy to Execute.
var DefaultPolicy = APIRetry

// DelayForAttempt computes the backoff for a 0-indexed attempt:
// min(BaseDelay * BackoffFactor^attempt, MaxDelay).
func (p Policy) DelayForAttempt(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	if max := float64(p.MaxDelay); d > max {
		d = max
	}
	return time.Duration(d)
}

// ShouldRetry reports whether another attempt is allowed after the given
// 0-indexed attempt failed with err.
func (p Policy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

func (p Policy) isZero() bool {
	return p.MaxRetries == 0 && p.BaseDelay == 0 && p.MaxDelay == 0 &&
		p.BackoffFactor == 0 && p.Retryable == nil
}
