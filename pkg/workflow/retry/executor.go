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
	"errors"
	"time"
)

// ErrCircuitOpen is the failure returned when the breaker rejects a call
// without invoking the wrapped function.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Result reports the outcome of one resilient execution.
type Result struct {
	Success      bool
	Value        interface{}
	Err          error
	Attempts     int
	TotalDelay   time.Duration
	CircuitState State
}

// Execute invokes fn under the given policy, optionally gated by a circuit
// breaker. A zero policy falls back to DefaultPolicy. The sleep function is
// injectable for tests; nil means time.Sleep. Backoff delays block the
// calling goroutine; the whole pipeline is synchronous by design.
//
// When the breaker rejects the call, the result carries ErrCircuitOpen and
// zero attempts. When retries are exhausted the result carries the last
// error and MaxRetries+1 attempts.
func Execute(fn func() (interface{}, error), policy Policy, breaker *Breaker, sleep func(time.Duration)) Result {
	if policy.isZero() {
		policy = DefaultPolicy
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	if breaker != nil && !breaker.Available() {
		return Result{
			Success:      false,
			Err:          ErrCircuitOpen,
			Attempts:     0,
			CircuitState: breaker.State(),
		}
	}

	var totalDelay time.Duration
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		value, err := fn()
		if err == nil {
			if breaker != nil {
				breaker.RecordSuccess()
			}
			return Result{
				Success:      true,
				Value:        value,
				Attempts:     attempt + 1,
				TotalDelay:   totalDelay,
				CircuitState: breakerState(breaker),
			}
		}

		lastErr = err
		if breaker != nil {
			breaker.RecordFailure()
		}
		if !policy.ShouldRetry(err, attempt) {
			break
		}

		delay := policy.DelayForAttempt(attempt)
		totalDelay += delay
		sleep(delay)
	}

	return Result{
		Success:      false,
		Err:          lastErr,
		Attempts:     policy.MaxRetries + 1,
		TotalDelay:   totalDelay,
		CircuitState: breakerState(breaker),
	}
}

func breakerState(b *Breaker) State {
	if b == nil {
		return StateClosed
	}
	return b.State()
}
