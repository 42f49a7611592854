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
	"testing"
	"time"
)

func noSleep(time.Duration) {}

func TestDelayForAttempt(t *testing.T) {
	p := Policy{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 2.0}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped, 32s computed
		{10, 30 * time.Second},
	}
	for _, tc := range cases {
		if got := p.DelayForAttempt(tc.attempt); got != tc.want {
			t.Errorf("DelayForAttempt(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	sentinel := errors.New("fatal")
	p := Policy{
		MaxRetries: 2,
		Retryable:  func(err error) bool { return !errors.Is(err, sentinel) },
	}

	if !p.ShouldRetry(errors.New("transient"), 0) {
		t.Error("expected retry for transient error below the limit")
	}
	if p.ShouldRetry(errors.New("transient"), 2) {
		t.Error("expected no retry once attempt reaches MaxRetries")
	}
	if p.ShouldRetry(sentinel, 0) {
		t.Error("expected no retry for a non-retryable error")
	}
}

func TestExecuteSucceedsFirstTry(t *testing.T) {
	calls := 0
	res := Execute(func() (interface{}, error) {
		calls++
		return "ok", nil
	}, APIRetry, nil, noSleep)

	if !res.Success {
		t.Fatal("expected success")
	}
	if res.Value != "ok" {
		t.Errorf("Value = %v, want ok", res.Value)
	}
	if res.Attempts != 1 || calls != 1 {
		t.Errorf("attempts=%d calls=%d, want 1/1", res.Attempts, calls)
	}
	if res.TotalDelay != 0 {
		t.Errorf("TotalDelay = %v, want 0", res.TotalDelay)
	}
}

func TestExecuteRetryBound(t *testing.T) {
	calls := 0
	var delays []time.Duration
	policy := Policy{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second, BackoffFactor: 2.0}

	res := Execute(func() (interface{}, error) {
		calls++
		return nil, errors.New("boom")
	}, policy, nil, func(d time.Duration) { delays = append(delays, d) })

	if res.Success {
		t.Fatal("expected failure")
	}
	if calls != 4 {
		t.Errorf("fn invoked %d times, want MaxRetries+1 = 4", calls)
	}
	if res.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", res.Attempts)
	}
	wantDelays := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(delays) != len(wantDelays) {
		t.Fatalf("slept %d times, want %d", len(delays), len(wantDelays))
	}
	for i, want := range wantDelays {
		if delays[i] != want {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want)
		}
	}
	if res.TotalDelay != 7*time.Second {
		t.Errorf("TotalDelay = %v, want 7s", res.TotalDelay)
	}
	if res.Err == nil || res.Err.Error() != "boom" {
		t.Errorf("Err = %v, want boom", res.Err)
	}
}

func TestExecuteStopsOnNonRetryableError(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	policy := Policy{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2.0,
		Retryable:     func(err error) bool { return !errors.Is(err, fatal) },
	}

	res := Execute(func() (interface{}, error) {
		calls++
		return nil, fatal
	}, policy, nil, noSleep)

	if res.Success {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Errorf("fn invoked %d times, want 1", calls)
	}
	if !errors.Is(res.Err, fatal) {
		t.Errorf("Err = %v, want the fatal error", res.Err)
	}
}

func TestExecuteRecoversAfterFailures(t *testing.T) {
	calls := 0
	res := Execute(func() (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return 42, nil
	}, Policy{MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2.0}, nil, noSleep)

	if !res.Success {
		t.Fatal("expected eventual success")
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if res.Value != 42 {
		t.Errorf("Value = %v, want 42", res.Value)
	}
}

func TestBreakerTransitions(t *testing.T) {
	clock := time.Unix(1000, 0)
	b := NewBreaker(2, time.Minute)
	b.now = func() time.Time { return clock }

	if b.State() != StateClosed {
		t.Fatalf("initial state = %v, want closed", b.State())
	}

	b.RecordFailure()
	if b.State() != StateClosed {
		t.Errorf("state after 1 failure = %v, want closed", b.State())
	}

	b.RecordFailure()
	if b.State() != StateOpen {
		t.Errorf("state after 2 failures = %v, want open", b.State())
	}
	if b.Available() {
		t.Error("open breaker should not be available")
	}

	// Lazy transition: reported state flips once the timeout elapses.
	clock = clock.Add(time.Minute)
	if b.State() != StateHalfOpen {
		t.Errorf("state after reset timeout = %v, want half_open", b.State())
	}
	if !b.Available() {
		t.Error("half-open breaker should be available")
	}

	b.RecordSuccess()
	if b.State() != StateClosed {
		t.Errorf("state after success = %v, want closed", b.State())
	}
	if got := b.Status().FailureCount; got != 0 {
		t.Errorf("failure count after success = %d, want 0", got)
	}
}

func TestSuccessResetsConsecutiveFailures(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed (failures are not consecutive)", b.State())
	}
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Errorf("state = %v, want open", b.State())
	}
}

func TestExecuteRejectsWhenOpen(t *testing.T) {
	b := NewBreaker(1, time.Hour)
	b.RecordFailure()

	calls := 0
	res := Execute(func() (interface{}, error) {
		calls++
		return nil, nil
	}, APIRetry, b, noSleep)

	if res.Success {
		t.Fatal("expected rejection")
	}
	if calls != 0 {
		t.Errorf("fn invoked %d times, want 0", calls)
	}
	if res.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", res.Attempts)
	}
	if !errors.Is(res.Err, ErrCircuitOpen) {
		t.Errorf("Err = %v, want ErrCircuitOpen", res.Err)
	}
	if res.CircuitState != StateOpen {
		t.Errorf("CircuitState = %v, want open", res.CircuitState)
	}
}

func TestExecuteFeedsBreaker(t *testing.T) {
	b := NewBreaker(3, time.Hour)
	res := Execute(func() (interface{}, error) {
		return nil, errors.New("boom")
	}, Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2.0}, b, noSleep)

	if res.Success {
		t.Fatal("expected failure")
	}
	// 3 attempts, 3 recorded failures, threshold 3 reached.
	if res.CircuitState != StateOpen {
		t.Errorf("CircuitState = %v, want open", res.CircuitState)
	}
}

func TestBreakerReset(t *testing.T) {
	b := NewBreaker(1, time.Hour)
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatal("breaker should be open")
	}
	b.Reset()
	if b.State() != StateClosed {
		t.Errorf("state after Reset = %v, want closed", b.State())
	}
}

func TestStateString(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half_open" {
		t.Error("unexpected state names")
	}
}
