// Package timer drives the recurring and one-shot scheduling loops that
// sit under a registered job: computing when to fire next, clamping
// runaway delays, and backing off after repeated scheduling failures.
package timer

import (
	"fmt"
	"sync"
	"time"
)

// MaxDelay bounds any single armed timer. time.Timer accepts a
// time.Duration (int64 nanoseconds), but the spec's clamp is expressed
// in the classic JS setTimeout limit of a signed 32-bit millisecond
// count, since a cooperative recurring timer re-arms itself on fire
// rather than ever needing to wait longer than that in one hop.
const MaxDelay = 2_147_483_647 * time.Millisecond

// DefaultMaxConsecutiveFailures trips the circuit breaker after this
// many consecutive scheduling failures.
const DefaultMaxConsecutiveFailures = 3

// Handle cancels a scheduled timer. Cancel is idempotent and safe to
// call from any goroutine.
type Handle struct {
	cancelOnce sync.Once
	cancel     func()
}

// Cancel stops the timer. Safe to call more than once.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(h.cancel)
}

// RecurringOptions configures ScheduleRecurring's failure handling and
// observability hooks. All hooks are optional.
type RecurringOptions struct {
	MaxConsecutiveFailures int
	OnSchedule             func(nextRun time.Time)
	OnError                func(err error)
	OnCircuitBreak         func(err error)
}

// SchedulingFailureError wraps a next-run computation or validation
// failure inside the recurring loop.
type SchedulingFailureError struct {
	Err error
}

func (e *SchedulingFailureError) Error() string {
	return fmt.Sprintf("timer: scheduling failure: %v", e.Err)
}

func (e *SchedulingFailureError) Unwrap() error { return e.Err }

// recurringLoop holds the mutable state of one ScheduleRecurring
// invocation: its armed timer, cancellation flag, and failure streak.
type recurringLoop struct {
	mu                  sync.Mutex
	done                bool
	armed               *time.Timer
	consecutiveFailures int

	nextFn  func(now time.Time) (time.Time, error)
	execFn  func(intendedAt time.Time)
	opts    RecurringOptions
	maxFail int
}

// ScheduleRecurring drives a self-healing recurring timer: on each
// fire it recomputes the next run via nextFn, arms a timer for the
// delay (clamped to MaxDelay, re-entering step 1 without executing if
// clamped), then invokes execFn at the computed instant.
//
// Consecutive scheduling failures (nextFn erroring, or returning a time
// that is not strictly after now) back off exponentially
// (min(10*2^(f-1), 60s)) and trip the circuit breaker permanently after
// opts.MaxConsecutiveFailures (default 3): the loop then stops
// scheduling and OnCircuitBreak fires once.
func ScheduleRecurring(nextFn func(now time.Time) (time.Time, error), execFn func(intendedAt time.Time), opts RecurringOptions) *Handle {
	maxFailures := opts.MaxConsecutiveFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxConsecutiveFailures
	}

	l := &recurringLoop{nextFn: nextFn, execFn: execFn, opts: opts, maxFail: maxFailures}

	h := &Handle{cancel: func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.done = true
		if l.armed != nil {
			l.armed.Stop()
		}
	}}

	l.step()
	return h
}

func (l *recurringLoop) isDone() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

func (l *recurringLoop) arm(delay time.Duration, fire func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return
	}
	l.armed = time.AfterFunc(delay, fire)
}

func (l *recurringLoop) step() {
	if l.isDone() {
		return
	}

	now := time.Now()
	nextRun, err := l.nextFn(now)
	if err == nil && !nextRun.After(now) {
		err = fmt.Errorf("computed next run %s is not strictly after %s", nextRun, now)
	}
	if err != nil {
		l.fail(&SchedulingFailureError{Err: err})
		return
	}

	l.consecutiveFailures = 0

	delay := nextRun.Sub(now)
	clamped := delay > MaxDelay
	if clamped {
		delay = MaxDelay
	} else if l.opts.OnSchedule != nil {
		l.opts.OnSchedule(nextRun)
	}

	l.arm(delay, func() {
		if clamped {
			l.step()
			return
		}
		l.fire(nextRun)
	})
}

func (l *recurringLoop) fire(nextRun time.Time) {
	intendedAt := nextRun.Truncate(time.Second)
	func() {
		defer func() {
			if r := recover(); r != nil && l.opts.OnError != nil {
				l.opts.OnError(fmt.Errorf("timer: exec panic: %v", r))
			}
		}()
		l.execFn(intendedAt)
	}()
	l.step()
}

func (l *recurringLoop) fail(err error) {
	l.consecutiveFailures++
	if l.opts.OnError != nil {
		l.opts.OnError(err)
	}

	if l.consecutiveFailures >= l.maxFail {
		l.mu.Lock()
		l.done = true
		l.mu.Unlock()
		if l.opts.OnCircuitBreak != nil {
			l.opts.OnCircuitBreak(err)
		}
		return
	}

	backoff := time.Duration(10*pow2(l.consecutiveFailures-1)) * time.Millisecond
	if backoff > 60*time.Second {
		backoff = 60 * time.Second
	}
	l.arm(backoff, l.step)
}

func pow2(n int) int64 {
	if n <= 0 {
		return 1
	}
	return 2 * pow2(n-1)
}

// ScheduleOnce arms a single-shot timer that invokes fn after delay.
// delay must be within [0, MaxDelay]. Any panic from fn is recovered
// and discarded; ScheduleOnce has no error-reporting hook. The loop
// started by ScheduleRecurring does not use it: its clamp re-entry
// arms its own timer.
func ScheduleOnce(delay time.Duration, fn func()) (*Handle, error) {
	if delay < 0 || delay > MaxDelay {
		return nil, fmt.Errorf("timer: delay %s out of range [0, %s]", delay, MaxDelay)
	}

	t := time.AfterFunc(delay, func() {
		defer func() { _ = recover() }()
		fn()
	})

	h := &Handle{cancel: func() { t.Stop() }}
	return h, nil
}
