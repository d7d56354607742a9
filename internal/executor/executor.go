// Package executor runs a single job firing, racing it against an
// optional timeout and reporting a uniform result shape regardless of
// whether the job completed, errored, or timed out.
package executor

import (
	"context"
	"fmt"
	"time"
)

// Job is the user-supplied work function for one firing.
type Job func(ctx context.Context, intendedAt time.Time, name string) (any, error)

// Result is the outcome of one Execute call.
type Result struct {
	Success  bool
	Result   any
	Error    error
	Duration time.Duration
	TimedOut bool
}

// TimedOutError is returned (wrapped in Result.Error) when a job
// exceeds its timeout.
type TimedOutError struct {
	Name    string
	Timeout time.Duration
}

func (e *TimedOutError) Error() string {
	return fmt.Sprintf("executor: job %q timed out after %s", e.Name, e.Timeout)
}

// Options configures a single Execute call.
type Options struct {
	Timeout   time.Duration // 0 disables the timeout race
	OnTimeout func(duration time.Duration)
}

// Execute runs job, measuring wall-clock duration and racing it against
// opts.Timeout when set. Panics inside job are recovered and reported
// as a normal (non-timeout) failure, matching how a synchronous job
// throwing would be reported.
func Execute(ctx context.Context, job Job, intendedAt time.Time, name string, opts Options) Result {
	start := time.Now()

	if opts.Timeout <= 0 {
		result, err := runJob(ctx, job, intendedAt, name)
		return Result{
			Success:  err == nil,
			Result:   result,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := runJob(ctx, job, intendedAt, name)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return Result{
			Success:  o.err == nil,
			Result:   o.result,
			Error:    o.err,
			Duration: time.Since(start),
		}
	case <-ctx.Done():
		duration := time.Since(start)
		if opts.OnTimeout != nil {
			opts.OnTimeout(duration)
		}
		return Result{
			Success:  false,
			Error:    &TimedOutError{Name: name, Timeout: opts.Timeout},
			Duration: duration,
			TimedOut: true,
		}
	}
}

func runJob(ctx context.Context, job Job, intendedAt time.Time, name string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor: job %q panicked: %v", name, r)
		}
	}()
	return job(ctx, intendedAt, name)
}

// WithTimeout wraps job so that every invocation enforces timeout,
// returning a TimedOutError if the job does not complete in time.
func WithTimeout(job Job, timeout time.Duration) Job {
	return func(ctx context.Context, intendedAt time.Time, name string) (any, error) {
		result := Execute(ctx, job, intendedAt, name, Options{Timeout: timeout})
		return result.Result, result.Error
	}
}
