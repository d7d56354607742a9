// Package schedule defines the tagged union of schedule shapes a job
// can be configured with (fixed interval, daily time-of-day, or cron
// expression) and the Router that dispatches nextAfter computation
// across them. It sits below the registry and the public API so both
// can depend on it without a cycle.
package schedule

import (
	"fmt"
	"time"

	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/scheduling"
)

// Schedule is the tagged union of supported schedule shapes.
type Schedule interface {
	isSchedule()
}

// Interval wraps a fixed-interval schedule.
type Interval struct {
	scheduling.Interval
}

func (Interval) isSchedule() {}

// Daily wraps a daily time-of-day schedule.
type Daily struct {
	scheduling.Daily
}

func (Daily) isSchedule() {}

// Cron wraps a parsed cron expression.
type Cron struct {
	Expression string
	Fields     *cronx.Fields
}

func (Cron) isSchedule() {}

// NewCron parses expression with parser and wraps the result as a
// Schedule.
func NewCron(parser cronx.Parser, expression string) (Cron, error) {
	fields, err := parser.Parse(expression)
	if err != nil {
		return Cron{}, err
	}
	return Cron{Expression: expression, Fields: fields}, nil
}

// ErrInvalidSchedule is returned by NextAfter when s is not one of the
// known variants (e.g. a zero-value interface, or a type outside this
// package's union).
var ErrInvalidSchedule = fmt.Errorf("schedule: invalid schedule")

// NextAfter dispatches on s's concrete variant and returns the next
// firing instant strictly after from. utc selects which zone "now"
// and any zone-sensitive alignment (interval/daily) is evaluated in;
// cron expressions are zone-sensitive only insofar as from's Location
// determines what "day" and "hour" mean.
func NextAfter(s Schedule, from time.Time, utc bool) (time.Time, error) {
	if utc {
		from = from.UTC()
	} else {
		from = from.Local()
	}

	switch v := s.(type) {
	case Interval:
		return scheduling.IntervalNextAfter(v.Interval, from)
	case Daily:
		return scheduling.DailyNextAfter(v.Daily, from)
	case Cron:
		return cronx.NextAfter(v.Fields, from)
	default:
		return time.Time{}, ErrInvalidSchedule
	}
}
