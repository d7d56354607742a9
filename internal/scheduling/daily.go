package scheduling

import (
	"strconv"
	"strings"
	"time"
)

// Daily is a once-per-day firing at a fixed H:MM time of day.
type Daily struct {
	At string // "H:MM" or "HH:MM", 24-hour
}

// InvalidDailyError reports why a Daily schedule's `At` field is
// malformed.
type InvalidDailyError struct {
	Reason string
}

func (e *InvalidDailyError) Error() string {
	return "scheduling: invalid daily schedule: " + e.Reason
}

// DailyNextAfter computes the next H:MM:00.000 strictly after `from`,
// advancing to tomorrow when today's occurrence has already passed.
func DailyNextAfter(d Daily, from time.Time) (time.Time, error) {
	hour, minute, err := parseAt(d.At)
	if err != nil {
		return time.Time{}, err
	}

	candidate := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}

func parseAt(at string) (hour, minute int, err error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return 0, 0, &InvalidDailyError{Reason: "expected \"H:MM\" or \"HH:MM\""}
	}

	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, &InvalidDailyError{Reason: "hour and minute must be integers"}
	}
	if hour < 0 || hour > 23 {
		return 0, 0, &InvalidDailyError{Reason: "hour must be between 0 and 23"}
	}
	if minute < 0 || minute > 59 {
		return 0, 0, &InvalidDailyError{Reason: "minute must be between 0 and 59"}
	}
	if len(parts[1]) != 2 {
		return 0, 0, &InvalidDailyError{Reason: "minute must be exactly two digits"}
	}

	return hour, minute, nil
}
