package human

import (
	"fmt"

	"github.com/hzerrad/cronsched/internal/schedule"
)

// HumanizeSchedule converts any supported schedule shape — interval,
// daily, or cron — to a human-readable description. Cron expressions
// are humanized via Humanizer; interval and daily schedules have no
// field structure to analyze, so they're described directly.
func HumanizeSchedule(s schedule.Schedule) string {
	switch v := s.(type) {
	case schedule.Cron:
		return NewHumanizer().Humanize(v.Fields)
	case schedule.Interval:
		return humanizeInterval(v)
	case schedule.Daily:
		return fmt.Sprintf("Every day at %s", v.At)
	default:
		return "Unknown schedule"
	}
}

func humanizeInterval(i schedule.Interval) string {
	unit := string(i.Unit)
	if i.Every == 1 {
		unit = unit[:len(unit)-1] // "seconds" -> "second"
	}
	desc := fmt.Sprintf("Every %d %s", i.Every, unit)
	if i.Aligned {
		desc += ", aligned to the clock"
	}
	return desc
}
