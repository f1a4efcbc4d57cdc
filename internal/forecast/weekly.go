package forecast

import (
	"futureflow/internal/core"
)

// DefaultWeekCount is the fixed outlook horizon shown to the caller.
const DefaultWeekCount = 8

// WeekExposure is one 7-day bucket of projected outflows. Windows are
// anchored on the reference date, not on calendar-week boundaries.
type WeekExposure struct {
	Index       int
	Start       core.Date
	End         core.Date
	Total       core.Money
	HasExposure bool
}

// AggregateWeeks buckets the calendar into weekCount consecutive
// non-overlapping 7-day windows starting at now. Week 0 covers
// now..now+6; an obligation exactly 7 days out lands in week 1.
func AggregateWeeks(cal Calendar, now core.Date, weekCount int) []WeekExposure {
	if weekCount <= 0 {
		weekCount = DefaultWeekCount
	}
	weeks := make([]WeekExposure, weekCount)
	for i := range weeks {
		start := now.AddDays(i * 7)
		var total int64
		for d := 0; d < 7; d++ {
			if amount, ok := cal[start.AddDays(d)]; ok {
				total += amount.Cents
			}
		}
		weeks[i] = WeekExposure{
			Index:       i,
			Start:       start,
			End:         start.AddDays(6),
			Total:       core.Money{Cents: total},
			HasExposure: total > 0,
		}
	}
	return weeks
}
