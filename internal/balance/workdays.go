package balance

import "time"

// WorkingDays counts the weekdays in the inclusive range [start, end].
// Saturdays and Sundays are excluded; a range that falls entirely on a
// weekend counts as zero rather than erroring. An inverted range also
// counts as zero.
func WorkingDays(start, end time.Time) int {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// WorkingDaysInYear clamps the range to the given year before counting, so
// a request spanning a year boundary is attributed per-year.
func WorkingDaysInYear(start, end time.Time, year int) int {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	if start.Before(yearStart) {
		start = yearStart
	}
	if end.After(yearEnd) {
		end = yearEnd
	}
	return WorkingDays(start, end)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
