package core

import "time"

// Weekday returns the Monday-relative weekday of t: Monday=0 .. Sunday=6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// GregorianWeek returns the %W week of t: days before the first Monday of
// the year are week 0, the first Monday opens week 1.
func GregorianWeek(t time.Time) int {
	return (t.YearDay() - 1 + 7 - Weekday(t)) / 7
}

// CorrectedISOWeek returns the ISO week of t folded back into t's own year.
func CorrectedISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	switch {
	case t.Month() == time.January && week > 50:
		return 0
	case t.Month() == time.December && week < 10:
		return 53
	}
	return week
}

// Week returns the heatmap column of t under policy.
func Week(t time.Time, policy WeekPolicy) int {
	if policy == WeekCorrective {
		return CorrectedISOWeek(t)
	}
	return GregorianWeek(t)
}

// Coordinates maps each date to its (week, weekday) cell.
func Coordinates(dates []time.Time, policy WeekPolicy) []GridCoordinate {
	out := make([]GridCoordinate, len(dates))
	for i, d := range dates {
		out[i] = GridCoordinate{Week: Week(d, policy), Weekday: Weekday(d)}
	}
	return out
}
