package core

import "time"

// MonthRange is an inclusive [Start, End] span of calendar months (1..12).
type MonthRange struct {
	Start int `json:"start_month"`
	End   int `json:"end_month"`
}

var FullYear = MonthRange{Start: 1, End: 12}

func (r MonthRange) Validate() error {
	if r.Start < 1 || r.Start > 12 || r.End < 1 || r.End > 12 || r.Start > r.End {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

func (r MonthRange) Contains(m time.Month) bool {
	return int(m) >= r.Start && int(m) <= r.End
}

// First returns the first day of the range in year.
func (r MonthRange) First(year int) time.Time {
	return time.Date(year, time.Month(r.Start), 1, 0, 0, 0, 0, time.UTC)
}

// Last returns the last day of the range in year.
func (r MonthRange) Last(year int) time.Time {
	return time.Date(year, time.Month(r.End)+1, 0, 0, 0, 0, 0, time.UTC)
}

// Days returns the exact number of calendar days the range covers in year.
func (r MonthRange) Days(year int) int {
	return int(r.Last(year).Sub(r.First(year)).Hours()/24) + 1
}

func DaysInMonth(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// MissingPolicy decides what an unmatched day of a YearGrid holds.
type MissingPolicy string

const (
	// MissingZero renders "no data" as zero activity (light themes).
	MissingZero MissingPolicy = "zero"
	// MissingGap keeps "no data" distinguishable from a real zero (dark themes).
	MissingGap MissingPolicy = "gap"
)

func ParseMissingPolicy(s string) MissingPolicy {
	if MissingPolicy(s) == MissingGap {
		return MissingGap
	}
	return MissingZero
}

// WeekPolicy selects how a date is assigned to a heatmap column.
type WeekPolicy string

const (
	// WeekStrict is the %W week: the first Monday of the year opens week 1
	// and earlier days are week 0.
	WeekStrict WeekPolicy = "strict"
	// WeekCorrective starts from the ISO week and folds the year-boundary
	// weeks back into the panel: January weeks above 50 become 0 and
	// December weeks below 10 become 53.
	WeekCorrective WeekPolicy = "corrective"
)

var ValidWeekPolicies = []WeekPolicy{WeekStrict, WeekCorrective}

func ParseWeekPolicy(s string) WeekPolicy {
	for _, p := range ValidWeekPolicies {
		if string(p) == s {
			return p
		}
	}
	return WeekStrict
}

// TickStrategy selects how month label positions are computed.
type TickStrategy string

const (
	TickLinear     TickStrategy = "linear"
	TickCumulative TickStrategy = "cumulative"
)

func ParseTickStrategy(s string) TickStrategy {
	if TickStrategy(s) == TickCumulative {
		return TickCumulative
	}
	return TickLinear
}

// Arrangement places year panels either stacked or side by side.
type Arrangement string

const (
	ArrangeRows    Arrangement = "rows"
	ArrangeColumns Arrangement = "columns"
)

func ParseArrangement(s string) Arrangement {
	if Arrangement(s) == ArrangeColumns {
		return ArrangeColumns
	}
	return ArrangeRows
}
