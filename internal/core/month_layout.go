package core

import "time"

var (
	DayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	DayTicks  = []int{0, 1, 2, 3, 4, 5, 6}
)

const (
	firstMonthTick = 1.5
	lastMonthTick  = 50.0
)

// LayoutMonths computes the month labels and their x positions for a year
// panel built from dates. Names outside rng are blank placeholders so the
// labels stay aligned with a twelve-slot axis.
func LayoutMonths(dates []time.Time, rng MonthRange, strategy TickStrategy) (MonthLayout, error) {
	if err := rng.Validate(); err != nil {
		return MonthLayout{}, err
	}

	var months []time.Month
	lastDay := make(map[time.Month]int)
	for _, d := range dates {
		m := d.Month()
		if !rng.Contains(m) {
			continue
		}
		if _, seen := lastDay[m]; !seen {
			months = append(months, m)
		}
		if d.Day() > lastDay[m] {
			lastDay[m] = d.Day()
		}
	}

	names := make([]string, 0, 12)
	for i := 1; i < rng.Start; i++ {
		names = append(names, "")
	}
	for _, m := range months {
		names = append(names, m.String())
	}
	for i := rng.End; i < 12; i++ {
		names = append(names, "")
	}

	var positions []float64
	if strategy == TickCumulative {
		positions = cumulativeTicks(panelYear(dates), lastDay)
	} else {
		positions = linearTicks(12, firstMonthTick, lastMonthTick)
	}

	return MonthLayout{
		Names:     names,
		Positions: positions,
		DayLabels: append([]string(nil), DayLabels...),
		DayTicks:  append([]int(nil), DayTicks...),
	}, nil
}

func linearTicks(n int, from, to float64) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = from
		return out
	}
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	out[n-1] = to
	return out
}

// cumulativeTicks returns one tick per calendar month, centred under the
// month by converting the day-of-year of its last observed day to weeks.
// Months without observations use their calendar length, so the axis keeps
// twelve slots aligned with the year's week columns.
func cumulativeTicks(year int, lastDay map[time.Month]int) []float64 {
	out := make([]float64, 12)
	before := 0
	for m := time.January; m <= time.December; m++ {
		days := DaysInMonth(year, m)
		last, ok := lastDay[m]
		if !ok {
			last = days
		}
		out[m-1] = float64(before+last-15) / 7
		before += days
	}
	return out
}

// panelYear is the year the dates belong to; an empty panel uses a common
// (non-leap) year.
func panelYear(dates []time.Time) int {
	if len(dates) == 0 {
		return 2001
	}
	return dates[0].Year()
}
