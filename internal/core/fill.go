package core

import "time"

// FillYear expands the observations of one year into a dense daily grid
// from the first day of rng.Start to the last day of rng.End. Observations
// outside that window are ignored; unmatched days follow policy.
func FillYear(series Series, year int, rng MonthRange, policy MissingPolicy) (YearGrid, error) {
	if err := rng.Validate(); err != nil {
		return YearGrid{}, err
	}

	first, last := rng.First(year), rng.Last(year)
	byDay := make(map[time.Time]Observation, len(series))
	for _, o := range series {
		d := Day(o.Date)
		if d.Before(first) || d.After(last) {
			continue
		}
		byDay[d] = o
	}

	slots := make([]Slot, 0, rng.Days(year))
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		slot := Slot{Date: d}
		if o, ok := byDay[d]; ok {
			slot.Value = Float64Ptr(o.Value)
			slot.Label = o.Label
		} else if policy != MissingGap {
			slot.Value = Float64Ptr(0)
		}
		slots = append(slots, slot)
	}

	return YearGrid{Year: year, Range: rng, Slots: slots}, nil
}
