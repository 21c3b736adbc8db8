package core

// MonthLines returns the separator strokes drawn before the first day of
// every month in the grid. A month starting mid-week gets a stepped outline:
// down the column below the first day, across the top of that cell, then up
// the next column boundary.
func MonthLines(grid YearGrid, coords []GridCoordinate) []LineSegment {
	var out []LineSegment
	for i, slot := range grid.Slots {
		if i >= len(coords) || slot.Date.Day() != 1 {
			continue
		}
		w, d := float64(coords[i].Week), float64(coords[i].Weekday)
		out = append(out, LineSegment{X: [2]float64{w - 0.5, w - 0.5}, Y: [2]float64{d - 0.5, 6.5}})
		if coords[i].Weekday != 0 {
			out = append(out,
				LineSegment{X: [2]float64{w - 0.5, w + 0.5}, Y: [2]float64{d - 0.5, d - 0.5}},
				LineSegment{X: [2]float64{w + 0.5, w + 0.5}, Y: [2]float64{d - 0.5, -0.5}},
			)
		}
	}
	return out
}
