package core

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

var MonthAbbrevs = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

const (
	DefaultYearHeight  = 30
	monthGridPadding   = 20
	monthGridMinHeight = 10
)

type monthKey struct {
	year  int
	month int
}

// AggregateByMonth sums observations per calendar month. The month axis is
// always Jan..Dec regardless of which months carry data.
func AggregateByMonth(series Series) MonthGrid {
	sums := make(map[monthKey]float64)
	for _, o := range series {
		k := monthKey{year: o.Date.Year(), month: int(o.Date.Month())}
		sums[k] += o.Value
	}

	keys := lo.Keys(sums)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	grid := MonthGrid{
		Cells:       make([]MonthCell, 0, len(keys)),
		HoverText:   make([]string, 0, len(keys)),
		Months:      []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		MonthLabels: append([]string(nil), MonthAbbrevs...),
	}
	for _, k := range keys {
		v := sums[k]
		grid.Cells = append(grid.Cells, MonthCell{Year: k.year, Month: k.month, Value: v})
		grid.HoverText = append(grid.HoverText, fmt.Sprintf("%.0f", v))
	}
	grid.Years = lo.Uniq(lo.Map(grid.Cells, func(c MonthCell, _ int) int { return c.Year }))
	return grid
}

// MonthGridHeight returns the total height of a month view: the override
// when positive, otherwise a fixed padding plus yearHeight per year.
func MonthGridHeight(years, yearHeight, override int) int {
	if override > 0 {
		return override
	}
	if yearHeight <= 0 {
		yearHeight = DefaultYearHeight
	}
	return monthGridPadding + max(monthGridMinHeight, yearHeight*years)
}

// Scale returns the min and max monthly totals, or {0,0} for an empty grid.
func (g MonthGrid) Scale() ColorScaleRange {
	if len(g.Cells) == 0 {
		return ColorScaleRange{}
	}
	r := ColorScaleRange{Min: g.Cells[0].Value, Max: g.Cells[0].Value}
	for _, c := range g.Cells[1:] {
		r.Min = min(r.Min, c.Value)
		r.Max = max(r.Max, c.Value)
	}
	return r
}
