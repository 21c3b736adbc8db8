package core

import (
	"context"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPanelHeight = 150
	DefaultPanelWidth  = 600
	DefaultSpacing     = 0.08
)

// ComposeOptions controls a multi-year composition. The zero value composes
// full years with zero-filled gaps, %W weeks and linear month ticks.
type ComposeOptions struct {
	Range       MonthRange
	Missing     MissingPolicy
	Weeks       WeekPolicy
	Ticks       TickStrategy
	ScaleMin    *float64
	ScaleMax    *float64
	ZeroFloor   bool
	Arrangement Arrangement
	TotalHeight int
	TotalWidth  int
	Spacing     float64
	YearTitles  bool
	MonthLines  bool
	MaxParallel int
}

// PanelLayout tells the renderer how to arrange the year panels.
type PanelLayout struct {
	Arrangement Arrangement `json:"arrangement"`
	Rows        int         `json:"rows"`
	Cols        int         `json:"cols"`
	Height      int         `json:"height"`
	Width       int         `json:"width,omitempty"`
	Spacing     float64     `json:"spacing"`
}

func (o ComposeOptions) monthRange() MonthRange {
	if o.Range == (MonthRange{}) {
		return FullYear
	}
	return o.Range
}

// Compose partitions the observations inside the month range by year and
// builds one panel per year in chronological order, all sharing a single
// colour scale. Years with nothing inside the range get no panel.
func Compose(ctx context.Context, series Series, opts ComposeOptions) (Calendar, error) {
	rng := opts.monthRange()
	if err := rng.Validate(); err != nil {
		return Calendar{}, err
	}
	if len(series) == 0 {
		return Calendar{}, ErrNoData
	}

	inRange := lo.Filter(series, func(o Observation, _ int) bool { return rng.Contains(o.Date.Month()) })
	if len(inRange) == 0 {
		return Calendar{}, ErrNoData
	}
	byYear := lo.GroupBy(inRange, func(o Observation) int { return o.Date.Year() })
	years := lo.Keys(byYear)
	sort.Ints(years)
	scale := ScaleRange(series, rng, opts.ScaleMin, opts.ScaleMax)
	if opts.ZeroFloor && opts.ScaleMin == nil {
		scale = scale.FloorAtZero()
	}

	panels := make([]YearPanel, len(years))
	g, gctx := errgroup.WithContext(ctx)
	if opts.MaxParallel > 0 {
		g.SetLimit(opts.MaxParallel)
	}
	for i, year := range years {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := buildPanel(byYear[year], year, rng, opts)
			if err != nil {
				return err
			}
			panels[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Calendar{}, err
	}

	return Calendar{
		Panels: panels,
		Scale:  scale,
		Layout: LayoutPanels(len(panels), opts),
	}, nil
}

func buildPanel(obs []Observation, year int, rng MonthRange, opts ComposeOptions) (YearPanel, error) {
	grid, err := FillYear(obs, year, rng, opts.Missing)
	if err != nil {
		return YearPanel{}, err
	}
	dates := grid.Dates()
	coords := Coordinates(dates, opts.Weeks)
	months, err := LayoutMonths(dates, rng, opts.Ticks)
	if err != nil {
		return YearPanel{}, err
	}
	p := YearPanel{
		Year:        year,
		Grid:        grid,
		Coordinates: coords,
		Months:      months,
	}
	if opts.YearTitles {
		p.Title = strconv.Itoa(year)
	}
	if opts.MonthLines {
		p.Lines = MonthLines(grid, coords)
	}
	return p, nil
}

// LayoutPanels sizes n year panels. Explicit totals win; otherwise the
// stacked dimension grows linearly with the number of years.
func LayoutPanels(n int, opts ComposeOptions) PanelLayout {
	l := PanelLayout{
		Arrangement: opts.Arrangement,
		Spacing:     opts.Spacing,
		Height:      opts.TotalHeight,
		Width:       opts.TotalWidth,
	}
	if l.Arrangement == "" {
		l.Arrangement = ArrangeRows
	}
	if l.Spacing <= 0 {
		l.Spacing = DefaultSpacing
	}

	switch l.Arrangement {
	case ArrangeColumns:
		l.Rows, l.Cols = 1, n
		if l.Height <= 0 {
			l.Height = DefaultPanelHeight
		}
		if l.Width <= 0 {
			l.Width = DefaultPanelWidth * n
		}
	default:
		l.Rows, l.Cols = n, 1
		if l.Height <= 0 {
			l.Height = DefaultPanelHeight * n
		}
	}
	return l
}
