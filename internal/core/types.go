package core

import "time"

// Observation is one raw (date, value) row with an optional hover label.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Label string    `json:"label,omitempty"`
}

// Series holds observations with unique, naive, ascending calendar days.
// Build one with Canonicalize.
type Series []Observation

func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, o := range s {
		out[i] = o.Date
	}
	return out
}

func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, o := range s {
		out[i] = o.Value
	}
	return out
}

// Years returns the distinct years present, ascending.
func (s Series) Years() []int {
	var years []int
	for _, o := range s {
		y := o.Date.Year()
		if len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}

// Slot is one day of a YearGrid. A nil Value is the "no data" sentinel.
type Slot struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
	Label string    `json:"label,omitempty"`
}

func (s Slot) Missing() bool { return s.Value == nil }

// Float returns the slot value, or 0 for a missing slot.
func (s Slot) Float() float64 {
	if s.Value == nil {
		return 0
	}
	return *s.Value
}

// YearGrid is the dense daily sequence of one year restricted to a month range.
type YearGrid struct {
	Year  int        `json:"year"`
	Range MonthRange `json:"range"`
	Slots []Slot     `json:"slots"`
}

func (g YearGrid) Dates() []time.Time {
	out := make([]time.Time, len(g.Slots))
	for i, s := range g.Slots {
		out[i] = s.Date
	}
	return out
}

// Series converts the grid back into observations. Missing slots are
// skipped; zero-filled slots become zero-valued observations.
func (g YearGrid) Series() Series {
	out := make(Series, 0, len(g.Slots))
	for _, s := range g.Slots {
		if s.Missing() {
			continue
		}
		out = append(out, Observation{Date: s.Date, Value: *s.Value, Label: s.Label})
	}
	return out
}

// GridCoordinate places a day in the heatmap: Week on the x axis,
// Weekday (Monday=0) on the y axis.
type GridCoordinate struct {
	Week    int `json:"week"`
	Weekday int `json:"weekday"`
}

// ColorScaleRange is shared read-only by every panel of a calendar.
type ColorScaleRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r ColorScaleRange) Span() float64 { return r.Max - r.Min }

// FloorAtZero lowers a positive minimum to 0 so zero-filled days share the
// bottom colour with nothing else. A negative maximum is left untouched.
func (r ColorScaleRange) FloorAtZero() ColorScaleRange {
	if r.Min > 0 && r.Max >= 0 {
		r.Min = 0
	}
	return r
}

// MonthLayout holds the x axis labels of a year panel.
type MonthLayout struct {
	Names     []string  `json:"names"` // "" marks a placeholder outside the month range
	Positions []float64 `json:"positions"`
	DayLabels []string  `json:"day_labels"`
	DayTicks  []int     `json:"day_ticks"`
}

// LineSegment is one month separator stroke in grid coordinates.
type LineSegment struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

type YearPanel struct {
	Year        int              `json:"year"`
	Title       string           `json:"title,omitempty"`
	Grid        YearGrid         `json:"grid"`
	Coordinates []GridCoordinate `json:"coordinates"`
	Months      MonthLayout      `json:"months"`
	Lines       []LineSegment    `json:"lines,omitempty"`
}

// Calendar is everything a renderer needs to draw one heatmap per year.
type Calendar struct {
	Panels []YearPanel     `json:"panels"`
	Scale  ColorScaleRange `json:"scale"`
	Layout PanelLayout     `json:"layout"`
}

type MonthCell struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// MonthGrid is the month-aggregated view: years down, Jan..Dec across.
type MonthGrid struct {
	Cells       []MonthCell `json:"cells"`
	Years       []int       `json:"years"`
	Months      []int       `json:"months"`
	MonthLabels []string    `json:"month_labels"`
	HoverText   []string    `json:"hover_text"`
}

// Value returns the aggregated value for a year/month and whether the month
// had any observation.
func (g MonthGrid) Value(year, month int) (float64, bool) {
	for _, c := range g.Cells {
		if c.Year == year && c.Month == month {
			return c.Value, true
		}
	}
	return 0, false
}

func Float64Ptr(v float64) *float64 {
	return &v
}
