package core

import "time"

// Input is the boundary shape of caller data. It is either RowInput or
// ColumnInput; both resolve to a canonical Series before any grid work.
type Input interface {
	Series() (Series, error)
}

// RowInput is row-oriented data whose dates are already temporal.
type RowInput struct {
	Rows []Observation
	Zone string
}

func (in RowInput) Series() (Series, error) {
	times := make([]time.Time, len(in.Rows))
	values := make([]float64, len(in.Rows))
	labels := make([]string, len(in.Rows))
	for i, r := range in.Rows {
		times[i] = r.Date
		values[i] = r.Value
		labels[i] = r.Label
	}
	return BuildSeries(TimeColumn{Values: times, Zone: in.Zone}, values, labels, "")
}

// ColumnInput is a pair (or triple) of parallel columns. Format applies
// only to a TextColumn of dates.
type ColumnInput struct {
	Dates  DateColumn
	Values []float64
	Labels []string
	Format string
}

func (in ColumnInput) Series() (Series, error) {
	return BuildSeries(in.Dates, in.Values, in.Labels, in.Format)
}
