// Package source loads observations from CSV files and a SQLite store.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/calplot/internal/core"
)

var ErrMissingColumn = errors.New("source: column not found")

type CSVOptions struct {
	DateColumn  string
	ValueColumn string
	LabelColumn string // optional
	Format      string // strftime or Go layout; empty means core.DefaultDateFormat
	Comma       rune
}

func (o CSVOptions) withDefaults() CSVOptions {
	if o.DateColumn == "" {
		o.DateColumn = "ds"
	}
	if o.ValueColumn == "" {
		o.ValueColumn = "value"
	}
	if o.Format == "" {
		o.Format = core.DefaultDateFormat
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
	return o
}

func ReadCSVFile(path string, opts CSVOptions) (core.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ReadCSV reads a headed CSV table and validates it into a canonical series.
// Rows with an empty or non-finite (NaN, Inf) value cell are skipped so the
// fill policy decides what those days show.
func ReadCSV(r io.Reader, opts CSVOptions) (core.Series, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("source: empty csv: %w", core.ErrNoData)
		}
		return nil, fmt.Errorf("source: reading csv header: %w", err)
	}
	cols := lo.Map(header, func(h string, _ int) string { return strings.TrimSpace(h) })

	dateIdx := lo.IndexOf(cols, opts.DateColumn)
	valueIdx := lo.IndexOf(cols, opts.ValueColumn)
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, opts.DateColumn)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, opts.ValueColumn)
	}
	labelIdx := -1
	if opts.LabelColumn != "" {
		if labelIdx = lo.IndexOf(cols, opts.LabelColumn); labelIdx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, opts.LabelColumn)
		}
	}

	var (
		dates  core.TextColumn
		values []float64
		labels []string
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: reading csv: %w", err)
		}
		raw := strings.TrimSpace(rec[valueIdx])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("source: line %d: parsing %s %q: %w", line, opts.ValueColumn, raw, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		dates = append(dates, strings.TrimSpace(rec[dateIdx]))
		values = append(values, v)

		if labelIdx >= 0 {
			labels = append(labels, rec[labelIdx])
		}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("source: csv has no values: %w", core.ErrNoData)
	}

	return core.BuildSeries(dates, values, labels, opts.Format)
}
