package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/core"
	"github.com/janekbaraniewski/calplot/internal/render"
	"github.com/janekbaraniewski/calplot/internal/source"
)

// inputFlags selects where a command reads its series from and how the
// calendar is shaped.
type inputFlags struct {
	dataset     string
	dateColumn  string
	valueColumn string
	labelColumn string
	dateFormat  string

	theme      string
	colorscale string
	weeks      string
	ticks      string
	startMonth int
	endMonth   int
	cmapMin    float64
	cmapMax    float64
	zeroFloor  bool
	noLines    bool
	scale      bool
	title      string
	width      int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.dataset, "dataset", "d", "", "read a stored dataset instead of a CSV file")
	fs.StringVar(&f.dateColumn, "date-column", "ds", "CSV column holding the dates")
	fs.StringVar(&f.valueColumn, "value-column", "value", "CSV column holding the values")
	fs.StringVar(&f.labelColumn, "label-column", "", "optional CSV column holding hover labels")
	fs.StringVar(&f.dateFormat, "date-format", "", "strftime date format (default from config)")

	fs.StringVar(&f.theme, "theme", "", "light or dark")
	fs.StringVar(&f.colorscale, "colorscale", "", "named colour scale")
	fs.StringVar(&f.weeks, "week-policy", "", "strict or corrective week numbering")
	fs.StringVar(&f.ticks, "month-ticks", "", "linear or cumulative month tick positions")
	fs.IntVar(&f.startMonth, "start-month", 0, "first month shown (1-12)")
	fs.IntVar(&f.endMonth, "end-month", 0, "last month shown (1-12)")
	fs.Float64Var(&f.cmapMin, "cmap-min", 0, "fixed lower bound of the colour scale")
	fs.Float64Var(&f.cmapMax, "cmap-max", 0, "fixed upper bound of the colour scale")
	fs.BoolVar(&f.zeroFloor, "zero-floor", false, "start the colour scale at 0 when every value is positive")
	fs.BoolVar(&f.noLines, "no-month-lines", false, "hide month separators")
	fs.BoolVar(&f.scale, "scale", false, "print the colour legend")
	fs.StringVar(&f.title, "title", "", "title printed above the calendar")
	fs.IntVar(&f.width, "width", 0, "truncate output to this many columns")
}

// apply layers explicitly set flags over cfg.
func (f *inputFlags) apply(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	changed := cmd.Flags().Changed
	if f.theme != "" {
		cfg.Theme = f.theme
		if cfg.Theme != config.ThemeDark {
			cfg.Theme = config.ThemeLight
		}
	}
	if f.colorscale != "" {
		cfg.ColorScale = f.colorscale
		cfg.CustomColorScale = nil
	}
	if f.weeks != "" {
		cfg.WeekPolicy = string(core.ParseWeekPolicy(f.weeks))
	}
	if f.ticks != "" {
		cfg.MonthTicks = string(core.ParseTickStrategy(f.ticks))
	}
	if changed("start-month") {
		cfg.StartMonth = f.startMonth
	}
	if changed("end-month") {
		cfg.EndMonth = f.endMonth
	}
	if changed("cmap-min") {
		cfg.CmapMin = core.Float64Ptr(f.cmapMin)
	}
	if changed("cmap-max") {
		cfg.CmapMax = core.Float64Ptr(f.cmapMax)
	}
	if f.zeroFloor {
		cfg.ZeroFloor = true
	}
	if f.noLines {
		cfg.MonthLines.Enabled = false
	}
	if f.scale {
		cfg.ShowScale = true
	}
	if f.title != "" {
		cfg.Title = f.title
	}
	if f.dateFormat != "" {
		cfg.DateFormat = f.dateFormat
	}
	return cfg, cfg.Validate()
}

func (f *inputFlags) csvOptions(cfg config.Config) source.CSVOptions {
	return source.CSVOptions{
		DateColumn:  f.dateColumn,
		ValueColumn: f.valueColumn,
		LabelColumn: f.labelColumn,
		Format:      cfg.DateFormat,
	}
}

// loader returns a function that re-reads the selected input on every call.
func (f *inputFlags) loader(cfg config.Config, args []string) (func(context.Context) (core.Series, error), error) {
	switch {
	case f.dataset != "":
		return func(ctx context.Context) (core.Series, error) {
			store, err := source.OpenStore(cfg.StorePath)
			if err != nil {
				return nil, err
			}
			defer store.Close()
			series, err := store.Observations(ctx, f.dataset, time.Time{}, time.Time{})
			if err == nil && len(series) == 0 {
				err = fmt.Errorf("dataset %q: %w", f.dataset, core.ErrNoData)
			}
			return series, err
		}, nil
	case len(args) > 0:
		path, opts := args[0], f.csvOptions(cfg)
		return func(context.Context) (core.Series, error) {
			return source.ReadCSVFile(path, opts)
		}, nil
	default:
		return nil, errors.New("pass a CSV file or --dataset")
	}
}

func (f *inputFlags) renderOptions(cfg config.Config) (render.Options, error) {
	th := render.ThemeByName(cfg.Theme)
	if cfg.ThemeFile != "" {
		loaded, err := render.LoadThemeFile(cfg.ThemeFile)
		if err != nil {
			return render.Options{}, err
		}
		th = loaded
	}
	return render.Options{
		Theme:     th.WithMonthLine(cfg.MonthLines.Color),
		Title:     cfg.Title,
		Gap:       cfg.Gap,
		MonthGap:  cfg.MonthGap,
		Width:     f.width,
		ShowScale: cfg.ShowScale,
	}, nil
}
