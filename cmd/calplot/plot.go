package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/core"
	"github.com/janekbaraniewski/calplot/internal/palette"
	"github.com/janekbaraniewski/calplot/internal/render"
	"github.com/janekbaraniewski/calplot/internal/source"
)

const clearScreen = "\x1b[H\x1b[2J"

func newYearsCommand(cfg config.Config) *cobra.Command {
	var (
		in      inputFlags
		asJSON  bool
		watch   bool
		columns bool
	)
	cmd := &cobra.Command{
		Use:   "years [file.csv]",
		Short: "Draw one heatmap panel per year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.apply(cmd, cfg)
			if err != nil {
				return err
			}
			if columns {
				c.Arrangement = string(core.ArrangeColumns)
			}
			load, err := in.loader(c, args)
			if err != nil {
				return err
			}
			draw := func(ctx context.Context, w io.Writer) error {
				return runYears(ctx, w, c, &in, load, asJSON)
			}
			if watch {
				return watchAndDraw(cmd, args, in.dataset, draw)
			}
			return draw(cmd.Context(), cmd.OutOrStdout())
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the composed calendar as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "redraw when the CSV file changes")
	cmd.Flags().BoolVar(&columns, "columns", false, "place years side by side")
	return cmd
}

func runYears(ctx context.Context, w io.Writer, cfg config.Config, in *inputFlags, load func(context.Context) (core.Series, error), asJSON bool) error {
	series, err := load(ctx)
	if err != nil {
		return err
	}
	cal, err := core.Compose(ctx, series, cfg.ComposeOptions())
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cal)
	}

	sc, err := palette.ForConfig(cfg.ColorScale, cfg.CustomColorScale, cal.Scale)
	if err != nil {
		return err
	}
	opts, err := in.renderOptions(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, render.RenderCalendar(cal, sc, opts))
	return err
}

func newMonthsCommand(cfg config.Config) *cobra.Command {
	var (
		in     inputFlags
		asJSON bool
		values bool
		spark  bool
	)
	cmd := &cobra.Command{
		Use:   "months [file.csv]",
		Short: "Draw monthly totals, one row per year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := in.apply(cmd, cfg)
			if err != nil {
				return err
			}
			load, err := in.loader(c, args)
			if err != nil {
				return err
			}
			series, err := load(cmd.Context())
			if err != nil {
				return err
			}
			return runMonths(cmd.OutOrStdout(), c, &in, series, asJSON, values, spark)
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the month grid as JSON")
	cmd.Flags().BoolVar(&values, "values", false, "print totals inside the cells")
	cmd.Flags().BoolVar(&spark, "sparkline", false, "append a sparkline of monthly totals")
	return cmd
}

func runMonths(w io.Writer, cfg config.Config, in *inputFlags, series core.Series, asJSON, values, spark bool) error {
	if len(series) == 0 {
		return core.ErrNoData
	}
	grid := core.AggregateByMonth(series)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(grid)
	}

	rng := grid.Scale()
	if cfg.CmapMin != nil {
		rng.Min = *cfg.CmapMin
	}
	if cfg.CmapMax != nil {
		rng.Max = *cfg.CmapMax
	}
	sc, err := palette.ForConfig(cfg.ColorScale, cfg.CustomColorScale, rng)
	if err != nil {
		return err
	}
	opts, err := in.renderOptions(cfg)
	if err != nil {
		return err
	}
	opts.Values = values

	out := render.RenderMonthGrid(grid, sc, opts)
	if spark {
		totals := render.MonthTotals(grid)
		out += "\n\n" + render.RenderSparkline(totals, max(len(totals), 12), 4, opts.Theme.Accent)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// watchAndDraw redraws whenever the CSV file passed in args changes, until
// interrupted.
func watchAndDraw(cmd *cobra.Command, args []string, dataset string, draw func(context.Context, io.Writer) error) error {
	if dataset != "" || len(args) == 0 {
		return fmt.Errorf("--watch needs a CSV file")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	redraw := func() {
		fmt.Fprint(out, clearScreen)
		if err := draw(ctx, out); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
	redraw()
	return source.Watch(ctx, args[0], source.DefaultDebounce, redraw)
}
