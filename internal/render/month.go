package render

import (
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/calplot/internal/core"
	"github.com/janekbaraniewski/calplot/internal/palette"
)

const monthCellWidth = 3

// RenderMonthGrid draws the month view: one row per year, Jan..Dec across.
// Months without any observation show as dim gaps.
func RenderMonthGrid(g core.MonthGrid, sc palette.Scale, opts Options) string {
	th := opts.Theme
	gap := max(opts.MonthGap, 0)
	labelW := 5
	for _, y := range g.Years {
		labelW = max(labelW, len(strconv.Itoa(y))+1)
	}

	labelStyle := lipgloss.NewStyle().Foreground(th.Subtext)
	gapStyle := lipgloss.NewStyle().Foreground(th.Dim)

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", labelW))
	for i, name := range g.MonthLabels {
		if i > 0 {
			header.WriteString(strings.Repeat(" ", gap))
		}
		header.WriteString(padRight(ansi.Truncate(name, monthCellWidth, ""), monthCellWidth))
	}

	lines := []string{labelStyle.Render(strings.TrimRight(header.String(), " "))}
	if opts.Title != "" {
		lines = append([]string{lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Render(opts.Title)}, lines...)
	}

	for _, y := range g.Years {
		var sb strings.Builder
		sb.WriteString(labelStyle.Render(padRight(strconv.Itoa(y), labelW)))
		for i, m := range g.Months {
			if i > 0 {
				sb.WriteString(strings.Repeat(" ", gap))
			}
			v, ok := g.Value(y, m)
			if !ok {
				sb.WriteString(gapStyle.Render(strings.Repeat(gapGlyph, monthCellWidth)))
				continue
			}
			c := lipgloss.Color(sc.Hex(v))
			if opts.Values {
				text := ansi.Truncate(formatValue(v), monthCellWidth, "")
				sb.WriteString(lipgloss.NewStyle().Foreground(c).Render(padLeft(text, monthCellWidth)))
				continue
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(c).Render(strings.Repeat("█", monthCellWidth)))
		}
		lines = append(lines, sb.String())
	}

	if opts.ShowScale {
		lines = append(lines, RenderLegend(sc, th))
	}
	return fitWidth(strings.Join(lines, "\n"), opts.Width)
}

// MonthTotals returns the aggregated values of every month from the first
// to the last populated one, chronologically, with empty months as zero.
func MonthTotals(g core.MonthGrid) []float64 {
	if len(g.Cells) == 0 {
		return nil
	}
	first, last := g.Cells[0], g.Cells[len(g.Cells)-1]
	var out []float64
	for y := first.Year; y <= last.Year; y++ {
		for m := 1; m <= 12; m++ {
			if (y == first.Year && m < first.Month) || (y == last.Year && m > last.Month) {
				continue
			}
			v, _ := g.Value(y, m)
			out = append(out, v)
		}
	}
	return out
}

// RenderSparkline draws values as a w x h sparkline.
func RenderSparkline(values []float64, w, h int, color lipgloss.Color) string {
	if len(values) == 0 || w < 1 || h < 1 {
		return ""
	}
	sl := sparkline.New(w, h)
	sl.PushAll(values)
	sl.Draw()
	return lipgloss.NewStyle().Foreground(color).Render(sl.View())
}

func padLeft(s string, w int) string {
	if n := ansi.StringWidth(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}
