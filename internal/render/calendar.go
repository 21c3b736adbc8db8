package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/calplot/internal/core"
	"github.com/janekbaraniewski/calplot/internal/palette"
)

const (
	cellGlyph     = "■"
	gapGlyph      = "·"
	separatorRune = "│"
	dayLabelWidth = 4
)

type Options struct {
	Theme     Theme
	Title     string
	Gap       int // columns between day cells
	MonthGap  int // columns between month cells in the month view
	Width     int // truncate every line to this many cells; 0 keeps full width
	ShowScale bool
	Values    bool // print aggregated values inside month cells
}

// RenderCalendar draws every year panel of cal with the shared colour scale.
// Rows arrangement stacks panels, columns places them side by side.
func RenderCalendar(cal core.Calendar, sc palette.Scale, opts Options) string {
	blocks := make([]string, 0, len(cal.Panels))
	for _, p := range cal.Panels {
		blocks = append(blocks, renderPanel(p, sc, opts))
	}

	var body string
	if cal.Layout.Arrangement == core.ArrangeColumns {
		spaced := make([]string, 0, 2*len(blocks))
		for i, b := range blocks {
			if i > 0 {
				spaced = append(spaced, "   ")
			}
			spaced = append(spaced, b)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
	} else {
		body = strings.Join(blocks, "\n\n")
	}

	var sections []string
	if opts.Title != "" {
		sections = append(sections, lipgloss.NewStyle().Bold(true).Foreground(opts.Theme.Accent).Render(opts.Title))
	}
	sections = append(sections, body)
	if opts.ShowScale {
		sections = append(sections, RenderLegend(sc, opts.Theme))
	}
	return fitWidth(strings.Join(sections, "\n"), opts.Width)
}

func renderPanel(p core.YearPanel, sc palette.Scale, opts Options) string {
	th := opts.Theme
	gap := max(opts.Gap, 0)

	minWeek, maxWeek := math.MaxInt, math.MinInt
	cells := make(map[core.GridCoordinate]int, len(p.Coordinates))
	for i, c := range p.Coordinates {
		cells[c] = i
		minWeek = min(minWeek, c.Week)
		maxWeek = max(maxWeek, c.Week)
	}
	if len(cells) == 0 {
		return p.Title
	}
	cols := maxWeek - minWeek + 1
	boundaries := separatorCells(p.Lines)

	cellStyle := lipgloss.NewStyle()
	gapStyle := lipgloss.NewStyle().Foreground(th.Gap)
	sepStyle := lipgloss.NewStyle().Foreground(th.MonthLine)
	labelStyle := lipgloss.NewStyle().Foreground(th.Subtext)

	var lines []string
	if p.Title != "" {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(th.Text).Render(p.Title))
	}
	lines = append(lines, labelStyle.Render(monthHeader(p, minWeek, cols, gap)))

	for day := 0; day < 7; day++ {
		var sb strings.Builder
		sb.WriteString(labelStyle.Render(padRight(core.DayLabels[day], dayLabelWidth)))
		for w := minWeek; w <= maxWeek; w++ {
			if gap > 0 {
				if boundaries[core.GridCoordinate{Week: w, Weekday: day}] {
					sb.WriteString(sepStyle.Render(separatorRune))
					sb.WriteString(strings.Repeat(" ", gap-1))
				} else {
					sb.WriteString(strings.Repeat(" ", gap))
				}
			}
			i, ok := cells[core.GridCoordinate{Week: w, Weekday: day}]
			switch {
			case !ok:
				sb.WriteString(" ")
			case p.Grid.Slots[i].Missing():
				sb.WriteString(gapStyle.Render(gapGlyph))
			default:
				c := sc.Lipgloss(p.Grid.Slots[i].Value, th.Gap)
				sb.WriteString(cellStyle.Foreground(c).Render(cellGlyph))
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// separatorCells turns the vertical month strokes into the set of cells
// whose left edge carries a separator.
func separatorCells(segs []core.LineSegment) map[core.GridCoordinate]bool {
	out := make(map[core.GridCoordinate]bool)
	for _, s := range segs {
		if s.X[0] != s.X[1] {
			continue
		}
		week := int(math.Round(s.X[0] + 0.5))
		lo, hi := math.Min(s.Y[0], s.Y[1]), math.Max(s.Y[0], s.Y[1])
		for day := 0; day < 7; day++ {
			if y := float64(day); y > lo && y < hi {
				out[core.GridCoordinate{Week: week, Weekday: day}] = true
			}
		}
	}
	return out
}

// monthHeader places the first three letters of each month name above the
// column holding that month's first day.
func monthHeader(p core.YearPanel, minWeek, cols, gap int) string {
	width := dayLabelWidth + cols*(gap+1)
	buf := []rune(strings.Repeat(" ", width))

	names := make([]string, 0, len(p.Months.Names))
	for _, n := range p.Months.Names {
		if n != "" {
			names = append(names, n)
		}
	}

	next := 0
	for i, s := range p.Grid.Slots {
		if next >= len(names) {
			break
		}
		if i > 0 && s.Date.Day() != 1 {
			continue
		}
		label := []rune(names[next])
		if len(label) > 3 {
			label = label[:3]
		}
		next++
		col := dayLabelWidth + (p.Coordinates[i].Week-minWeek)*(gap+1) + gap
		if p.Coordinates[i].Weekday != 0 {
			col += gap + 1
		}
		for j, r := range label {
			if col+j < len(buf) {
				buf[col+j] = r
			}
		}
	}
	return strings.TrimRight(string(buf), " ")
}

// RenderLegend draws the colour bar ticks of sc on one line.
func RenderLegend(sc palette.Scale, th Theme) string {
	label := lipgloss.NewStyle().Foreground(th.Subtext)
	parts := make([]string, 0, 8)
	for _, st := range sc.Legend(5) {
		block := lipgloss.NewStyle().Foreground(lipgloss.Color(st.Color)).Render(cellGlyph)
		parts = append(parts, block+" "+label.Render(formatValue(st.Value)))
	}
	return strings.Join(parts, "  ")
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func padRight(s string, w int) string {
	if n := ansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func fitWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "…")
	}
	return strings.Join(lines, "\n")
}
