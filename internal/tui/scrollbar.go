package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/calplot/internal/render"
)

// scrollState describes a window of visible cells over total cells.
type scrollState struct {
	offset, visible, total int
}

func (s scrollState) scrollable() bool {
	return s.visible > 0 && s.total > s.visible
}

// thumb returns the thumb start and length on a track of trackW cells.
func (s scrollState) thumb(trackW int) (pos, size int) {
	maxOffset := s.total - s.visible
	size = clamp(int(math.Round(float64(s.visible)/float64(s.total)*float64(trackW))), 1, trackW)
	if maxOffset > 0 && trackW > size {
		off := clamp(s.offset, 0, maxOffset)
		pos = int(math.Round(float64(off) / float64(maxOffset) * float64(trackW-size)))
	}
	return pos, size
}

type barGlyphs struct {
	prefix, start, end string
}

var (
	horizontalBar = barGlyphs{prefix: "  ↔ ", start: "◀", end: "▶"}
	verticalBar   = barGlyphs{prefix: "  ↕ ", start: "▲", end: "▼"}
)

// scrollBar renders s as a one-line bar; it is empty when everything fits.
func scrollBar(th render.Theme, width int, s scrollState, g barGlyphs) string {
	if width <= 0 || !s.scrollable() {
		return ""
	}
	trackW := width - lipgloss.Width(g.prefix) - 2
	if trackW < 6 {
		return fitAnsiWidth(fmt.Sprintf("%s%d/%d", g.prefix, clamp(s.offset, 0, s.total-s.visible), s.total-s.visible), width)
	}

	pos, size := s.thumb(trackW)
	rail := lipgloss.NewStyle().Foreground(th.Dim)
	arrow := lipgloss.NewStyle().Foreground(th.Subtext)

	var sb strings.Builder
	sb.WriteString(g.prefix)
	sb.WriteString(arrow.Render(g.start))
	sb.WriteString(rail.Render(strings.Repeat("─", pos)))
	sb.WriteString(lipgloss.NewStyle().Foreground(th.Accent).Render(strings.Repeat("━", size)))
	sb.WriteString(rail.Render(strings.Repeat("─", trackW-pos-size)))
	sb.WriteString(arrow.Render(g.end))
	return fitAnsiWidth(sb.String(), width)
}

func fitAnsiWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	out := ansi.Cut(s, 0, width)
	if pad := width - lipgloss.Width(out); pad > 0 {
		out += strings.Repeat(" ", pad)
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
