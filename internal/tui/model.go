// Package tui is the interactive calendar viewer.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/calplot/internal/config"
	"github.com/janekbaraniewski/calplot/internal/core"
	"github.com/janekbaraniewski/calplot/internal/palette"
	"github.com/janekbaraniewski/calplot/internal/render"
)

type screen int

const (
	screenDays   screen = iota // one heatmap panel per year
	screenMonths               // month-aggregated view
)

const (
	scrollStepX = 8
	scrollStepY = 3
	chromeLines = 3 // header, scrollbar, footer
)

// SeriesMsg replaces the viewer's data, typically after the source file
// changed on disk.
type SeriesMsg struct {
	Series core.Series
	Err    error
}

type themePersistedMsg struct {
	err error
}

type Model struct {
	series core.Series
	cfg    config.Config
	theme  render.Theme
	screen screen

	body    []string
	bodyW   int
	xOffset int
	yOffset int

	width, height int
	status        string
	err           error

	reload       func(context.Context) (core.Series, error)
	persistTheme func(string) error
}

func NewModel(series core.Series, cfg config.Config) Model {
	m := Model{
		series:       series,
		cfg:          cfg,
		persistTheme: config.SaveTheme,
	}
	m.theme = render.ThemeByName(cfg.Theme).WithMonthLine(cfg.MonthLines.Color)
	m.rebuild()
	return m
}

// SetReload sets the loader used by the "r" key.
func (m *Model) SetReload(fn func(context.Context) (core.Series, error)) {
	m.reload = fn
}

// SetTheme overrides the named theme, for example with one loaded from a file.
func (m *Model) SetTheme(th render.Theme) {
	m.theme = th
	m.rebuild()
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffsets()
		return m, nil

	case SeriesMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.series = msg.Series
		m.status = fmt.Sprintf("reloaded %d observations", len(msg.Series))
		m.rebuild()
		return m, nil

	case themePersistedMsg:
		if msg.err != nil {
			m.status = "theme not saved: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "m":
		if m.screen == screenDays {
			m.screen = screenMonths
		} else {
			m.screen = screenDays
		}
		m.xOffset, m.yOffset = 0, 0
		m.rebuild()
	case "t":
		if m.cfg.Theme == config.ThemeDark {
			m.cfg.Theme = config.ThemeLight
		} else {
			m.cfg.Theme = config.ThemeDark
		}
		m.theme = render.ThemeByName(m.cfg.Theme).WithMonthLine(m.cfg.MonthLines.Color)
		m.rebuild()
		return m, m.persistThemeCmd(m.cfg.Theme)
	case "l", "right":
		m.xOffset += scrollStepX
	case "h", "left":
		m.xOffset -= scrollStepX
	case "j", "down":
		m.yOffset += scrollStepY
	case "k", "up":
		m.yOffset -= scrollStepY
	case "g", "home":
		m.xOffset, m.yOffset = 0, 0
	case "r":
		if m.reload != nil {
			return m, m.reloadCmd()
		}
	}
	m.clampOffsets()
	return m, nil
}

func (m Model) persistThemeCmd(theme string) tea.Cmd {
	persist := m.persistTheme
	return func() tea.Msg {
		if persist == nil {
			return themePersistedMsg{}
		}
		err := persist(theme)
		if err != nil {
			log.Printf("theme persist: %v", err)
		}
		return themePersistedMsg{err: err}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	reload := m.reload
	return func() tea.Msg {
		s, err := reload(context.Background())
		return SeriesMsg{Series: s, Err: err}
	}
}

// rebuild recomposes the active screen from the series and config.
func (m *Model) rebuild() {
	defer m.clampOffsets()
	m.body, m.bodyW = nil, 0
	if len(m.series) == 0 {
		m.err = core.ErrNoData
		return
	}
	opts := render.Options{
		Theme:     m.theme,
		Title:     m.cfg.Title,
		Gap:       m.cfg.Gap,
		MonthGap:  m.cfg.MonthGap,
		ShowScale: m.cfg.ShowScale,
	}

	var out string
	switch m.screen {
	case screenMonths:
		g := core.AggregateByMonth(m.series)
		sc, err := palette.ForConfig(m.cfg.ColorScale, m.cfg.CustomColorScale, g.Scale())
		if err != nil {
			m.err = err
			return
		}
		opts.Values = true
		out = render.RenderMonthGrid(g, sc, opts)
	default:
		cal, err := core.Compose(context.Background(), m.series, m.cfg.ComposeOptions())
		if err != nil {
			m.err = err
			return
		}
		sc, err := palette.ForConfig(m.cfg.ColorScale, m.cfg.CustomColorScale, cal.Scale)
		if err != nil {
			m.err = err
			return
		}
		out = render.RenderCalendar(cal, sc, opts)
	}

	m.err = nil
	m.body = strings.Split(out, "\n")
	for _, l := range m.body {
		m.bodyW = max(m.bodyW, ansi.StringWidth(l))
	}
}

func (m Model) visibleRows() int {
	return max(m.height-chromeLines, 1)
}

func (m *Model) clampOffsets() {
	m.xOffset = clamp(m.xOffset, 0, max(m.bodyW-m.width, 0))
	m.yOffset = clamp(m.yOffset, 0, max(len(m.body)-m.visibleRows(), 0))
}

func (m Model) View() string {
	if m.width < 30 || m.height < 8 {
		return lipgloss.NewStyle().
			Foreground(m.theme.Dim).
			Render("\n  Terminal too small. Resize to at least 30x8.")
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(lipgloss.NewStyle().Foreground(m.theme.Text).Render("  " + m.err.Error()))
		sb.WriteString("\n")
	} else {
		rows := m.visibleRows()
		end := min(m.yOffset+rows, len(m.body))
		for _, l := range m.body[m.yOffset:end] {
			sb.WriteString(ansi.Cut(l, m.xOffset, m.xOffset+m.width))
			sb.WriteString("\n")
		}
		if bar := scrollBar(m.theme, m.width, scrollState{m.xOffset, m.width, m.bodyW}, horizontalBar); bar != "" {
			sb.WriteString(bar)
			sb.WriteString("\n")
		} else if bar := scrollBar(m.theme, m.width, scrollState{m.yOffset, rows, len(m.body)}, verticalBar); bar != "" {
			sb.WriteString(bar)
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderHeader() string {
	tab := func(label string, active bool) string {
		st := lipgloss.NewStyle().Foreground(m.theme.Subtext)
		if active {
			st = st.Bold(true).Foreground(m.theme.Accent)
		}
		return st.Render(label)
	}
	years := m.series.Years()
	span := ""
	if len(years) > 0 {
		span = fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
	}
	return fitAnsiWidth(" "+tab("Days", m.screen == screenDays)+"  "+tab("Months", m.screen == screenMonths)+"  "+
		lipgloss.NewStyle().Foreground(m.theme.Dim).Render(span+" · "+m.cfg.Theme), m.width)
}

func (m Model) renderFooter() string {
	help := "q quit · tab view · t theme · ←→↑↓ scroll"
	if m.reload != nil {
		help += " · r reload"
	}
	if m.status != "" {
		help = m.status + " · " + help
	}
	return fitAnsiWidth(lipgloss.NewStyle().Foreground(m.theme.Dim).Render(" "+help), m.width)
}
