// Package render draws calendars and month grids as styled terminal text.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour token set of a rendered calendar. Light themes paint
// missing days as zero, dark themes leave visible gaps.
type Theme struct {
	Name string `json:"name"`

	Text      lipgloss.Color `json:"text"`
	Subtext   lipgloss.Color `json:"subtext"`
	Dim       lipgloss.Color `json:"dim"`
	Accent    lipgloss.Color `json:"accent"`
	Gap       lipgloss.Color `json:"gap"`
	MonthLine lipgloss.Color `json:"month_line"`
}

func builtinThemes() []Theme {
	return []Theme{
		{
			Name: "light",
			Text: "#24292F", Subtext: "#57606A", Dim: "#8C959F",
			Accent: "#0969DA", Gap: "#EBEDF0", MonthLine: "#9E9E9E",
		},
		{
			Name: "dark",
			Text: "#E6EDF3", Subtext: "#9DA7B3", Dim: "#484F58",
			Accent: "#58A6FF", Gap: "#161B22", MonthLine: "#6E7681",
		},
	}
}

// ThemeByName returns the built-in theme with that name, falling back to
// light for anything unknown.
func ThemeByName(name string) Theme {
	all := builtinThemes()
	for _, t := range all {
		if strings.EqualFold(strings.TrimSpace(name), t.Name) {
			return t
		}
	}
	return all[0]
}

func trimColor(c lipgloss.Color) lipgloss.Color {
	return lipgloss.Color(strings.TrimSpace(string(c)))
}

// WithMonthLine overrides the separator colour, keeping the theme default
// when c is blank.
func (t Theme) WithMonthLine(c string) Theme {
	if c = strings.TrimSpace(c); c != "" {
		t.MonthLine = lipgloss.Color(c)
	}
	return t
}

func normalizeTheme(in Theme) Theme {
	in.Name = strings.TrimSpace(in.Name)
	in.Text = trimColor(in.Text)
	in.Subtext = trimColor(in.Subtext)
	in.Dim = trimColor(in.Dim)
	in.Accent = trimColor(in.Accent)
	in.Gap = trimColor(in.Gap)
	in.MonthLine = trimColor(in.MonthLine)
	return in
}

func (t Theme) validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("missing required field: name")
	}
	fields := []struct {
		name  string
		value lipgloss.Color
	}{
		{"text", t.Text}, {"subtext", t.Subtext}, {"dim", t.Dim},
		{"accent", t.Accent}, {"gap", t.Gap}, {"month_line", t.MonthLine},
	}
	missing := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(string(f.value)) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required color fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// LoadThemeFile reads a JSON theme with the same snake_case fields as Theme,
// for example {"name":"paper","text":"#111111",...}. Every colour is required.
func LoadThemeFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("render: reading theme: %w", err)
	}
	var t Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("render: parsing theme %s: %w", path, err)
	}
	t = normalizeTheme(t)
	if err := t.validate(); err != nil {
		return Theme{}, fmt.Errorf("render: theme %s: %w", path, err)
	}
	return t, nil
}
