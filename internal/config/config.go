package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/janekbaraniewski/calplot/internal/core"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	DefaultSyncSchedule = "@hourly"
)

type MonthLinesConfig struct {
	Enabled bool    `json:"enabled"`
	Width   float64 `json:"width"`
	Color   string  `json:"color"`
}

// SyncConfig schedules a CSV file to be re-imported into a stored dataset.
type SyncConfig struct {
	Dataset     string `json:"dataset"`
	Path        string `json:"path"`
	Schedule    string `json:"schedule"`
	DateColumn  string `json:"date_column,omitempty"`
	ValueColumn string `json:"value_column,omitempty"`
	LabelColumn string `json:"label_column,omitempty"`
}

type Config struct {
	Theme            string           `json:"theme"`
	ThemeFile        string           `json:"theme_file,omitempty"`
	ColorScale       string           `json:"colorscale"`
	CustomColorScale []string         `json:"custom_colorscale,omitempty"`
	MonthLines       MonthLinesConfig `json:"month_lines"`
	Gap              int              `json:"gap"`
	MonthGap         int              `json:"month_gap"`
	Title            string           `json:"title"`
	Name             string           `json:"name"`
	YearsTitle       bool             `json:"years_title"`
	TotalHeight      int              `json:"total_height,omitempty"`
	TotalWidth       int              `json:"total_width,omitempty"`
	YearHeight       int              `json:"year_height"`
	Space            float64          `json:"space_between_plots"`
	ShowScale        bool             `json:"show_scale"`
	StartMonth       int              `json:"start_month"`
	EndMonth         int              `json:"end_month"`
	Arrangement      string           `json:"arrangement"`
	DateFormat       string           `json:"date_format"`
	WeekPolicy       string           `json:"week_policy"`
	MonthTicks       string           `json:"month_ticks"`
	CmapMin          *float64         `json:"cmap_min,omitempty"`
	CmapMax          *float64         `json:"cmap_max,omitempty"`
	ZeroFloor        bool             `json:"zero_floor"`
	StorePath        string           `json:"store_path"`
	ListenAddr       string           `json:"listen_addr"`
	APISecret        string           `json:"api_secret,omitempty"`
	Sync             []SyncConfig     `json:"sync,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Theme:      ThemeLight,
		ColorScale: "greens",
		MonthLines: MonthLinesConfig{
			Enabled: true,
			Width:   1,
			Color:   "#9e9e9e",
		},
		Gap:         1,
		MonthGap:    2,
		Name:        "y",
		YearHeight:  core.DefaultYearHeight,
		Space:       core.DefaultSpacing,
		StartMonth:  1,
		EndMonth:    12,
		Arrangement: string(core.ArrangeRows),
		DateFormat:  core.DefaultDateFormat,
		WeekPolicy:  string(core.WeekStrict),
		MonthTicks:  string(core.TickLinear),
		StorePath:   filepath.Join(ConfigDir(), "observations.db"),
		ListenAddr:  "127.0.0.1:8787",
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "calplot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "calplot")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	def := DefaultConfig()
	if cfg.Theme != ThemeDark {
		cfg.Theme = ThemeLight
	}
	if cfg.ColorScale == "" {
		cfg.ColorScale = def.ColorScale
	}
	if cfg.MonthLines.Width <= 0 {
		cfg.MonthLines.Width = def.MonthLines.Width
	}
	if cfg.MonthLines.Color == "" {
		cfg.MonthLines.Color = def.MonthLines.Color
	}
	if cfg.Gap < 0 {
		cfg.Gap = def.Gap
	}
	if cfg.MonthGap < 0 {
		cfg.MonthGap = def.MonthGap
	}
	if cfg.YearHeight <= 0 {
		cfg.YearHeight = def.YearHeight
	}
	if cfg.Space <= 0 {
		cfg.Space = def.Space
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = def.DateFormat
	}
	if cfg.StorePath == "" {
		cfg.StorePath = def.StorePath
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	for i := range cfg.Sync {
		if cfg.Sync[i].Schedule == "" {
			cfg.Sync[i].Schedule = DefaultSyncSchedule
		}
	}
	cfg.Arrangement = string(core.ParseArrangement(cfg.Arrangement))
	cfg.WeekPolicy = string(core.ParseWeekPolicy(cfg.WeekPolicy))
	cfg.MonthTicks = string(core.ParseTickStrategy(cfg.MonthTicks))

	return cfg, nil
}

// Validate reports settings that cannot be repaired by defaulting.
func (c Config) Validate() error {
	if err := c.Range().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.CmapMin != nil && c.CmapMax != nil && *c.CmapMin > *c.CmapMax {
		return fmt.Errorf("config: cmap_min %g is above cmap_max %g", *c.CmapMin, *c.CmapMax)
	}
	for i, job := range c.Sync {
		if job.Dataset == "" || job.Path == "" {
			return fmt.Errorf("config: sync[%d] needs dataset and path", i)
		}
	}
	return nil
}

func (c Config) Range() core.MonthRange {
	return core.MonthRange{Start: c.StartMonth, End: c.EndMonth}
}

// Missing maps the theme to its gap policy: dark themes keep "no data"
// visible as gaps, light themes paint it as zero.
func (c Config) Missing() core.MissingPolicy {
	if c.Theme == ThemeDark {
		return core.MissingGap
	}
	return core.MissingZero
}

func (c Config) ComposeOptions() core.ComposeOptions {
	return core.ComposeOptions{
		Range:       c.Range(),
		Missing:     c.Missing(),
		Weeks:       core.ParseWeekPolicy(c.WeekPolicy),
		Ticks:       core.ParseTickStrategy(c.MonthTicks),
		ScaleMin:    c.CmapMin,
		ScaleMax:    c.CmapMax,
		ZeroFloor:   c.ZeroFloor,
		Arrangement: core.ParseArrangement(c.Arrangement),
		TotalHeight: c.TotalHeight,
		TotalWidth:  c.TotalWidth,
		Spacing:     c.Space,
		YearTitles:  c.YearsTitle,
		MonthLines:  c.MonthLines.Enabled,
	}
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveTheme persists a theme name into the config file (read-modify-write).
// An unreadable file is reported, never replaced.
func SaveTheme(theme string) error {
	return SaveThemeTo(ConfigPath(), theme)
}

func SaveThemeTo(path string, theme string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		return fmt.Errorf("keeping %s untouched: %w", path, err)
	}
	cfg.Theme = theme
	return SaveTo(path, cfg)
}

// SaveColorScale persists a named colour scale (read-modify-write). It
// clears any custom scale so the name takes effect.
func SaveColorScale(name string) error {
	return SaveColorScaleTo(ConfigPath(), name)
}

func SaveColorScaleTo(path string, name string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		return fmt.Errorf("keeping %s untouched: %w", path, err)
	}
	cfg.ColorScale = name
	cfg.CustomColorScale = nil
	return SaveTo(path, cfg)
}
