// Package palette maps heatmap values to colours.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	ggpalette "github.com/aclements/go-gg/palette"
	"github.com/aclements/go-moremath/scale"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/calplot/internal/core"
)

var (
	ErrUnknownScale = errors.New("palette: unknown colour scale")
	ErrBadColor     = errors.New("palette: invalid hex colour")
)

// Sequential scales, low to high. The brewer entries use the nine-class
// ColorBrewer values.
var named = map[string][]string{
	"greens":  {"#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b"},
	"blues":   {"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"},
	"reds":    {"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d"},
	"oranges": {"#fff5eb", "#fee6ce", "#fdd0a2", "#fdae6b", "#fd8d3c", "#f16913", "#d94801", "#a63603", "#7f2704"},
	"purples": {"#fcfbfd", "#efedf5", "#dadaeb", "#bcbddc", "#9e9ac8", "#807dba", "#6a51a3", "#54278f", "#3f007d"},
	"greys":   {"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"},
	"viridis": {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
	"github":  {"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"},
}

// Names lists the built-in scale names, sorted.
func Names() []string {
	names := lo.Keys(named)
	sort.Strings(names)
	return names
}

// Scale turns values inside a ColorScaleRange into colours along a gradient.
type Scale struct {
	Name     string
	Range    core.ColorScaleRange
	gradient ggpalette.RGBGradient
	linear   scale.Linear
}

// Named builds a scale from a built-in name (case-insensitive).
func Named(name string, rng core.ColorScaleRange) (Scale, error) {
	hexes, ok := named[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Scale{}, fmt.Errorf("%w: %q", ErrUnknownScale, name)
	}
	s, err := Custom(hexes, rng)
	if err != nil {
		return Scale{}, err
	}
	s.Name = strings.ToLower(strings.TrimSpace(name))
	return s, nil
}

// Custom builds a scale from at least two hex colours, low to high.
func Custom(hexes []string, rng core.ColorScaleRange) (Scale, error) {
	if len(hexes) < 2 {
		return Scale{}, fmt.Errorf("palette: custom scale needs at least 2 colours, got %d", len(hexes))
	}
	colors := make([]color.RGBA, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return Scale{}, err
		}
		colors[i] = c
	}
	return Scale{
		Name:     "custom",
		Range:    rng,
		gradient: ggpalette.RGBGradient{Colors: colors},
		linear:   scale.Linear{Min: rng.Min, Max: rng.Max, Clamp: true},
	}, nil
}

// ForConfig picks the custom scale when one is configured, otherwise the
// named scale.
func ForConfig(name string, custom []string, rng core.ColorScaleRange) (Scale, error) {
	if len(custom) > 0 {
		return Custom(custom, rng)
	}
	return Named(name, rng)
}

// Position normalises v into [0, 1]. A zero-width range maps every value to
// the middle of the gradient.
func (s Scale) Position(v float64) float64 {
	if s.Range.Span() == 0 {
		return 0.5
	}
	x := s.linear.Map(v)
	return math.Max(0, math.Min(1, x))
}

func (s Scale) Color(v float64) color.RGBA {
	return toRGBA(s.gradient.Map(s.Position(v)))
}

func (s Scale) Hex(v float64) string {
	return FormatHex(s.Color(v))
}

// Lipgloss returns the terminal colour for a slot value. Missing slots get
// the supplied gap colour.
func (s Scale) Lipgloss(v *float64, gap lipgloss.Color) lipgloss.Color {
	if v == nil {
		return gap
	}
	return lipgloss.Color(s.Hex(*v))
}

// LegendStop is one labelled tick of a colour bar.
type LegendStop struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Legend returns at most n evenly spaced round ticks across the range.
func (s Scale) Legend(n int) []LegendStop {
	if n < 2 {
		n = 2
	}
	var ticks []float64
	if s.Range.Span() > 0 {
		ticks, _ = s.linear.Ticks(scale.TickOptions{Max: n})
	}
	if len(ticks) == 0 {
		ticks = lo.Uniq([]float64{s.Range.Min, s.Range.Max})
	}
	out := make([]LegendStop, len(ticks))
	for i, v := range ticks {
		out[i] = LegendStop{Value: v, Color: s.Hex(v)}
	}
	return out
}

// Levels quantises the range into n equal buckets and returns the colour
// of each bucket's midpoint, low to high.
func (s Scale) Levels(n int) []lipgloss.Color {
	if n < 1 {
		return nil
	}
	out := make([]lipgloss.Color, n)
	for i := range out {
		x := (float64(i) + 0.5) / float64(n)
		out[i] = lipgloss.Color(FormatHex(toRGBA(s.gradient.Map(x))))
	}
	return out
}

func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func FormatHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
