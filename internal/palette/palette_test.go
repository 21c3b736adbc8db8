package palette

import (
	"errors"
	"image/color"
	"sort"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/calplot/internal/core"
)

func TestNamed_Endpoints(t *testing.T) {
	s, err := Named("Greens", core.ColorScaleRange{Min: 0, Max: 29})
	if err != nil {
		t.Fatalf("Named error: %v", err)
	}
	if s.Name != "greens" {
		t.Errorf("Name = %q, want greens", s.Name)
	}

	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"min", 0, "#f7fcf5"},
		{"max", 29, "#00441b"},
		{"below min clamps", -10, "#f7fcf5"},
		{"above max clamps", 100, "#00441b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Hex(tt.v); got != tt.want {
				t.Errorf("Hex(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestNamed_Unknown(t *testing.T) {
	_, err := Named("plasma-ish", core.ColorScaleRange{Max: 1})
	if !errors.Is(err, ErrUnknownScale) {
		t.Errorf("error = %v, want ErrUnknownScale", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
	for _, want := range []string{"greens", "blues", "viridis"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Names() missing %q", want)
		}
	}
}

func TestCustom(t *testing.T) {
	s, err := Custom([]string{"#fff", "#000000"}, core.ColorScaleRange{Min: 10, Max: 20})
	if err != nil {
		t.Fatalf("Custom error: %v", err)
	}
	if got := s.Hex(10); got != "#ffffff" {
		t.Errorf("Hex(10) = %q, want #ffffff", got)
	}
	if got := s.Hex(20); got != "#000000" {
		t.Errorf("Hex(20) = %q, want #000000", got)
	}
	if p := s.Position(15); p != 0.5 {
		t.Errorf("Position(15) = %v, want 0.5", p)
	}

	if _, err := Custom([]string{"#ffffff"}, core.ColorScaleRange{}); err == nil {
		t.Error("expected error for a single colour")
	}
	if _, err := Custom([]string{"#ffffff", "green"}, core.ColorScaleRange{}); !errors.Is(err, ErrBadColor) {
		t.Errorf("error = %v, want ErrBadColor", err)
	}
}

func TestForConfig_PrefersCustom(t *testing.T) {
	s, err := ForConfig("greens", []string{"#000000", "#ffffff"}, core.ColorScaleRange{Max: 1})
	if err != nil {
		t.Fatalf("ForConfig error: %v", err)
	}
	if s.Name != "custom" {
		t.Errorf("Name = %q, want custom", s.Name)
	}
	s, err = ForConfig("blues", nil, core.ColorScaleRange{Max: 1})
	if err != nil || s.Name != "blues" {
		t.Errorf("ForConfig(blues) = %q, %v", s.Name, err)
	}
}

func TestPosition_ZeroSpan(t *testing.T) {
	s, _ := Named("greens", core.ColorScaleRange{Min: 5, Max: 5})
	for _, v := range []float64{0, 5, 10} {
		if p := s.Position(v); p != 0.5 {
			t.Errorf("Position(%v) = %v, want 0.5", v, p)
		}
	}
}

func TestLipgloss_Gap(t *testing.T) {
	s, _ := Named("greens", core.ColorScaleRange{Min: 0, Max: 10})
	gap := lipgloss.Color("#222222")
	if got := s.Lipgloss(nil, gap); got != gap {
		t.Errorf("Lipgloss(nil) = %q, want %q", got, gap)
	}
	if got := s.Lipgloss(core.Float64Ptr(0), gap); got != lipgloss.Color("#f7fcf5") {
		t.Errorf("Lipgloss(0) = %q, want #f7fcf5", got)
	}
}

func TestLegend(t *testing.T) {
	s, _ := Named("greens", core.ColorScaleRange{Min: 0, Max: 29})
	stops := s.Legend(5)
	if len(stops) == 0 || len(stops) > 5 {
		t.Fatalf("len(Legend(5)) = %d, want 1..5", len(stops))
	}
	for i, st := range stops {
		if st.Value < 0 || st.Value > 29 {
			t.Errorf("stop %d value %v outside range", i, st.Value)
		}
		if i > 0 && st.Value <= stops[i-1].Value {
			t.Errorf("stops not ascending at %d: %v", i, stops)
		}
		if len(st.Color) != 7 {
			t.Errorf("stop %d colour = %q", i, st.Color)
		}
	}

	flat, _ := Named("greens", core.ColorScaleRange{Min: 3, Max: 3})
	if got := flat.Legend(5); len(got) != 1 || got[0].Value != 3 {
		t.Errorf("flat Legend = %+v, want single stop at 3", got)
	}
}

func TestLevels(t *testing.T) {
	s, _ := Named("github", core.ColorScaleRange{Max: 1})
	if got := s.Levels(4); len(got) != 4 {
		t.Errorf("len(Levels(4)) = %d, want 4", len(got))
	}
	if got := s.Levels(0); got != nil {
		t.Errorf("Levels(0) = %v, want nil", got)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#9e9e9e", color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}, false},
		{"00441b", color.RGBA{R: 0x00, G: 0x44, B: 0x1b, A: 0xff}, false},
		{"#abc", color.RGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff}, false},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
