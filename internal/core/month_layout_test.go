package core

import (
	"errors"
	"math"
	"testing"
)

func TestLayoutMonths_NamesFromData(t *testing.T) {
	series := Canonicalize(sampleObservations())
	layout, err := LayoutMonths(series.Dates(), FullYear, TickLinear)
	if err != nil {
		t.Fatalf("LayoutMonths error: %v", err)
	}
	want := []string{"January", "March", "April", "May"}
	if len(layout.Names) != len(want) {
		t.Fatalf("Names = %v, want %v", layout.Names, want)
	}
	for i := range want {
		if layout.Names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, layout.Names[i], want[i])
		}
	}
	if len(layout.Positions) != 12 {
		t.Errorf("len(Positions) = %d, want 12", len(layout.Positions))
	}
}

func TestLayoutMonths_SubRangePlaceholders(t *testing.T) {
	rng := MonthRange{Start: 3, End: 5}
	grid, err := FillYear(nil, 2019, rng, MissingZero)
	if err != nil {
		t.Fatalf("FillYear error: %v", err)
	}
	layout, err := LayoutMonths(grid.Dates(), rng, TickLinear)
	if err != nil {
		t.Fatalf("LayoutMonths error: %v", err)
	}
	want := []string{"", "", "March", "April", "May", "", "", "", "", "", "", ""}
	if len(layout.Names) != 12 {
		t.Fatalf("len(Names) = %d, want 12: %q", len(layout.Names), layout.Names)
	}
	for i := range want {
		if layout.Names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, layout.Names[i], want[i])
		}
	}
}

func TestLayoutMonths_LinearTicks(t *testing.T) {
	layout, err := LayoutMonths(nil, FullYear, TickLinear)
	if err != nil {
		t.Fatalf("LayoutMonths error: %v", err)
	}
	if layout.Positions[0] != 1.5 || layout.Positions[11] != 50 {
		t.Errorf("ticks span %v..%v, want 1.5..50", layout.Positions[0], layout.Positions[11])
	}
	step := layout.Positions[1] - layout.Positions[0]
	for i := 2; i < 12; i++ {
		if d := layout.Positions[i] - layout.Positions[i-1]; math.Abs(d-step) > 1e-9 {
			t.Errorf("uneven step at %d: %v vs %v", i, d, step)
		}
	}
}

func TestLayoutMonths_CumulativeTicks(t *testing.T) {
	grid, _ := FillYear(nil, 2019, FullYear, MissingZero)
	layout, err := LayoutMonths(grid.Dates(), FullYear, TickCumulative)
	if err != nil {
		t.Fatalf("LayoutMonths error: %v", err)
	}
	if len(layout.Positions) != 12 {
		t.Fatalf("len(Positions) = %d, want 12", len(layout.Positions))
	}
	if want := float64(31-15) / 7; layout.Positions[0] != want {
		t.Errorf("January tick = %v, want %v", layout.Positions[0], want)
	}
	if want := float64(365-15) / 7; layout.Positions[11] != want {
		t.Errorf("December tick = %v, want %v", layout.Positions[11], want)
	}
}

func TestLayoutMonths_CumulativeTicksSubRange(t *testing.T) {
	rng := MonthRange{Start: 3, End: 5}
	grid, err := FillYear(nil, 2019, rng, MissingZero)
	if err != nil {
		t.Fatalf("FillYear error: %v", err)
	}
	dates := grid.Dates()
	layout, err := LayoutMonths(dates, rng, TickCumulative)
	if err != nil {
		t.Fatalf("LayoutMonths error: %v", err)
	}
	if len(layout.Positions) != len(layout.Names) || len(layout.Positions) != 12 {
		t.Fatalf("len(Positions) = %d, len(Names) = %d, want 12", len(layout.Positions), len(layout.Names))
	}

	coords := Coordinates(dates, WeekStrict)
	weeks := make(map[int][2]int)
	for i, d := range dates {
		m := int(d.Month())
		w := weeks[m]
		if d.Day() == 1 {
			w[0] = coords[i].Week
		}
		w[1] = coords[i].Week
		weeks[m] = w
	}
	for m := 3; m <= 5; m++ {
		pos := layout.Positions[m-1]
		if span := weeks[m]; pos < float64(span[0]) || pos > float64(span[1]) {
			t.Errorf("%s tick = %v, outside its weeks %d..%d", layout.Names[m-1], pos, span[0], span[1])
		}
	}
	if want := float64(59+31-15) / 7; layout.Positions[2] != want {
		t.Errorf("March tick = %v, want %v", layout.Positions[2], want)
	}
}

func TestLayoutMonths_CumulativeTicksLeapYear(t *testing.T) {
	grid, _ := FillYear(nil, 2020, FullYear, MissingGap)
	layout, err := LayoutMonths(grid.Dates(), FullYear, TickCumulative)
	if err != nil {
		t.Fatalf("LayoutMonths error: %v", err)
	}
	if want := float64(366-15) / 7; layout.Positions[11] != want {
		t.Errorf("December tick = %v, want %v", layout.Positions[11], want)
	}
	empty, _ := LayoutMonths(nil, FullYear, TickCumulative)
	if len(empty.Positions) != 12 {
		t.Errorf("empty panel positions = %d, want 12", len(empty.Positions))
	}
}

func TestLayoutMonths_DayAxis(t *testing.T) {
	layout, _ := LayoutMonths(nil, FullYear, TickLinear)
	if len(layout.DayLabels) != 7 || layout.DayLabels[0] != "Mon" || layout.DayLabels[6] != "Sun" {
		t.Errorf("DayLabels = %v", layout.DayLabels)
	}
	if len(layout.DayTicks) != 7 || layout.DayTicks[6] != 6 {
		t.Errorf("DayTicks = %v", layout.DayTicks)
	}
}

func TestLayoutMonths_InvalidRange(t *testing.T) {
	_, err := LayoutMonths(nil, MonthRange{Start: 7, End: 2}, TickLinear)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("error = %v, want ErrInvalidRange", err)
	}
}
