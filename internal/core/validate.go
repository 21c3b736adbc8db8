package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

// DefaultDateFormat is the strftime layout used when none is given.
const DefaultDateFormat = "%Y-%m-%d"

// DateColumn is the date column of a tabular input. Exactly one of
// TimeColumn, TextColumn or NumberColumn.
type DateColumn interface {
	Len() int
	kind() string
}

// TimeColumn holds native timestamps. When Zone is set, every value is first
// moved into that IANA zone and its wall-clock date is kept.
type TimeColumn struct {
	Values []time.Time
	Zone   string
}

func (c TimeColumn) Len() int     { return len(c.Values) }
func (c TimeColumn) kind() string { return "time" }

type TextColumn []string

func (c TextColumn) Len() int     { return len(c) }
func (c TextColumn) kind() string { return "text" }

// NumberColumn models a raw numeric date column. It is always rejected.
type NumberColumn []float64

func (c NumberColumn) Len() int     { return len(c) }
func (c NumberColumn) kind() string { return "number" }

// ValidateDates turns a date column into naive calendar days at midnight
// UTC, preserving order and duplicates.
func ValidateDates(col DateColumn, format string) ([]time.Time, error) {
	switch c := col.(type) {
	case TimeColumn:
		return validateTimes(c)
	case TextColumn:
		return parseDates(c, format)
	case nil:
		return nil, &UnsupportedColumnTypeError{Type: "nil"}
	default:
		return nil, &UnsupportedColumnTypeError{Type: col.kind()}
	}
}

func validateTimes(c TimeColumn) ([]time.Time, error) {
	var loc *time.Location
	if zone := strings.TrimSpace(c.Zone); zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return nil, &TimezoneError{Zone: zone, Cause: err}
		}
		loc = l
	}
	out := make([]time.Time, len(c.Values))
	for i, t := range c.Values {
		if loc != nil {
			t = t.In(loc)
		}
		out[i] = Day(t)
	}
	return out, nil
}

func parseDates(values []string, format string) ([]time.Time, error) {
	if strings.TrimSpace(format) == "" {
		format = DefaultDateFormat
	}
	layout := compileDateFormat(format)
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := layout.parse(strings.TrimSpace(v))
		if err != nil {
			return nil, &FormatMismatchError{Value: v, Format: format, Index: i}
		}
		out[i] = Day(t)
	}
	return out, nil
}

// Day strips the zone and time of day from t, keeping its wall-clock date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var strftimeLayout = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "1",
	'd': "2",
	'e': "_2",
	'j': "002",
	'H': "15",
	'I': "3",
	'p': "PM",
	'M': "4",
	'S': "5",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// dateLayout is a time.Parse layout compiled from a strftime format.
// Literal text holding letters or digits is swapped for a private-use rune in
// both the layout and the parsed value, so words such as "Mon" or "PM" stay
// literal instead of becoming layout elements.
type dateLayout struct {
	layout   string
	literals []string
}

// compileDateFormat converts a strftime format into a dateLayout. Strings
// without a '%' are assumed to be Go layouts already. Numeric fields are
// mapped to their non-padded forms so "2019-1-5" parses with %Y-%m-%d.
func compileDateFormat(format string) dateLayout {
	if !strings.Contains(format, "%") {
		return dateLayout{layout: format}
	}
	var (
		out    dateLayout
		layout strings.Builder
		lit    strings.Builder
	)
	flush := func() {
		if lit.Len() == 0 {
			return
		}
		s := lit.String()
		lit.Reset()
		if strings.IndexFunc(s, isWordRune) < 0 {
			layout.WriteString(s)
			return
		}
		layout.WriteRune(literalMark(len(out.literals)))
		out.literals = append(out.literals, s)
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			lit.WriteByte(c)
			continue
		}
		i++
		l, ok := strftimeLayout[format[i]]
		switch {
		case !ok:
			lit.WriteByte('%')
			lit.WriteByte(format[i])
		case l == "%":
			lit.WriteByte('%')
		default:
			flush()
			layout.WriteString(l)
		}
	}
	flush()
	out.layout = layout.String()
	return out
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func literalMark(k int) rune { return rune(0xE000 + k) }

// parse matches the literals left to right, then hands the marked value to
// time.Parse.
func (l dateLayout) parse(v string) (time.Time, error) {
	pos := 0
	for k, lit := range l.literals {
		i := strings.Index(v[pos:], lit)
		if i < 0 {
			return time.Time{}, fmt.Errorf("literal %q not found in %q", lit, v)
		}
		i += pos
		mark := string(literalMark(k))
		v = v[:i] + mark + v[i+len(lit):]
		pos = i + len(mark)
	}
	return time.Parse(l.layout, v)
}

// Canonicalize normalizes dates to naive days, keeps the last observation of
// every duplicated day and sorts the result by date.
func Canonicalize(obs []Observation) Series {
	if len(obs) == 0 {
		return nil
	}
	idx := make(map[time.Time]int, len(obs))
	out := make(Series, 0, len(obs))
	for _, o := range obs {
		o.Date = Day(o.Date)
		if i, ok := idx[o.Date]; ok {
			out[i] = o
			continue
		}
		idx[o.Date] = len(out)
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// BuildSeries validates a column pair and canonicalizes it.
func BuildSeries(dates DateColumn, values []float64, labels []string, format string) (Series, error) {
	if dates == nil {
		return nil, &UnsupportedColumnTypeError{Type: "nil"}
	}
	if dates.Len() != len(values) {
		return nil, fmt.Errorf("date column has %d rows, value column has %d", dates.Len(), len(values))
	}
	if labels != nil && len(labels) != len(values) {
		return nil, fmt.Errorf("label column has %d rows, value column has %d", len(labels), len(values))
	}
	days, err := ValidateDates(dates, format)
	if err != nil {
		return nil, err
	}
	obs := make([]Observation, len(days))
	for i, d := range days {
		obs[i] = Observation{Date: d, Value: values[i]}
		if labels != nil {
			obs[i].Label = labels[i]
		}
	}
	return Canonicalize(obs), nil
}
