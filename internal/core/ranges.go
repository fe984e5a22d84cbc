package core

import (
	"errors"
	"strings"
	"time"
)

const (
	PresetToday      Preset = "today"
	PresetLast7Days  Preset = "7d"
	PresetLast30Days Preset = "30d"
	PresetCustom     Preset = "custom"
)

// Preset names one of the selectable summary periods.
type Preset string

var ErrInvalidPreset = errors.New("invalid range preset")

// Presets lists the selectable periods in display order.
func Presets() []Preset {
	return []Preset{PresetToday, PresetLast7Days, PresetLast30Days, PresetCustom}
}

func ParsePreset(s string) (Preset, error) {
	switch p := Preset(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PresetToday, nil
	case PresetToday, PresetLast7Days, PresetLast30Days, PresetCustom:
		return p, nil
	}
	return "", ErrInvalidPreset
}

func (p Preset) Label() string {
	switch p {
	case PresetToday:
		return "Hoy"
	case PresetLast7Days:
		return "Últimos 7 días"
	case PresetLast30Days:
		return "Últimos 30 días"
	case PresetCustom:
		return "Rango personalizado"
	}
	return string(p)
}

// Range is an inclusive datetime window.
type Range struct {
	Start time.Time
	End   time.Time
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last microsecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, t.Location())
}

// DayRange expands two calendar days to full-day bounds in loc.
func DayRange(from, to Date, loc *time.Location) Range {
	return Range{Start: from.In(loc), End: EndOfDay(to.In(loc))}
}

// PresetRange computes the window for p relative to now. Every preset is
// widened to whole days so a record dated today is always included. from and
// to are only read for PresetCustom.
func PresetRange(p Preset, now time.Time, from, to Date) (Range, error) {
	switch p {
	case PresetToday:
		return Range{Start: StartOfDay(now), End: EndOfDay(now)}, nil
	case PresetLast7Days:
		return Range{Start: StartOfDay(now.AddDate(0, 0, -7)), End: EndOfDay(now)}, nil
	case PresetLast30Days:
		return Range{Start: StartOfDay(now.AddDate(0, 0, -30)), End: EndOfDay(now)}, nil
	case PresetCustom:
		if from.IsZero() || to.IsZero() {
			return Range{}, &ValidationError{Field: "rango", Err: ErrInvalidDate}
		}
		return DayRange(from, to, now.Location()), nil
	}
	return Range{}, ErrInvalidPreset
}

// Empty reports whether no instant can satisfy the range.
func (r Range) Empty() bool {
	return r.Start.After(r.End)
}

// Contains reports start <= d <= end, with d taken as midnight in the
// location of r.Start.
func (r Range) Contains(d Date) bool {
	t := d.In(r.Start.Location())
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterRange returns the entries whose date falls within r, in original
// order and keeping their original positions.
func FilterRange(records []Record, r Range) []Entry {
	out := make([]Entry, 0)
	if r.Empty() {
		return out
	}
	for i, rec := range records {
		if r.Contains(rec.Date) {
			out = append(out, Entry{Index: i, Record: rec})
		}
	}
	return out
}
