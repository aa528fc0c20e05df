package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinutesPerDay = 24 * 60
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
)

var (
	ErrInvalidClock = errors.New("model: invalid clock time")
	ErrInvalidDate  = errors.New("model: invalid calendar date")
)

// ParseClock converts an "HH:mm" wall-clock time into minutes since midnight.
func ParseClock(value string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return h*60 + m, nil
}

// NormalizeClock rewrites an accepted clock such as "9:00" to the zero-padded
// "HH:mm" form that sorts correctly as a string.
func NormalizeClock(value string) (string, error) {
	m, err := ParseClock(value)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// FormatClock renders minutes since midnight as "HH:mm". Values outside a
// single day wrap around instead of failing.
func FormatClock(minutes int) string {
	minutes = wrapMinutes(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SubtractMinutes moves a clock time backwards by delta minutes, wrapping
// across midnight.
func SubtractMinutes(clock string, delta int) (string, error) {
	base, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return FormatClock(base - delta), nil
}

// SpanMinutes is the length of the interval start..end. An end at or before
// the start crosses midnight; equal times yield zero.
func SpanMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	return wrapMinutes(e - s), nil
}

// FormatSpan prints a duration the way the timeline card shows it,
// e.g. "1 hour 30 min" or "2 hours".
func FormatSpan(minutes int) string {
	if minutes <= 0 {
		return "Duration not set"
	}
	h, m := minutes/60, minutes%60
	parts := make([]string, 0, 2)
	switch {
	case h == 1:
		parts = append(parts, "1 hour")
	case h > 1:
		parts = append(parts, fmt.Sprintf("%d hours", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%d min", m))
	}
	return strings.Join(parts, " ")
}

// DateString returns the local calendar date of t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ClockString returns the local wall-clock minute of t as HH:mm.
func ClockString(t time.Time) string {
	return t.Format(ClockLayout)
}

// MinuteOfDay returns the minutes elapsed since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseDate parses a YYYY-MM-DD calendar date. The result is midnight UTC so
// weekday and day-of-month arithmetic never crosses a zone boundary.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return d, nil
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}

func wrapMinutes(v int) int {
	v %= MinutesPerDay
	if v < 0 {
		v += MinutesPerDay
	}
	return v
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
