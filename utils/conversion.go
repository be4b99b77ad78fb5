package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used across the API and the stores.
const DateLayout = "2006-01-02"

// ClockLayout is the time-of-day format used across the API and the stores.
const ClockLayout = "15:04"

const minutesPerDay = 24 * 60

// ParseClock converts "HH:mm" into minutes from midnight. "24:00" is accepted
// as the end of the day.
func ParseClock(s string) (int, error) {
	if s == "24:00" {
		return minutesPerDay, nil
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:mm", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes from midnight into "HH:mm".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DayOfWeek returns the weekday (0 = Sunday) of a "YYYY-MM-DD" date.
func DayOfWeek(date string) (int, error) {
	d, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(d.Weekday()), nil
}

// FitsInDay reports whether an interval ending at end minutes stays on the same day.
func FitsInDay(end int) bool {
	return end <= minutesPerDay
}

// BookingStartsAt combines a booking date and clock time in loc.
func BookingStartsAt(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking time %s %s: %w", date, clock, err)
	}
	return t, nil
}
