package domain

import (
	"strings"
	"time"
)

var dayLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// DayRange is an inclusive range of whole days: From is the first instant of
// the start day and To the last instant of the end day.
type DayRange struct {
	From time.Time
	To   time.Time
}

// NewDayRange expands start and end to day boundaries in loc.
func NewDayRange(start, end time.Time, loc *time.Location) DayRange {
	if loc == nil {
		loc = time.UTC
	}
	s := start.In(loc)
	e := end.In(loc)
	from := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	to := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return DayRange{From: from, To: to}
}

// ParseDayRange parses the startDate/endDate pair used by the API. Both values
// are required and accept either YYYY-MM-DD or RFC 3339.
func ParseDayRange(start, end string, loc *time.Location) (DayRange, error) {
	verr := &ValidationError{}
	s, ok := parseDay(start, loc)
	if !ok {
		verr.Add("startDate", "must be a date (YYYY-MM-DD)")
	}
	e, ok := parseDay(end, loc)
	if !ok {
		verr.Add("endDate", "must be a date (YYYY-MM-DD)")
	}
	if err := verr.OrNil(); err != nil {
		return DayRange{}, err
	}

	r := NewDayRange(s, e, loc)
	if r.To.Before(r.From) {
		return DayRange{}, NewValidationError("endDate", "must not be before startDate")
	}
	return r, nil
}

// Contains reports whether t falls inside the range, boundaries included.
func (r DayRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Months returns the first day of every calendar month touched by the range.
func (r DayRange) Months() []time.Time {
	loc := r.From.Location()
	cur := time.Date(r.From.Year(), r.From.Month(), 1, 0, 0, 0, 0, loc)
	var out []time.Time
	for !cur.After(r.To) {
		out = append(out, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// TrailingMonths covers the n calendar months ending with the one containing
// now, up to the end of now's day.
func TrailingMonths(now time.Time, n int, loc *time.Location) DayRange {
	if loc == nil {
		loc = time.UTC
	}
	if n < 1 {
		n = 1
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1-n, 0)
	return NewDayRange(start, local, loc)
}

func parseDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
