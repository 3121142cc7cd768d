package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseDayRange_InclusiveBoundaries(t *testing.T) {
	r, err := ParseDayRange("2026-03-01", "2026-03-02", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !r.From.Equal(wantFrom) {
		t.Errorf("From: want %v, got %v", wantFrom, r.From)
	}
	wantTo := time.Date(2026, 3, 2, 23, 59, 59, 999999999, time.UTC)
	if !r.To.Equal(wantTo) {
		t.Errorf("To: want %v, got %v", wantTo, r.To)
	}

	inside := []time.Time{
		wantFrom,
		time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC),
		wantTo,
	}
	for _, ts := range inside {
		if !r.Contains(ts) {
			t.Errorf("expected %v inside range", ts)
		}
	}
	outside := []time.Time{
		wantFrom.Add(-time.Nanosecond),
		time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	for _, ts := range outside {
		if r.Contains(ts) {
			t.Errorf("expected %v outside range", ts)
		}
	}
}

func TestParseDayRange_AcceptsRFC3339(t *testing.T) {
	r, err := ParseDayRange("2026-03-01T15:04:05Z", "2026-03-01T16:00:00Z", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.From.Hour() != 0 || r.To.Hour() != 23 {
		t.Errorf("expected whole-day expansion, got %v - %v", r.From, r.To)
	}
}

func TestParseDayRange_Invalid(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		wantFields int
	}{
		{"both missing", "", "", 2},
		{"bad start", "yesterday", "2026-01-01", 1},
		{"end before start", "2026-02-01", "2026-01-01", 1},
	}
	for _, tc := range cases {
		_, err := ParseDayRange(tc.start, tc.end, time.UTC)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if len(ve.Fields) != tc.wantFields {
			t.Errorf("%s: expected %d field errors, got %+v", tc.name, tc.wantFields, ve.Fields)
		}
	}
}

func TestDayRange_Months(t *testing.T) {
	r := NewDayRange(
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		time.UTC,
	)
	months := r.Months()
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}
	if months[0].Month() != time.January || months[2].Month() != time.March {
		t.Errorf("unexpected months: %v", months)
	}
}

func TestTrailingMonths(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	r := TrailingMonths(now, 6, time.UTC)
	if got := r.From.Format("2006-01-02"); got != "2025-10-01" {
		t.Errorf("From: want 2025-10-01, got %s", got)
	}
	if got := r.To.Format("2006-01-02"); got != "2026-03-10" {
		t.Errorf("To: want 2026-03-10, got %s", got)
	}
	if len(r.Months()) != 6 {
		t.Errorf("expected 6 months, got %d", len(r.Months()))
	}
}
