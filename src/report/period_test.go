package report

import (
	"testing"
	"time"
)

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2026-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v", end)
	}

	if !InMonth(start, start, end) {
		t.Fatal("month start should be in range")
	}
	if InMonth(end, start, end) {
		t.Fatal("month end is exclusive")
	}
	if !InMonth(end.Add(-time.Nanosecond), start, end) {
		t.Fatal("last instant of the month should be in range")
	}
}

func TestMonthRangeYearRollover(t *testing.T) {
	_, end, err := MonthRange("2025-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end = %v, want 2026-01-01", end)
	}
}

func TestMonthRangeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "2026", "2026-13", "march", "2026-03-01"} {
		if _, _, err := MonthRange(in); err == nil {
			t.Fatalf("MonthRange(%q) accepted garbage", in)
		}
	}
}
