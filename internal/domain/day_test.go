package domain_test

import (
	"testing"
	"time"

	"medtrack/internal/domain"
)

func TestNewDayNormalization(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  string
	}{
		{"plain date", 2026, time.August, 31, "2026-08-31"},
		{"leap day", 2024, time.February, 29, "2024-02-29"},
		{"feb 29 in non-leap year", 2026, time.February, 29, "2026-03-01"},
		{"day zero", 2026, time.March, 0, "2026-02-28"},
		{"month thirteen", 2026, 13, 1, "2027-01-01"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.NewDay(tc.year, tc.month, tc.day).String()
			if got != tc.want {
				t.Errorf("NewDay(%d, %d, %d) = %s; want %s", tc.year, tc.month, tc.day, got, tc.want)
			}
		})
	}
}

func TestDayOfDiscardsTimeOfDay(t *testing.T) {
	late := time.Date(2026, time.August, 31, 23, 59, 59, 0, time.Local)
	early := time.Date(2026, time.August, 31, 0, 0, 1, 0, time.Local)

	if domain.DayOf(late) != domain.DayOf(early) {
		t.Fatalf("same wall-clock day produced different Days: %v vs %v",
			domain.DayOf(late), domain.DayOf(early))
	}
	if domain.DayOf(late) != domain.NewDay(2026, time.August, 31) {
		t.Fatal("DayOf and NewDay disagree for the same calendar day")
	}
}

func TestPrev(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Day
		want string
	}{
		{"mid month", domain.NewDay(2026, time.August, 15), "2026-08-14"},
		{"month boundary", domain.NewDay(2026, time.August, 1), "2026-07-31"},
		{"year boundary", domain.NewDay(2026, time.January, 1), "2025-12-31"},
		{"leap february", domain.NewDay(2024, time.March, 1), "2024-02-29"},
		{"non-leap february", domain.NewDay(2026, time.March, 1), "2026-02-28"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Prev().String(); got != tc.want {
				t.Errorf("%s.Prev() = %s; want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestNextInvertsPrev(t *testing.T) {
	d := domain.NewDay(2024, time.February, 29)
	if d.Prev().Next() != d {
		t.Fatalf("Prev then Next did not return to %s", d)
	}
}

func TestCompare(t *testing.T) {
	a := domain.NewDay(2026, time.August, 30)
	b := domain.NewDay(2026, time.August, 31)
	c := domain.NewDay(2026, time.September, 1)
	d := domain.NewDay(2027, time.January, 1)

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare within a month is wrong")
	}
	if b.Compare(c) != -1 || c.Compare(d) != -1 {
		t.Error("Compare across month/year boundaries is wrong")
	}
	if !c.After(b) || b.After(c) || b.After(b) {
		t.Error("After is inconsistent with Compare")
	}
}

func TestParseDayRoundTrip(t *testing.T) {
	days := []domain.Day{
		domain.NewDay(2026, time.August, 31),
		domain.NewDay(2024, time.February, 29),
		domain.NewDay(2000, time.January, 1),
		domain.NewDay(1999, time.December, 31),
	}
	for _, d := range days {
		got, err := domain.ParseDay(d.String())
		if err != nil {
			t.Fatalf("ParseDay(%q): %v", d.String(), err)
		}
		if got != d {
			t.Errorf("round trip of %s gave %s", d, got)
		}
	}
}

func TestParseDayRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2026-8-31", "31-08-2026", "2026-08-31T00:00:00Z", "not a day"} {
		if _, err := domain.ParseDay(s); err == nil {
			t.Errorf("ParseDay(%q) unexpectedly succeeded", s)
		}
	}
}
