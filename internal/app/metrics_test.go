package app_test

import (
	"testing"
	"time"

	"medtrack/internal/app"
	"medtrack/internal/domain"
)

func TestStreakEmptyStore(t *testing.T) {
	store := app.NewAdherenceStore()
	if got := app.Streak(store, domain.NewDay(2026, time.August, 31)); got != 0 {
		t.Fatalf("streak of empty store = %d; want 0", got)
	}
}

func TestStreak(t *testing.T) {
	aug := domain.NewDay(2026, time.August, 31)
	sep := domain.NewDay(2026, time.September, 1)

	tests := []struct {
		name  string
		days  []domain.Day
		today domain.Day
		want  int
	}{
		{"only today", []domain.Day{aug}, aug, 1},
		{"three consecutive ending today", []domain.Day{aug, aug.Prev(), aug.Prev().Prev()}, aug, 3},
		{"gap before today breaks streak", []domain.Day{aug, aug.Prev().Prev()}, aug, 1},
		{"today missing", []domain.Day{aug.Prev(), aug.Prev().Prev()}, aug, 0},
		{"crosses month boundary", []domain.Day{sep, aug, aug.Prev()}, sep, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := app.NewAdherenceStore()
			store.Load(tc.days)
			if got := app.Streak(store, tc.today); got != tc.want {
				t.Errorf("streak = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestStreakCappedAtHorizon(t *testing.T) {
	store := app.NewAdherenceStore()
	today := domain.NewDay(2026, time.August, 31)

	d := today
	for i := 0; i < 60; i++ {
		store.Add(d)
		d = d.Prev()
	}

	if got := app.Streak(store, today); got != app.StreakHorizon {
		t.Fatalf("streak = %d; want horizon %d", got, app.StreakHorizon)
	}
}

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name   string
		days   int
		window int
		want   int
	}{
		{"empty", 0, 30, 0},
		{"half the window", 15, 30, 50},
		{"full window", 30, 30, 100},
		{"rounds down", 7, 30, 23},
		{"rounds up", 8, 30, 27},
		{"window fallback", 15, 0, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := app.NewAdherenceStore()
			d := domain.NewDay(2026, time.August, 31)
			for i := 0; i < tc.days; i++ {
				store.Add(d)
				d = d.Prev()
			}
			if got := app.CompletionRate(store, tc.window); got != tc.want {
				t.Errorf("CompletionRate(%d days, window %d) = %d; want %d",
					tc.days, tc.window, got, tc.want)
			}
		})
	}
}
