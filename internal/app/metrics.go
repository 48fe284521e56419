package app

import (
	"math"

	"medtrack/internal/domain"
)

// StreakHorizon bounds the backward walk when computing a streak.
const StreakHorizon = 30

// DefaultWindowDays is the trailing window for the completion rate.
const DefaultWindowDays = 30

// Streak returns the number of consecutive taken days ending at today,
// walking backward one day at a time until the first missing day or the
// horizon.
func Streak(store *AdherenceStore, today domain.Day) int {
	n := 0
	for d := today; n < StreakHorizon && store.Has(d); d = d.Prev() {
		n++
	}
	return n
}

// CompletionRate returns round(size/windowDays*100) as an integer
// percentage. The numerator is the store's full membership count, not a
// count restricted to the trailing window.
func CompletionRate(store *AdherenceStore, windowDays int) int {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return int(math.Round(float64(store.Size()) / float64(windowDays) * 100))
}
