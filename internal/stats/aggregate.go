package stats

import (
	"slices"
	"time"

	"github.com/adanyl0v/studyboard/internal/models"
)

// Aggregate sums lap minutes into the buckets of w. Every bucket of the
// window is present even when no lap falls into it.
func Aggregate(laps []models.Lap, w Window, now time.Time) []Bucket {
	buckets := w.Buckets(now)
	start, end := w.Range(now)
	for _, lap := range laps {
		i := w.index(lap.CreatedAt.UTC(), start, end)
		if i < 0 || i >= len(buckets) {
			continue
		}
		buckets[i].TotalMinutes += ParseDuration(lap.Duration)
	}
	return buckets
}

func Total(buckets []Bucket) int {
	total := 0
	for _, b := range buckets {
		total += b.TotalMinutes
	}
	return total
}

// dailyMinutes maps each UTC day to the minutes studied that day.
func dailyMinutes(laps []models.Lap) map[time.Time]int {
	days := make(map[time.Time]int)
	for _, lap := range laps {
		if m := ParseDuration(lap.Duration); m > 0 {
			days[Day(lap.CreatedAt)] += m
		}
	}
	return days
}

func activeDays(laps []models.Lap) []time.Time {
	days := dailyMinutes(laps)
	out := make([]time.Time, 0, len(days))
	for d := range days {
		out = append(out, d)
	}
	slices.SortFunc(out, time.Time.Compare)
	return out
}

// LongestStreak is the longest run of consecutive calendar days
// with at least one minute studied.
func LongestStreak(laps []models.Lap) int {
	days := activeDays(laps)
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// CurrentStreak is the run of active days ending today, or ending
// yesterday when nothing has been studied yet today.
func CurrentStreak(laps []models.Lap, now time.Time) int {
	days := dailyMinutes(laps)
	d := Day(now)
	if days[d] == 0 {
		d = d.AddDate(0, 0, -1)
	}
	streak := 0
	for days[d] > 0 {
		streak++
		d = d.AddDate(0, 0, -1)
	}
	return streak
}

// AverageMinutesPerActiveDay ignores days without study time.
func AverageMinutesPerActiveDay(laps []models.Lap) float64 {
	days := dailyMinutes(laps)
	if len(days) == 0 {
		return 0
	}
	total := 0
	for _, m := range days {
		total += m
	}
	return float64(total) / float64(len(days))
}

// GoalProgress is the share of goalMinutes reached in the current
// calendar month, as a percentage capped at 100.
func GoalProgress(laps []models.Lap, now time.Time, goalMinutes int) float64 {
	if goalMinutes <= 0 {
		return 0
	}
	month := Total(Aggregate(laps, Window{Kind: KindMonth}, now))
	return min(100, float64(month)*100/float64(goalMinutes))
}

type Summary struct {
	Window             Kind      `json:"window"`
	Offset             int       `json:"offset"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	Buckets            []Bucket  `json:"buckets"`
	TotalMinutes       int       `json:"total_minutes"`
	Sessions           int       `json:"sessions"`
	LongestStreak      int       `json:"longest_streak"`
	CurrentStreak      int       `json:"current_streak"`
	AverageMinutes     float64   `json:"average_minutes_per_active_day"`
	MonthlyGoalMinutes int       `json:"monthly_goal_minutes"`
	GoalProgress       float64   `json:"goal_progress"`
}

// Summarize bundles the chart for w with the all-time figures.
func Summarize(laps []models.Lap, w Window, now time.Time, goalMinutes int) Summary {
	buckets := Aggregate(laps, w, now)
	start, end := w.Range(now)

	sessions := 0
	for _, lap := range laps {
		t := lap.CreatedAt.UTC()
		if !t.Before(start) && t.Before(end) {
			sessions++
		}
	}

	return Summary{
		Window:             w.Kind,
		Offset:             w.Offset,
		Start:              start,
		End:                end,
		Buckets:            buckets,
		TotalMinutes:       Total(buckets),
		Sessions:           sessions,
		LongestStreak:      LongestStreak(laps),
		CurrentStreak:      CurrentStreak(laps, now),
		AverageMinutes:     AverageMinutesPerActiveDay(laps),
		MonthlyGoalMinutes: goalMinutes,
		GoalProgress:       GoalProgress(laps, now, goalMinutes),
	}
}
