package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindDay   Kind = "day"
	KindWeek  Kind = "week"
	KindMonth Kind = "month"
	KindYear  Kind = "year"
)

var ErrUnknownKind = errors.New("unknown window kind")

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDay, KindWeek, KindMonth, KindYear:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Window selects a calendar period relative to now. Offset counts whole
// periods, negative values go back in time: week -1 is last week.
type Window struct {
	Kind   Kind
	Offset int
}

// Bucket is one bar of a chart.
type Bucket struct {
	Label        string    `json:"label"`
	Start        time.Time `json:"start"`
	TotalMinutes int       `json:"total_minutes"`
}

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Range returns the window as a half-open UTC interval [start, end).
func (w Window) Range(now time.Time) (start, end time.Time) {
	today := Day(now)
	switch w.Kind {
	case KindDay:
		start = today.AddDate(0, 0, w.Offset)
		end = start.AddDate(0, 0, 1)
	case KindWeek:
		sinceMonday := (int(today.Weekday()) + 6) % 7
		start = today.AddDate(0, 0, -sinceMonday+7*w.Offset)
		end = start.AddDate(0, 0, 7)
	case KindMonth:
		start = time.Date(today.Year(), today.Month()+time.Month(w.Offset), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	case KindYear:
		start = time.Date(today.Year()+w.Offset, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0)
	}
	return start, end
}

// Buckets returns the zero-filled buckets covering the window:
// 24 hours for a day, 7 days for a week, every day of a month,
// 12 months for a year.
func (w Window) Buckets(now time.Time) []Bucket {
	start, end := w.Range(now)

	var buckets []Bucket
	switch w.Kind {
	case KindDay:
		for h := 0; h < 24; h++ {
			buckets = append(buckets, Bucket{
				Label: fmt.Sprintf("%02d:00", h),
				Start: start.Add(time.Duration(h) * time.Hour),
			})
		}
	case KindWeek:
		for i, label := range weekdayLabels {
			buckets = append(buckets, Bucket{Label: label, Start: start.AddDate(0, 0, i)})
		}
	case KindMonth:
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			buckets = append(buckets, Bucket{Label: fmt.Sprint(d.Day()), Start: d})
		}
	case KindYear:
		for m := 0; m < 12; m++ {
			d := start.AddDate(0, m, 0)
			buckets = append(buckets, Bucket{Label: d.Month().String()[:3], Start: d})
		}
	}
	return buckets
}

// index returns the bucket holding t, or -1 when t is outside the window.
func (w Window) index(t, start, end time.Time) int {
	if t.Before(start) || !t.Before(end) {
		return -1
	}
	switch w.Kind {
	case KindDay:
		return t.Hour()
	case KindWeek:
		return int(Day(t).Sub(start) / (24 * time.Hour))
	case KindMonth:
		return t.Day() - 1
	case KindYear:
		return int(t.Month()) - 1
	}
	return -1
}

// Day truncates t to midnight UTC of its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
