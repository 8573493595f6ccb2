// Package chart renders study statistics for the terminal.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/studyboard/internal/stats"
)

const (
	barRune      = "█"
	defaultWidth = 40
)

var (
	colorBar    = lipgloss.Color("#61AFEF")
	colorMuted  = lipgloss.Color("#636B78")
	colorTitle  = lipgloss.Color("#C678DD")
	colorGoal   = lipgloss.Color("#98C379")
	colorBorder = lipgloss.Color("#3F4451")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	barStyle = lipgloss.NewStyle().
			Foreground(colorBar)

	goalStyle = lipgloss.NewStyle().
			Foreground(colorGoal)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

// Bars draws one line per bucket. The longest bar is width cells wide
// and empty buckets draw no bar.
func Bars(buckets []stats.Bucket, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	labelWidth, peak := 0, 0
	for _, b := range buckets {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
		peak = max(peak, b.TotalMinutes)
	}

	lines := make([]string, len(buckets))
	for i, b := range buckets {
		cells := 0
		if peak > 0 {
			cells = b.TotalMinutes * width / peak
			if cells == 0 && b.TotalMinutes > 0 {
				cells = 1
			}
		}
		label := labelStyle.Render(fmt.Sprintf("%*s", labelWidth, b.Label))
		bar := barStyle.Render(strings.Repeat(barRune, cells))
		lines[i] = fmt.Sprintf("%s %s %s", label, bar, FormatMinutes(b.TotalMinutes))
	}
	return strings.Join(lines, "\n")
}

// Summary renders the headline figures under the chart.
func Summary(s stats.Summary) string {
	rows := []string{
		fmt.Sprintf("Total        %s", FormatMinutes(s.TotalMinutes)),
		fmt.Sprintf("Sessions     %d", s.Sessions),
		fmt.Sprintf("Streak       %d days (best %d)", s.CurrentStreak, s.LongestStreak),
		fmt.Sprintf("Daily avg    %s", FormatMinutes(int(s.AverageMinutes))),
	}
	if s.MonthlyGoalMinutes > 0 {
		rows = append(rows, fmt.Sprintf("Month goal   %s %.0f%%",
			goalStyle.Render(progress(s.GoalProgress, 20)), s.GoalProgress))
	}
	return strings.Join(rows, "\n")
}

// Render draws the titled chart and summary in a box.
func Render(s stats.Summary, width int) string {
	title := titleStyle.Render(Title(s))
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		Bars(s.Buckets, width),
		"",
		Summary(s),
	)
	return boxStyle.Render(body)
}

// Title names the window, e.g. "Week of 2024-03-04".
func Title(s stats.Summary) string {
	switch s.Window {
	case stats.KindDay:
		return "Day " + s.Start.Format("2006-01-02")
	case stats.KindWeek:
		return "Week of " + s.Start.Format("2006-01-02")
	case stats.KindMonth:
		return s.Start.Format("January 2006")
	case stats.KindYear:
		return s.Start.Format("2006")
	default:
		return string(s.Window)
	}
}

// FormatMinutes renders minutes as "1h 30m" or "45m".
func FormatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}

func progress(percent float64, width int) string {
	filled := int(percent * float64(width) / 100)
	filled = min(max(filled, 0), width)
	return strings.Repeat("■", filled) + strings.Repeat("·", width-filled)
}
