package stats

import (
	"time"

	"github.com/adanyl0v/studyboard/internal/models"
)

type TaskSummary struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Open           int     `json:"open"`
	Overdue        int     `json:"overdue"`
	DueToday       int     `json:"due_today"`
	CompletionRate float64 `json:"completion_rate"`
}

// SummarizeTasks counts task states. A task is overdue when it is open
// and its deadline is before today's UTC date.
func SummarizeTasks(tasks []models.Task, now time.Time) TaskSummary {
	today := Day(now)
	var s TaskSummary
	for _, task := range tasks {
		s.Total++
		if task.Completed {
			s.Completed++
			continue
		}
		s.Open++
		if !task.HasDeadline() {
			continue
		}
		switch deadline := Day(*task.Deadline); {
		case deadline.Before(today):
			s.Overdue++
		case deadline.Equal(today):
			s.DueToday++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) * 100 / float64(s.Total)
	}
	return s
}
