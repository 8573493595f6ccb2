package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/stats"
)

type statsServiceImpl struct {
	logger             zerolog.Logger
	laps               LapService
	tasks              TaskService
	monthlyGoalMinutes int
}

func NewStatsService(
	logger zerolog.Logger,
	laps LapService,
	tasks TaskService,
	monthlyGoalMinutes int,
) StatsService {
	return &statsServiceImpl{
		logger:             logger,
		laps:               laps,
		tasks:              tasks,
		monthlyGoalMinutes: monthlyGoalMinutes,
	}
}

// Summarize loads every lap of the user because streaks and
// averages are computed over the whole history.
func (s *statsServiceImpl) Summarize(ctx context.Context, params StatsParams) (*stats.Summary, error) {
	laps, err := s.laps.GetLaps(ctx, LapFilter{
		UserID:      params.UserID,
		WorkspaceID: params.WorkspaceID,
	})
	if err != nil {
		return nil, err
	}

	summary := stats.Summarize(laps, params.Window, params.Now, s.monthlyGoalMinutes)
	s.logger.Debug().
		Str("user_id", params.UserID).
		Str("window", string(params.Window.Kind)).
		Int("offset", params.Window.Offset).
		Int("total_minutes", summary.TotalMinutes).
		Msg("summarized laps")
	return &summary, nil
}

func (s *statsServiceImpl) SummarizeTasks(ctx context.Context, userID string, workspaceID *string, now time.Time) (*stats.TaskSummary, error) {
	tasks, err := s.tasks.GetTasks(ctx, TaskFilter{
		UserID:      userID,
		WorkspaceID: workspaceID,
	})
	if err != nil {
		return nil, err
	}

	summary := stats.SummarizeTasks(tasks, now)
	return &summary, nil
}
