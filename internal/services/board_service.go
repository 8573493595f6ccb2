package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/board"
)

type boardServiceImpl struct {
	logger zerolog.Logger
	tasks  TaskService
	prefs  PreferenceService
}

func NewBoardService(
	logger zerolog.Logger,
	tasks TaskService,
	prefs PreferenceService,
) BoardService {
	return &boardServiceImpl{
		logger: logger,
		tasks:  tasks,
		prefs:  prefs,
	}
}

// GetBoard lays out the user's tasks with the saved preferences of the
// workspace. An empty workspaceID selects every task.
func (s *boardServiceImpl) GetBoard(ctx context.Context, userID, workspaceID string) ([]board.Column, error) {
	filter := TaskFilter{UserID: userID}
	if workspaceID != "" {
		filter.WorkspaceID = &workspaceID
	}

	tasks, err := s.tasks.GetTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	prefs, err := s.prefs.GetPreferences(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	columns := board.Columns(tasks, prefs)
	s.logger.Debug().
		Str("user_id", userID).
		Int("columns", len(columns)).
		Int("tasks", len(tasks)).
		Msg("built board")
	return columns, nil
}
