package state

import (
	"context"
	"strings"
	"time"

	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
)

// AddTask shows draft right away under a temporary id and swaps in
// the stored task once the backend accepts it.
func (s *Store) AddTask(ctx context.Context, draft models.Task) (models.Task, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	if draft.Title == "" {
		return models.Task{}, ErrEmptyTitle
	}
	if draft.WorkspaceID == nil && s.workspace != "" {
		ws := s.workspace
		draft.WorkspaceID = &ws
	}

	local := draft
	local.ID = newTempID()
	local.Completed = false
	local.CompletedAt = nil
	local.CreatedAt = s.now()

	stored := local
	err := s.Do(ctx, Optimistic{
		Action: "add task",
		Apply: func() {
			s.tasks = append(s.tasks, local)
		},
		Remote: func(ctx context.Context) error {
			task, err := s.backend.CreateTask(ctx, client.NewTaskFrom(draft))
			if err != nil {
				return err
			}
			stored = *task
			s.replaceTask(local.ID, stored)
			return nil
		},
		Revert: func() {
			s.removeTask(local.ID)
		},
	})
	if err != nil {
		return models.Task{}, err
	}
	return stored, nil
}

// ToggleTask flips completion. completed_at follows the flag.
func (s *Store) ToggleTask(ctx context.Context, id string) (models.Task, error) {
	prev, ok := s.Task(id)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}

	next := prev
	next.SetCompleted(!prev.Completed, s.now())

	err := s.Do(ctx, Optimistic{
		Action: "toggle task",
		Apply: func() {
			s.setTask(next)
		},
		Remote: func(ctx context.Context) error {
			task, err := s.backend.SetTaskCompleted(ctx, id, next.Completed)
			if err != nil {
				return err
			}
			next = *task
			s.replaceTask(id, next)
			return nil
		},
		Revert: func() {
			s.setTask(prev)
		},
	})
	if err != nil {
		return prev, err
	}
	return next, nil
}

// EditTask changes the fields set in patch. An empty Deadline string
// clears the deadline.
func (s *Store) EditTask(ctx context.Context, id string, patch client.TaskPatch) (models.Task, error) {
	prev, ok := s.Task(id)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return prev, ErrEmptyTitle
	}

	next := applyPatch(prev, patch)
	err := s.Do(ctx, Optimistic{
		Action: "edit task",
		Apply: func() {
			s.setTask(next)
		},
		Remote: func(ctx context.Context) error {
			task, err := s.backend.UpdateTask(ctx, id, patch)
			if err != nil {
				return err
			}
			next = *task
			s.replaceTask(id, next)
			return nil
		},
		Revert: func() {
			s.setTask(prev)
		},
	})
	if err != nil {
		return prev, err
	}
	return next, nil
}

// MoveTask puts the task into another workspace. A store scoped to a
// workspace drops tasks moved out of it.
func (s *Store) MoveTask(ctx context.Context, id string, workspaceID *string) (models.Task, error) {
	prev, ok := s.Task(id)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}

	next := prev
	next.WorkspaceID = workspaceID
	leaves := s.workspace != "" && (workspaceID == nil || *workspaceID != s.workspace)

	var index int
	err := s.Do(ctx, Optimistic{
		Action: "move task",
		Apply: func() {
			if leaves {
				index = s.removeTask(id)
				return
			}
			s.setTask(next)
		},
		Remote: func(ctx context.Context) error {
			task, err := s.backend.MoveTask(ctx, id, workspaceID)
			if err != nil {
				return err
			}
			next = *task
			if !leaves {
				s.replaceTask(id, next)
			}
			return nil
		},
		Revert: func() {
			if leaves {
				s.insertTask(index, prev)
				return
			}
			s.setTask(prev)
		},
	})
	if err != nil {
		return prev, err
	}
	return next, nil
}

// DeleteTask removes the task at once and puts it back in place if the
// backend refuses.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	prev, ok := s.Task(id)
	if !ok {
		return ErrTaskNotFound
	}

	var index int
	return s.Do(ctx, Optimistic{
		Action: "delete task",
		Apply: func() {
			index = s.removeTask(id)
		},
		Remote: func(ctx context.Context) error {
			return s.backend.DeleteTask(ctx, id)
		},
		Revert: func() {
			s.insertTask(index, prev)
		},
	})
}

// AddLap records a finished session. Laps without a positive duration
// are refused locally.
func (s *Store) AddLap(ctx context.Context, lap client.NewLap) (models.Lap, error) {
	if stats.ParseSeconds(lap.Duration) == 0 {
		return models.Lap{}, ErrEmptyLap
	}
	if lap.WorkspaceID == nil && s.workspace != "" {
		ws := s.workspace
		lap.WorkspaceID = &ws
	}

	createdAt := s.now()
	if lap.CreatedAt != nil {
		createdAt = *lap.CreatedAt
	}
	local := models.Lap{
		ID:             newTempID(),
		WorkspaceID:    lap.WorkspaceID,
		Name:           lap.Name,
		Description:    lap.Description,
		Duration:       stats.FormatDuration(time.Duration(stats.ParseSeconds(lap.Duration)) * time.Second),
		TasksCompleted: lap.TasksCompleted,
		CreatedAt:      createdAt,
	}

	stored := local
	err := s.Do(ctx, Optimistic{
		Action: "add lap",
		Apply: func() {
			s.laps = append(s.laps, local)
		},
		Remote: func(ctx context.Context) error {
			created, err := s.backend.CreateLap(ctx, lap)
			if err != nil {
				return err
			}
			stored = *created
			s.mu.Lock()
			if i := s.lapIndex(local.ID); i >= 0 {
				s.laps[i] = stored
			}
			s.mu.Unlock()
			return nil
		},
		Revert: func() {
			if i := s.lapIndex(local.ID); i >= 0 {
				s.laps = append(s.laps[:i], s.laps[i+1:]...)
			}
		},
	})
	if err != nil {
		return models.Lap{}, err
	}
	return stored, nil
}

func (s *Store) DeleteLap(ctx context.Context, id string) error {
	s.mu.RLock()
	i := s.lapIndex(id)
	var prev models.Lap
	if i >= 0 {
		prev = s.laps[i]
	}
	s.mu.RUnlock()
	if i < 0 {
		return ErrLapNotFound
	}

	var index int
	return s.Do(ctx, Optimistic{
		Action: "delete lap",
		Apply: func() {
			index = s.lapIndex(id)
			if index >= 0 {
				s.laps = append(s.laps[:index], s.laps[index+1:]...)
			}
		},
		Remote: func(ctx context.Context) error {
			return s.backend.DeleteLap(ctx, id)
		},
		Revert: func() {
			if index < 0 || s.lapIndex(id) >= 0 {
				return
			}
			index = min(index, len(s.laps))
			s.laps = append(s.laps[:index], append([]models.Lap{prev}, s.laps[index:]...)...)
		},
	})
}

// The helpers below expect the caller to hold s.mu, except
// replaceTask which takes it.

func (s *Store) setTask(task models.Task) {
	if i := s.taskIndex(task.ID); i >= 0 {
		s.tasks[i] = task
	}
}

func (s *Store) replaceTask(id string, task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.taskIndex(id); i >= 0 {
		s.tasks[i] = task
	}
}

// removeTask returns the index the task had, or -1.
func (s *Store) removeTask(id string) int {
	i := s.taskIndex(id)
	if i >= 0 {
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	}
	return i
}

func (s *Store) insertTask(index int, task models.Task) {
	if index < 0 || s.taskIndex(task.ID) >= 0 {
		return
	}
	index = min(index, len(s.tasks))
	s.tasks = append(s.tasks[:index], append([]models.Task{task}, s.tasks[index:]...)...)
}

func applyPatch(task models.Task, patch client.TaskPatch) models.Task {
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Assignment != nil {
		task.Assignment = strings.TrimSpace(*patch.Assignment)
	}
	if patch.Difficulty != nil {
		if d, err := models.ParseDifficulty(*patch.Difficulty); err == nil {
			task.Difficulty = d
		}
	}
	if patch.Deadline != nil {
		if *patch.Deadline == "" {
			task.Deadline = nil
		} else if d, err := time.Parse(time.DateOnly, *patch.Deadline); err == nil {
			task.Deadline = &d
		}
	}
	return task
}
