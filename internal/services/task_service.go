package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/models"
)

const taskColumns = `id,
       workspace_id,
       title,
       description,
       assignment,
       deadline,
       difficulty,
       completed,
       completed_at,
       created_at,
       updated_at`

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return newTaskService(logger, pgPool)
}

func NewDueTaskLister(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) DueTaskLister {
	return newTaskService(logger, pgPool)
}

func newTaskService(logger zerolog.Logger, pgPool *pgxpool.Pool) *taskServiceImpl {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
		now:    time.Now,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	now := s.now()
	task = &models.Task{
		UserID:      task.UserID,
		WorkspaceID: task.WorkspaceID,
		Title:       task.Title,
		Description: task.Description,
		Assignment:  strings.TrimSpace(task.Assignment),
		Deadline:    task.Deadline,
		Difficulty:  task.Difficulty,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	err = ensureWorkspace(ctx, s.pgPool, task.UserID, task.WorkspaceID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", task.UserID).
			Msg("failed to check task workspace")
		return nil, err
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   workspace_id,
                   title,
                   description,
                   assignment,
                   deadline,
                   difficulty,
                   completed,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9, $10)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.WorkspaceID,
		task.Title,
		task.Description,
		task.Assignment,
		task.Deadline,
		string(task.Difficulty),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Str("task_id", task.ID).
				Msg("task workspace not found")
			return nil, ErrWorkspaceNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	conds := []string{"user_id = $1"}
	args := []any{filter.UserID}
	if filter.WorkspaceID != nil {
		args = append(args, *filter.WorkspaceID)
		conds = append(conds, fmt.Sprintf("workspace_id = $%d", len(args)))
	}
	if filter.Assignment != nil {
		args = append(args, *filter.Assignment)
		conds = append(conds, fmt.Sprintf("assignment = $%d", len(args)))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}

	selectTasksQuery := `
SELECT ` + taskColumns + `
FROM tasks
WHERE ` + strings.Join(conds, " AND ") + `
ORDER BY created_at, id
`
	rows, err := s.pgPool.Query(ctx, selectTasksQuery, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", filter.UserID).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task := models.Task{UserID: filter.UserID}
		err = s.scanTask(rows, &task)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", filter.UserID).
		Msg("selected tasks")

	return tasks, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	const selectTaskQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1 AND user_id = $2
`
	task := &models.Task{UserID: userID}
	err := s.scanTask(s.pgPool.QueryRow(ctx, selectTaskQuery, taskID, userID), task)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("selected task")

	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	var difficulty *string
	if params.Difficulty != nil {
		d := string(*params.Difficulty)
		difficulty = &d
	}
	var assignment *string
	if params.Assignment != nil {
		a := strings.TrimSpace(*params.Assignment)
		assignment = &a
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = COALESCE($1, title),
    description = COALESCE($2, description),
    assignment = COALESCE($3, assignment),
    deadline = CASE WHEN $4::boolean THEN NULL ELSE COALESCE($5::date, deadline) END,
    difficulty = COALESCE($6, difficulty),
    updated_at = $7
WHERE id = $8 AND user_id = $9
RETURNING ` + taskColumns

	task := &models.Task{UserID: params.UserID}
	err := s.scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		params.Title,
		params.Description,
		assignment,
		params.ClearDeadline,
		params.Deadline,
		difficulty,
		s.now(),
		params.ID,
		params.UserID,
	), task)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", params.ID).
				Str("user_id", params.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) SetTaskCompleted(ctx context.Context, params SetTaskCompletedParams) (*models.Task, error) {
	const updateTaskCompletedQuery = `
UPDATE tasks
SET completed = $1::boolean,
    completed_at = CASE WHEN $1::boolean THEN $2::timestamptz ELSE NULL END,
    updated_at = $2
WHERE id = $3 AND user_id = $4
RETURNING ` + taskColumns

	task := &models.Task{UserID: params.UserID}
	err := s.scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskCompletedQuery,
		params.Completed,
		s.now(),
		params.ID,
		params.UserID,
	), task)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", params.ID).
				Str("user_id", params.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task completion")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Bool("completed", task.Completed).
		Msg("updated task completion")

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Bool("completed", task.Completed).
		Msg("set task completion")
	return task, nil
}

func (s *taskServiceImpl) MoveTask(ctx context.Context, params MoveTaskParams) (*models.Task, error) {
	err := ensureWorkspace(ctx, s.pgPool, params.UserID, params.WorkspaceID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to check target workspace")
		return nil, err
	}

	const updateTaskWorkspaceQuery = `
UPDATE tasks
SET workspace_id = $1,
    updated_at = $2
WHERE id = $3 AND user_id = $4
RETURNING ` + taskColumns

	task := &models.Task{UserID: params.UserID}
	err = s.scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskWorkspaceQuery,
		params.WorkspaceID,
		s.now(),
		params.ID,
		params.UserID,
	), task)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			s.logger.Error().
				Str("task_id", params.ID).
				Str("user_id", params.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		case isForeignKeyViolation(err):
			s.logger.Error().
				Str("task_id", params.ID).
				Msg("target workspace not found")
			return nil, ErrWorkspaceNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to move task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("moved task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		params.ID,
		params.UserID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("task_id", params.ID).
			Str("user_id", params.UserID).
			Msg("task not found")
		return ErrTaskNotFound
	}
	s.logger.Debug().
		Str("task_id", params.ID).
		Msg("deleted task")

	s.logger.Info().
		Str("task_id", params.ID).
		Str("user_id", params.UserID).
		Msg("deleted task")
	return nil
}

// GetDueTasks returns the open tasks of every user whose deadline
// is on or before until.
func (s *taskServiceImpl) GetDueTasks(ctx context.Context, until time.Time) ([]models.Task, error) {
	const selectDueTasksQuery = `
SELECT ` + taskColumns + `,
       user_id
FROM tasks
WHERE completed = FALSE AND
      deadline IS NOT NULL AND
      deadline <= $1
ORDER BY user_id, deadline, created_at
`
	rows, err := s.pgPool.Query(ctx, selectDueTasksQuery, until)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select due tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var task models.Task
		err = s.scanTask(rows, &task, &task.UserID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Time("until", until).
		Msg("selected due tasks")

	return tasks, nil
}

// scanTask reads a row selected with taskColumns followed by the
// extra destinations. An unknown stored difficulty is dropped so it
// sorts like a task without one.
func (s *taskServiceImpl) scanTask(row pgx.Row, task *models.Task, extra ...any) error {
	var difficulty string
	dest := append([]any{
		&task.ID,
		&task.WorkspaceID,
		&task.Title,
		&task.Description,
		&task.Assignment,
		&task.Deadline,
		&difficulty,
		&task.Completed,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	if err != nil {
		return err
	}

	task.Difficulty, err = models.ParseDifficulty(difficulty)
	if err != nil {
		s.logger.Warn().
			Str("task_id", task.ID).
			Str("difficulty", difficulty).
			Msg("unknown stored difficulty")
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isUniqueViolationOn(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}
