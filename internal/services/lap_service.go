package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
)

const lapColumns = `id,
       workspace_id,
       name,
       description,
       duration,
       session_number,
       tasks_completed,
       created_at`

type lapServiceImpl struct {
	logger    zerolog.Logger
	pgPool    *pgxpool.Pool
	publisher events.Publisher
}

func NewLapService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	publisher events.Publisher,
) LapService {
	return &lapServiceImpl{
		logger:    logger,
		pgPool:    pgPool,
		publisher: publisher,
	}
}

func (s *lapServiceImpl) CreateLap(ctx context.Context, lap *models.Lap) (*models.Lap, error) {
	seconds := stats.ParseSeconds(lap.Duration)
	if seconds == 0 {
		s.logger.Error().
			Str("duration", lap.Duration).
			Msg("invalid lap duration")
		return nil, ErrInvalidDuration
	}

	lap = &models.Lap{
		UserID:         lap.UserID,
		WorkspaceID:    lap.WorkspaceID,
		Name:           strings.TrimSpace(lap.Name),
		Description:    lap.Description,
		Duration:       stats.FormatDuration(time.Duration(seconds) * time.Second),
		TasksCompleted: max(0, lap.TasksCompleted),
		CreatedAt:      createdAtOrNow(lap.CreatedAt),
	}

	lapUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate lap uuid")
		return nil, err
	}
	lap.ID = lapUUID.String()

	err = ensureWorkspace(ctx, s.pgPool, lap.UserID, lap.WorkspaceID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", lap.UserID).
			Msg("failed to check lap workspace")
		return nil, err
	}

	if lap.Name == "" {
		lap.Name = "Study session"
	}

	const insertLapQuery = `
INSERT INTO study_laps (id,
                        user_id,
                        workspace_id,
                        name,
                        description,
                        duration,
                        session_number,
                        tasks_completed,
                        created_at)
SELECT $1, $2, $3, $4, $5, $6,
       COALESCE(MAX(session_number), 0) + 1,
       $7, $8
FROM study_laps
WHERE user_id = $2
RETURNING session_number
`
	err = retrySessionNumber(func() error {
		return s.pgPool.QueryRow(
			ctx,
			insertLapQuery,
			lap.ID,
			lap.UserID,
			lap.WorkspaceID,
			lap.Name,
			lap.Description,
			lap.Duration,
			lap.TasksCompleted,
			lap.CreatedAt,
		).Scan(&lap.SessionNumber)
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Str("lap_id", lap.ID).
				Msg("lap workspace not found")
			return nil, ErrWorkspaceNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert lap")
		return nil, err
	}
	s.logger.Debug().
		Str("lap_id", lap.ID).
		Int("session_number", lap.SessionNumber).
		Msg("inserted lap")

	s.publisher.Publish(events.Event{
		Topic:   events.TopicLapCreated,
		UserID:  lap.UserID,
		Payload: lap,
	})

	s.logger.Info().
		Str("lap_id", lap.ID).
		Str("user_id", lap.UserID).
		Str("duration", lap.Duration).
		Msg("created lap")
	return lap, nil
}

func (s *lapServiceImpl) GetLaps(ctx context.Context, filter LapFilter) ([]models.Lap, error) {
	conds := []string{"user_id = $1"}
	args := []any{filter.UserID}
	if filter.WorkspaceID != nil {
		args = append(args, *filter.WorkspaceID)
		conds = append(conds, fmt.Sprintf("workspace_id = $%d", len(args)))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.Until != nil {
		args = append(args, *filter.Until)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}

	selectLapsQuery := `
SELECT ` + lapColumns + `
FROM study_laps
WHERE ` + strings.Join(conds, " AND ") + `
ORDER BY created_at, id
`
	rows, err := s.pgPool.Query(ctx, selectLapsQuery, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", filter.UserID).
			Msg("failed to select laps")
		return nil, err
	}
	defer rows.Close()

	laps := make([]models.Lap, 0)
	for rows.Next() {
		lap := models.Lap{UserID: filter.UserID}
		err = scanLap(rows, &lap)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan lap")
			return nil, err
		}
		laps = append(laps, lap)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(laps)).
		Str("user_id", filter.UserID).
		Msg("selected laps")

	return laps, nil
}

func (s *lapServiceImpl) UpdateLap(ctx context.Context, params UpdateLapParams) (*models.Lap, error) {
	const updateLapQuery = `
UPDATE study_laps
SET name = COALESCE($1, name),
    description = COALESCE($2, description)
WHERE id = $3 AND user_id = $4
RETURNING ` + lapColumns

	lap := &models.Lap{UserID: params.UserID}
	err := scanLap(s.pgPool.QueryRow(
		ctx,
		updateLapQuery,
		params.Name,
		params.Description,
		params.ID,
		params.UserID,
	), lap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("lap_id", params.ID).
				Str("user_id", params.UserID).
				Msg("lap not found")
			return nil, ErrLapNotFound
		}

		s.logger.Error().
			Err(err).
			Str("lap_id", params.ID).
			Msg("failed to update lap")
		return nil, err
	}

	s.publisher.Publish(events.Event{
		Topic:   events.TopicLapUpdated,
		UserID:  lap.UserID,
		Payload: lap,
	})

	s.logger.Info().
		Str("lap_id", lap.ID).
		Str("user_id", lap.UserID).
		Msg("updated lap")
	return lap, nil
}

func (s *lapServiceImpl) DeleteLap(ctx context.Context, userID, lapID string) error {
	const deleteLapQuery = `
DELETE FROM study_laps
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(ctx, deleteLapQuery, lapID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("lap_id", lapID).
			Msg("failed to delete lap")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("lap_id", lapID).
			Str("user_id", userID).
			Msg("lap not found")
		return ErrLapNotFound
	}

	s.publisher.Publish(events.Event{
		Topic:   events.TopicLapDeleted,
		UserID:  userID,
		Payload: map[string]string{"id": lapID},
	})

	s.logger.Info().
		Str("lap_id", lapID).
		Str("user_id", userID).
		Msg("deleted lap")
	return nil
}

const lapSessionConstraint = "idx_study_laps_session"

// retrySessionNumber runs insert again once when a concurrent lap of
// the same user took the session number first.
func retrySessionNumber(insert func() error) error {
	err := insert()
	if isUniqueViolationOn(err, lapSessionConstraint) {
		err = insert()
	}
	return err
}

func scanLap(row pgx.Row, lap *models.Lap) error {
	return row.Scan(
		&lap.ID,
		&lap.WorkspaceID,
		&lap.Name,
		&lap.Description,
		&lap.Duration,
		&lap.SessionNumber,
		&lap.TasksCompleted,
		&lap.CreatedAt,
	)
}

// createdAtOrNow keeps a client-supplied end time unless it is
// missing or lies in the future.
func createdAtOrNow(t time.Time) time.Time {
	now := time.Now()
	if t.IsZero() || t.After(now) {
		return now
	}
	return t
}
