package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/models"
)

const sessionColumns = `id,
       user_id,
       fingerprint,
       expires_at,
       created_at,
       updated_at`

type sessionServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewSessionService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) SessionService {
	return &sessionServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *sessionServiceImpl) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	const selectSessionByIDQuery = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE id = $1
`
	session := &models.Session{}
	err := scanSession(s.pgPool.QueryRow(ctx, selectSessionByIDQuery, sessionID), session)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("session_id", sessionID).
				Msg("session not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to select session by id")
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Str("user_id", session.UserID).
		Msg("selected session")
	return session, nil
}

func (s *sessionServiceImpl) GetSessions(ctx context.Context, userID string) ([]models.Session, error) {
	const selectSessionsQuery = `
SELECT ` + sessionColumns + `
FROM sessions
WHERE user_id = $1 AND expires_at > NOW()
ORDER BY updated_at DESC, id
`
	rows, err := s.pgPool.Query(ctx, selectSessionsQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select sessions")
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var session models.Session
		err = scanSession(rows, &session)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan session")
			return nil, err
		}
		sessions = append(sessions, session)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(sessions)).
		Str("user_id", userID).
		Msg("selected sessions")

	return sessions, nil
}

func (s *sessionServiceImpl) DeleteSession(ctx context.Context, userID, sessionID string) error {
	const deleteSessionQuery = `
DELETE FROM sessions
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(ctx, deleteSessionQuery, sessionID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to delete session")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("session_id", sessionID).
			Str("user_id", userID).
			Msg("session not found")
		return ErrSessionNotFound
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("user_id", userID).
		Msg("deleted session")
	return nil
}

func scanSession(row pgx.Row, session *models.Session) error {
	return row.Scan(
		&session.ID,
		&session.UserID,
		&session.Fingerprint,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
}
