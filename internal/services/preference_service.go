package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/models"
)

type preferenceServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPreferenceService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) PreferenceService {
	return &preferenceServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *preferenceServiceImpl) GetPreferences(ctx context.Context, userID, workspaceID string) (models.Preferences, error) {
	const selectPreferencesQuery = `
SELECT data
FROM preferences
WHERE user_id = $1 AND workspace_id = $2
`
	var data []byte
	err := s.pgPool.QueryRow(ctx, selectPreferencesQuery, userID, workspaceID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Str("user_id", userID).
				Str("workspace_id", workspaceID).
				Msg("no stored preferences")
			return models.DefaultPreferences(workspaceID), nil
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select preferences")
		return models.Preferences{}, err
	}

	return decodePreferences(s.logger, data, workspaceID), nil
}

func (s *preferenceServiceImpl) SavePreferences(ctx context.Context, userID string, prefs models.Preferences) (models.Preferences, error) {
	prefs = prefs.Normalize()
	data, err := json.Marshal(prefs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to marshal preferences")
		return models.Preferences{}, err
	}

	const upsertPreferencesQuery = `
INSERT INTO preferences (user_id,
                         workspace_id,
                         data,
                         updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, workspace_id) DO UPDATE
SET data = EXCLUDED.data,
    updated_at = EXCLUDED.updated_at
`
	_, err = s.pgPool.Exec(
		ctx,
		upsertPreferencesQuery,
		userID,
		prefs.WorkspaceID,
		data,
		time.Now(),
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to upsert preferences")
		return models.Preferences{}, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("workspace_id", prefs.WorkspaceID).
		Msg("saved preferences")
	return prefs, nil
}

// decodePreferences never fails: a document that can't be
// decoded is replaced with the defaults.
func decodePreferences(logger zerolog.Logger, data []byte, workspaceID string) models.Preferences {
	var prefs models.Preferences
	err := json.Unmarshal(data, &prefs)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("workspace_id", workspaceID).
			Msg("corrupt preferences, using defaults")
		return models.DefaultPreferences(workspaceID)
	}
	prefs.WorkspaceID = workspaceID
	return prefs.Normalize()
}
