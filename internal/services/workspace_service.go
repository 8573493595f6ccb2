package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/models"
)

type workspaceServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewWorkspaceService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) WorkspaceService {
	return &workspaceServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *workspaceServiceImpl) CreateWorkspace(ctx context.Context, workspace *models.Workspace) (*models.Workspace, error) {
	workspace = &models.Workspace{
		UserID:    workspace.UserID,
		Name:      strings.TrimSpace(workspace.Name),
		Icon:      workspace.Icon,
		CreatedAt: time.Now(),
	}

	workspaceUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate workspace uuid")
		return nil, err
	}
	workspace.ID = workspaceUUID.String()

	const insertWorkspaceQuery = `
INSERT INTO workspaces (id,
                        user_id,
                        name,
                        icon,
                        created_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertWorkspaceQuery,
		workspace.ID,
		workspace.UserID,
		workspace.Name,
		workspace.Icon,
		workspace.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Error().
				Str("user_id", workspace.UserID).
				Str("name", workspace.Name).
				Msg("workspace with this name already exists")
			return nil, ErrWorkspaceAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert workspace")
		return nil, err
	}

	s.logger.Info().
		Str("workspace_id", workspace.ID).
		Str("user_id", workspace.UserID).
		Msg("created workspace")
	return workspace, nil
}

func (s *workspaceServiceImpl) GetWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error) {
	const selectWorkspacesQuery = `
SELECT id,
       name,
       icon,
       created_at
FROM workspaces
WHERE user_id = $1
ORDER BY created_at, id
`
	rows, err := s.pgPool.Query(ctx, selectWorkspacesQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select workspaces")
		return nil, err
	}
	defer rows.Close()

	workspaces := make([]models.Workspace, 0)
	for rows.Next() {
		workspace := models.Workspace{UserID: userID}
		err = rows.Scan(
			&workspace.ID,
			&workspace.Name,
			&workspace.Icon,
			&workspace.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan workspace")
			return nil, err
		}
		workspaces = append(workspaces, workspace)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(workspaces)).
		Str("user_id", userID).
		Msg("selected workspaces")

	return workspaces, nil
}

func (s *workspaceServiceImpl) UpdateWorkspace(ctx context.Context, params UpdateWorkspaceParams) (*models.Workspace, error) {
	var name *string
	if params.Name != nil {
		n := strings.TrimSpace(*params.Name)
		name = &n
	}

	const updateWorkspaceQuery = `
UPDATE workspaces
SET name = COALESCE($1, name),
    icon = COALESCE($2, icon)
WHERE id = $3 AND user_id = $4
RETURNING id, name, icon, created_at
`
	workspace := &models.Workspace{UserID: params.UserID}
	err := s.pgPool.QueryRow(
		ctx,
		updateWorkspaceQuery,
		name,
		params.Icon,
		params.ID,
		params.UserID,
	).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Icon,
		&workspace.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			s.logger.Error().
				Str("workspace_id", params.ID).
				Str("user_id", params.UserID).
				Msg("workspace not found")
			return nil, ErrWorkspaceNotFound
		case isUniqueViolation(err):
			s.logger.Error().
				Str("workspace_id", params.ID).
				Msg("workspace with this name already exists")
			return nil, ErrWorkspaceAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Str("workspace_id", params.ID).
			Msg("failed to update workspace")
		return nil, err
	}

	s.logger.Info().
		Str("workspace_id", workspace.ID).
		Str("user_id", workspace.UserID).
		Msg("updated workspace")
	return workspace, nil
}

func (s *workspaceServiceImpl) DeleteWorkspace(ctx context.Context, userID, workspaceID string) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteWorkspaceQuery = `
DELETE FROM workspaces
WHERE id = $1 AND user_id = $2
`
	tag, err := tx.Exec(ctx, deleteWorkspaceQuery, workspaceID, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("workspace_id", workspaceID).
			Msg("failed to delete workspace")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Str("workspace_id", workspaceID).
			Str("user_id", userID).
			Msg("workspace not found")
		return ErrWorkspaceNotFound
	}

	const deletePreferencesQuery = `
DELETE FROM preferences
WHERE user_id = $1 AND workspace_id = $2
`
	tag, err = tx.Exec(ctx, deletePreferencesQuery, userID, workspaceID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("workspace_id", workspaceID).
			Msg("failed to delete workspace preferences")
		return err
	}
	s.logger.Debug().
		Str("workspace_id", workspaceID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted workspace preferences")

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}

	s.logger.Info().
		Str("workspace_id", workspaceID).
		Str("user_id", userID).
		Msg("deleted workspace")
	return nil
}

// ensureWorkspace returns ErrWorkspaceNotFound unless workspaceID is
// nil or names a workspace owned by the user.
func ensureWorkspace(ctx context.Context, pgPool *pgxpool.Pool, userID string, workspaceID *string) error {
	if workspaceID == nil {
		return nil
	}

	const selectWorkspaceExistsQuery = `
SELECT EXISTS (SELECT 1 FROM workspaces WHERE id = $1 AND user_id = $2)
`
	var exists bool
	err := pgPool.QueryRow(ctx, selectWorkspaceExistsQuery, *workspaceID, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrWorkspaceNotFound
	}
	return nil
}
