package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/studyboard/internal/board"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrAuthCodeNotFound     = errors.New("auth code not found")
	ErrAuthCodeExpired      = errors.New("auth code expired")

	ErrTaskNotFound           = errors.New("task not found")
	ErrLapNotFound            = errors.New("lap not found")
	ErrInvalidDuration        = errors.New("invalid lap duration")
	ErrWorkspaceNotFound      = errors.New("workspace not found")
	ErrWorkspaceAlreadyExists = errors.New("workspace already exists")
)

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It deletes the user's sessions opened with the same fingerprint,
	// creates a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given email and password.
	//
	// It hashes the password, generates a unique ID and creates a
	// session with the given fingerprint and a fresh JWT token pair.
	//
	// It returns ErrUserAlreadyExists if the user
	// with the given email already exists.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// IssueAuthCode creates a short-lived one-time code that
	// another client can exchange for its own session.
	IssueAuthCode(ctx context.Context, userID string) (*models.AuthCode, error)

	// ExchangeAuthCode consumes the code and opens a session bound
	// to the given fingerprint.
	//
	// It returns ErrAuthCodeNotFound if the code doesn't exist or
	// was already used and ErrAuthCodeExpired if it is too old.
	ExchangeAuthCode(ctx context.Context, code, fingerprint string) (*LoginResult, error)

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)

	// GetSessions lists the user's unexpired sessions, most recently
	// refreshed first.
	GetSessions(ctx context.Context, userID string) ([]models.Session, error)

	// DeleteSession signs a single device out. It returns
	// ErrSessionNotFound if the session doesn't belong to the user.
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

type TaskService interface {
	// CreateTask stores a new open task. It returns ErrWorkspaceNotFound
	// if the task references a workspace the user doesn't own.
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)

	// GetTasks returns the user's tasks matching the filter,
	// oldest first. No match is an empty result, not an error.
	GetTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// SetTaskCompleted flips the completion flag and sets or clears
	// completed_at in the same statement.
	SetTaskCompleted(ctx context.Context, params SetTaskCompletedParams) (*models.Task, error)

	// MoveTask puts the task into another workspace, or out of
	// any workspace when WorkspaceID is nil.
	MoveTask(ctx context.Context, params MoveTaskParams) (*models.Task, error)

	DeleteTask(ctx context.Context, params DeleteTaskParams) error
}

// DueTaskLister feeds the daily deadline digest.
type DueTaskLister interface {
	GetDueTasks(ctx context.Context, until time.Time) ([]models.Task, error)
}

type LapService interface {
	// CreateLap records a finished study session. Durations that are
	// malformed or zero are rejected with ErrInvalidDuration.
	CreateLap(ctx context.Context, lap *models.Lap) (*models.Lap, error)
	GetLaps(ctx context.Context, filter LapFilter) ([]models.Lap, error)

	// UpdateLap edits the metadata of a lap. Durations are immutable.
	UpdateLap(ctx context.Context, params UpdateLapParams) (*models.Lap, error)
	DeleteLap(ctx context.Context, userID, lapID string) error
}

type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, workspace *models.Workspace) (*models.Workspace, error)
	GetWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error)
	UpdateWorkspace(ctx context.Context, params UpdateWorkspaceParams) (*models.Workspace, error)

	// DeleteWorkspace removes the workspace and its board preferences.
	// Its tasks and laps stay, detached from any workspace.
	DeleteWorkspace(ctx context.Context, userID, workspaceID string) error
}

type PreferenceService interface {
	// GetPreferences falls back to defaults when nothing is stored
	// or the stored document can't be decoded.
	GetPreferences(ctx context.Context, userID, workspaceID string) (models.Preferences, error)
	SavePreferences(ctx context.Context, userID string, prefs models.Preferences) (models.Preferences, error)
}

type BoardService interface {
	GetBoard(ctx context.Context, userID, workspaceID string) ([]board.Column, error)
}

type StatsService interface {
	Summarize(ctx context.Context, params StatsParams) (*stats.Summary, error)
	SummarizeTasks(ctx context.Context, userID string, workspaceID *string, now time.Time) (*stats.TaskSummary, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type TaskFilter struct {
	UserID      string
	WorkspaceID *string
	Assignment  *string
	Completed   *bool
}

type UpdateTaskParams struct {
	ID            string
	UserID        string
	Title         *string
	Description   *string
	Assignment    *string
	Deadline      *time.Time
	ClearDeadline bool
	Difficulty    *models.Difficulty
}

type SetTaskCompletedParams struct {
	ID        string
	UserID    string
	Completed bool
}

type MoveTaskParams struct {
	ID          string
	UserID      string
	WorkspaceID *string
}

type DeleteTaskParams struct {
	ID     string
	UserID string
}

type LapFilter struct {
	UserID      string
	WorkspaceID *string
	Since       *time.Time
	Until       *time.Time
}

type UpdateLapParams struct {
	ID          string
	UserID      string
	Name        *string
	Description *string
}

type UpdateWorkspaceParams struct {
	ID     string
	UserID string
	Name   *string
	Icon   *string
}

type StatsParams struct {
	UserID      string
	WorkspaceID *string
	Window      stats.Window
	Now         time.Time
}
