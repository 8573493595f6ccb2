package v1

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/studyboard/internal/board"
	"github.com/adanyl0v/studyboard/internal/generator"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/services"
	"github.com/adanyl0v/studyboard/internal/stats"
)

var errMockBackend = errors.New("backend unavailable")

type MockAuthService struct {
	LoginFunc            func(ctx context.Context, params services.LoginParams) (*services.LoginResult, error)
	RefreshFunc          func(ctx context.Context, params services.RefreshParams) (*services.LoginResult, error)
	RegisterFunc         func(ctx context.Context, params services.LoginParams) (*services.LoginResult, error)
	LogoutFunc           func(ctx context.Context, userID string) error
	IssueAuthCodeFunc    func(ctx context.Context, userID string) (*models.AuthCode, error)
	ExchangeAuthCodeFunc func(ctx context.Context, code, fingerprint string) (*services.LoginResult, error)
	ParseJWTTokenFunc    func(token string) (*jwt.RegisteredClaims, error)
}

func (m *MockAuthService) Login(ctx context.Context, params services.LoginParams) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, params)
	}
	return nil, services.ErrUserNotFound
}

func (m *MockAuthService) Refresh(ctx context.Context, params services.RefreshParams) (*services.LoginResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, params)
	}
	return nil, services.ErrSessionNotFound
}

func (m *MockAuthService) Register(ctx context.Context, params services.LoginParams) (*services.LoginResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params)
	}
	return nil, errMockBackend
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, userID)
	}
	return nil
}

func (m *MockAuthService) IssueAuthCode(ctx context.Context, userID string) (*models.AuthCode, error) {
	if m.IssueAuthCodeFunc != nil {
		return m.IssueAuthCodeFunc(ctx, userID)
	}
	return nil, errMockBackend
}

func (m *MockAuthService) ExchangeAuthCode(ctx context.Context, code, fingerprint string) (*services.LoginResult, error) {
	if m.ExchangeAuthCodeFunc != nil {
		return m.ExchangeAuthCodeFunc(ctx, code, fingerprint)
	}
	return nil, services.ErrAuthCodeNotFound
}

func (m *MockAuthService) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	if m.ParseJWTTokenFunc != nil {
		return m.ParseJWTTokenFunc(token)
	}
	return nil, jwt.ErrTokenMalformed
}

type MockSessionService struct {
	GetSessionByIDFunc func(ctx context.Context, sessionID string) (*models.Session, error)
	GetSessionsFunc    func(ctx context.Context, userID string) ([]models.Session, error)
	DeleteSessionFunc  func(ctx context.Context, userID, sessionID string) error
}

func (m *MockSessionService) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	if m.GetSessionByIDFunc != nil {
		return m.GetSessionByIDFunc(ctx, sessionID)
	}
	return nil, services.ErrSessionNotFound
}

func (m *MockSessionService) GetSessions(ctx context.Context, userID string) ([]models.Session, error) {
	if m.GetSessionsFunc != nil {
		return m.GetSessionsFunc(ctx, userID)
	}
	return []models.Session{}, nil
}

func (m *MockSessionService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, userID, sessionID)
	}
	return services.ErrSessionNotFound
}

type MockTaskService struct {
	CreateTaskFunc       func(ctx context.Context, task *models.Task) (*models.Task, error)
	GetTasksFunc         func(ctx context.Context, filter services.TaskFilter) ([]models.Task, error)
	GetTaskFunc          func(ctx context.Context, userID, taskID string) (*models.Task, error)
	UpdateTaskFunc       func(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error)
	SetTaskCompletedFunc func(ctx context.Context, params services.SetTaskCompletedParams) (*models.Task, error)
	MoveTaskFunc         func(ctx context.Context, params services.MoveTaskParams) (*models.Task, error)
	DeleteTaskFunc       func(ctx context.Context, params services.DeleteTaskParams) error
}

func (m *MockTaskService) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(ctx, task)
	}
	return task, nil
}

func (m *MockTaskService) GetTasks(ctx context.Context, filter services.TaskFilter) ([]models.Task, error) {
	if m.GetTasksFunc != nil {
		return m.GetTasksFunc(ctx, filter)
	}
	return []models.Task{}, nil
}

func (m *MockTaskService) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, userID, taskID)
	}
	return nil, services.ErrTaskNotFound
}

func (m *MockTaskService) UpdateTask(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	if m.UpdateTaskFunc != nil {
		return m.UpdateTaskFunc(ctx, params)
	}
	return nil, services.ErrTaskNotFound
}

func (m *MockTaskService) SetTaskCompleted(ctx context.Context, params services.SetTaskCompletedParams) (*models.Task, error) {
	if m.SetTaskCompletedFunc != nil {
		return m.SetTaskCompletedFunc(ctx, params)
	}
	return nil, services.ErrTaskNotFound
}

func (m *MockTaskService) MoveTask(ctx context.Context, params services.MoveTaskParams) (*models.Task, error) {
	if m.MoveTaskFunc != nil {
		return m.MoveTaskFunc(ctx, params)
	}
	return nil, services.ErrTaskNotFound
}

func (m *MockTaskService) DeleteTask(ctx context.Context, params services.DeleteTaskParams) error {
	if m.DeleteTaskFunc != nil {
		return m.DeleteTaskFunc(ctx, params)
	}
	return nil
}

type MockLapService struct {
	CreateLapFunc func(ctx context.Context, lap *models.Lap) (*models.Lap, error)
	GetLapsFunc   func(ctx context.Context, filter services.LapFilter) ([]models.Lap, error)
	UpdateLapFunc func(ctx context.Context, params services.UpdateLapParams) (*models.Lap, error)
	DeleteLapFunc func(ctx context.Context, userID, lapID string) error
}

func (m *MockLapService) CreateLap(ctx context.Context, lap *models.Lap) (*models.Lap, error) {
	if m.CreateLapFunc != nil {
		return m.CreateLapFunc(ctx, lap)
	}
	return lap, nil
}

func (m *MockLapService) GetLaps(ctx context.Context, filter services.LapFilter) ([]models.Lap, error) {
	if m.GetLapsFunc != nil {
		return m.GetLapsFunc(ctx, filter)
	}
	return []models.Lap{}, nil
}

func (m *MockLapService) UpdateLap(ctx context.Context, params services.UpdateLapParams) (*models.Lap, error) {
	if m.UpdateLapFunc != nil {
		return m.UpdateLapFunc(ctx, params)
	}
	return nil, services.ErrLapNotFound
}

func (m *MockLapService) DeleteLap(ctx context.Context, userID, lapID string) error {
	if m.DeleteLapFunc != nil {
		return m.DeleteLapFunc(ctx, userID, lapID)
	}
	return nil
}

type MockWorkspaceService struct {
	CreateWorkspaceFunc func(ctx context.Context, workspace *models.Workspace) (*models.Workspace, error)
	GetWorkspacesFunc   func(ctx context.Context, userID string) ([]models.Workspace, error)
	UpdateWorkspaceFunc func(ctx context.Context, params services.UpdateWorkspaceParams) (*models.Workspace, error)
	DeleteWorkspaceFunc func(ctx context.Context, userID, workspaceID string) error
}

func (m *MockWorkspaceService) CreateWorkspace(ctx context.Context, workspace *models.Workspace) (*models.Workspace, error) {
	if m.CreateWorkspaceFunc != nil {
		return m.CreateWorkspaceFunc(ctx, workspace)
	}
	return workspace, nil
}

func (m *MockWorkspaceService) GetWorkspaces(ctx context.Context, userID string) ([]models.Workspace, error) {
	if m.GetWorkspacesFunc != nil {
		return m.GetWorkspacesFunc(ctx, userID)
	}
	return []models.Workspace{}, nil
}

func (m *MockWorkspaceService) UpdateWorkspace(ctx context.Context, params services.UpdateWorkspaceParams) (*models.Workspace, error) {
	if m.UpdateWorkspaceFunc != nil {
		return m.UpdateWorkspaceFunc(ctx, params)
	}
	return nil, services.ErrWorkspaceNotFound
}

func (m *MockWorkspaceService) DeleteWorkspace(ctx context.Context, userID, workspaceID string) error {
	if m.DeleteWorkspaceFunc != nil {
		return m.DeleteWorkspaceFunc(ctx, userID, workspaceID)
	}
	return nil
}

type MockPreferenceService struct {
	GetPreferencesFunc  func(ctx context.Context, userID, workspaceID string) (models.Preferences, error)
	SavePreferencesFunc func(ctx context.Context, userID string, prefs models.Preferences) (models.Preferences, error)
}

func (m *MockPreferenceService) GetPreferences(ctx context.Context, userID, workspaceID string) (models.Preferences, error) {
	if m.GetPreferencesFunc != nil {
		return m.GetPreferencesFunc(ctx, userID, workspaceID)
	}
	return models.DefaultPreferences(workspaceID), nil
}

func (m *MockPreferenceService) SavePreferences(ctx context.Context, userID string, prefs models.Preferences) (models.Preferences, error) {
	if m.SavePreferencesFunc != nil {
		return m.SavePreferencesFunc(ctx, userID, prefs)
	}
	return prefs.Normalize(), nil
}

type MockBoardService struct {
	GetBoardFunc func(ctx context.Context, userID, workspaceID string) ([]board.Column, error)
}

func (m *MockBoardService) GetBoard(ctx context.Context, userID, workspaceID string) ([]board.Column, error) {
	if m.GetBoardFunc != nil {
		return m.GetBoardFunc(ctx, userID, workspaceID)
	}
	return []board.Column{}, nil
}

type MockStatsService struct {
	SummarizeFunc      func(ctx context.Context, params services.StatsParams) (*stats.Summary, error)
	SummarizeTasksFunc func(ctx context.Context, userID string, workspaceID *string, now time.Time) (*stats.TaskSummary, error)
}

func (m *MockStatsService) Summarize(ctx context.Context, params services.StatsParams) (*stats.Summary, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, params)
	}
	return &stats.Summary{}, nil
}

func (m *MockStatsService) SummarizeTasks(ctx context.Context, userID string, workspaceID *string, now time.Time) (*stats.TaskSummary, error) {
	if m.SummarizeTasksFunc != nil {
		return m.SummarizeTasksFunc(ctx, userID, workspaceID, now)
	}
	return &stats.TaskSummary{}, nil
}

type MockGenerator struct {
	Disabled     bool
	GenerateFunc func(ctx context.Context, prompt string, now time.Time, loc *time.Location) ([]generator.Candidate, error)
}

func (m *MockGenerator) Enabled() bool {
	return !m.Disabled
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, now time.Time, loc *time.Location) ([]generator.Candidate, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, now, loc)
	}
	return nil, generator.ErrUnparseable
}
