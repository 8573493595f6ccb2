// Package client talks to the studyboard REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/studyboard/internal/board"
	"github.com/adanyl0v/studyboard/internal/generator"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/stats"
)

const maxSnippetLen = 300

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
)

// APIError is a non-2xx response. It unwraps to one of the sentinel
// errors above when the status has one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return nil
	}
}

type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Timezone is sent with new tasks so the server judges deadlines
	// by the user's calendar day. Empty means LocalZone().
	Timezone string
}

type Client struct {
	logger   zerolog.Logger
	baseURL  string
	token    string
	timezone string
	http     *http.Client
}

func New(logger zerolog.Logger, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	tz := opts.Timezone
	if tz == "" {
		tz = LocalZone()
	}
	return &Client{
		logger:   logger,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		timezone: tz,
		http:     &http.Client{Timeout: timeout},
	}
}

// LocalZone names the local IANA zone, falling back to UTC when the
// system only knows it as "Local".
func LocalZone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return "UTC"
}

// SetToken replaces the bearer token used by later calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

type LoginResult struct {
	UserID                string    `json:"user_id"`
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// Login exchanges credentials for a token pair and keeps the access token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

type TaskQuery struct {
	WorkspaceID string
	Assignment  string
	Completed   *bool
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.WorkspaceID != "" {
		v.Set("workspace_id", q.WorkspaceID)
	}
	if q.Assignment != "" {
		v.Set("assignment", q.Assignment)
	}
	if q.Completed != nil {
		v.Set("completed", strconv.FormatBool(*q.Completed))
	}
	return v
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	var out []models.Task
	err := c.do(ctx, http.MethodGet, "/api/tasks", q.values(), nil, &out)
	return out, err
}

type NewTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Assignment  string  `json:"assignment,omitempty"`
	Deadline    string  `json:"deadline,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty"`
	WorkspaceID *string `json:"workspace_id,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

// NewTaskFrom converts a draft task to a create request.
func NewTaskFrom(task models.Task) NewTask {
	req := NewTask{
		Title:       task.Title,
		Description: task.Description,
		Assignment:  task.Assignment,
		Difficulty:  string(task.Difficulty),
		WorkspaceID: task.WorkspaceID,
	}
	if task.Deadline != nil {
		req.Deadline = task.Deadline.Format(time.DateOnly)
	}
	return req
}

func (c *Client) CreateTask(ctx context.Context, task NewTask) (*models.Task, error) {
	if task.Timezone == "" {
		task.Timezone = c.timezone
	}
	var out models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", nil, task, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TaskPatch holds the fields to change. A Deadline pointing at an
// empty string clears the deadline.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Assignment  *string `json:"assignment,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	Difficulty  *string `json:"difficulty,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), nil, patch, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetTaskCompleted(ctx context.Context, id string, completed bool) (*models.Task, error) {
	action := "incomplete"
	if completed {
		action = "complete"
	}
	var out models.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id)+"/"+action, nil, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MoveTask(ctx context.Context, id string, workspaceID *string) (*models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id)+"/workspace", nil,
		map[string]*string{"workspace_id": workspaceID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Board(ctx context.Context, workspaceID string) ([]board.Column, error) {
	v := url.Values{}
	if workspaceID != "" {
		v.Set("workspace_id", workspaceID)
	}
	var out struct {
		Columns []board.Column `json:"columns"`
	}
	err := c.do(ctx, http.MethodGet, "/api/tasks/board", v, nil, &out)
	return out.Columns, err
}

type LapQuery struct {
	WorkspaceID string
	Since       time.Time
	Until       time.Time
}

func (c *Client) ListLaps(ctx context.Context, q LapQuery) ([]models.Lap, error) {
	v := url.Values{}
	if q.WorkspaceID != "" {
		v.Set("workspace_id", q.WorkspaceID)
	}
	if !q.Since.IsZero() {
		v.Set("since", q.Since.Format(time.RFC3339))
	}
	if !q.Until.IsZero() {
		v.Set("until", q.Until.Format(time.RFC3339))
	}
	var out []models.Lap
	err := c.do(ctx, http.MethodGet, "/api/laps", v, nil, &out)
	return out, err
}

type NewLap struct {
	Name           string     `json:"name,omitempty"`
	Description    string     `json:"description,omitempty"`
	Duration       string     `json:"duration"`
	TasksCompleted int        `json:"tasks_completed"`
	WorkspaceID    *string    `json:"workspace_id,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

func (c *Client) CreateLap(ctx context.Context, lap NewLap) (*models.Lap, error) {
	var out models.Lap
	err := c.do(ctx, http.MethodPost, "/api/laps", nil, lap, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLap(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/laps/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	var out []models.Workspace
	err := c.do(ctx, http.MethodGet, "/api/workspaces", nil, nil, &out)
	return out, err
}

// Session is a device the user is signed in on.
type Session struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	Current     bool      `json:"current"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var out struct {
		Sessions []Session `json:"sessions"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/sessions", nil, nil, &out)
	return out.Sessions, err
}

// RevokeSession signs the device out.
func (c *Client) RevokeSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/auth/sessions/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) GetPreferences(ctx context.Context, workspaceID string) (models.Preferences, error) {
	v := url.Values{}
	if workspaceID != "" {
		v.Set("workspace_id", workspaceID)
	}
	var out models.Preferences
	err := c.do(ctx, http.MethodGet, "/api/preferences", v, nil, &out)
	if err != nil {
		return models.DefaultPreferences(workspaceID), err
	}
	return out.Normalize(), nil
}

func (c *Client) SavePreferences(ctx context.Context, prefs models.Preferences) (models.Preferences, error) {
	v := url.Values{}
	if prefs.WorkspaceID != "" {
		v.Set("workspace_id", prefs.WorkspaceID)
	}
	var out models.Preferences
	err := c.do(ctx, http.MethodPut, "/api/preferences", v, prefs, &out)
	if err != nil {
		return prefs, err
	}
	return out.Normalize(), nil
}

// Suggestions are the parsed AI candidates together with the task
// drafts the server derived from them.
type Suggestions struct {
	Candidates []generator.Candidate `json:"candidates"`
	Drafts     []models.Task         `json:"drafts"`
}

func (c *Client) Generate(ctx context.Context, prompt, timezone string) (*Suggestions, error) {
	var out Suggestions
	err := c.do(ctx, http.MethodPost, "/api/tasks/generate", nil, map[string]string{
		"prompt":   prompt,
		"timezone": timezone,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context, w stats.Window, workspaceID string) (*stats.Summary, error) {
	v := url.Values{}
	v.Set("window", string(w.Kind))
	v.Set("offset", strconv.Itoa(w.Offset))
	if workspaceID != "" {
		v.Set("workspace_id", workspaceID)
	}
	var out stats.Summary
	err := c.do(ctx, http.MethodGet, "/api/stats", v, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
		}
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("path", path).
			Str("body", snippet(data)).
			Msg("api returned an error")
		return apiErr
	}
	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("method", method).
		Str("path", path).
		Msg("api call succeeded")

	if out == nil || len(data) == 0 {
		return nil
	}
	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func snippet(b []byte) string {
	if len(b) > maxSnippetLen {
		return string(b[:maxSnippetLen]) + "..."
	}
	return string(b)
}
