package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/generator"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/services"
	"github.com/adanyl0v/studyboard/internal/stats"
)

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description" binding:"max=2000"`
	Assignment  string  `json:"assignment" binding:"max=100"`
	Deadline    string  `json:"deadline"`
	Difficulty  string  `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	WorkspaceID *string `json:"workspace_id"`
	Timezone    string  `json:"timezone"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		abort(c, newBadRequestError("title is required"))
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		abort(c, newBadRequestError(err.Error()))
		return
	}
	today, err := calendarToday(h.now(), req.Timezone)
	if err != nil {
		abort(c, newBadRequestError("unknown timezone"))
		return
	}
	if deadline != nil && deadline.Before(today) {
		h.logger.Error().
			Time("deadline", *deadline).
			Msg("deadline is in the past")
		abort(c, newBadRequestError(errDeadlineInPast.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, &models.Task{
		UserID:      userID,
		WorkspaceID: req.WorkspaceID,
		Title:       req.Title,
		Description: req.Description,
		Assignment:  req.Assignment,
		Deadline:    deadline,
		Difficulty:  models.Difficulty(req.Difficulty),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	filter := services.TaskFilter{
		UserID:      userID,
		WorkspaceID: optionalQuery(c, "workspace_id"),
		Assignment:  optionalQuery(c, "assignment"),
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			abort(c, newBadRequestError(errInvalidQuery.Error()+": completed"))
			return
		}
		filter.Completed = &completed
	}

	tasks, err := h.tasks.GetTasks(c, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get tasks")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *handlerImpl) HandleGetBoard(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	columns, err := h.board.GetBoard(c, userID, c.Query("workspace_id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to build board")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c, userID, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to get task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Assignment  *string `json:"assignment" binding:"omitempty,max=100"`
	// Deadline set to "" clears it.
	Deadline   *string `json:"deadline"`
	Difficulty *string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.UpdateTaskParams{
		ID:          c.Param("id"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Assignment:  req.Assignment,
	}
	if req.Deadline != nil {
		params.Deadline, err = parseDeadline(*req.Deadline)
		if err != nil {
			abort(c, newBadRequestError(err.Error()))
			return
		}
		params.ClearDeadline = params.Deadline == nil
	}
	if req.Difficulty != nil {
		d := models.Difficulty(*req.Difficulty)
		params.Difficulty = &d
	}

	task, err := h.tasks.UpdateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleCompleteTask(c *gin.Context) {
	h.setTaskCompleted(c, true)
}

func (h *handlerImpl) HandleIncompleteTask(c *gin.Context) {
	h.setTaskCompleted(c, false)
}

func (h *handlerImpl) setTaskCompleted(c *gin.Context, completed bool) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	task, err := h.tasks.SetTaskCompleted(c, services.SetTaskCompletedParams{
		ID:        c.Param("id"),
		UserID:    userID,
		Completed: completed,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Bool("completed", completed).
			Msg("failed to set task status")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

type moveTaskRequest struct {
	WorkspaceID *string `json:"workspace_id"`
}

func (h *handlerImpl) HandleMoveTask(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req moveTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.MoveTask(c, services.MoveTaskParams{
		ID:          c.Param("id"),
		UserID:      userID,
		WorkspaceID: req.WorkspaceID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", c.Param("id")).
			Msg("failed to move task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	err := h.tasks.DeleteTask(c, services.DeleteTaskParams{
		ID:     taskID,
		UserID: userID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": taskID})
}

type generateTasksRequest struct {
	Prompt   string `json:"prompt" binding:"required,max=4000"`
	Timezone string `json:"timezone"`
}

type generateTasksResponse struct {
	Candidates []generator.Candidate `json:"candidates"`
	Drafts     []models.Task         `json:"drafts"`
}

// HandleGenerateTasks returns suggestions only. Tasks are created
// once the user confirms them through POST /api/tasks.
func (h *handlerImpl) HandleGenerateTasks(c *gin.Context) {
	if _, ok := h.userID(c); !ok {
		return
	}
	if h.generator == nil || !h.generator.Enabled() {
		abort(c, newAPIError(http.StatusServiceUnavailable, errGeneratorDisabled.Error()))
		return
	}

	var req generateTasksRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	loc := time.UTC
	if req.Timezone != "" {
		loc, err = time.LoadLocation(req.Timezone)
		if err != nil {
			abort(c, newBadRequestError("unknown timezone"))
			return
		}
	}

	// The completion request ends with the client connection.
	candidates, err := h.generator.Generate(c.Request.Context(), req.Prompt, h.now(), loc)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate tasks")
		switch {
		case errors.Is(err, generator.ErrUnparseable):
			abort(c, newUnprocessableError(errUnparseableSuggestions.Error()))
		case errors.Is(err, generator.ErrEmptyPrompt):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	drafts := make([]models.Task, len(candidates))
	for i, candidate := range candidates {
		drafts[i] = candidate.ToTask(loc)
	}
	c.JSON(http.StatusOK, generateTasksResponse{
		Candidates: candidates,
		Drafts:     drafts,
	})
}

// userID aborts with 401 when the auth middleware didn't run.
func (h *handlerImpl) userID(c *gin.Context) (string, bool) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok || userID == "" {
		h.logger.Error().Msg("no user id found in context")
		abort(c, newStatusTextError(http.StatusUnauthorized))
		return "", false
	}
	return userID, true
}

func optionalQuery(c *gin.Context, key string) *string {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return nil
	}
	return &value
}

// latestOffset is the westernmost UTC offset in use.
const latestOffset = -12 * time.Hour

// calendarToday returns the current date in tz as a UTC midnight, the
// form deadlines are stored in. Without a timezone it returns the
// earliest date any user can still be on.
func calendarToday(now time.Time, tz string) (time.Time, error) {
	var local time.Time
	if tz == "" {
		local = now.UTC().Add(latestOffset)
	} else {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, err
		}
		local = now.In(loc)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseDeadline accepts a calendar date or an RFC 3339 timestamp and
// returns the UTC day it falls on. An empty string means no deadline.
func parseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, errInvalidDeadline
		}
	}
	day := stats.Day(t)
	return &day, nil
}
