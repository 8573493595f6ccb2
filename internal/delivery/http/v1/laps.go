package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/services"
)

const streamHeartbeat = 15 * time.Second

type createLapRequest struct {
	Name           string     `json:"name" binding:"max=100"`
	Description    string     `json:"description" binding:"max=2000"`
	Duration       string     `json:"duration" binding:"required"`
	TasksCompleted int        `json:"tasks_completed" binding:"min=0"`
	WorkspaceID    *string    `json:"workspace_id"`
	CreatedAt      *time.Time `json:"created_at"`
}

func (h *handlerImpl) HandleCreateLap(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req createLapRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	lap := &models.Lap{
		UserID:         userID,
		WorkspaceID:    req.WorkspaceID,
		Name:           req.Name,
		Description:    req.Description,
		Duration:       req.Duration,
		TasksCompleted: req.TasksCompleted,
	}
	if req.CreatedAt != nil {
		lap.CreatedAt = *req.CreatedAt
	}

	lap, err = h.laps.CreateLap(c, lap)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create lap")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, lap)
}

func (h *handlerImpl) HandleGetLaps(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	filter := services.LapFilter{
		UserID:      userID,
		WorkspaceID: optionalQuery(c, "workspace_id"),
	}
	for key, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			abort(c, newBadRequestError(errInvalidQuery.Error()+": "+key))
			return
		}
		*dst = &t
	}

	laps, err := h.laps.GetLaps(c, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get laps")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, laps)
}

type updateLapRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

func (h *handlerImpl) HandleUpdateLap(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req updateLapRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	lap, err := h.laps.UpdateLap(c, services.UpdateLapParams{
		ID:          c.Param("id"),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("lap_id", c.Param("id")).
			Msg("failed to update lap")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, lap)
}

func (h *handlerImpl) HandleDeleteLap(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	lapID := c.Param("id")
	err := h.laps.DeleteLap(c, userID, lapID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("lap_id", lapID).
			Msg("failed to delete lap")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": lapID})
}

// HandleLapStream pushes the user's lap changes and reminder digests
// as server-sent events until the client goes away. The first event
// is "ready".
func (h *handlerImpl) HandleLapStream(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	if h.events == nil {
		abort(c, newStatusTextError(http.StatusServiceUnavailable))
		return
	}

	ch := h.events.Subscribe(
		events.TopicLapCreated,
		events.TopicLapUpdated,
		events.TopicLapDeleted,
		events.TopicReminderDigest,
	)
	defer h.events.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"user_id": userID})
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().
				Str("user_id", userID).
				Msg("lap stream closed")
			return
		case <-heartbeat.C:
			c.SSEvent("ping", h.now().UTC())
			c.Writer.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			if e.UserID != userID {
				continue
			}
			c.SSEvent(string(e.Topic), e.Payload)
			c.Writer.Flush()
		}
	}
}
