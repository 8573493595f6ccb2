package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/services"
	"github.com/adanyl0v/studyboard/internal/stats"
)

func (h *handlerImpl) HandleGetStats(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	kind, err := stats.ParseKind(c.DefaultQuery("window", string(stats.KindWeek)))
	if err != nil {
		abort(c, newBadRequestError(err.Error()))
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		abort(c, newBadRequestError(errInvalidQuery.Error()+": offset"))
		return
	}

	summary, err := h.stats.Summarize(c, services.StatsParams{
		UserID:      userID,
		WorkspaceID: optionalQuery(c, "workspace_id"),
		Window:      stats.Window{Kind: kind, Offset: offset},
		Now:         h.now(),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to summarize laps")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlerImpl) HandleGetTaskStats(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	summary, err := h.stats.SummarizeTasks(c, userID, optionalQuery(c, "workspace_id"), h.now())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to summarize tasks")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	if h.pinger != nil {
		err := h.pinger.Ping(c)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
