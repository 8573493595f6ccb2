package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/models"
)

func (h *handlerImpl) HandleGetPreferences(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	prefs, err := h.preferences.GetPreferences(c, userID, c.Query("workspace_id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get preferences")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func (h *handlerImpl) HandleSavePreferences(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var prefs models.Preferences
	err := c.ShouldBindJSON(&prefs)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	for label, cfg := range prefs.Sort {
		if _, err = models.ParseSortType(string(cfg.Type)); err != nil {
			abort(c, newBadRequestError(fmt.Sprintf("%s: %q", err, label)))
			return
		}
		if _, err = models.ParseSortDirection(string(cfg.Direction)); err != nil {
			abort(c, newBadRequestError(fmt.Sprintf("%s: %q", err, label)))
			return
		}
	}
	prefs.WorkspaceID = c.Query("workspace_id")

	saved, err := h.preferences.SavePreferences(c, userID, prefs)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to save preferences")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, saved)
}
