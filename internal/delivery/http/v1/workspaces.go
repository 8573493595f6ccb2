package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/studyboard/internal/models"
	"github.com/adanyl0v/studyboard/internal/services"
)

type createWorkspaceRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Icon string `json:"icon" binding:"max=32"`
}

func (h *handlerImpl) HandleCreateWorkspace(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req createWorkspaceRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	workspace, err := h.workspaces.CreateWorkspace(c, &models.Workspace{
		UserID: userID,
		Name:   req.Name,
		Icon:   req.Icon,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create workspace")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, workspace)
}

func (h *handlerImpl) HandleGetWorkspaces(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	workspaces, err := h.workspaces.GetWorkspaces(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get workspaces")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, workspaces)
}

type updateWorkspaceRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Icon *string `json:"icon" binding:"omitempty,max=32"`
}

func (h *handlerImpl) HandleUpdateWorkspace(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req updateWorkspaceRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	workspace, err := h.workspaces.UpdateWorkspace(c, services.UpdateWorkspaceParams{
		ID:     c.Param("id"),
		UserID: userID,
		Name:   req.Name,
		Icon:   req.Icon,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("workspace_id", c.Param("id")).
			Msg("failed to update workspace")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, workspace)
}

func (h *handlerImpl) HandleDeleteWorkspace(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	workspaceID := c.Param("id")
	err := h.workspaces.DeleteWorkspace(c, userID, workspaceID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("workspace_id", workspaceID).
			Msg("failed to delete workspace")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": workspaceID})
}
