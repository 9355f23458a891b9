package controller

import (
	"mathdojo_backend/internal/service"
	"mathdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Progression *service.ProgressionService
}

func NewProgressController(progression *service.ProgressionService) *ProgressController {
	return &ProgressController{Progression: progression}
}

// GetProgress godoc
// @Summary Full belt progression map for the current user
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.ProgressMap}
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Progression.GetProgress(claims.UserID)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

type ResetRequest struct {
	Confirm bool `json:"confirm" binding:"required"`
}

// ResetProgress godoc
// @Summary Wipe all progress, runs and daily stats for the current user
// @Description Irreversible. Requires an explicit confirm flag.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ResetRequest true "confirmation"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/progress/reset [post]
func (c *ProgressController) ResetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "reset requires confirmation")
		return
	}

	if err := c.Progression.ResetAllProgress(claims.UserID); err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"reset": true})
}
