package controller

import (
	"mathdojo_backend/internal/service"
	"mathdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Activity *service.ActivityService
	Users    *service.UserService
}

func NewReportController(activity *service.ActivityService, users *service.UserService) *ReportController {
	return &ReportController{Activity: activity, Users: users}
}

// DailyReport godoc
// @Summary Today's correct-answer and active-time totals
// @Description "Today" is resolved in the Pacific timezone.
// @Tags report
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.DailyStats}
// @Router /api/report/daily [get]
func (c *ReportController) DailyReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.Activity.TodayStats(claims.UserID)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// KidDailyReport godoc
// @Summary Today's totals for one of the parent's kids
// @Tags report
// @Produce json
// @Security BearerAuth
// @Param kidId path int true "kid id"
// @Success 200 {object} util.Response{data=service.DailyStats}
// @Failure 403 {object} util.Response
// @Router /api/report/kids/{kidId}/daily [get]
func (c *ReportController) KidDailyReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	kidID, ok := parseUintParam(ctx, "kidId")
	if !ok {
		return
	}

	kid, err := c.Users.GetUserByID(kidID)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	if kid.ParentID == nil || *kid.ParentID != claims.UserID {
		util.Forbidden(ctx)
		return
	}

	stats, err := c.Activity.TodayStats(kid.ID)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
