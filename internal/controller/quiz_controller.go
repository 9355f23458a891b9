package controller

import (
	"mathdojo_backend/internal/config"
	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/service"
	"mathdojo_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
	Cfg         *config.Config
}

func NewQuizController(quizService *service.QuizService, cfg *config.Config) *QuizController {
	return &QuizController{QuizService: quizService, Cfg: cfg}
}

// PrepareRequest defines model for starting a new quiz run
// swagger:model PrepareRequest
type PrepareRequest struct {
	Operation string `json:"operation" binding:"required"`
	Level     int    `json:"level" binding:"required,min=1"`
	Belt      string `json:"belt" binding:"required"`
}

// Prepare godoc
// @Summary Create a quiz run and its warm-up practice questions
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PrepareRequest true "target slot"
// @Success 201 {object} util.Response{data=service.PrepareResult}
// @Failure 400 {object} util.Response
// @Router /api/quiz/prepare [post]
func (c *QuizController) Prepare(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PrepareRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.QuizService.Prepare(claims.UserID, model.Operation(req.Operation), req.Level, model.Belt(req.Belt))
	if err != nil {
		if err == util.ErrInvalidOperation || err == util.ErrInvalidBelt {
			util.BadRequest(ctx, err.Error())
		} else {
			util.MapServiceError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{
		"run":               res,
		"inactivitySeconds": c.Cfg.Quiz.InactivitySeconds,
	})
}

// Start godoc
// @Summary Start a prepared run and get its first question
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Success 200 {object} util.Response{data=service.StartResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/quiz/{runId}/start [post]
func (c *QuizController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.QuizService.Start(claims.UserID, ctx.Param("runId"))
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// AnswerRequest defines model for answering the live question
// swagger:model AnswerRequest
type AnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     *int   `json:"answer" binding:"required"`
	ResponseMs int64  `json:"responseMs"`
}

// SubmitAnswer godoc
// @Summary Answer the live question
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Param body body AnswerRequest true "answer"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/quiz/{runId}/answer [post]
func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.QuizService.SubmitAnswer(claims.UserID, ctx.Param("runId"), req.QuestionID, *req.Answer, req.ResponseMs)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

type InactivityRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
}

// ReportInactivity godoc
// @Summary Report that the child stalled on the live question
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Param body body InactivityRequest true "live question"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 409 {object} util.Response
// @Router /api/quiz/{runId}/inactivity [post]
func (c *QuizController) ReportInactivity(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req InactivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.QuizService.ReportInactivity(claims.UserID, ctx.Param("runId"), req.QuestionID)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

type PracticeAnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     *int   `json:"answer" binding:"required"`
}

// SubmitPracticeAnswer godoc
// @Summary Answer a warm-up or remedial practice question
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Param body body PracticeAnswerRequest true "practice answer"
// @Success 200 {object} util.Response{data=service.SubmitResult}
// @Failure 409 {object} util.Response
// @Router /api/quiz/{runId}/practice [post]
func (c *QuizController) SubmitPracticeAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PracticeAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.QuizService.SubmitPracticeAnswer(claims.UserID, ctx.Param("runId"), req.QuestionID, *req.Answer)
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// Finalize godoc
// @Summary Force-close a run (quit button, app shutdown)
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Param runId path string true "run id"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 404 {object} util.Response
// @Router /api/quiz/{runId}/finalize [post]
func (c *QuizController) Finalize(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.QuizService.Finalize(claims.UserID, ctx.Param("runId"))
	if err != nil {
		util.MapServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
