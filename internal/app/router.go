package app

import (
	"mathdojo_backend/docs"
	"mathdojo_backend/internal/middleware"
	"mathdojo_backend/internal/model"
	"mathdojo_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	public := router.Group("/api/auth")
	{
		public.POST("/register", c.auth.RegisterParent)
		public.POST("/login", c.auth.LoginParent)
		public.POST("/kids/login", c.auth.LoginKid)
	}

	authed := router.Group("/api")
	authed.Use(middleware.AuthMiddleware(), middleware.ActivityMiddleware(repos.user))
	{
		authed.GET("/auth/me", c.auth.Me)

		quiz := authed.Group("/quiz")
		{
			quiz.POST("/prepare", c.quiz.Prepare)
			quiz.POST("/:runId/start", c.quiz.Start)
			quiz.POST("/:runId/answer", c.quiz.SubmitAnswer)
			quiz.POST("/:runId/inactivity", c.quiz.ReportInactivity)
			quiz.POST("/:runId/practice", c.quiz.SubmitPracticeAnswer)
			quiz.POST("/:runId/finalize", c.quiz.Finalize)
		}

		authed.GET("/progress", c.progress.GetProgress)
		authed.POST("/progress/reset", c.progress.ResetProgress)

		authed.GET("/report/daily", c.report.DailyReport)

		authed.GET("/users/me", c.user.GetProfile)
		authed.PUT("/users/me", c.user.UpdateProfile)
		authed.POST("/users/me/avatar", c.user.UploadAvatar)

		parents := authed.Group("")
		parents.Use(middleware.RoleMiddleware(model.Parent))
		{
			parents.POST("/auth/kids", c.auth.RegisterKid)
			parents.GET("/users/kids", c.user.ListKids)
			parents.PUT("/users/kids/:kidId/pin", c.user.ChangePin)
			parents.GET("/report/kids/:kidId/daily", c.report.KidDailyReport)
		}
	}
}
