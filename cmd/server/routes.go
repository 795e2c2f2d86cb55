package main

import (
	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/internal/handlers"
	"github.com/formpulse/backend/internal/middleware"
	"github.com/formpulse/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// registerRoutes wires all HTTP endpoints.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	db := models.GetDB()

	authHandler := handlers.NewAuthHandler(db, &cfg.JWT)
	formHandler := handlers.NewFormHandler(db)
	feedbackHandler := handlers.NewFeedbackHandler(svc.feedback)
	reportHandler := handlers.NewReportHandler(svc.aggregator)
	commentHandler := handlers.NewExternalCommentHandler(svc.importer, svc.taskQueue)
	llmConfigHandler := handlers.NewLLMConfigHandler(db)
	sseHandler := handlers.NewSSEHandler(svc.events)
	healthHandler := handlers.NewHealthHandler(svc.events)

	r.GET("/health", healthHandler.CheckHealth)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/login", authHandler.Login)

		// Public submission routes: respondents are not authenticated
		submit := api.Group("")
		submit.Use(middleware.RateLimit(10, 20))
		{
			submit.POST("/items", feedbackHandler.Submit)
			submit.POST("/items/batch", feedbackHandler.SubmitBatch)
		}

		// SSE stream authenticates via token query param
		api.GET("/events", sseHandler.StreamEvents)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			// Forms
			protected.GET("/forms", formHandler.List)
			protected.GET("/forms/:id", formHandler.GetByID)
			protected.POST("/forms", formHandler.Create)
			protected.PUT("/forms/:id", formHandler.Update)
			protected.DELETE("/forms/:id", formHandler.Delete)

			// Items
			protected.GET("/items", feedbackHandler.List)
			protected.GET("/items/:id", feedbackHandler.GetByID)

			// Reports
			protected.GET("/reports/:formId", reportHandler.GetByForm)

			// External source import
			protected.POST("/imports", commentHandler.TriggerImport)
			protected.POST("/imports/:formId/promote", commentHandler.PromotePending)

			// LLM Configs
			protected.GET("/llm-configs", llmConfigHandler.List)
			protected.GET("/llm-configs/:id", llmConfigHandler.GetByID)
			protected.POST("/llm-configs", llmConfigHandler.Create)
			protected.PUT("/llm-configs/:id", llmConfigHandler.Update)
			protected.DELETE("/llm-configs/:id", llmConfigHandler.Delete)
		}
	}
}
