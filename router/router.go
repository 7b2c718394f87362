package router

import (
	"cyberguard/api"
	"cyberguard/config"
	"cyberguard/engine/detect"
	"cyberguard/middleware"
	"cyberguard/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	// Middleware
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.OperationLogMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// The classifier client is shared: the threat handler and the dashboard
	// reuse one HTTP client against the external anomaly service.
	cfg := config.GetConfig()
	classifier := detect.NewClassifierClient(&cfg.Classifier)
	threatService := service.NewThreatService(classifier)

	// API routes
	apiGroup := r.Group("/api")
	{
		// Auth routes (no auth required)
		authHandler := api.NewAuthHandler()
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
		}

		// Protected routes
		protected := apiGroup.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth routes (auth required)
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.POST("/auth/password", authHandler.ChangePassword)

			// User routes
			userHandler := api.NewUserHandler()
			userGroup := protected.Group("/users")
			{
				userGroup.GET("", middleware.AdminMiddleware(), userHandler.ListUsers)
				userGroup.GET("/:id", userHandler.GetUser)
				userGroup.POST("", middleware.AdminMiddleware(), userHandler.CreateUser)
			}

			// Asset routes
			assetHandler := api.NewAssetHandler()
			assetGroup := protected.Group("/assets")
			{
				assetGroup.GET("", assetHandler.ListAssets)
				assetGroup.GET("/stats", assetHandler.GetAssetStats)
				assetGroup.GET("/:id", assetHandler.GetAsset)
				assetGroup.POST("", assetHandler.CreateAsset)
				assetGroup.PUT("/:id", assetHandler.UpdateAsset)
				assetGroup.DELETE("/:id", assetHandler.DeleteAsset)
				assetGroup.POST("/:id/vulnerabilities", assetHandler.AddVulnerability)
				assetGroup.PUT("/:id/vulnerabilities/:vulnId", assetHandler.UpdateVulnerabilityStatus)
			}

			// Threat routes
			threatHandler := api.NewThreatHandler(threatService)
			threatGroup := protected.Group("/threats")
			{
				threatGroup.GET("", threatHandler.ListThreats)
				threatGroup.GET("/stats", threatHandler.GetThreatStats)
				threatGroup.GET("/:id", threatHandler.GetThreat)
				threatGroup.POST("", threatHandler.CreateThreat)
				threatGroup.PUT("/:id", threatHandler.UpdateThreat)
				threatGroup.DELETE("/:id", middleware.AdminMiddleware(), threatHandler.DeleteThreat)
				threatGroup.PUT("/:id/status", threatHandler.UpdateThreatStatus)
				threatGroup.POST("/:id/timeline", threatHandler.AddTimelineEvent)
				threatGroup.POST("/:id/assets", threatHandler.AddAffectedAsset)
			}

			// Compliance and insurance readiness
			complianceHandler := api.NewComplianceHandler()
			protected.GET("/compliance", complianceHandler.GetCompliance)

			insuranceHandler := api.NewInsuranceHandler()
			protected.GET("/insurance/readiness", insuranceHandler.GetReadiness)

			// Training routes
			trainingHandler := api.NewTrainingHandler()
			trainingGroup := protected.Group("/trainings")
			{
				trainingGroup.GET("", trainingHandler.ListTrainings)
				trainingGroup.POST("", trainingHandler.RecordTraining)
			}

			// Notification routes
			notificationHandler := api.NewNotificationHandler()
			notificationGroup := protected.Group("/notifications")
			{
				notificationGroup.GET("", notificationHandler.ListNotifications)
				notificationGroup.PUT("/:id/read", notificationHandler.MarkNotificationRead)
			}

			// Dashboard routes
			dashboardHandler := api.NewDashboardHandler(threatService)
			protected.GET("/dashboard", dashboardHandler.GetOverview)
		}
	}

	return r
}
