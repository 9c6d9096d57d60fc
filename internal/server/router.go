package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/projektl/projekt-l-backend/internal/handlers"
	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/middleware"
	"github.com/projektl/projekt-l-backend/internal/services"
)

type RouterConfig struct {
	Log               *logger.Logger
	AuthService       services.AuthService
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	OnboardingHandler *handlers.OnboardingHandler
	QuestHandler      *handlers.QuestHandler
	HabitHandler      *handlers.HabitHandler
	ProfileHandler    *handlers.ProfileHandler
	FactionHandler    *handlers.FactionHandler
	Healthcheck       *handlers.HealthcheckHandler
	CORSOrigins       []string
	TracingEnabled    bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("projekt-l-backend"))
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.Healthcheck.Healthcheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
		api.GET("/factions", cfg.FactionHandler.List)
	}

	// Protected
	protected := router.Group("/api")
	protected.Use(middleware.RequireAuth(cfg.AuthService, cfg.Log))
	{
		protected.POST("/logout", cfg.AuthHandler.Logout)
		protected.GET("/user", cfg.UserHandler.GetMe)

		protected.POST("/onboarding/analyze", cfg.OnboardingHandler.Analyze)
		protected.POST("/onboarding/complete", cfg.OnboardingHandler.Complete)

		protected.GET("/quests", cfg.QuestHandler.List)
		protected.POST("/quests", cfg.QuestHandler.Create)
		protected.POST("/quests/generate", cfg.QuestHandler.Generate)
		protected.POST("/quests/:id/complete", cfg.QuestHandler.Complete)
		protected.DELETE("/quests/:id", cfg.QuestHandler.Delete)
		protected.GET("/quests/preferences", cfg.QuestHandler.GetPreferences)
		protected.PUT("/quests/preferences", cfg.QuestHandler.PutPreferences)

		protected.GET("/habits", cfg.HabitHandler.List)
		protected.POST("/habits", cfg.HabitHandler.Create)
		protected.POST("/habits/:id/complete", cfg.HabitHandler.Complete)
		protected.DELETE("/habits/:id", cfg.HabitHandler.Delete)

		protected.GET("/profile", cfg.ProfileHandler.GetProfile)
	}

	return router
}
