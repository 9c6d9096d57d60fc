package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/projektl/projekt-l-backend/internal/clients/anthropic"
	redisclient "github.com/projektl/projekt-l-backend/internal/clients/redis"
	"github.com/projektl/projekt-l-backend/internal/db"
	"github.com/projektl/projekt-l-backend/internal/handlers"
	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/observability"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/server"
	"github.com/projektl/projekt-l-backend/internal/services"
	"github.com/projektl/projekt-l-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	port := utils.GetEnv("PORT", "8080", log)
	corsOrigins := utils.GetEnv("CORS_ORIGINS", "", log)

	// Tracing
	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, log, observability.TracingConfig{
		ServiceName: "projekt-l-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				log.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	gdb := postgresService.DB()

	// Rate limiter: Redis when reachable, in-memory otherwise
	var limiter services.RateLimiter
	redisLimiter, err := redisclient.NewRateLimiter(log)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory rate limiter", "error", err)
		limiter = services.NewMemoryRateLimiter()
	} else {
		defer redisLimiter.Close()
		limiter = redisLimiter
	}

	// Model client: optional, everything degrades to fallbacks without it
	var model services.ModelClient
	anthropicClient, err := anthropic.NewClient(log)
	if err != nil {
		log.Warn("Model client not configured, AI features use fallbacks", "error", err)
	} else {
		model = anthropicClient
	}

	// Repos
	userRepo := repos.NewUserRepo(gdb, log)
	tokenRepo := repos.NewUserTokenRepo(gdb, log)
	factionRepo := repos.NewFactionRepo(gdb, log)
	factionStatRepo := repos.NewFactionStatRepo(gdb, log)
	skillDomainRepo := repos.NewSkillDomainRepo(gdb, log)
	userSkillRepo := repos.NewUserSkillRepo(gdb, log)
	habitRepo := repos.NewHabitRepo(gdb, log)
	habitFactionRepo := repos.NewHabitFactionRepo(gdb, log)
	questRepo := repos.NewQuestRepo(gdb, log)
	questPrefsRepo := repos.NewQuestPreferencesRepo(gdb, log)
	profileRepo := repos.NewUserProfileRepo(gdb, log)
	activityRepo := repos.NewActivityLogRepo(gdb, log)
	aiLogRepo := repos.NewAICallLogRepo(gdb, log)
	responseRepo := repos.NewOnboardingResponseRepo(gdb, log)
	notifRepo := repos.NewNotificationSettingsRepo(gdb, log)

	// Services
	authService := services.NewAuthService(
		gdb, log, userRepo, tokenRepo,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(gdb, log, userRepo)
	analysisService := services.NewAnalysisService(log, model, limiter, aiLogRepo)
	onboardingService := services.NewOnboardingService(
		gdb, log,
		factionStatRepo, skillDomainRepo, userSkillRepo,
		habitRepo, habitFactionRepo, profileRepo, userRepo,
		responseRepo, notifRepo, activityRepo,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	progressService := services.NewProgressService(gdb, log, factionStatRepo, profileRepo, activityRepo)
	questService := services.NewQuestService(gdb, log, questRepo, questPrefsRepo, progressService)
	questGenService := services.NewQuestGenService(
		gdb, log, model,
		userSkillRepo, factionStatRepo, questPrefsRepo, activityRepo, questRepo, aiLogRepo,
	)
	habitService := services.NewHabitService(gdb, log, habitRepo, habitFactionRepo, activityRepo, progressService)
	profileService := services.NewProfileService(gdb, log, profileRepo, factionStatRepo, userSkillRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	onboardingHandler := handlers.NewOnboardingHandler(analysisService, onboardingService)
	questHandler := handlers.NewQuestHandler(questService, questGenService)
	habitHandler := handlers.NewHabitHandler(habitService)
	profileHandler := handlers.NewProfileHandler(profileService)
	factionHandler := handlers.NewFactionHandler(factionRepo)
	healthcheckHandler := handlers.NewHealthcheckHandler(gdb)

	// Router
	var origins []string
	if corsOrigins != "" {
		origins = strings.Split(corsOrigins, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		AuthService:       authService,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		OnboardingHandler: onboardingHandler,
		QuestHandler:      questHandler,
		HabitHandler:      habitHandler,
		ProfileHandler:    profileHandler,
		FactionHandler:    factionHandler,
		Healthcheck:       healthcheckHandler,
		CORSOrigins:       origins,
		TracingEnabled:    shutdownTracing != nil,
	})

	log.Info("Starting server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
