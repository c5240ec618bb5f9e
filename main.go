package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	v1 "github.com/taskizy-api/api/v1"
	"github.com/taskizy-api/config"
	"github.com/taskizy-api/database"
	"github.com/taskizy-api/lib/cache"
	"github.com/taskizy-api/lib/storage"
	"github.com/taskizy-api/logger"
	"github.com/taskizy-api/middleware"
	"github.com/taskizy-api/routes"
	"github.com/taskizy-api/services"
)

func main() {
	// Load configuration
	envErr := config.LoadEnv()
	cfg := config.Load()

	log := logger.New(cfg.Env)
	if envErr != nil {
		log.Warn().Err(envErr).Msg(".env file not loaded, using system environment variables")
	}
	ctx := context.Background()

	db, err := database.Initialize(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	// Token blacklist, Redis when configured
	var blacklist cache.TokenBlacklist
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()
		blacklist = cache.NewRedisBlacklist(client)
		log.Info().Msg("connected to Redis")
	} else {
		blacklist = cache.NewMemoryBlacklist()
		log.Warn().Msg("REDIS_URL not set, revoked tokens are kept in memory")
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage setup failed")
	}

	policy, err := services.ParseAdminPolicy(cfg.RoomAdminPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ROOM_ADMIN_POLICY")
	}

	authService, err := services.NewAuthService(db, blacklist, cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("auth setup failed")
	}
	coordinator := services.NewMembershipCoordinator(db, log)
	svc := v1.Services{
		Auth:  authService,
		Users: services.NewUserService(db, store, log),
		Rooms: services.NewRoomService(db, coordinator, policy, cfg.PageSize, log),
		Tasks: services.NewTaskService(db, coordinator, cfg.PageSize, log),
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Logger(log), middleware.Metrics(), gin.Recovery())

	// CORS configuration
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, v1.NewHealthController(db, blacklist), svc)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("room_admin_policy", string(policy)).
			Msg("starting taskizy API")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
