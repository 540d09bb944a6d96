package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vaudterroir/api/internal/cache"
	"github.com/vaudterroir/api/internal/config"
	"github.com/vaudterroir/api/internal/database"
	"github.com/vaudterroir/api/internal/handler"
	"github.com/vaudterroir/api/internal/middleware"
	"github.com/vaudterroir/api/internal/repository"
	"github.com/vaudterroir/api/internal/service"
	"github.com/vaudterroir/api/internal/storage"
	"github.com/vaudterroir/api/internal/utils"
	"github.com/vaudterroir/api/pkg/nominatim"
)

// main is the application entrypoint for the VaudTerroir API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting vaudterroir api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize the public map cache
	producerCache := cache.NewProducerCache(redisClient, cfg.Moderation.CacheTTL)

	// 4. Initialize JWT signing
	utils.InitJWT(cfg.JWTSecret)

	// 5. Initialize repositories
	producerRepo := repository.NewProducerRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 5a. Initialize external clients
	uploader, err := storage.NewUploader(&cfg.S3)
	if err != nil {
		log.Error().Err(err).Msg("S3 uploader initialization failed")
		fmt.Fprintf(os.Stderr, "S3 uploader initialization failed: %v\n", err)
		os.Exit(1)
	}

	screener, err := storage.NewScreener(&cfg.AWS)
	if err != nil {
		log.Error().Err(err).Msg("image screener initialization failed")
		fmt.Fprintf(os.Stderr, "image screener initialization failed: %v\n", err)
		os.Exit(1)
	}

	geocoder := nominatim.NewClient(cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent)

	// 6. Initialize services
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	catalogSvc := service.NewCatalogService(producerRepo, producerCache)
	submissionSvc := service.NewSubmissionService(producerRepo)
	moderationSvc := service.NewModerationService(producerRepo, producerCache, cfg.Moderation.CopyCoordinates)
	imageSvc := service.NewImageService(uploader, screener)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:     handler.NewHealthHandler(db),
		Producer:   handler.NewProducerHandler(catalogSvc, submissionSvc),
		Image:      handler.NewImageHandler(imageSvc),
		Geocode:    handler.NewGeocodeHandler(geocoder),
		Auth:       handler.NewAuthHandler(adminAuthSvc),
		Moderation: handler.NewModerationHandler(moderationSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()
	submitLimiter := middleware.NewSubmissionRateLimiter(10, time.Minute)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, submitLimiter)

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 12. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health     *handler.HealthHandler
	Producer   *handler.ProducerHandler
	Image      *handler.ImageHandler
	Geocode    *handler.GeocodeHandler
	Auth       *handler.AuthHandler
	Moderation *handler.ModerationHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, submitLimiter *middleware.SubmissionRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public catalog and submission routes
	router.GET("/v1/producers", handlers.Producer.ListProducers)
	router.GET("/v1/producers/:id", handlers.Producer.GetProducer)
	router.POST("/v1/producers", submitLimiter.Handle(), handlers.Producer.SubmitProducer)
	router.POST("/v1/producers/:id/edits", submitLimiter.Handle(), handlers.Producer.SubmitEdit)
	router.POST("/v1/images", submitLimiter.Handle(), handlers.Image.Upload)

	// Geocoding proxy for the submission form
	router.GET("/v1/geocode/reverse", handlers.Geocode.Reverse)
	router.GET("/v1/geocode/search", handlers.Geocode.Search)

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.GET("/pending", handlers.Moderation.ListPending)
		admin.POST("/pending/:id/approve", handlers.Moderation.Approve)
		admin.POST("/pending/:id/reject", handlers.Moderation.Reject)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
