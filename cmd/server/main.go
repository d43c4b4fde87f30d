package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"nightbite/internal/config"
	"nightbite/internal/handler"
	"nightbite/internal/logging"
	"nightbite/internal/repository"
	"nightbite/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("nightbite intent server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	for _, w := range cfg.Warnings {
		logger.Warn("configuration fallback", zap.String("detail", w))
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// The resolution log is optional
	var (
		recorder service.ResolutionRecorder
		repo     *repository.PostgresRepository
	)
	if cfg.PostgreSQL.DSN != "" {
		repo, err = repository.NewPostgresRepository(
			cfg.PostgreSQL.DSN,
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer repo.Close()

		schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = repo.EnsureSchema(schemaCtx)
		cancel()
		if err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
		recorder = repo
		logger.Info("resolution log enabled")
	} else {
		logger.Info("DATABASE_URL not set, resolution log disabled")
	}

	// Initialize Groq client
	var chatClient service.ChatClient
	if cfg.Groq.Enabled {
		chatClient = service.NewGroqClient(&cfg.Groq)
		logger.Info("groq client initialized",
			zap.String("api_base", cfg.Groq.APIBase),
			zap.String("model", cfg.Groq.Model),
			zap.Int("max_tokens", cfg.Groq.MaxTokens),
			zap.Duration("timeout", cfg.Groq.Timeout))
	} else {
		logger.Warn("GROQ_API_KEY not set, every query will be resolved heuristically")
	}

	refiner := service.NewRefiner(chatClient, cfg.Groq.Model, recorder, logger)

	// Setup Gin router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.AllowedOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "healthy",
			"service":        "nightbite-intent",
			"version":        Version,
			"build_time":     BuildTime,
			"git_commit":     GitCommit,
			"groq_enabled":   chatClient != nil,
			"resolution_log": repo != nil,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	api := router.Group("/api")
	{
		api.POST("/search-intent", handler.NewIntentHandler(refiner).Resolve)
		if repo != nil {
			api.GET("/resolutions", handler.NewResolutionHandler(repo).List)
		}
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
