package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/config"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/docgen"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/enrollment"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/internal/templates"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/pkg/security"
	"matricula-digital/enrollment-portal/enrollment-docs-backend/pkg/storage"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		bootstrap, _ := zap.NewDevelopment()
		bootstrap.Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize logger
	logger := newLogger(cfg)
	defer logger.Sync()

	// PDF toolkit license
	if key := os.Getenv("UNIDOC_LICENSE_API_KEY"); key != "" {
		if err := license.SetMeteredKey(key); err != nil {
			logger.Fatal("Failed to set unipdf license key", zap.Error(err))
		}
	}

	ctx := context.Background()

	// Object storage, only when a configured feature needs it
	var s3 storage.S3Client
	if cfg.NeedsStorage() {
		s3, err = storage.NewS3Client(ctx, storage.S3Options{
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage client", zap.Error(err))
		}
	}

	// Template source
	var source templates.Source
	switch cfg.Templates.Source {
	case "s3":
		source = templates.NewS3Source(s3, cfg.Templates.Bucket, cfg.Templates.ActaKey, cfg.Templates.TratamientoKey)
	default:
		source = templates.NewFSSource(cfg.Templates.ActaPath, cfg.Templates.TratamientoPath)
	}

	// Startup preflight: a service with broken templates must not come up
	checker := templates.NewChecker(source, logger)
	if err := checker.Run(ctx); err != nil {
		logger.Fatal("Template preflight failed", zap.Error(err))
	}

	watcher := templates.NewWatcher(checker, logger)
	if err := watcher.Start(cfg.Templates.WatchInterval); err != nil {
		logger.Fatal("Failed to start template watcher", zap.Error(err))
	}
	defer watcher.Stop()

	// Initialize Enrollment Module
	var uploader enrollment.Uploader
	if cfg.Storage.UploadEnabled {
		uploader = enrollment.NewS3Uploader(s3, cfg.Storage.UploadBucket, cfg.Storage.UploadPrefix, cfg.Storage.UploadLinkTTL)
	}
	filler := docgen.NewFiller(logger, docgen.DefaultFillerOptions())
	service := enrollment.NewService(source, filler, uploader, logger)
	handler := enrollment.NewHandler(service, checker, security.DefaultSignaturePolicy())

	// Setup Router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		handler.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", cfg.Server.GetServerAddr()),
		zap.String("environment", cfg.Environment),
		zap.String("template_source", cfg.Templates.Source),
		zap.Bool("output_upload", cfg.Storage.UploadEnabled))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			zcfg.Level = zap.NewAtomicLevelAt(level)
		}
	}
	logger, err := zcfg.Build()
	if err != nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}
