package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"orderscan/internal/config"
	"orderscan/internal/handler"
	"orderscan/internal/logger"
	"orderscan/internal/metrics"
	"orderscan/internal/parser"
	"orderscan/internal/parser/claude"
	"orderscan/internal/parser/gemini"
	"orderscan/internal/parser/openai"
	"orderscan/internal/port"
	"orderscan/internal/repository/postgres"
	"orderscan/internal/router"
	"orderscan/internal/service"
	s3storage "orderscan/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Register document model providers
	parser.RegisterProvider("gemini", func(c *config.ParserProviderConfig) (port.DocumentExtractor, error) {
		return gemini.NewExtractor(c), nil
	})
	parser.RegisterProvider("claude", func(c *config.ParserProviderConfig) (port.DocumentExtractor, error) {
		return claude.NewExtractor(c), nil
	})
	parser.RegisterProvider("openai", func(c *config.ParserProviderConfig) (port.DocumentExtractor, error) {
		return openai.NewExtractor(c), nil
	})
	extractor, err := parser.NewChain(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize document extractor: %w", err)
	}

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.Archive.Enabled {
		storage, err = s3storage.NewS3Client(context.Background(), &cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	reg := metrics.NewRegistry()

	// Initialize services
	orderStore := postgres.NewOrderStore(db)
	orderSvc := service.NewOrderService(orderStore, extractor, config.TestModeEnabled, reg, zl)
	uploadSvc := service.NewUploadService(orderSvc, storage, &cfg.Upload, &cfg.Archive, zl)

	// Initialize handlers
	orderH := handler.NewOrderHandler(uploadSvc, orderSvc, cfg.Upload.MaxFileSizeMB)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, zl, reg, orderH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.Strings("providers", providerNames(&cfg.Parser)),
			zap.Bool("archive", cfg.Archive.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-stop:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func providerNames(cfg *config.ParserConfig) []string {
	var names []string
	for _, p := range cfg.Providers() {
		names = append(names, p.Provider)
	}
	return names
}
