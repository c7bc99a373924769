// DocExtract is a document chapter-extraction service. It fetches PDF
// documents, recovers their text layer, segments it into chapters, and
// serves the results over HTTP with SQLite persistence.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docextract_backend/core"
	"docextract_backend/core/validation"
	"docextract_backend/db"
	"docextract_backend/handlers"
	"docextract_backend/logging"
	"docextract_backend/pdfprocessor"
	"docextract_backend/shutdown"
	"docextract_backend/storage"
)

func main() {
	// Service management commands (install/uninstall/...) exit here.
	if HandleServiceCommand(os.Args) {
		return
	}

	// Running as a Windows service hands control to the service manager.
	if isService, err := RunAsService(); err != nil {
		fmt.Fprintf(os.Stderr, "Service error: %v\n", err)
		os.Exit(core.ExitCodeError)
	} else if isService {
		return
	}

	os.Exit(runApplication(context.Background()))
}

// runApplication wires up and runs the service until the parent context
// is cancelled or a shutdown signal arrives. It is shared by foreground
// mode and the Windows service wrapper.
func runApplication(parent context.Context) int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since the logger isn't initialized yet
		fmt.Printf("Note: .env file not found: %v\n", err)
	}

	config, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return core.ExitCodeError
	}

	suite := validation.NewValidationSuite(config)
	if result := suite.Validate(); !result.Success {
		return core.ExitCodeError
	}

	logger := logging.NewLogger(config.DevMode, config.LogFilePath)

	logger.Info("Configuration loaded",
		zap.Int("port", config.Port),
		zap.String("database_path", config.DatabasePath),
		zap.Duration("fetch_timeout", config.FetchTimeout),
		zap.Duration("load_timeout", config.LoadTimeout),
		zap.Int("max_parallel_pages", config.MaxParallelPages),
		zap.Int("retention_days", config.RetentionDays),
		zap.Bool("dev_mode", config.DevMode))

	manager := shutdown.NewManager(logger.Named("shutdown"), shutdown.WithTimeout(30*time.Second))
	manager.Start()
	manager.Register("logger", 30, func(ctx context.Context) error {
		_ = logger.Sync()
		return nil
	})

	// Shut down when the parent context ends (Windows service Stop).
	go func() {
		<-parent.Done()
		manager.Trigger()
	}()

	database, err := db.NewDatabaseWithConfig(db.DatabaseConfig{
		Path:           config.DatabasePath,
		MigrationsPath: config.MigrationsPath,
	})
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return core.ExitCodeError
	}
	manager.Register("database", 20, func(ctx context.Context) error {
		return database.Close()
	})

	if err := database.Migrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		manager.Shutdown()
		return core.ExitCodeError
	}

	repo := db.NewRepository(database, nil)
	writer := db.NewAsyncWriter(repo.RunWriteHandler(), 256)
	writer.Start()
	repo = db.NewRepository(database, writer)
	manager.Register("async-writer", 10, func(ctx context.Context) error {
		if !writer.StopWithTimeout(10 * time.Second) {
			return errors.New("async writer did not drain")
		}
		return nil
	})

	repo.StartCleanupLoop(manager.Context(), db.CleanupConfig{
		RetentionDays: config.RetentionDays,
		Interval:      time.Hour,
	}, func(err error) {
		logger.Warn("Extraction history cleanup failed", zap.Error(err))
	})

	processor := pdfprocessor.NewProcessor(pdfprocessor.ProcessorConfig{
		ExtractorConfig: pdfprocessor.ExtractorConfig{
			LoadTimeout:      config.LoadTimeout,
			LineTolerance:    config.LineTolerance,
			MaxParallelPages: config.MaxParallelPages,
		},
	}, repo, logger.Named("pdfprocessor"))

	fetcher := storage.NewHTTPFetcher(storage.FetcherConfig{
		PrimaryTimeout:  config.FetchTimeout,
		FallbackTimeout: config.FetchFallbackTimeout,
		MaxBytes:        config.MaxFetchBytes,
	})

	service := handlers.NewService(fetcher, processor, repo, database, logger.Named("http"))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: handlers.NewRouter(service),
	}
	manager.Register("http", 0, func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	exitCode := core.ExitCodeSuccess
	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			exitCode = core.ExitCodeError
		}
	case <-manager.Context().Done():
		logger.Info("Shutdown initiated, draining connections")
	}

	if err := manager.Shutdown(); err != nil {
		logger.Error("Shutdown completed with errors", zap.Error(err))
		if exitCode == core.ExitCodeSuccess {
			exitCode = core.ExitCodeError
		}
	}
	return exitCode
}
