package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/property-sync/backend/internal/api"
	"github.com/property-sync/backend/internal/config"
	"github.com/property-sync/backend/internal/fetch"
	"github.com/property-sync/backend/internal/logging"
	"github.com/property-sync/backend/internal/parser"
	"github.com/property-sync/backend/internal/pipeline"
	"github.com/property-sync/backend/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath, err := resolveConfigPath()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	// Load XML configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogs := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
		Output: os.Stdout,
	})
	defer closeLogs()

	// Flatten rules
	rules := parser.DefaultRules()
	if cfg.Parsing.RulesFile != "" {
		rules, err = parser.LoadRules(cfg.Parsing.RulesFile)
		if err != nil {
			logger.Error("failed to load flatten rules", "path", cfg.Parsing.RulesFile, "error", err)
			os.Exit(1)
		}
		logger.Info("flatten rules loaded", "path", cfg.Parsing.RulesFile)
	}

	// Initialize storage
	stores, err := storage.NewManager(cfg.StorageSettings(), logger)
	if err != nil {
		logger.Error("failed to initialize storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}

	client := fetch.NewClient(fetch.Config{
		Timeout:      cfg.FetchTimeout(),
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		UserAgent:    cfg.Fetch.UserAgent,
	})
	p := pipeline.New(client, parser.NewPropertyParser(rules), stores, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		BodyLimit:      cfg.Server.BodyLimit,
	}, logger)

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Service: p,
		Settings: api.Settings{
			ReadStore:       cfg.Storage.ReadStore,
			Table:           cfg.Storage.TableName,
			StorePrefix:     cfg.Storage.StorePrefix,
			StoreLayout:     cfg.Storage.StoreTimestampLayout,
			FailOnRowErrors: cfg.Sync.FailOnRowErrors,
		},
		Logger:  logger,
		Version: Version,
	}))

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Property Sync Server                            ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Driver:     %-45s║\n", stores.Driver())
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

// resolveConfigPath returns CONFIG_PATH, or PropertySync.config next to the
// executable.
func resolveConfigPath() (string, error) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exePath), "PropertySync.config"), nil
}
