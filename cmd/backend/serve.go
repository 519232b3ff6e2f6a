package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/qa-agent/agent"
	"github.com/hairizuan-noorazman/qa-agent/browser"
	"github.com/hairizuan-noorazman/qa-agent/cmd/backend/handlers"
	"github.com/hairizuan-noorazman/qa-agent/database"
	"github.com/hairizuan-noorazman/qa-agent/execution"
	"github.com/hairizuan-noorazman/qa-agent/identity"
	"github.com/hairizuan-noorazman/qa-agent/integration"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/login"
	"github.com/hairizuan-noorazman/qa-agent/scriptgen"
	"github.com/hairizuan-noorazman/qa-agent/selector"
	"github.com/hairizuan-noorazman/qa-agent/session"
	"github.com/hairizuan-noorazman/qa-agent/storage"
	"github.com/hairizuan-noorazman/qa-agent/suite"
	"github.com/hairizuan-noorazman/qa-agent/testrun"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger; log.file tees the stream to a file next to stdout.
	var log logger.Logger
	if cfg.Log.File != "" {
		logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()
		log = logger.NewLogrusLoggerTo(cfg.Log.Level, io.MultiWriter(os.Stdout, logFile))
	} else {
		log = logger.NewLogrusLogger(cfg.Log.Level)
	}
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	// The test account. The secret lives inside the identity from here on;
	// everything downstream goes through WithSecret.
	loginURL := cfg.App.LoginURL
	if loginURL == "" {
		loginURL = cfg.App.URL
	}
	id, err := identity.New(cfg.App.Username, cfg.App.Password, loginURL)
	if err != nil {
		return fmt.Errorf("invalid app credentials (set app.url, app.username, app.password): %w", err)
	}
	cfg.App.Password = ""

	// Connect to database
	db, err := database.Connect(database.Config{
		Driver:       cfg.Database.Driver,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	log.Info(ctx, "database connected", map[string]interface{}{
		"driver":   cfg.Database.Driver,
		"database": cfg.Database.Database,
	})

	// Initialize stores
	suiteStore := suite.NewMySQLStore(db, log)
	runStore := testrun.NewMySQLStore(db, log)
	integrationStore := integration.NewMySQLStore(db, log)

	// Blob storage for script artifacts
	blobs, err := storage.NewBlobStorage(storage.Config{
		Type:    cfg.Storage.Type,
		BaseDir: cfg.Storage.BaseDir,
		Bucket:  cfg.Storage.S3Bucket,
		Region:  cfg.Storage.S3Region,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize blob storage: %w", err)
	}

	// Browser and login plumbing
	driver, err := browser.NewDriver(browser.Config{
		Headless:        cfg.Browser.Headless,
		SlowMoMS:        cfg.Browser.SlowMoMS,
		NavTimeout:      cfg.Browser.NavTimeout,
		SettleDelay:     cfg.Browser.SettleDelay,
		InstallBrowsers: cfg.Browser.InstallBrowsers,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to start browser driver: %w", err)
	}
	defer driver.Close()

	sessions := session.NewStore(cfg.Session.Dir, cfg.Session.TTL, log)
	resolver := selector.NewResolver(log)
	injector := login.NewInjector(resolver, sessions, log)

	// Agent pipeline
	agentCfg := agent.Config{
		MaxIterations:    cfg.Agent.MaxIterations,
		TimeLimit:        cfg.Agent.TimeLimit,
		BedrockRegion:    cfg.Agent.BedrockRegion,
		BedrockModel:     cfg.Agent.BedrockModel,
		BedrockAccessKey: cfg.Agent.BedrockAccessKey,
		BedrockSecretKey: cfg.Agent.BedrockSecretKey,
	}
	runner, err := agent.NewBedrockRunner(ctx, agentCfg, resolver, log)
	if err != nil {
		return fmt.Errorf("failed to initialize bedrock runner: %w", err)
	}
	explorer := agent.NewExplorer(driver, sessions, injector, runner, log)

	generator := scriptgen.NewPlaywrightGenerator()
	generator.Headless = cfg.Browser.Headless
	materializer := scriptgen.NewMaterializer(generator, blobs, log)

	crashes := logger.NewCrashReporter(cfg.Crash.Dir, log)
	pipeline := agent.NewPipeline(agentCfg, suiteStore, explorer, materializer, id, crashes, log)

	// Execution coordinator; the failure reporter only runs when an
	// integration passphrase is configured.
	var reporter *execution.Reporter
	if cfg.Integration.Passphrase != "" {
		reporter = execution.NewReporter(integrationStore, cfg.Integration.Passphrase, log)
	}
	coordinator := execution.NewCoordinator(execution.Config{
		ScriptTimeout: cfg.Execution.ScriptTimeout,
		AgentTimeout:  cfg.Execution.AgentTimeout,
		Workers:       cfg.Execution.Workers,
		PythonPath:    cfg.Execution.PythonPath,
	}, suiteStore, runStore, blobs, explorer, id, reporter, log)

	// Setup router
	router := mux.NewRouter()
	router.Use(handlers.LoggingMiddleware(log))

	router.HandleFunc("/healthz", handlers.HealthHandler).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	suiteHandler := handlers.NewSuiteHandler(suiteStore, pipeline, log)
	api.HandleFunc("/suites", suiteHandler.Create).Methods("POST")
	api.HandleFunc("/suites", suiteHandler.List).Methods("GET")
	api.HandleFunc("/suites/{name}", suiteHandler.Get).Methods("GET")
	api.HandleFunc("/suites/{name}", suiteHandler.Delete).Methods("DELETE")
	api.HandleFunc("/suites/{name}/generate", suiteHandler.Generate).Methods("POST")

	executionHandler := handlers.NewExecutionHandler(coordinator, runStore, log)
	api.HandleFunc("/suites/{name}/execute", executionHandler.ExecuteSuite).Methods("POST")
	api.HandleFunc("/suites/{name}/cases/{caseID}/execute", executionHandler.ExecuteCase).Methods("POST")
	api.HandleFunc("/suites/{name}/runs", executionHandler.ListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", executionHandler.GetRun).Methods("GET")

	integrationHandler := handlers.NewIntegrationHandler(
		integrationStore,
		integration.DeriveKey(cfg.Integration.Passphrase),
		cfg.Integration.Passphrase != "",
		log,
	)
	api.HandleFunc("/integrations", integrationHandler.Create).Methods("POST")
	api.HandleFunc("/integrations", integrationHandler.List).Methods("GET")
	api.HandleFunc("/integrations/{id}", integrationHandler.Get).Methods("GET")
	api.HandleFunc("/integrations/{id}", integrationHandler.Update).Methods("PUT")
	api.HandleFunc("/integrations/{id}", integrationHandler.Delete).Methods("DELETE")

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
