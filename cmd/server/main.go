package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuspulse/campuspulse/internal/api"
	"github.com/campuspulse/campuspulse/internal/assistant"
	"github.com/campuspulse/campuspulse/internal/auth"
	"github.com/campuspulse/campuspulse/internal/clock"
	"github.com/campuspulse/campuspulse/internal/config"
	"github.com/campuspulse/campuspulse/internal/database"
	"github.com/campuspulse/campuspulse/internal/logging"
	"github.com/campuspulse/campuspulse/internal/metrics"
	"github.com/campuspulse/campuspulse/internal/server"
	"github.com/campuspulse/campuspulse/internal/triage"
	"log/slog"
)

const timeSourceURL = "https://www.google.com"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting campuspulse")

	// Resolve clock drift once at startup. Signed token lifetimes depend on
	// this clock, nothing ever touches the system clock itself.
	clk, err := clock.Detect(timeSourceURL, 5*time.Second)
	if err != nil {
		logger.Warn("clock drift probe failed, trusting system clock", "error", err)
	}
	if offset, ok := clk.(*clock.OffsetClock); ok {
		logger.Warn("system clock drift detected, applying correction", "offset", offset.Offset().String())
	}

	logger.Info("connecting to database")
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.Database.URL
	db, err := database.Connect(context.Background(), dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	// Run pending migrations (non-fatal to allow app to start even if migrations fail)
	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	// Create repositories
	alertRepo := database.NewAlertRepository(db)
	incidentRepo := database.NewIncidentRepository(db)
	userRepo := database.NewUserRepository(db)
	moodRepo := database.NewMoodRepository(db)
	announcementRepo := database.NewAnnouncementRepository(db)

	// Triage classifier: short answers, tight timeout. Without an API key
	// the service still boots with canned answers so the heuristic paths
	// carry all scoring.
	var triageClassifier triage.Classifier
	var chatClassifier triage.Classifier
	if cfg.AI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, using mock classifier")
		triageClassifier = triage.NewFailingClassifier("no API key configured")
		chatClassifier = triage.NewMockClassifier("The assistant is offline right now. Please try again later.")
	} else {
		triageCfg := triage.DefaultClassifierConfig()
		triageCfg.APIKey = cfg.AI.APIKey
		triageCfg.Timeout = cfg.AI.Timeout
		if cfg.AI.Model != "" {
			triageCfg.Model = cfg.AI.Model
		}
		triageClassifier = triage.NewOpenAIClassifier(triageCfg, logger)

		chatCfg := triageCfg
		chatCfg.MaxTokens = 512
		chatCfg.Temperature = 0.7
		chatCfg.Timeout = 30 * time.Second
		chatClassifier = triage.NewOpenAIClassifier(chatCfg, logger)
	}

	collector, err := metrics.NewHTTPCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	urgencyResolver := triage.NewUrgencyResolver(triageClassifier, clk, logger)
	urgencyResolver.SetObserver(collector)
	severityResolver := triage.NewSeverityResolver(triageClassifier, logger)
	ai := assistant.New(chatClassifier, logger)

	// Load auth configuration
	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	// Setup HTTP routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(r.Context(), db); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"database": database.Stats(db),
		})
	})

	// Service info endpoint
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"campuspulse","status":"ready","version":"0.1.0"}`))
	})

	mux.Handle("/metrics", collector.Handler())

	logger.Info("setting up REST API")
	api.SetupRoutes(mux, api.Dependencies{
		Alerts:           alertRepo,
		Incidents:        incidentRepo,
		Users:            userRepo,
		Moods:            moodRepo,
		Announcements:    announcementRepo,
		UrgencyResolver:  urgencyResolver,
		SeverityResolver: severityResolver,
		Assistant:        ai,
		AuthConfig:       authConfig,
		Clock:            clk,
		SOSCounter:       collector,
		Logger:           logger,
	})

	// Wrap with SPA middleware to serve frontend for non-API routes
	logger.Info("setting up static file server for web UI")
	handler := server.SPAMiddleware(collector.InstrumentHandler(mux), "./web/dist", "./web/dist/index.html")

	// Start server
	srv := server.New(cfg.Server, logger, handler)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("campuspulse started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
