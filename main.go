package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"aria-analytics-pipeline/internal/config"
	"aria-analytics-pipeline/internal/handlers"
	"aria-analytics-pipeline/internal/pkg/logger"
	"aria-analytics-pipeline/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	log.Info("starting aria analytics pipeline",
		"environment", cfg.Environment,
		"port", cfg.HTTP.Port,
		"firebolt_mode", cfg.Firebolt.Mode,
		"mail_mode", cfg.Mail.Mode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	firebolt, err := services.NewFireboltService(cfg.Firebolt, log)
	if err != nil {
		log.Error("failed to initialize firebolt service", "error", err.Error())
		os.Exit(1)
	}
	defer firebolt.Close()

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("failed to initialize gemini service", "error", err.Error())
		os.Exit(1)
	}

	mail := services.NewMailService(cfg.Mail, log)

	catalog := services.NewCatalog(cfg.Firebolt.Schema)
	analyticsAgent := services.NewAnalyticsAgent(catalog, firebolt, gemini, cfg.Gemini.SQLModel, log)
	reportAgent := services.NewReportAgent(gemini, mail, cfg.Gemini.Model, log)
	classifier := services.NewGeminiClassifier(gemini, cfg.Gemini.Model)
	orchestrator := services.NewOrchestrator(analyticsAgent, reportAgent, classifier, log)

	development := cfg.Environment == "development"
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.Router(
		handlers.NewAnalyticsHandler(analyticsAgent, development, log),
		handlers.NewOrchestratorHandler(orchestrator, development, log),
		handlers.NewReportHandler(reportAgent, cfg.Mail.Mode, development, log),
		handlers.NewHealthHandler(firebolt, gemini, cfg.Mail.Mode),
		log,
	)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}

	log.Info("server stopped")
}
