package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ethiomaids/platform/cmd/mainconfig"
	"github.com/ethiomaids/platform/internal/api/router"
	"github.com/ethiomaids/platform/internal/bookings"
	appconfig "github.com/ethiomaids/platform/internal/config"
	"github.com/ethiomaids/platform/internal/conversation"
	"github.com/ethiomaids/platform/internal/interviews"
	"github.com/ethiomaids/platform/internal/maids"
	"github.com/ethiomaids/platform/internal/messaging"
	"github.com/ethiomaids/platform/internal/observability/metrics"
	"github.com/ethiomaids/platform/internal/platform"
	"github.com/ethiomaids/platform/pkg/logging"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting ethiomaids API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancelPing()
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}
	cancelPing()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	llmClient := conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))

	conversationMetrics := metrics.NewConversationMetrics(nil)

	messageStore := messaging.NewStore(pool)
	settingsStore := platform.NewStore(pool, platform.Defaults{
		PlatformName:  cfg.PlatformName,
		SupportEmail:  cfg.SupportEmail,
		SupportPhone:  cfg.SupportPhone,
		AIModel:       cfg.BedrockModelID,
		AITemperature: cfg.AITemperature,
	})
	maidRepo := maids.NewRepository(pool)
	bookingRepo := bookings.NewRepository(pool)
	interviewRepo := interviews.NewRepository(pool)

	service := conversation.NewService(conversation.Deps{
		Logger:     logger,
		Metrics:    conversationMetrics,
		LLM:        llmClient,
		Messages:   messageStore,
		Settings:   settingsStore,
		Maids:      maidRepo,
		Bookings:   bookingRepo,
		Interviews: interviewRepo,
	},
		conversation.WithModel(cfg.BedrockModelID),
		conversation.WithTemperature(cfg.AITemperature),
		conversation.WithMaxTokens(cfg.LLMMaxTokens),
		conversation.WithLLMTimeout(cfg.LLMTimeout),
		conversation.WithHistoryLimit(cfg.HistoryLimit),
		conversation.WithIdentity(cfg.PlatformName, cfg.SupportPhone),
	)
	webhookHandler := conversation.NewHandler(service, logger, cfg.TwilioAuthToken)

	r := router.New(&router.Config{
		Logger:             logger,
		WebhookHandler:     webhookHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
