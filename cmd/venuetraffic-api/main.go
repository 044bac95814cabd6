// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"venuetraffic/internal/ai"
	"venuetraffic/internal/config"
	httptransport "venuetraffic/internal/http"
	"venuetraffic/internal/logger"
	"venuetraffic/internal/modules/enrich"
	"venuetraffic/internal/modules/prediction"
)

func main() {
	// Local development convenience; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing LLM key is a degraded start, not a fatal one: /health and
	// /metrics stay useful while the key is being provisioned.
	var predictionSvc *prediction.Service
	if cfg.LLM.APIKey == "" {
		zlog.Warn("no LLM API key configured, /predict will return 503",
			zap.String("provider", cfg.LLM.Provider))
	} else {
		provider, err := buildProvider(ctx, cfg.LLM)
		if err != nil {
			zlog.Fatal("llm provider init failed", zap.Error(err))
		}
		predictionSvc = prediction.NewService(
			ai.WithRetry(provider),
			cfg.LLM.Timeout,
			cfg.LLM.MaxInflight,
			zlog,
		)
	}

	var enrichSvc *enrich.Service
	if cfg.Enrich.Enabled {
		enrichSvc, err = enrich.New(cfg.Enrich, zlog)
		if err != nil {
			zlog.Fatal("enrichment init failed", zap.Error(err))
		}
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Prediction: predictionSvc,
		Enrich:     enrichSvc,
		LLMKeySet:  cfg.LLM.APIKey != "",
		Log:        zlog,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	zlog.Info("listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Bool("enrichment", cfg.Enrich.Enabled))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func buildProvider(ctx context.Context, cfg config.LLMConfig) (ai.Provider, error) {
	if cfg.Provider == "gemini" {
		return ai.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	}
	return ai.NewOpenRouterProvider(cfg.APIKey, cfg.Model)
}
