// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leorestored/leo-restored/internal/config"
	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
	aiAdapters "github.com/leorestored/leo-restored/internal/infra/adapters/ai"
	"github.com/leorestored/leo-restored/internal/infra/adapters/social"
	"github.com/leorestored/leo-restored/internal/infra/logging"
	"github.com/leorestored/leo-restored/internal/infra/metrics"
	"github.com/leorestored/leo-restored/internal/infra/persist"
	red "github.com/leorestored/leo-restored/internal/infra/redis"
	"github.com/leorestored/leo-restored/internal/infra/sched"
	"github.com/leorestored/leo-restored/internal/infra/web"
	"github.com/leorestored/leo-restored/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop adapters allowed)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}
	metrics.MustRegister()

	// ---- Persistence (postgres when configured, file fallback) ----
	repo, closeRepo := persist.New(ctx, cfg, logger)
	defer closeRepo()

	// ---- Conversation store ----
	store := usecase.NewConversationStore(cfg.Storage.Capacity)
	if snap, err := repo.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not load saved conversations; starting empty")
	} else {
		store.Restore(snap)
		logger.Info().Int("sessions", store.Len()).Msg("conversations restored")
	}
	saver := usecase.NewSnapshotSaver(store, repo, cfg.Storage.Debounce, logger)

	// ---- AI adapter (Anthropic -> OpenAI -> Gemini) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.AnthropicKey != "":
		ai, err = aiAdapters.NewAnthropicAdapter(cfg.AI.AnthropicKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("anthropic adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI adapter: Anthropic")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.OpenAIBaseURL)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI adapter: OpenAI")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Msg("AI adapter: Gemini")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode)")
	default:
		log.Fatalf("no AI provider configured: set ai.anthropic_key, ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}

	// ---- Social poster (X -> Telegram channel -> noop) ----
	var poster adapter.SocialPoster
	switch {
	case cfg.Posting.X.AccessToken != "":
		poster, err = social.NewXPoster(cfg.Posting.X.AccessToken)
		if err != nil {
			log.Fatalf("x poster: %v", err)
		}
		logger.Info().Msg("social poster: X")
	case cfg.Posting.Telegram.Token != "":
		poster, err = social.NewTelegramPoster(cfg.Posting.Telegram.Token, cfg.Posting.Telegram.ChannelID)
		if err != nil {
			log.Fatalf("telegram poster: %v", err)
		}
		logger.Info().Int64("channel_id", cfg.Posting.Telegram.ChannelID).Msg("social poster: Telegram channel")
	default:
		poster = social.NewNoopPoster(logger)
		logger.Warn().Msg("social poster: noop (no credentials configured)")
	}

	// ---- Redis post budget (optional) ----
	var budget *red.PostBudget
	if cfg.Redis.URL != "" {
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; posting budget disabled")
		} else {
			defer client.Close()
			budget = red.NewPostBudget(client, cfg.Posting.DailyLimit, 24*time.Hour)
		}
	}

	// ---- Use case + HTTP ----
	chatUC := usecase.NewChatUseCase(store, saver, ai, cfg.AI.MaxReplyTokens, logger)
	auth := web.NewAuthManager(cfg.Admin.Secret, cfg.Admin.SigningKey, cfg.Admin.TTL)
	srv := web.NewServer(chatUC, auth, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Posting worker ----
	worker := sched.NewPostingWorker(cfg.Posting.Interval, store, ai, poster, budget, cfg.Posting.MaxPostTokens, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := saver.SaveNow(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("final save failed")
	}
	_ = saver.Close(shutdownCtx)
	_ = server.Shutdown(shutdownCtx)
}
