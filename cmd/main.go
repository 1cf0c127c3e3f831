package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"crop-breed-bot/config"
	telegram "crop-breed-bot/internal/api"
	"crop-breed-bot/internal/api/web"
	"crop-breed-bot/internal/container"
	"crop-breed-bot/internal/domain/port"
	"crop-breed-bot/internal/infrastructure/gemini"
	"crop-breed-bot/internal/infrastructure/storage"
	"crop-breed-bot/internal/infrastructure/stubllm"
	"crop-breed-bot/internal/infrastructure/vision"
	"crop-breed-bot/internal/logging"
	"crop-breed-bot/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	decoder := vision.NewImageDecoder(cfg.MaxImageSide)
	decoder.MaxPixels = cfg.MaxImagePixels

	// Собираем сервисы приложения
	appContainer := container.New(
		storage.NewMemoryUserRepository(),
		storage.NewMemoryResultStore(cfg.ResultTTL),
		decoder,
		generator,
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           web.NewRouter(web.NewHandler(appContainer.BreedService, cfg.MaxUploadBytes)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}

		g.Go(func() error {
			log.Info("Bot is running...")
			return bot.Run(gctx)
		})
	} else {
		log.Info("TELEGRAM_TOKEN is not set, bot is disabled")
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Info("Stopped")
}

func newGenerator(ctx context.Context, cfg *config.Config) (port.BreedGenerator, error) {
	if cfg.GeminiStub {
		log.Warn("GEMINI_STUB is set, using the offline generator")
		return stubllm.NewClient(), nil
	}

	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	})
	if err != nil {
		return nil, err
	}

	log.WithField("model", client.Model()).Info("Using Gemini generator")
	return client, nil
}
