package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"VoteBot/config"
	"VoteBot/handler"
	"VoteBot/metrics"
	"VoteBot/repo"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}
	setupLogging(cfg)

	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("Survey service secrets not set, remote calls will fail")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector()
	connector := repo.NewSurveyConnector(cfg.BaseURL, cfg.APIKey, cfg.AdminPassword,
		repo.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		repo.WithCallObserver(collector),
	)
	dispatcher := handler.NewDispatcher(
		repo.NewMemorySessionStore(),
		connector,
		repo.NewValidator(connector, cfg.ValidatorCooldown),
		handler.WithMessageCounter(collector),
	)

	if cfg.TelegramToken != "" {
		opts := []bot.Option{
			bot.WithDefaultHandler(handler.NewTelegramBotHandler(dispatcher).Handler),
		}
		b, err := bot.New(cfg.TelegramToken, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating bot")
		}
		go b.Start(ctx)
		log.Info().Msg("Telegram bot started")
	}

	server := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Port),
		Handler: handler.NewRouter(dispatcher, handler.RouterConfig{
			DefaultRoom: cfg.DefaultRoom,
			StaticDir:   cfg.StaticDir,
			Metrics:     collector.Handler(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down HTTP server")
		}
	}()

	log.Info().Int("port", cfg.Port).Str("base_url", cfg.BaseURL).Msg("VoteBot listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("HTTP server failed")
	}
	log.Info().Msg("Bot stopped")
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.DefaultContextLogger = &log.Logger
}
