package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"review-collector/internal/config"
	"review-collector/internal/conversation"
	"review-collector/internal/scheduler"
	"review-collector/internal/storage"
	"review-collector/internal/webhook"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg(".env file not found")
	}

	cfg := config.New()

	reviews, err := storage.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open review storage")
	}
	defer func() { _ = reviews.Close() }()

	store := conversation.NewStore(cfg.StateTTL(), nil)
	machine := conversation.NewMachine(store, reviews, cfg.DuplicateWindow(), nil)

	sweeper := scheduler.New(cfg.SweepInterval(), store.Sweep)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start sweep scheduler")
	}
	defer sweeper.Stop()

	srv := webhook.NewServer(machine, store, reviews, webhook.Options{
		Addr:             cfg.ListenAddr,
		ContactPrefix:    cfg.ContactPrefix,
		ListDefaultLimit: cfg.ListDefaultLimit,
		ListMaxLimit:     cfg.ListMaxLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("webhook server failed")
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if err := srv.Stop(); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
