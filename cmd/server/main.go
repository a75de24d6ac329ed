package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calhaforte/internal/config"
	"calhaforte/internal/infra"
	"calhaforte/internal/router"
	"calhaforte/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := infra.NewRendererClient(cfg.RendererURL, infra.NewBreaker(infra.BreakerConfig{}))
	mailer := infra.NewMailer(cfg)

	r, svcs := router.New(router.Deps{
		Config:   cfg,
		DB:       db,
		RDB:      rdb,
		Renderer: renderer,
		Mailer:   mailer,
	})

	// First boot: materialize the settings row from config defaults.
	if err := svcs.Settings.Seed(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to seed settings")
	}

	// Background goroutines: notification workers and the low-stock sweep.
	svcs.Pool.Start(ctx, cfg.WorkerPoolSize)
	worker.StartStockSweep(ctx, worker.StockSweepConfig{
		Inventory:  svcs.Inventory,
		Mailer:     mailer,
		AlertEmail: cfg.AlertEmail,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("calhaforte backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
