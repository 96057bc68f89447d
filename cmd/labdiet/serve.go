package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "labdiet/internal/adapter/http"
	"labdiet/internal/app"
	"labdiet/internal/config"
	"labdiet/internal/domain"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	st, err := openStores(cfg)
	if err != nil {
		logger.Error().Err(err).Str("store", cfg.Store).Msg("failed to open store")
		return err
	}
	defer func() { _ = st.close() }()
	logger.Info().Str("store", cfg.Store).Msg("store ready")

	dataset := app.NewDatasetService(st.population, datasetOptions(cfg), logger)
	if err := dataset.Init(context.Background()); err != nil {
		if !errors.Is(err, domain.ErrDatasetUnavailable) {
			logger.Error().Err(err).Msg("failed to load population")
			return err
		}
		// keep serving; matching answers 503 until an admin reload succeeds
		logger.Warn().Err(err).Msg("starting without a population")
	}
	recs := app.NewRecommendationService(dataset, st.analyses, logger)
	admin := app.NewAdminAuth(cfg.AdminKeyHash)
	if !admin.Enabled() {
		logger.Warn().Msg("ADMIN_KEY_HASH not set, admin routes disabled")
	}

	e := adapthttp.New(recs, dataset, admin, logger, adapthttp.Options{
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}).Echo()

	// Graceful shutdown
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting server")
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
