package main

import (
	"fmt"
	"io"
	"strings"

	"labdiet/internal/adapter/csvfile"
	"labdiet/internal/adapter/memory"
	"labdiet/internal/adapter/postgres"
	"labdiet/internal/adapter/sqlite"
	"labdiet/internal/app"
	"labdiet/internal/config"
	"labdiet/internal/domain"

	"github.com/rs/zerolog"
)

// newLogger builds the process logger. One-shot commands log to stderr so
// their stdout stays machine readable.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	out := w
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: w}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// stores bundles the repositories selected by STORE.
type stores struct {
	population domain.PopulationRepository
	analyses   domain.AnalysisRepository
	close      func() error
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		db := memory.New()
		return &stores{population: db, analyses: db, close: func() error { return nil }}, nil
	case config.StoreCSV:
		// the CSV table holds only the population; history stays in memory
		return &stores{
			population: csvfile.New(cfg.DatasetPath),
			analyses:   memory.New(),
			close:      func() error { return nil },
		}, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		return &stores{population: db, analyses: db, close: db.Close}, nil
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		return &stores{population: db, analyses: db, close: db.Close}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func datasetOptions(cfg *config.Config) app.DatasetOptions {
	opts := app.DefaultDatasetOptions()
	opts.Samples = cfg.DatasetSamples
	opts.Seed = cfg.DatasetSeed
	opts.GenerateIfMissing = cfg.GenerateIfMissing
	opts.KMeans.K = cfg.Clusters
	opts.KMeans.Seed = cfg.ClusterSeed
	opts.KMeans.NInit = cfg.ClusterRestarts
	return opts
}
