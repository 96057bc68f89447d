// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"labdiet/internal/domain"
	"labdiet/internal/generator"
	"labdiet/internal/matcher"

	"github.com/rs/zerolog"
)

// ErrInvalidSampleCount indicates a regeneration request for no entries.
var ErrInvalidSampleCount = errors.New("sample count must be > 0")

// DatasetOptions configures how reference tables are built and clustered.
type DatasetOptions struct {
	Samples           int
	Seed              uint64
	KMeans            matcher.KMeansOptions
	GenerateIfMissing bool
}

// DefaultDatasetOptions returns the stock generator and clustering settings.
func DefaultDatasetOptions() DatasetOptions {
	return DatasetOptions{
		Samples:           generator.DefaultSamples,
		Seed:              generator.DefaultSeed,
		KMeans:            matcher.DefaultKMeansOptions(),
		GenerateIfMissing: true,
	}
}

// Snapshot is one loaded population with its fitted model. Snapshots are
// never modified after they are published.
type Snapshot struct {
	Model    *matcher.Model
	Origin   string
	LoadedAt time.Time
}

// Population returns the reference table of the snapshot.
func (s *Snapshot) Population() *domain.Population { return s.Model.Population() }

// DatasetStats summarises the active snapshot.
type DatasetStats struct {
	Size         int       `json:"size"`
	Clusters     int       `json:"clusters"`
	ClusterSizes []int     `json:"clusterSizes"`
	Origin       string    `json:"origin"`
	LoadedAt     time.Time `json:"loadedAt"`
}

// DatasetService owns the active population. Readers take the current
// snapshot without locking; Reload and Regenerate build a complete new
// snapshot and swap it in.
type DatasetService struct {
	repo    domain.PopulationRepository
	opts    DatasetOptions
	log     zerolog.Logger
	current atomic.Pointer[Snapshot]
	// serialises writers so that concurrent reloads don't interleave
	mu sync.Mutex
}

// NewDatasetService creates a DatasetService backed by the given repository.
// No population is active until Init, Reload or Regenerate succeeds.
func NewDatasetService(repo domain.PopulationRepository, opts DatasetOptions, log zerolog.Logger) *DatasetService {
	return &DatasetService{repo: repo, opts: opts, log: log.With().Str("component", "dataset").Logger()}
}

// Init loads the stored population. When none is stored and
// GenerateIfMissing is set, a population is generated and persisted first.
func (s *DatasetService) Init(ctx context.Context) error {
	err := s.Reload(ctx)
	if err == nil || !errors.Is(err, domain.ErrDatasetUnavailable) || !s.opts.GenerateIfMissing {
		return err
	}
	s.log.Warn().Err(err).Int("samples", s.opts.Samples).Msg("no stored population, generating one")
	_, err = s.Regenerate(ctx, s.opts.Samples)
	return err
}

// Reload reads the population from the repository and makes it active.
func (s *DatasetService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pop, err := s.repo.LoadPopulation(ctx)
	if err != nil {
		return fmt.Errorf("load population: %w", err)
	}
	_, err = s.publish(pop, "store")
	return err
}

// Regenerate builds a fresh population of the given size from the
// configured seed, persists it and makes it active.
func (s *DatasetService) Regenerate(ctx context.Context, samples int) (DatasetStats, error) {
	if samples <= 0 {
		return DatasetStats{}, ErrInvalidSampleCount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pop := generator.GenerateWithSeed(samples, s.opts.Seed)
	model, err := matcher.Fit(pop, s.opts.KMeans)
	if err != nil {
		return DatasetStats{}, err
	}
	if err := s.repo.SavePopulation(ctx, pop); err != nil {
		return DatasetStats{}, fmt.Errorf("save population: %w", err)
	}
	snap := s.swap(model, "generator")
	return snap.stats(), nil
}

// DefaultSamples returns the configured population size.
func (s *DatasetService) DefaultSamples() int { return s.opts.Samples }

// Current returns the active snapshot or ErrDatasetUnavailable.
func (s *DatasetService) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, domain.ErrDatasetUnavailable
	}
	return snap, nil
}

// Stats describes the active snapshot.
func (s *DatasetService) Stats() (DatasetStats, error) {
	snap, err := s.Current()
	if err != nil {
		return DatasetStats{}, err
	}
	return snap.stats(), nil
}

func (s *DatasetService) publish(pop *domain.Population, origin string) (*Snapshot, error) {
	model, err := matcher.Fit(pop, s.opts.KMeans)
	if err != nil {
		return nil, err
	}
	return s.swap(model, origin), nil
}

func (s *DatasetService) swap(model *matcher.Model, origin string) *Snapshot {
	snap := &Snapshot{Model: model, Origin: origin, LoadedAt: time.Now().UTC()}
	s.current.Store(snap)
	s.log.Info().
		Str("origin", origin).
		Int("size", model.Population().Len()).
		Ints("cluster_sizes", model.ClusterSizes()).
		Msg("population activated")
	return snap
}

func (s *Snapshot) stats() DatasetStats {
	sizes := s.Model.ClusterSizes()
	return DatasetStats{
		Size:         s.Population().Len(),
		Clusters:     len(sizes),
		ClusterSizes: sizes,
		Origin:       s.Origin,
		LoadedAt:     s.LoadedAt,
	}
}
