// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"labdiet/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu         sync.Mutex
	population *domain.Population
	analyses   []domain.Analysis
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.PopulationRepository = (*DB)(nil)
var _ domain.AnalysisRepository = (*DB)(nil)

// --- PopulationRepository ---

// SavePopulation replaces the stored reference table.
func (db *DB) SavePopulation(ctx context.Context, pop *domain.Population) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	// populations are immutable, so the pointer can be shared
	db.population = pop
	return nil
}

// LoadPopulation returns the stored reference table.
func (db *DB) LoadPopulation(ctx context.Context) (*domain.Population, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.population.Len() == 0 {
		return nil, fmt.Errorf("memory: %w", domain.ErrDatasetUnavailable)
	}
	return db.population, nil
}

// --- AnalysisRepository ---

// AddAnalysis stores an analysis.
func (db *DB) AddAnalysis(ctx context.Context, a domain.Analysis) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	a = cloneAnalysis(a)
	a.CreatedAt = a.CreatedAt.UTC()
	db.analyses = append(db.analyses, a)
	return nil
}

// GetAnalysis retrieves an analysis by ID.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.analyses {
		if a.ID == id {
			ret := cloneAnalysis(a)
			return &ret, nil
		}
	}
	return nil, domain.ErrAnalysisNotFound
}

// ListRecentAnalyses lists the most recent analyses.
func (db *DB) ListRecentAnalyses(ctx context.Context, limit int) ([]domain.Analysis, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	// copy, newest insert first so ties keep that order
	result := make([]domain.Analysis, 0, len(db.analyses))
	for i := len(db.analyses) - 1; i >= 0; i-- {
		result = append(result, db.analyses[i])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	for i := range result {
		result[i] = cloneAnalysis(result[i])
	}
	return result, nil
}

// cloneAnalysis copies the slices an Analysis shares with its caller.
func cloneAnalysis(a domain.Analysis) domain.Analysis {
	a.Plan = a.Plan.Clone()
	if a.Defaulted != nil {
		a.Defaulted = append([]string(nil), a.Defaulted...)
	}
	return a
}
