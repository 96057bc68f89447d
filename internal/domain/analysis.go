package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAnalysisNotFound indicates that the requested analysis does not exist.
var ErrAnalysisNotFound = errors.New("analysis not found")

// Analysis records one recommendation request and its outcome.
type Analysis struct {
	ID         uuid.UUID     `json:"id"`
	Source     string        `json:"source"`
	Profile    HealthProfile `json:"profile"`
	Defaulted  []string      `json:"defaulted"`
	Plan       DietPlan      `json:"plan"`
	MatchIndex int           `json:"matchIndex"`
	Cluster    int           `json:"cluster"`
	Distance   float64       `json:"distance"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// PopulationRepository is the port for reference-table persistence.
// LoadPopulation returns an error wrapping ErrDatasetUnavailable when no
// table has been stored yet.
type PopulationRepository interface {
	SavePopulation(ctx context.Context, pop *Population) error
	LoadPopulation(ctx context.Context) (*Population, error)
}

// AnalysisRepository is the port for analysis history.
type AnalysisRepository interface {
	AddAnalysis(ctx context.Context, a Analysis) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error)
	ListRecentAnalyses(ctx context.Context, limit int) ([]Analysis, error)
}
