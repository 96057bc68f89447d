package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labdiet/internal/domain"
	"labdiet/internal/extract"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidReport indicates an uploaded report that cannot be analysed.
var ErrInvalidReport = errors.New("invalid report")

// Analysis sources.
const (
	SourceAPI    = "api"
	SourceUpload = "upload"
	SourceCLI    = "cli"
)

// DefaultListLimit and MaxListLimit bound ListRecent.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// SnapshotSource supplies the active population snapshot.
type SnapshotSource interface {
	Current() (*Snapshot, error)
}

// ReportAnalysis is the outcome of analysing uploaded lab reports.
type ReportAnalysis struct {
	Extracted map[string]string
	Analysis  *domain.Analysis
}

// RecommendationService matches lab values against the active population
// and keeps a history of the results.
type RecommendationService struct {
	dataset  SnapshotSource
	analyses domain.AnalysisRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewRecommendationService creates a RecommendationService.
func NewRecommendationService(dataset SnapshotSource, analyses domain.AnalysisRepository, log zerolog.Logger) *RecommendationService {
	return &RecommendationService{
		dataset:  dataset,
		analyses: analyses,
		log:      log.With().Str("component", "recommendation").Logger(),
		now:      time.Now,
	}
}

// Recommend fills missing fields with defaults, finds the closest reference
// profile and records the analysis. A failure to record is logged, not
// returned: the caller still gets its plan.
func (s *RecommendationService) Recommend(ctx context.Context, fields map[string]string, source string) (*domain.Analysis, error) {
	snap, err := s.dataset.Current()
	if err != nil {
		return nil, err
	}
	res := snap.Model.Recommend(fields)

	defaulted := make([]string, 0, len(res.Defaulted))
	for _, f := range res.Defaulted {
		defaulted = append(defaulted, f.Label())
	}
	a := domain.Analysis{
		ID:         uuid.New(),
		Source:     source,
		Profile:    res.Profile,
		Defaulted:  defaulted,
		Plan:       res.Entry.Diet,
		MatchIndex: res.Index,
		Cluster:    res.Cluster,
		Distance:   res.Distance,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.analyses.AddAnalysis(ctx, a); err != nil {
		s.log.Error().Err(err).Str("analysis_id", a.ID.String()).Msg("failed to record analysis")
	}
	s.log.Debug().
		Str("analysis_id", a.ID.String()).
		Str("source", source).
		Int("cluster", a.Cluster).
		Int("match_index", a.MatchIndex).
		Strs("defaulted", defaulted).
		Msg("recommendation")
	return &a, nil
}

// AnalyzeReports extracts field values from the text of each report, merges
// them in report-kind order and recommends a plan for the result.
func (s *RecommendationService) AnalyzeReports(ctx context.Context, reports map[extract.ReportKind]string) (*ReportAnalysis, error) {
	for k := range reports {
		if _, err := extract.ParseReportKind(string(k)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}
	}
	var parts []map[string]string
	for _, k := range extract.ReportKinds {
		text, ok := reports[k]
		if !ok {
			continue
		}
		fields, err := extract.ReportFields(k, text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}
		parts = append(parts, fields)
	}
	extracted := extract.Merge(parts...)

	a, err := s.Recommend(ctx, extracted, SourceUpload)
	if err != nil {
		return nil, err
	}
	return &ReportAnalysis{Extracted: extracted, Analysis: a}, nil
}

// ListRecent returns the most recent analyses. Out-of-range limits fall back
// to DefaultListLimit or are capped at MaxListLimit.
func (s *RecommendationService) ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.analyses.ListRecentAnalyses(ctx, limit)
}

// Get returns one analysis by ID.
func (s *RecommendationService) Get(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	return s.analyses.GetAnalysis(ctx, id)
}
