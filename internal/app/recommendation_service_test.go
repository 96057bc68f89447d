package app_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"labdiet/internal/app"
	"labdiet/internal/domain"
	"labdiet/internal/extract"
	"labdiet/internal/generator"
	"labdiet/internal/matcher"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockSnapshotSource struct {
	currentFn func() (*app.Snapshot, error)
}

func (m *mockSnapshotSource) Current() (*app.Snapshot, error) {
	if m.currentFn != nil {
		return m.currentFn()
	}
	return nil, domain.ErrDatasetUnavailable
}

type mockAnalysisRepo struct {
	addFn  func(ctx context.Context, a domain.Analysis) error
	getFn  func(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	listFn func(ctx context.Context, limit int) ([]domain.Analysis, error)
}

func (m *mockAnalysisRepo) AddAnalysis(ctx context.Context, a domain.Analysis) error {
	if m.addFn != nil {
		return m.addFn(ctx, a)
	}
	return nil
}

func (m *mockAnalysisRepo) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrAnalysisNotFound
}

func (m *mockAnalysisRepo) ListRecentAnalyses(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func fittedSource(t *testing.T) *mockSnapshotSource {
	t.Helper()
	opts := matcher.DefaultKMeansOptions()
	opts.NInit = 2
	model, err := matcher.Fit(generator.GenerateWithSeed(200, 42), opts)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	snap := &app.Snapshot{Model: model, Origin: "test"}
	return &mockSnapshotSource{currentFn: func() (*app.Snapshot, error) { return snap, nil }}
}

func TestRecommend_DatasetUnavailable(t *testing.T) {
	repo := &mockAnalysisRepo{
		addFn: func(context.Context, domain.Analysis) error {
			t.Error("nothing should be recorded without a dataset")
			return nil
		},
	}
	svc := app.NewRecommendationService(&mockSnapshotSource{}, repo, zerolog.Nop())
	if _, err := svc.Recommend(context.Background(), nil, app.SourceAPI); !errors.Is(err, domain.ErrDatasetUnavailable) {
		t.Errorf("expected ErrDatasetUnavailable, got %v", err)
	}
}

func TestRecommend_RecordsAnalysis(t *testing.T) {
	var recorded domain.Analysis
	repo := &mockAnalysisRepo{
		addFn: func(_ context.Context, a domain.Analysis) error {
			recorded = a
			return nil
		},
	}
	src := fittedSource(t)
	svc := app.NewRecommendationService(src, repo, zerolog.Nop())

	a, err := svc.Recommend(context.Background(), map[string]string{
		"Fasting Blood Sugar": "250",
		"Thyroxine":           "n/a",
	}, app.SourceAPI)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if a.ID == uuid.Nil || recorded.ID != a.ID {
		t.Errorf("expected the returned analysis to be recorded, got %v / %v", a.ID, recorded.ID)
	}
	if a.Profile.FastingBloodSugar != 250 || a.Profile.Thyroxine != domain.Thyroxine.Default() {
		t.Errorf("unexpected profile %+v", a.Profile)
	}
	if !slices.Contains(a.Defaulted, "Thyroxine") || slices.Contains(a.Defaulted, "Fasting Blood Sugar") {
		t.Errorf("unexpected defaulted fields %v", a.Defaulted)
	}

	snap, _ := src.Current()
	want := snap.Population().At(a.MatchIndex).Diet
	if !slices.Equal(a.Plan.Breakfast, want.Breakfast) || !slices.Equal(a.Plan.Snacks, want.Snacks) {
		t.Errorf("plan does not match reference entry %d", a.MatchIndex)
	}
	if a.Cluster != snap.Model.Label(a.MatchIndex) {
		t.Errorf("matched entry is in cluster %d, analysis says %d", snap.Model.Label(a.MatchIndex), a.Cluster)
	}
}

func TestRecommend_RecordFailureIsNotFatal(t *testing.T) {
	repo := &mockAnalysisRepo{
		addFn: func(context.Context, domain.Analysis) error { return errors.New("db down") },
	}
	svc := app.NewRecommendationService(fittedSource(t), repo, zerolog.Nop())
	a, err := svc.Recommend(context.Background(), nil, app.SourceCLI)
	if err != nil {
		t.Fatalf("expected plan despite history failure, got %v", err)
	}
	if len(a.Defaulted) != domain.NumFields {
		t.Errorf("expected every field defaulted, got %v", a.Defaulted)
	}
}

func TestAnalyzeReports(t *testing.T) {
	var recorded domain.Analysis
	repo := &mockAnalysisRepo{
		addFn: func(_ context.Context, a domain.Analysis) error {
			recorded = a
			return nil
		},
	}
	svc := app.NewRecommendationService(fittedSource(t), repo, zerolog.Nop())

	res, err := svc.AnalyzeReports(context.Background(), map[extract.ReportKind]string{
		extract.BloodSugar:  "Blood Sugar Fasting : 132 mg/dL\nGlucose - Post Prandial 188 mg/dL",
		extract.Cholesterol: "Cholesterol 210\nLDL Cholesterol 140\nHDL Cholesterol 38",
		extract.Thyroxine:   "Thyroxine: 1.1",
	})
	if err != nil {
		t.Fatalf("AnalyzeReports: %v", err)
	}
	want := map[string]string{
		"Fasting Blood Sugar":       "132",
		"Post Prandial Blood Sugar": "188",
		"Cholesterol":               "210",
		"LDL Cholesterol":           "140",
		"HDL Cholesterol":           "38",
		"Thyroxine":                 "1.1",
	}
	for k, v := range want {
		if res.Extracted[k] != v {
			t.Errorf("extracted[%q] = %q, want %q", k, res.Extracted[k], v)
		}
	}
	if len(res.Analysis.Defaulted) != 0 {
		t.Errorf("expected no defaulted fields, got %v", res.Analysis.Defaulted)
	}
	if res.Analysis.Source != app.SourceUpload || recorded.ID != res.Analysis.ID {
		t.Errorf("unexpected analysis %+v", res.Analysis)
	}
}

func TestAnalyzeReports_UnknownKind(t *testing.T) {
	svc := app.NewRecommendationService(fittedSource(t), &mockAnalysisRepo{}, zerolog.Nop())
	_, err := svc.AnalyzeReports(context.Background(), map[extract.ReportKind]string{"urine": "pH 6"})
	if !errors.Is(err, app.ErrInvalidReport) {
		t.Errorf("expected ErrInvalidReport, got %v", err)
	}
}

func TestListRecent_ClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, app.DefaultListLimit},
		{"negative", -3, app.DefaultListLimit},
		{"in range", 5, 5},
		{"capped", 1000, app.MaxListLimit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got int
			repo := &mockAnalysisRepo{
				listFn: func(_ context.Context, limit int) ([]domain.Analysis, error) {
					got = limit
					return nil, nil
				},
			}
			svc := app.NewRecommendationService(&mockSnapshotSource{}, repo, zerolog.Nop())
			if _, err := svc.ListRecent(context.Background(), tc.limit); err != nil {
				t.Fatalf("ListRecent: %v", err)
			}
			if got != tc.want {
				t.Errorf("limit passed to repo = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := app.NewRecommendationService(&mockSnapshotSource{}, &mockAnalysisRepo{}, zerolog.Nop())
	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, domain.ErrAnalysisNotFound) {
		t.Errorf("expected ErrAnalysisNotFound, got %v", err)
	}
}
