package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"labdiet/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const analysisColumns = "id, source, profile, defaulted, plan, match_index, cluster, distance, created_at"

// AddAnalysis inserts an analysis record.
func (d *DB) AddAnalysis(ctx context.Context, a domain.Analysis) error {
	profile, err := json.Marshal(a.Profile)
	if err != nil {
		return err
	}
	plan, err := json.Marshal(a.Plan)
	if err != nil {
		return err
	}
	defaulted := a.Defaulted
	if defaulted == nil {
		defaulted = []string{}
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO analyses("+analysisColumns+") VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9);",
		a.ID, a.Source, profile, pq.Array(defaulted), plan, a.MatchIndex, a.Cluster, a.Distance, a.CreatedAt.UTC(),
	)
	return err
}

// GetAnalysis retrieves an analysis by ID.
func (d *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+analysisColumns+" FROM analyses WHERE id = $1;", id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	return a, err
}

// ListRecentAnalyses returns the most recent analyses up to limit.
func (d *DB) ListRecentAnalyses(ctx context.Context, limit int) ([]domain.Analysis, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+analysisColumns+" FROM analyses ORDER BY created_at DESC LIMIT $1;", limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make([]domain.Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var profile, plan []byte
	if err := s.Scan(&a.ID, &a.Source, &profile, pq.Array(&a.Defaulted), &plan,
		&a.MatchIndex, &a.Cluster, &a.Distance, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(profile, &a.Profile); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(plan, &a.Plan); err != nil {
		return nil, err
	}
	return &a, nil
}
