// Package sqlite implements the domain repositories on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"labdiet/internal/domain"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.PopulationRepository = (*DB)(nil)
var _ domain.AnalysisRepository = (*DB)(nil)

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*DB, error) {
	s, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time; SQLite serialises anyway
	s.SetMaxOpenConns(1)

	d := &DB{sql: s}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS reference_entries (
        position INTEGER PRIMARY KEY,
        fasting_blood_sugar REAL NOT NULL,
        post_prandial_blood_sugar REAL NOT NULL,
        thyroxine REAL NOT NULL,
        cholesterol REAL NOT NULL,
        ldl_cholesterol REAL NOT NULL,
        hdl_cholesterol REAL NOT NULL,
        diet TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS analyses (
        id TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        profile TEXT NOT NULL,
        defaulted TEXT NOT NULL,
        plan TEXT NOT NULL,
        match_index INTEGER NOT NULL,
        cluster INTEGER NOT NULL,
        distance REAL NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
    `
	if _, err := d.sql.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SavePopulation replaces the whole reference table in one transaction.
func (d *DB) SavePopulation(ctx context.Context, pop *domain.Population) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reference_entries"); err != nil {
		return fmt.Errorf("failed to clear reference table: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO reference_entries (position, fasting_blood_sugar, post_prandial_blood_sugar,
            thyroxine, cholesterol, ldl_cholesterol, hdl_cholesterol, diet)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < pop.Len(); i++ {
		e := pop.At(i)
		diet, err := json.Marshal(e.Diet)
		if err != nil {
			return fmt.Errorf("failed to encode diet: %w", err)
		}
		p := e.Profile
		if _, err := stmt.ExecContext(ctx, i,
			p.FastingBloodSugar, p.PostPrandialBloodSugar, p.Thyroxine,
			p.Cholesterol, p.LDLCholesterol, p.HDLCholesterol, string(diet)); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadPopulation reads the reference table in position order.
func (d *DB) LoadPopulation(ctx context.Context) (*domain.Population, error) {
	rows, err := d.sql.QueryContext(ctx, `
        SELECT fasting_blood_sugar, post_prandial_blood_sugar, thyroxine,
            cholesterol, ldl_cholesterol, hdl_cholesterol, diet
        FROM reference_entries ORDER BY position
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference table: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.ReferenceEntry
	for rows.Next() {
		var p domain.HealthProfile
		var diet string
		if err := rows.Scan(&p.FastingBloodSugar, &p.PostPrandialBloodSugar, &p.Thyroxine,
			&p.Cholesterol, &p.LDLCholesterol, &p.HDLCholesterol, &diet); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		var plan domain.DietPlan
		if err := json.Unmarshal([]byte(diet), &plan); err != nil {
			return nil, fmt.Errorf("failed to decode diet: %w", err)
		}
		entries = append(entries, domain.ReferenceEntry{Profile: p, Diet: plan})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("sqlite: %w", domain.ErrDatasetUnavailable)
	}
	return domain.NewPopulation(entries), nil
}

// AddAnalysis inserts an analysis record.
func (d *DB) AddAnalysis(ctx context.Context, a domain.Analysis) error {
	profile, defaulted, plan, err := encodeAnalysis(a)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `
        INSERT INTO analyses (id, source, profile, defaulted, plan, match_index, cluster, distance, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, a.ID.String(), a.Source, profile, defaulted, plan, a.MatchIndex, a.Cluster, a.Distance, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// GetAnalysis retrieves an analysis by ID.
func (d *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	row := d.sql.QueryRowContext(ctx, `
        SELECT id, source, profile, defaulted, plan, match_index, cluster, distance, created_at
        FROM analyses WHERE id = ?
    `, id.String())
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListRecentAnalyses returns the most recent analyses up to limit.
func (d *DB) ListRecentAnalyses(ctx context.Context, limit int) ([]domain.Analysis, error) {
	rows, err := d.sql.QueryContext(ctx, `
        SELECT id, source, profile, defaulted, plan, match_index, cluster, distance, created_at
        FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*domain.Analysis, error) {
	var (
		a                        domain.Analysis
		id                       string
		profile, defaulted, plan string
	)
	if err := s.Scan(&id, &a.Source, &profile, &defaulted, &plan,
		&a.MatchIndex, &a.Cluster, &a.Distance, &a.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis id %q: %w", id, err)
	}
	a.ID = parsed
	if err := decodeAnalysis(&a, profile, defaulted, plan); err != nil {
		return nil, err
	}
	return &a, nil
}

func encodeAnalysis(a domain.Analysis) (profile, defaulted, plan string, err error) {
	p, err := json.Marshal(a.Profile)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode profile: %w", err)
	}
	if a.Defaulted == nil {
		a.Defaulted = []string{}
	}
	df, err := json.Marshal(a.Defaulted)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode defaulted fields: %w", err)
	}
	pl, err := json.Marshal(a.Plan)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode plan: %w", err)
	}
	return string(p), string(df), string(pl), nil
}

func decodeAnalysis(a *domain.Analysis, profile, defaulted, plan string) error {
	if err := json.Unmarshal([]byte(profile), &a.Profile); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := json.Unmarshal([]byte(defaulted), &a.Defaulted); err != nil {
		return fmt.Errorf("failed to decode defaulted fields: %w", err)
	}
	if err := json.Unmarshal([]byte(plan), &a.Plan); err != nil {
		return fmt.Errorf("failed to decode plan: %w", err)
	}
	return nil
}
