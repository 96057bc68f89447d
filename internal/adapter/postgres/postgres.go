// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"labdiet/internal/domain"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

var _ domain.PopulationRepository = (*DB)(nil)
var _ domain.AnalysisRepository = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reference_entries (
			position INTEGER PRIMARY KEY,
			fasting_blood_sugar DOUBLE PRECISION NOT NULL,
			post_prandial_blood_sugar DOUBLE PRECISION NOT NULL,
			thyroxine DOUBLE PRECISION NOT NULL,
			cholesterol DOUBLE PRECISION NOT NULL,
			ldl_cholesterol DOUBLE PRECISION NOT NULL,
			hdl_cholesterol DOUBLE PRECISION NOT NULL,
			diet JSONB NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			profile JSONB NOT NULL,
			defaulted TEXT[] NOT NULL,
			plan JSONB NOT NULL,
			match_index INTEGER NOT NULL,
			cluster INTEGER NOT NULL,
			distance DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
