package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"labdiet/internal/domain"

	"github.com/lib/pq"
)

// SavePopulation replaces the reference table wholesale inside one
// transaction, streaming rows with COPY.
func (d *DB) SavePopulation(ctx context.Context, pop *domain.Population) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "TRUNCATE reference_entries;"); err != nil {
		return fmt.Errorf("truncate reference_entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("reference_entries",
		"position", "fasting_blood_sugar", "post_prandial_blood_sugar", "thyroxine",
		"cholesterol", "ldl_cholesterol", "hdl_cholesterol", "diet"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for i := 0; i < pop.Len(); i++ {
		e := pop.At(i)
		diet, err := json.Marshal(e.Diet)
		if err != nil {
			_ = stmt.Close()
			return err
		}
		p := e.Profile
		if _, err := stmt.ExecContext(ctx, i,
			p.FastingBloodSugar, p.PostPrandialBloodSugar, p.Thyroxine,
			p.Cholesterol, p.LDLCholesterol, p.HDLCholesterol, string(diet)); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy entry %d: %w", i, err)
		}
	}
	// An argument-less Exec flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadPopulation returns the stored reference table in position order.
func (d *DB) LoadPopulation(ctx context.Context) (*domain.Population, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT fasting_blood_sugar, post_prandial_blood_sugar, thyroxine, cholesterol, ldl_cholesterol, hdl_cholesterol, diet FROM reference_entries ORDER BY position;",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.ReferenceEntry
	for rows.Next() {
		var p domain.HealthProfile
		var diet []byte
		if err := rows.Scan(&p.FastingBloodSugar, &p.PostPrandialBloodSugar, &p.Thyroxine,
			&p.Cholesterol, &p.LDLCholesterol, &p.HDLCholesterol, &diet); err != nil {
			return nil, err
		}
		var plan domain.DietPlan
		if err := json.Unmarshal(diet, &plan); err != nil {
			return nil, fmt.Errorf("decode diet: %w", err)
		}
		entries = append(entries, domain.ReferenceEntry{Profile: p, Diet: plan})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("postgres: %w", domain.ErrDatasetUnavailable)
	}
	return domain.NewPopulation(entries), nil
}
