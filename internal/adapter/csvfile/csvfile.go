// Package csvfile stores the reference population as a tabular CSV file:
// one row per entry, the six field columns followed by a
// Diet_Recommendations column holding the meal plan as JSON.
package csvfile

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"labdiet/internal/domain"
)

// DietColumn is the header of the meal-plan column.
const DietColumn = "Diet_Recommendations"

// Store reads and writes a reference table at a fixed path.
type Store struct {
	path string
}

// New creates a Store for the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

var _ domain.PopulationRepository = (*Store)(nil)

// Path returns the file location.
func (s *Store) Path() string { return s.path }

// SavePopulation writes the table to a temporary file and renames it into
// place, so readers never see a partial table.
func (s *Store) SavePopulation(ctx context.Context, pop *domain.Population) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".population-*.csv")
	if err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Write(tmp, pop); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csvfile: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	return nil
}

// LoadPopulation reads the table. A missing or empty file yields
// ErrDatasetUnavailable.
func (s *Store) LoadPopulation(ctx context.Context) (*domain.Population, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("csvfile: %s: %w", s.path, domain.ErrDatasetUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("csvfile: %w", err)
	}
	defer func() { _ = f.Close() }()

	pop, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("csvfile: %s: %w", s.path, err)
	}
	if pop.Len() == 0 {
		return nil, fmt.Errorf("csvfile: %s is empty: %w", s.path, domain.ErrDatasetUnavailable)
	}
	return pop, nil
}

// Write encodes pop as CSV. Floats use the shortest representation that
// round-trips exactly.
func Write(w io.Writer, pop *domain.Population) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, domain.NumFields+1)
	for _, f := range domain.Fields {
		header = append(header, f.Column())
	}
	header = append(header, DietColumn)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := 0; i < pop.Len(); i++ {
		e := pop.At(i)
		v := e.Profile.Vector()
		for j, x := range v {
			row[j] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		diet, err := json.Marshal(e.Diet)
		if err != nil {
			return err
		}
		row[domain.NumFields] = string(diet)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read decodes a table written by Write. Columns are located by header name,
// so extra columns such as a leading index are ignored.
func Read(r io.Reader) (*domain.Population, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.NewPopulation(nil), nil
	}
	if err != nil {
		return nil, err
	}

	var cols [domain.NumFields]int
	for _, f := range domain.Fields {
		cols[f] = indexOf(header, f.Column())
		if cols[f] < 0 {
			return nil, fmt.Errorf("missing column %q", f.Column())
		}
	}
	dietCol := indexOf(header, DietColumn)
	if dietCol < 0 {
		return nil, fmt.Errorf("missing column %q", DietColumn)
	}

	var entries []domain.ReferenceEntry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < len(header) {
			return nil, fmt.Errorf("line %d: %d columns, want %d", line, len(rec), len(header))
		}
		var v [domain.NumFields]float64
		for _, f := range domain.Fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[f]]), 64)
			if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("line %d: %s: invalid number %q", line, f.Column(), rec[cols[f]])
			}
			v[f] = x
		}
		diet, err := DecodeDiet(rec[dietCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, domain.ReferenceEntry{Profile: domain.ProfileFromVector(v), Diet: diet})
	}
	return domain.NewPopulation(entries), nil
}

// DecodeDiet parses a meal-plan cell. Besides JSON it accepts the
// single-quoted dictionary rendering pandas writes for dict-valued cells.
func DecodeDiet(cell string) (domain.DietPlan, error) {
	var plan domain.DietPlan
	if err := json.Unmarshal([]byte(cell), &plan); err == nil {
		return plan, nil
	}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(cell, "'", `"`)), &plan); err != nil {
		return domain.DietPlan{}, fmt.Errorf("invalid %s cell: %w", DietColumn, err)
	}
	return plan, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
