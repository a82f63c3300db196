// Package repository is the persistence boundary between the ecology
// engine and PostgreSQL: species, genus, habitat-population and tile
// storage, plus in-memory doubles the engine's own tests run against so a
// database is never required to exercise the turn pipeline.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evochron/internal/ecology/species"
)

// SpeciesRepository is the abstract contract the engine depends on: list
// every species (alive and extinct, for phylogeny), upsert one, and fetch
// a single lineage by code.
type SpeciesRepository interface {
	ListSpecies(ctx context.Context) ([]*species.Species, error)
	GetByCode(ctx context.Context, lineageCode string) (*species.Species, error)
	Upsert(ctx context.Context, s *species.Species) error
}

// PostgresSpeciesRepository stores each species as a single JSONB document
// keyed by lineage_code, matching the teacher's checkpoint-store shape:
// the Species struct's map-heavy, evolving field set is a poor fit for a
// wide relational row, so state is the blob and lineage_code/genus_code/
// status are projected columns for querying.
type PostgresSpeciesRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSpeciesRepository(pool *pgxpool.Pool) *PostgresSpeciesRepository {
	return &PostgresSpeciesRepository{pool: pool}
}

func (r *PostgresSpeciesRepository) ListSpecies(ctx context.Context) ([]*species.Species, error) {
	query := `SELECT state FROM species ORDER BY lineage_code ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing species: %w", err)
	}
	defer rows.Close()

	var out []*species.Species
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning species row: %w", err)
		}
		var s species.Species
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("unmarshaling species state: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *PostgresSpeciesRepository) GetByCode(ctx context.Context, lineageCode string) (*species.Species, error) {
	query := `SELECT state FROM species WHERE lineage_code = $1`
	var raw []byte
	err := r.pool.QueryRow(ctx, query, lineageCode).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching species %s: %w", lineageCode, err)
	}
	var s species.Species
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling species state: %w", err)
	}
	return &s, nil
}

func (r *PostgresSpeciesRepository) Upsert(ctx context.Context, s *species.Species) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling species state: %w", err)
	}
	query := `
		INSERT INTO species (lineage_code, genus_code, status, created_turn, state)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lineage_code) DO UPDATE SET
			genus_code = EXCLUDED.genus_code,
			status = EXCLUDED.status,
			state = EXCLUDED.state
	`
	_, err = r.pool.Exec(ctx, query, s.LineageCode, s.GenusCode, s.Status, s.CreatedTurn, raw)
	if err != nil {
		return fmt.Errorf("upserting species %s: %w", s.LineageCode, err)
	}
	return nil
}

// MemorySpeciesRepository is an in-process SpeciesRepository for tests and
// CLI runs with no database configured.
type MemorySpeciesRepository struct {
	mu   sync.RWMutex
	rows map[string]*species.Species
}

func NewMemorySpeciesRepository() *MemorySpeciesRepository {
	return &MemorySpeciesRepository{rows: make(map[string]*species.Species)}
}

func (r *MemorySpeciesRepository) ListSpecies(_ context.Context) ([]*species.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*species.Species, 0, len(r.rows))
	for _, s := range r.rows {
		out = append(out, s)
	}
	return out, nil
}

func (r *MemorySpeciesRepository) GetByCode(_ context.Context, lineageCode string) (*species.Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rows[lineageCode], nil
}

func (r *MemorySpeciesRepository) Upsert(_ context.Context, s *species.Species) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.LineageCode] = s
	return nil
}
