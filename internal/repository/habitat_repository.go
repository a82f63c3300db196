package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"evochron/internal/ecology/habitat"
	"evochron/internal/ecology/tile"
)

// HabitatRepository is the abstract contract for (tile, species, turn)
// population rows: fetch the latest snapshot to seed a turn's working
// Store, and persist the Store's rows once a turn commits.
type HabitatRepository interface {
	LatestHabitats(ctx context.Context) ([]habitat.Population, error)
	WriteHabitats(ctx context.Context, rows []habitat.Population) error
}

// PostgresHabitatRepository keeps only the most recent turn's rows per
// (tile, species) pair, matching the working-set semantics of
// habitat.Store: WriteHabitats replaces, it never appends history.
type PostgresHabitatRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresHabitatRepository(pool *pgxpool.Pool) *PostgresHabitatRepository {
	return &PostgresHabitatRepository{pool: pool}
}

func (r *PostgresHabitatRepository) LatestHabitats(ctx context.Context) ([]habitat.Population, error) {
	query := `
		SELECT tile_id, species_code, turn, population, suitability, occupancy, turns_at_zero
		FROM habitat_populations
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing habitat populations: %w", err)
	}
	defer rows.Close()

	var out []habitat.Population
	for rows.Next() {
		var p habitat.Population
		var tileID string
		if err := rows.Scan(&tileID, &p.SpeciesCode, &p.Turn, &p.Population, &p.Suitability, &p.Occupancy, &p.TurnsAtZero); err != nil {
			return nil, fmt.Errorf("scanning habitat population row: %w", err)
		}
		p.TileID = tile.ID(tileID)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresHabitatRepository) WriteHabitats(ctx context.Context, rows []habitat.Population) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning habitat write transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, p := range rows {
		query := `
			INSERT INTO habitat_populations (tile_id, species_code, turn, population, suitability, occupancy, turns_at_zero)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (tile_id, species_code) DO UPDATE SET
				turn = EXCLUDED.turn,
				population = EXCLUDED.population,
				suitability = EXCLUDED.suitability,
				occupancy = EXCLUDED.occupancy,
				turns_at_zero = EXCLUDED.turns_at_zero
		`
		if _, err := tx.Exec(ctx, query, string(p.TileID), p.SpeciesCode, p.Turn, p.Population, p.Suitability, p.Occupancy, p.TurnsAtZero); err != nil {
			return fmt.Errorf("writing habitat population row: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// MemoryHabitatRepository is an in-process HabitatRepository for tests and
// database-less CLI runs.
type MemoryHabitatRepository struct {
	mu   sync.RWMutex
	rows map[habitat.Key]habitat.Population
}

func NewMemoryHabitatRepository() *MemoryHabitatRepository {
	return &MemoryHabitatRepository{rows: make(map[habitat.Key]habitat.Population)}
}

func (r *MemoryHabitatRepository) LatestHabitats(_ context.Context) ([]habitat.Population, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]habitat.Population, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryHabitatRepository) WriteHabitats(_ context.Context, rows []habitat.Population) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range rows {
		r.rows[habitat.KeyOf(p)] = p
	}
	return nil
}
