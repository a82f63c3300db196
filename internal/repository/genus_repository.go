package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"evochron/internal/ecology/genus"
)

// GenusRepository is the abstract contract for genus records: the gene
// library and pairwise genetic distances accumulated across speciation
// and gene-flow events.
type GenusRepository interface {
	GetByCode(ctx context.Context, code string) (*genus.Genus, error)
	Upsert(ctx context.Context, g *genus.Genus) error
	UpdateDistances(ctx context.Context, code string, distances map[string]float64) error
}

// genusRow is the JSON-serialisable projection of genus.Genus; GeneLibrary
// values need no special treatment since genus.GeneLibraryEntry fields are
// already exported and JSON-friendly.
type genusRow struct {
	GeneLibrary      map[string]genus.GeneLibraryEntry `json:"gene_library"`
	GeneticDistances map[string]float64                `json:"genetic_distances"`
}

// PostgresGenusRepository stores one JSONB document per genus code,
// matching the same document-store shape as PostgresSpeciesRepository.
type PostgresGenusRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresGenusRepository(pool *pgxpool.Pool) *PostgresGenusRepository {
	return &PostgresGenusRepository{pool: pool}
}

func (r *PostgresGenusRepository) GetByCode(ctx context.Context, code string) (*genus.Genus, error) {
	query := `SELECT state FROM genera WHERE code = $1`
	var raw []byte
	err := r.pool.QueryRow(ctx, query, code).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching genus %s: %w", code, err)
	}
	var row genusRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("unmarshaling genus state: %w", err)
	}
	g := genus.NewGenus(code)
	g.GeneLibrary = row.GeneLibrary
	g.GeneticDistances = row.GeneticDistances
	return g, nil
}

func (r *PostgresGenusRepository) Upsert(ctx context.Context, g *genus.Genus) error {
	raw, err := json.Marshal(genusRow{GeneLibrary: g.GeneLibrary, GeneticDistances: g.GeneticDistances})
	if err != nil {
		return fmt.Errorf("marshaling genus state: %w", err)
	}
	query := `
		INSERT INTO genera (code, state)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET state = EXCLUDED.state
	`
	_, err = r.pool.Exec(ctx, query, g.Code, raw)
	if err != nil {
		return fmt.Errorf("upserting genus %s: %w", g.Code, err)
	}
	return nil
}

// UpdateDistances merges the given pairwise distances into the genus's
// existing record, used by the gene-flow stage after each turn's distance
// recomputation.
func (r *PostgresGenusRepository) UpdateDistances(ctx context.Context, code string, distances map[string]float64) error {
	g, err := r.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if g == nil {
		g = genus.NewGenus(code)
	}
	for key, d := range distances {
		g.GeneticDistances[key] = d
	}
	return r.Upsert(ctx, g)
}

// MemoryGenusRepository is an in-process GenusRepository for tests and
// database-less CLI runs.
type MemoryGenusRepository struct {
	mu   sync.RWMutex
	rows map[string]*genus.Genus
}

func NewMemoryGenusRepository() *MemoryGenusRepository {
	return &MemoryGenusRepository{rows: make(map[string]*genus.Genus)}
}

func (r *MemoryGenusRepository) GetByCode(_ context.Context, code string) (*genus.Genus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rows[code], nil
}

func (r *MemoryGenusRepository) Upsert(_ context.Context, g *genus.Genus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[g.Code] = g
	return nil
}

func (r *MemoryGenusRepository) UpdateDistances(_ context.Context, code string, distances map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.rows[code]
	if !ok {
		g = genus.NewGenus(code)
		r.rows[code] = g
	}
	for key, d := range distances {
		g.GeneticDistances[key] = d
	}
	return nil
}
