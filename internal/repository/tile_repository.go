package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"evochron/internal/ecology/tile"
)

// TileRepository is the abstract contract for the logical map grid: the
// ecology core treats it as read-only within a turn, owned by the
// external terrain module between turns.
type TileRepository interface {
	ListTiles(ctx context.Context) ([]tile.Tile, error)
	WriteTiles(ctx context.Context, tiles []tile.Tile) error
}

// PostgresTileRepository persists the full tile grid as flat rows, one
// per tile id, rewritten wholesale by the terrain module each turn.
type PostgresTileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTileRepository(pool *pgxpool.Pool) *PostgresTileRepository {
	return &PostgresTileRepository{pool: pool}
}

func (r *PostgresTileRepository) ListTiles(ctx context.Context) ([]tile.Tile, error) {
	query := `
		SELECT id, temperature, humidity, resources, elevation, biome, cover, is_lake, is_ocean
		FROM tiles
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tiles: %w", err)
	}
	defer rows.Close()

	var out []tile.Tile
	for rows.Next() {
		var t tile.Tile
		var id, biome string
		if err := rows.Scan(&id, &t.Temperature, &t.Humidity, &t.Resources, &t.Elevation, &biome, &t.Cover, &t.IsLake, &t.IsOcean); err != nil {
			return nil, fmt.Errorf("scanning tile row: %w", err)
		}
		t.ID = tile.ID(id)
		t.Biome = tile.Biome(biome)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresTileRepository) WriteTiles(ctx context.Context, tiles []tile.Tile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tile write transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range tiles {
		query := `
			INSERT INTO tiles (id, temperature, humidity, resources, elevation, biome, cover, is_lake, is_ocean)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				temperature = EXCLUDED.temperature,
				humidity = EXCLUDED.humidity,
				resources = EXCLUDED.resources,
				elevation = EXCLUDED.elevation,
				biome = EXCLUDED.biome,
				cover = EXCLUDED.cover,
				is_lake = EXCLUDED.is_lake,
				is_ocean = EXCLUDED.is_ocean
		`
		if _, err := tx.Exec(ctx, query, string(t.ID), t.Temperature, t.Humidity, t.Resources, t.Elevation, string(t.Biome), t.Cover, t.IsLake, t.IsOcean); err != nil {
			return fmt.Errorf("writing tile row: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// MemoryTileRepository is an in-process TileRepository for tests and
// database-less CLI runs, typically seeded once from internal/terrainstub.
type MemoryTileRepository struct {
	mu    sync.RWMutex
	tiles map[tile.ID]tile.Tile
}

func NewMemoryTileRepository() *MemoryTileRepository {
	return &MemoryTileRepository{tiles: make(map[tile.ID]tile.Tile)}
}

func (r *MemoryTileRepository) ListTiles(_ context.Context) ([]tile.Tile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]tile.Tile, 0, len(r.tiles))
	for _, t := range r.tiles {
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryTileRepository) WriteTiles(_ context.Context, tiles []tile.Tile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tiles {
		r.tiles[t.ID] = t
	}
	return nil
}
