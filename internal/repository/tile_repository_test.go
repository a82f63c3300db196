package repository

import (
	"context"
	"testing"

	"evochron/internal/ecology/tile"
)

func TestMemoryTileRepositoryEmptyReturnsNoTiles(t *testing.T) {
	r := NewMemoryTileRepository()
	got, err := r.ListTiles(context.Background())
	if err != nil {
		t.Fatalf("ListTiles: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListTiles on an empty repository = %d, want 0", len(got))
	}
}

func TestMemoryTileRepositoryWriteThenList(t *testing.T) {
	r := NewMemoryTileRepository()
	tiles := []tile.Tile{
		{ID: tile.ID("t1"), Biome: tile.Biome("forest")},
		{ID: tile.ID("t2"), Biome: tile.Biome("ocean")},
	}
	if err := r.WriteTiles(context.Background(), tiles); err != nil {
		t.Fatalf("WriteTiles: %v", err)
	}
	got, err := r.ListTiles(context.Background())
	if err != nil {
		t.Fatalf("ListTiles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListTiles returned %d tiles, want 2", len(got))
	}
}

func TestMemoryTileRepositoryWriteOverwritesByID(t *testing.T) {
	r := NewMemoryTileRepository()
	_ = r.WriteTiles(context.Background(), []tile.Tile{{ID: tile.ID("t1"), Biome: tile.Biome("forest")}})
	_ = r.WriteTiles(context.Background(), []tile.Tile{{ID: tile.ID("t1"), Biome: tile.Biome("desert")}})

	got, _ := r.ListTiles(context.Background())
	if len(got) != 1 {
		t.Fatalf("rewriting the same tile ID should overwrite, got %d tiles", len(got))
	}
	if got[0].Biome != "desert" {
		t.Errorf("Biome = %q, want the latest write's value", got[0].Biome)
	}
}
