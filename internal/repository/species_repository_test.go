package repository

import (
	"context"
	"testing"

	"evochron/internal/ecology/species"
)

func TestMemorySpeciesRepositoryGetByCodeMissingReturnsNil(t *testing.T) {
	r := NewMemorySpeciesRepository()
	s, err := r.GetByCode(context.Background(), "A1")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if s != nil {
		t.Error("GetByCode for an unknown lineage code should return nil")
	}
}

func TestMemorySpeciesRepositoryUpsertThenListAndGet(t *testing.T) {
	r := NewMemorySpeciesRepository()
	s := &species.Species{LineageCode: "A1", Status: species.StatusAlive}
	if err := r.Upsert(context.Background(), s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := r.GetByCode(context.Background(), "A1")
	if err != nil || got == nil {
		t.Fatalf("GetByCode after Upsert: %v, %+v", err, got)
	}
	if got.LineageCode != "A1" {
		t.Errorf("LineageCode = %q, want %q", got.LineageCode, "A1")
	}

	all, err := r.ListSpecies(context.Background())
	if err != nil {
		t.Fatalf("ListSpecies: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListSpecies returned %d rows, want 1", len(all))
	}
}

func TestMemorySpeciesRepositoryUpsertOverwritesByLineageCode(t *testing.T) {
	r := NewMemorySpeciesRepository()
	_ = r.Upsert(context.Background(), &species.Species{LineageCode: "A1", Status: species.StatusAlive})
	_ = r.Upsert(context.Background(), &species.Species{LineageCode: "A1", Status: species.StatusExtinct})

	all, _ := r.ListSpecies(context.Background())
	if len(all) != 1 {
		t.Fatalf("repeated upserts for the same lineage code should replace, got %d rows", len(all))
	}
	if all[0].Status != species.StatusExtinct {
		t.Errorf("Status = %q, want the latest upsert's status", all[0].Status)
	}
}
