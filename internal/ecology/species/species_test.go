package species

import (
	"testing"

	"evochron/internal/ecology/tile"
)

func TestIsPlant(t *testing.T) {
	autotroph := &Species{TrophicLevel: 1.0}
	if !autotroph.IsPlant() {
		t.Error("trophic level < 2.0 should be a plant")
	}

	consumer := &Species{TrophicLevel: 2.5}
	if consumer.IsPlant() {
		t.Error("trophic level >= 2.0 with no photosynthetic organ should not be a plant")
	}

	photosynthetic := &Species{
		TrophicLevel: 2.5,
		Organs: map[OrganCategory]*Organ{
			OrganPhotosynthetic: {IsActive: true},
		},
	}
	if !photosynthetic.IsPlant() {
		t.Error("an active photosynthetic organ should make a species a plant regardless of trophic level")
	}
}

func TestEcologicalLayer(t *testing.T) {
	tests := []struct {
		trophic float64
		want    int
	}{
		{1.0, 1}, {1.4, 1}, {1.5, 2}, {2.4, 2}, {2.5, 3}, {3.4, 3}, {3.5, 4}, {4.4, 4}, {4.5, 5}, {6.0, 5},
	}
	for _, tt := range tests {
		s := &Species{TrophicLevel: tt.trophic}
		if got := s.EcologicalLayer(); got != tt.want {
			t.Errorf("EcologicalLayer() for trophic %.2f = %d, want %d", tt.trophic, got, tt.want)
		}
	}
}

func TestValidGrowthForm(t *testing.T) {
	tests := []struct {
		form  GrowthForm
		stage int
		want  bool
	}{
		{GrowthAquatic, 0, true}, {GrowthAquatic, 2, true}, {GrowthAquatic, 3, false},
		{GrowthMoss, 3, true}, {GrowthMoss, 4, false},
		{GrowthHerb, 4, true}, {GrowthHerb, 6, true}, {GrowthHerb, 3, false},
		{GrowthShrub, 5, true}, {GrowthTree, 6, true}, {GrowthTree, 4, false},
	}
	for _, tt := range tests {
		if got := ValidGrowthForm(tt.form, tt.stage); got != tt.want {
			t.Errorf("ValidGrowthForm(%s, %d) = %v, want %v", tt.form, tt.stage, got, tt.want)
		}
	}
}

func TestHabitatTypeUsesTilePackage(t *testing.T) {
	s := &Species{HabitatType: tile.HabitatAmphibious}
	if s.HabitatType != tile.HabitatAmphibious {
		t.Error("Species.HabitatType should round-trip a tile.HabitatType value")
	}
}
