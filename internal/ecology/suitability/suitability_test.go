package suitability

import (
	"testing"

	"evochron/internal/ecology/species"
	"evochron/internal/ecology/tile"
	"evochron/internal/simconfig"
)

func TestMain(m *testing.M) {
	simconfig.MustInit("")
	m.Run()
}

func TestComputeZeroesIncompatibleHabitat(t *testing.T) {
	s := []*species.Species{{
		LineageCode:    "A1",
		HabitatType:    tile.HabitatDeepSea,
		AbstractTraits: map[string]float64{},
	}}
	tiles := []tile.Tile{{ID: "t1", Temperature: 20, Humidity: 0.5, Resources: 5}}

	m := Compute(s, tiles)
	if got := m.At("A1", "t1"); got != 0 {
		t.Errorf("At() = %v, want 0 for a species/tile habitat mismatch with no adjacency", got)
	}
}

func TestComputeZeroesOutsideHardTemperatureLimits(t *testing.T) {
	s := []*species.Species{{
		LineageCode:    "A1",
		HabitatType:    tile.HabitatTerrestrial,
		AbstractTraits: map[string]float64{},
	}}
	tiles := []tile.Tile{{ID: "t1", Temperature: 80, Humidity: 0.5, Resources: 5, Elevation: 500}}

	m := Compute(s, tiles)
	if got := m.At("A1", "t1"); got != 0 {
		t.Errorf("At() = %v, want 0 when temperature exceeds the hard heat ceiling", got)
	}
}

func TestComputeHigherToleranceScoresHigherInHeat(t *testing.T) {
	lowTol := []*species.Species{{LineageCode: "A1", HabitatType: tile.HabitatTerrestrial, AbstractTraits: map[string]float64{"heat_tolerance": 1}}}
	highTol := []*species.Species{{LineageCode: "A1", HabitatType: tile.HabitatTerrestrial, AbstractTraits: map[string]float64{"heat_tolerance": 14}}}
	tiles := []tile.Tile{{ID: "t1", Temperature: 25, Humidity: 0.5, Resources: 5, Elevation: 500}}

	low := Compute(lowTol, tiles).At("A1", "t1")
	high := Compute(highTol, tiles).At("A1", "t1")
	if high <= low {
		t.Errorf("a species with higher heat_tolerance should score at least as well in a hot tile: low=%v high=%v", low, high)
	}
}

func TestComputeAtReturnsZeroForUnknownCodes(t *testing.T) {
	m := Compute(nil, nil)
	if got := m.At("nonexistent", "t1"); got != 0 {
		t.Errorf("At() for an unknown species/tile = %v, want 0", got)
	}
}

func TestHabitatCompatibleViaAdjacency(t *testing.T) {
	adjacency := simconfig.Cfg().Habitat.Adjacency
	if !habitatCompatible(tile.HabitatCoastal, tile.HabitatMarine, adjacency) {
		t.Error("coastal species should be habitat-compatible with marine tiles per the adjacency table")
	}
	if habitatCompatible(tile.HabitatDeepSea, tile.HabitatTerrestrial, adjacency) {
		t.Error("deep sea species should not be habitat-compatible with terrestrial tiles")
	}
}
