package mortality

import (
	"math"

	"evochron/internal/ecology/species"
	"evochron/internal/ecology/suitability"
	"evochron/internal/ecology/territory"
	"evochron/internal/ecology/tile"
	"evochron/internal/simconfig"
)

// PredationSource is one predator exerting pressure on a prey species.
type PredationSource struct {
	PredatorPopulation float64
	Preference         float64
}

// TileContext bundles everything one (species, tile) mortality computation
// needs: the local population, co-inhabitants at the same ecological
// layer, predators, and environmental mismatch terms.
type TileContext struct {
	Population          float64
	Tile                tile.Tile // tolerance mismatch is derived from this, not from resource-blended suitability
	CoInhabitants       []CoOccupant
	Predators           []PredationSource
	DiseasePressure     float64 // precomputed by the disease model, 0 if none
	MinViablePopulation float64
}

// CoOccupant is a same-tile, same-layer co-inhabitant contributing
// competition pressure.
type CoOccupant struct {
	Species   *species.Species
	Occupancy float64
}

// TileResult is the per-tile mortality outcome.
type TileResult struct {
	DeathRate  float64
	Deaths     float64
	Survivors  float64
}

// ComputeTileMortality implements §4.3's per-tile death-rate algorithm: an
// exponential-decay response to additive pressure contributions (zero
// pressure yields zero death rate before the configured floor is applied),
// clipped to the configured bounds, with deaths computed so that
// deaths+survivors == population exactly (the tile mass-conservation
// property in §8).
func ComputeTileMortality(self *species.Species, in TileContext) TileResult {
	cfg := simconfig.Cfg().Mortality

	mismatch := 1 - suitability.ToleranceScore(self, in.Tile)

	competition := 0.0
	for _, co := range in.CoInhabitants {
		if co.Species.EcologicalLayer() != self.EcologicalLayer() {
			continue
		}
		similarity := territory.Similarity(self, co.Species, nil)
		factor := territory.CompetitionFactor(similarity)
		competition += similarity * co.Occupancy * factor
	}

	predation := 0.0
	const preferenceScale = 1e-7
	for _, p := range in.Predators {
		predation += p.PredatorPopulation * p.Preference * preferenceScale
	}
	predation = clip(predation, 0, 1)

	disease := 0.0
	if in.Population > 0 {
		density := in.Population / math.Max(1, in.MinViablePopulation*10)
		if density > cfg.DiseaseDensityFloor {
			disease = in.DiseasePressure * (density - cfg.DiseaseDensityFloor)
		}
	}

	totalPressure := mismatch + competition + predation + disease

	alleeModifier := 1.0
	if in.MinViablePopulation > 0 && in.Population < in.MinViablePopulation {
		ratio := in.Population / in.MinViablePopulation
		alleeModifier = 1 + cfg.AlleeMortalityWeight*(1-ratio)
	}

	deathRate := (1 - math.Exp(-totalPressure)) * alleeModifier
	deathRate = clip(deathRate, cfg.MinDeathRate, cfg.MaxDeathRate)

	deaths := math.Round(in.Population * deathRate)
	if deaths > in.Population {
		deaths = in.Population
	}
	survivors := in.Population - deaths

	return TileResult{DeathRate: deathRate, Deaths: deaths, Survivors: survivors}
}

// SpeciesResult aggregates per-tile results to the species level, per §4.3.
type SpeciesResult struct {
	BestTileRate  float64
	WorstTileRate float64
	HealthyTiles  int
	WarningTiles  int
	CriticalTiles int
	RefugeAvailable bool
}

// Aggregate rolls up per-tile TileResults into a SpeciesResult.
func Aggregate(results map[tile.ID]TileResult) SpeciesResult {
	cfg := simconfig.Cfg().Mortality
	agg := SpeciesResult{BestTileRate: math.Inf(1), WorstTileRate: math.Inf(-1)}
	for _, r := range results {
		if r.DeathRate < agg.BestTileRate {
			agg.BestTileRate = r.DeathRate
		}
		if r.DeathRate > agg.WorstTileRate {
			agg.WorstTileRate = r.DeathRate
		}
		switch {
		case r.DeathRate < 0.15:
			agg.HealthyTiles++
			agg.RefugeAvailable = true
		case r.DeathRate < cfg.RefugeThreshold*2.5:
			agg.WarningTiles++
		default:
			agg.CriticalTiles++
		}
	}
	if len(results) == 0 {
		agg.BestTileRate, agg.WorstTileRate = 0, 0
	}
	return agg
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
