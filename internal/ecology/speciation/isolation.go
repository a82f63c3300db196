package speciation

import (
	"evochron/internal/ecology/tile"
	"evochron/internal/simconfig"
)

// Type enumerates the speciation mechanism detected for a candidate.
type Type string

const (
	TypeGeographicIsolation   Type = "geographic_isolation"
	TypeEcologicalSpecialization Type = "ecological_specialization"
	TypeCoevolution            Type = "coevolution"
	TypeEcologicalIsolation    Type = "ecological_isolation"
	TypeRadiation              Type = "radiation"
)

// IsolationResult is the outcome of geographic isolation detection over a
// candidate species' occupied tiles.
type IsolationResult struct {
	Components      [][]tile.ID
	MortalityGradient float64 // max - min per-component mean death rate
}

// DetectIsolation partitions the candidate's occupied tiles into connected
// components via the grid's adjacency graph and computes the per-
// component mean death rate gradient (§4.4).
func DetectIsolation(grid *tile.Grid, occupiedTiles []tile.ID, deathRateByTile map[tile.ID]float64) IsolationResult {
	components := grid.ConnectedComponents(occupiedTiles)

	minMean, maxMean := 1.0, 0.0
	first := true
	for _, comp := range components {
		sum := 0.0
		for _, tid := range comp {
			sum += deathRateByTile[tid]
		}
		mean := sum / float64(len(comp))
		if first {
			minMean, maxMean = mean, mean
			first = false
		}
		if mean < minMean {
			minMean = mean
		}
		if mean > maxMean {
			maxMean = mean
		}
	}

	return IsolationResult{Components: components, MortalityGradient: maxMean - minMean}
}

// Classify determines the speciation Type per §4.4's decision order.
func Classify(isolation IsolationResult, extremeEvent bool, nicheOverlapWithCongener float64, thrivingNoPressure bool) Type {
	cfg := simconfig.Cfg().Speciation
	switch {
	case len(isolation.Components) >= 2 || isolation.MortalityGradient > cfg.IsolationGradient:
		return TypeGeographicIsolation
	case extremeEvent:
		return TypeEcologicalSpecialization
	case nicheOverlapWithCongener > cfg.NicheOverlapCoevolution:
		return TypeCoevolution
	case thrivingNoPressure:
		return TypeRadiation
	default:
		return TypeEcologicalIsolation
	}
}
