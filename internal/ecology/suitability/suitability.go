// Package suitability computes the per-(species,tile) fitness matrix the
// territory, mortality and reproduction stages consume. The computation is
// side-effect-free and deterministic: a pure function of a species/tile
// snapshot to a dense matrix.
package suitability

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"evochron/internal/ecology/species"
	"evochron/internal/ecology/tile"
	"evochron/internal/simconfig"
)

const (
	weightTemperature = 0.35
	weightHumidity    = 0.30
	weightResource    = 0.35

	hardColdFloor = -30.0
	hardHeatCeil  = 50.0
)

// Matrix is the dense (|species|, |tiles|) suitability matrix, with the
// ordered id lists that index its rows and columns.
type Matrix struct {
	Values       *mat.Dense
	SpeciesCodes []string
	TileIDs      []tile.ID
}

// At returns S[i,j] for the given species/tile codes, or 0 if either is
// not present in the matrix.
func (m *Matrix) At(speciesCode string, tileID tile.ID) float64 {
	si := indexOf(m.SpeciesCodes, speciesCode)
	ti := indexOfTile(m.TileIDs, tileID)
	if si < 0 || ti < 0 {
		return 0
	}
	return m.Values.At(si, ti)
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

func indexOfTile(list []tile.ID, v tile.ID) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// Compute builds the suitability matrix for the given species over the
// given tiles. habitatCompatible reports whether a species' habitat type
// can survive on a tile's derived habitat (exact match or an adjacency-
// table neighbor); a false result zeroes the whole row entry for that tile.
func Compute(speciesList []*species.Species, tiles []tile.Tile) *Matrix {
	adjacency := simconfig.Cfg().Habitat.Adjacency

	codes := make([]string, len(speciesList))
	for i, s := range speciesList {
		codes[i] = s.LineageCode
	}
	ids := make([]tile.ID, len(tiles))
	for j, t := range tiles {
		ids[j] = t.ID
	}

	values := mat.NewDense(len(speciesList), len(tiles), nil)

	for i, s := range speciesList {
		coldTolerance := s.AbstractTraits["cold_tolerance"]
		heatTolerance := s.AbstractTraits["heat_tolerance"]
		droughtTolerance := s.AbstractTraits["drought_tolerance"]
		preferredHumidity := clip(1-droughtTolerance/10, 0, 1)

		for j, t := range tiles {
			if !habitatCompatible(s.HabitatType, t.HabitatOf(), adjacency) {
				values.Set(i, j, 0)
				continue
			}
			if t.Temperature < hardColdFloor || t.Temperature > hardHeatCeil {
				values.Set(i, j, 0)
				continue
			}

			tolerance := toleranceScore(t, coldTolerance, heatTolerance, preferredHumidity)
			resourceScore := resourceScoreOf(t.Resources)

			combined := (weightTemperature+weightHumidity)*tolerance + weightResource*resourceScore
			values.Set(i, j, clip(combined, 0, 1))
		}
	}

	return &Matrix{Values: values, SpeciesCodes: codes, TileIDs: ids}
}

// ToleranceScore reports how well a species' temperature and humidity
// tolerances match a tile, independent of resource abundance. Mortality's
// tolerance-mismatch term (§4.3) uses this instead of the full
// resource-blended suitability score, so a resource-scarce but
// climatically ideal tile isn't mistaken for a poor climate match.
func ToleranceScore(s *species.Species, t tile.Tile) float64 {
	coldTolerance := s.AbstractTraits["cold_tolerance"]
	heatTolerance := s.AbstractTraits["heat_tolerance"]
	droughtTolerance := s.AbstractTraits["drought_tolerance"]
	preferredHumidity := clip(1-droughtTolerance/10, 0, 1)

	if t.Temperature < hardColdFloor || t.Temperature > hardHeatCeil {
		return 0
	}
	return toleranceScore(t, coldTolerance, heatTolerance, preferredHumidity)
}

// toleranceScore blends the temperature and humidity sub-scores, weighted
// the same as they are within Compute's combined suitability score but
// renormalized to their own [0,1] range.
func toleranceScore(t tile.Tile, coldTolerance, heatTolerance, preferredHumidity float64) float64 {
	tempScore := temperatureScore(t.Temperature, coldTolerance, heatTolerance)
	humidityScore := clip(1-math.Abs(t.Humidity-preferredHumidity), 0, 1)
	tempWeight := weightTemperature / (weightTemperature + weightHumidity)
	humidityWeight := weightHumidity / (weightTemperature + weightHumidity)
	return clip(tempWeight*tempScore+humidityWeight*humidityScore, 0, 1)
}

func temperatureScore(temp, coldTolerance, heatTolerance float64) float64 {
	switch {
	case temp > 20:
		return clip(heatTolerance/10, 0, 1)
	case temp < 5:
		return clip(coldTolerance/10, 0, 1)
	default:
		return 0.8
	}
}

func resourceScoreOf(resource float64) float64 {
	if resource <= 0 {
		return 0
	}
	return clip(math.Log1p(resource)/math.Log1p(10), 0, 1)
}

func habitatCompatible(speciesHabitat, tileHabitat tile.HabitatType, adjacency map[string][]string) bool {
	if speciesHabitat == tileHabitat {
		return true
	}
	for _, neighbor := range adjacency[string(speciesHabitat)] {
		if tile.HabitatType(neighbor) == tileHabitat {
			return true
		}
	}
	return false
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
