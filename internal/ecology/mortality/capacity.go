// Package mortality implements the per-tile death-rate computation and the
// trophic-cascade carrying-capacity engine that reproduction consumes.
package mortality

import (
	"math"
	"sort"

	"evochron/internal/ecology/habitat"
	"evochron/internal/ecology/species"
	"evochron/internal/ecology/tile"
	"evochron/internal/simconfig"
	"evochron/internal/simlog"

	"context"
)

// EnvironmentalDelta carries the global changes the terrain module reports
// between turns (§6); capacity is penalised when these exceed thresholds.
type EnvironmentalDelta struct {
	TempChange     float64 // degrees C
	SeaLevelChange float64 // meters
}

// Capacity is the computed per-(species,tile) carrying capacity in kg,
// keyed by species lineage code then tile id.
type Capacity map[string]map[tile.ID]float64

// rangeBucket returns the half-integer trophic range a level falls into:
// [1.0,1.5) is the producer range; [1.5,2.0), [2.0,2.5), ... above it.
func rangeBucket(level float64) float64 {
	if level < 1.5 {
		return 1.0
	}
	return math.Floor((level-1.5)/0.5)*0.5 + 1.5
}

// ComputeCapacity implements the trophic-cascade carrying-capacity
// algorithm (§4.3): producers draw directly from tile resources; each
// consumer range draws 15% of the prey biomass pool one and a half to half
// a trophic level below it, split by suitability and body-size modifiers.
func ComputeCapacity(
	ctx context.Context,
	allSpecies []*species.Species,
	tiles map[tile.ID]tile.Tile,
	suitabilityOf func(speciesCode string, tileID tile.ID) float64,
	store *habitat.Store,
	delta EnvironmentalDelta,
) Capacity {
	cfg := simconfig.Cfg().Mortality
	logger := simlog.FromContext(ctx)

	byRange := make(map[float64][]*species.Species)
	for _, s := range allSpecies {
		if s.Status != species.StatusAlive {
			continue
		}
		byRange[rangeBucket(s.TrophicLevel)] = append(byRange[rangeBucket(s.TrophicLevel)], s)
	}

	ranges := make([]float64, 0, len(byRange))
	for r := range byRange {
		ranges = append(ranges, r)
	}
	sort.Float64s(ranges)

	capacity := make(Capacity)
	// biomassByRangeTile accumulates the pool each range produces/consumes,
	// per tile, so the next range up can draw 15% of it.
	biomassByRangeTile := make(map[float64]map[tile.ID]float64)

	envPenalty := 1.0
	if math.Abs(delta.TempChange) > cfg.TempChangePenaltyAbs {
		envPenalty *= 0.85
	}
	if math.Abs(delta.SeaLevelChange) > cfg.SeaLevelPenaltyAbs {
		envPenalty *= 0.85
	}

	for _, r := range ranges {
		members := byRange[r]
		pool := make(map[tile.ID]float64)

		if r < 1.5 {
			for tid, t := range tiles {
				pool[tid] = t.Resources * cfg.ProducerCapacityKg * envPenalty
			}
		} else {
			for tid := range tiles {
				available := 0.0
				for preyRange := r - 1.5; preyRange <= r-0.5+1e-9; preyRange += 0.5 {
					if preyBiomass, ok := biomassByRangeTile[preyRange]; ok {
						available += preyBiomass[tid]
					}
				}
				pool[tid] = available * cfg.EcologicalEfficiency * envPenalty
			}
		}

		for tid, total := range pool {
			weights := make(map[string]float64, len(members))
			sumWeights := 0.0
			for _, s := range members {
				suit := suitabilityOf(s.LineageCode, tid)
				if suit <= 0 {
					continue
				}
				modifier := bodySizeModifier(s, r >= 1.5)
				w := suit * modifier
				weights[s.LineageCode] = w
				sumWeights += w
			}

			if sumWeights <= 0 {
				if r >= 1.5 && total == 0 {
					producerCapForTile := 0.0
					if t, ok := tiles[tid]; ok {
						producerCapForTile = t.Resources * cfg.ProducerCapacityKg
					}
					fallback := producerCapForTile * cfg.FallbackCapacityShare
					if fallback > 0 {
						logger.Warn().Str("tile", string(tid)).Float64("range", r).
							Msg("no viable prey at consumer range, using fallback capacity")
					}
					for _, s := range members {
						if capacity[s.LineageCode] == nil {
							capacity[s.LineageCode] = make(map[tile.ID]float64)
						}
						capacity[s.LineageCode][tid] += fallback / float64(max(1, len(members)))
					}
				}
				continue
			}

			for _, s := range members {
				w, ok := weights[s.LineageCode]
				if !ok {
					continue
				}
				share := total * (w / sumWeights)
				if capacity[s.LineageCode] == nil {
					capacity[s.LineageCode] = make(map[tile.ID]float64)
				}
				capacity[s.LineageCode][tid] += share
			}
		}

		rangeTotal := make(map[tile.ID]float64)
		for _, s := range members {
			for tid, cap := range capacity[s.LineageCode] {
				rangeTotal[tid] += cap
			}
		}
		biomassByRangeTile[r] = rangeTotal
	}

	return capacity
}

// bodySizeModifier scales capacity share by body size: larger producers
// claim more of a fixed resource pool (they need more biomass per
// individual, but here capacity is in biomass terms so larger body size is
// a small bonus); larger consumers need proportionally less prey pool per
// unit biomass claimed, so the modifier flips sign by trophic role.
func bodySizeModifier(s *species.Species, isConsumer bool) float64 {
	length := s.MorphologyStats["body_length_cm"]
	if length <= 0 {
		length = 1
	}
	logLen := math.Log10(length + 1)
	if isConsumer {
		return 1.0 / (1.0 + 0.1*logLen)
	}
	return 1.0 + 0.05*logLen
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
