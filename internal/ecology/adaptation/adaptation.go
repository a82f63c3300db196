// Package adaptation implements the gradual trait-drift, organ-drift,
// organ-stage-progression and regression algorithms applied to every alive
// species each turn (§4.5). All randomness is drawn from a caller-supplied
// *rand.Rand so results remain reproducible given the turn seed.
package adaptation

import (
	"math"
	"math/rand"

	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

// Pressure is one active environmental pressure this turn, linking a
// pressure type to the trait(s) it drives and its intensity.
type Pressure struct {
	Type      string
	Trait     string
	Intensity float64 // arbitrary positive scale, consumed as a multiplier
}

var organWhitelist = map[string]bool{
	"efficiency": true, "speed": true, "range": true, "strength": true,
	"defense": true, "rate": true, "cost": true,
	"capacity": true, "density": true, "resistance": true,
	"production": true, "absorption": true,
}

// DriftTraits applies gradual trait drift for each pressure whose linked
// trait is present on the species, per §4.5's gradual_evolution_rate.
func DriftTraits(s *species.Species, pressures []Pressure, generations float64, r *rand.Rand) {
	cfg := simconfig.Cfg().Adaptation
	scale := math.Log10(math.Max(10, generations)) / cfg.GenerationScaleDiv

	for _, p := range pressures {
		if _, ok := s.AbstractTraits[p.Trait]; !ok {
			continue
		}
		if r.Float64() >= cfg.GradualEvolutionRate {
			continue
		}
		delta := 0.1 * scale * p.Intensity
		s.AbstractTraits[p.Trait] = clip(s.AbstractTraits[p.Trait]+delta, 0, 15)

		if s.IsPlant() && r.Float64() < cfg.PlantTradeoffChance {
			applyCostTradeoff(s, p.Trait, delta)
		}
	}
}

// plantCostTrait links a growth trait to the cost trait that tradeoff
// should debit; species lacking an entry are unaffected.
var plantCostTrait = map[string]string{
	"photosynthesis_efficiency": "root_development",
	"drought_tolerance":         "photosynthesis_efficiency",
	"lignification":             "reproduction_speed",
}

func applyCostTradeoff(s *species.Species, grownTrait string, delta float64) {
	cost, ok := plantCostTrait[grownTrait]
	if !ok {
		return
	}
	if v, ok := s.AbstractTraits[cost]; ok {
		s.AbstractTraits[cost] = clip(v-delta*0.5, 0, 15)
	}
}

// DriftOrganParameters drifts whitelisted organ parameters toward the
// active pressure's target parameter set with the configured probability.
func DriftOrganParameters(s *species.Species, pressures []Pressure, r *rand.Rand) {
	cfg := simconfig.Cfg().Adaptation
	if len(pressures) == 0 {
		return
	}
	for _, organ := range s.Organs {
		for name, value := range organ.Parameters {
			if !organWhitelist[name] {
				continue
			}
			if r.Float64() >= cfg.OrganDriftProbability {
				continue
			}
			delta := cfg.OrganDriftMin + r.Float64()*(cfg.OrganDriftMax-cfg.OrganDriftMin)
			if r.Float64() < 0.5 {
				delta = -delta
			}
			organ.Parameters[name] = math.Max(0, value+delta)
		}
	}
}

// ProgressOrganStages advances organs in stages 1-3 toward the next stage
// threshold (stage_n -> n/4 progress), incrementing the stage when
// crossed. Stage >= 2 activates the organ.
func ProgressOrganStages(s *species.Species, pressureMultiplier, generationMultiplier float64, turn int, r *rand.Rand) {
	cfg := simconfig.Cfg().Adaptation
	for category, organ := range s.Organs {
		if organ.EvolutionStage < 1 || organ.EvolutionStage > 3 {
			continue
		}
		if r.Float64() < cfg.StagnationChance {
			continue
		}
		base := cfg.StageProgressBase + r.Float64()*(cfg.StageProgressMax-cfg.StageProgressBase)
		progress := base * pressureMultiplier * generationMultiplier
		if r.Float64() < cfg.BreakthroughChance {
			progress *= 2
		}
		organ.EvolutionProgress += progress

		threshold := float64(organ.EvolutionStage+1) / 4.0
		if organ.EvolutionProgress >= threshold {
			fromStage := organ.EvolutionStage
			organ.EvolutionStage++
			organ.EvolutionProgress = 0
			if organ.EvolutionStage >= 2 {
				organ.IsActive = true
			}
			organ.EvolutionHistory = append(organ.EvolutionHistory, species.EvolutionEvent{
				Turn: turn, FromStage: fromStage, ToStage: organ.EvolutionStage,
				Description: "stage progression: " + string(category),
			})
		}
	}
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
