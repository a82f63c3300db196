package speciation

import (
	"math/rand"

	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

// CandidateInputs bundles the signals candidate detection needs beyond
// what's on the Species struct itself.
type CandidateInputs struct {
	CandidatePopulation float64
	AveragePressure     float64
	ResourcePressure    float64
	GeographicIsolation bool
	TileDeathRates      []float64 // death rates across candidate tiles
	CurrentTurn         int
	SpeciesCount        int // total alive species, for density damping
	SameGenusSiblings   int
}

// Eligible reports whether all candidate-detection preconditions hold,
// per §4.4, before the probability check.
func Eligible(s *species.Species, in CandidateInputs) bool {
	cfg := simconfig.Cfg().Speciation

	threshold := PopulationThreshold(s)
	if in.CandidatePopulation < threshold {
		return false
	}

	evolutionPotential := s.HiddenTraits["evolution_potential"]
	if evolutionPotential < cfg.EvolutionPotentialMin && s.AccumulatedSpeciationPressure < cfg.AccumulatedPressureMin {
		return false
	}

	pressureOK := in.AveragePressure >= cfg.PressureLow && in.AveragePressure <= cfg.PressureHigh
	resourceOK := in.ResourcePressure > cfg.ResourcePressureMin
	if !pressureOK && !resourceOK && !in.GeographicIsolation {
		return false
	}

	if in.CurrentTurn-s.LastSpeciationTurn < cfg.CooldownTurns {
		return false
	}

	for _, rate := range in.TileDeathRates {
		if rate < cfg.DeathRateLow || rate > cfg.DeathRateHigh {
			return false
		}
	}

	return true
}

// ProbabilityCheck runs the stochastic speciation gate: base rate,
// damped by population density, boosted by evolution potential,
// geographic isolation, and accumulated pressure.
func ProbabilityCheck(s *species.Species, in CandidateInputs, r *rand.Rand) bool {
	cfg := simconfig.Cfg().Speciation

	densityDamping := 1.0
	if in.SpeciesCount > int(cfg.SoftCapPopulation) {
		excess := float64(in.SpeciesCount) - cfg.SoftCapPopulation
		densityDamping = 1.0 / (1.0 + excess/cfg.SoftCapPopulation)
	}

	potentialBonus := 0.0
	if v := s.HiddenTraits["evolution_potential"]; v > cfg.EvolutionPotentialMin {
		potentialBonus = (v - cfg.EvolutionPotentialMin) * 0.3
	}

	geoBonus := 0.0
	if in.GeographicIsolation {
		geoBonus = 0.10
	}

	eventBonus := 0.0 // reserved for major-environmental-event hooks

	probability := cfg.BaseProbability*densityDamping + potentialBonus + geoBonus + eventBonus + s.AccumulatedSpeciationPressure
	return r.Float64() < probability
}

// RecordFailure increments accumulated speciation pressure when all
// conditions were met but the probability check failed, capped per §4.4.
func RecordFailure(s *species.Species) {
	cfg := simconfig.Cfg().Speciation
	s.AccumulatedSpeciationPressure += cfg.AccumulatedPressureStep
	if s.AccumulatedSpeciationPressure > cfg.AccumulatedPressureCap {
		s.AccumulatedSpeciationPressure = cfg.AccumulatedPressureCap
	}
}

// OffspringCount computes the number of children per §4.4: base 2, plus
// bonuses for population size and evolution potential, minus density and
// sibling penalties, clamped to [1,4] with a 30% chance of a -1 jitter.
func OffspringCount(s *species.Species, totalPopulation float64, totalSpeciesCount, sameGenusSiblings int, r *rand.Rand) int {
	cfg := simconfig.Cfg().Speciation
	count := 2.0

	if totalPopulation > 1e9 {
		count += 1
	}
	if s.HiddenTraits["evolution_potential"] > 0.90 {
		count += 1
	}

	if totalSpeciesCount > cfg.DensityPenaltySpecies2 {
		count -= 2
	} else if totalSpeciesCount > cfg.DensityPenaltySpecies1 {
		count -= 1
	}

	if sameGenusSiblings >= cfg.SiblingPenaltyHard {
		count -= 2
	} else if sameGenusSiblings >= cfg.SiblingPenaltySoft {
		count -= 1
	}

	if r.Float64() < cfg.JitterDownProbability {
		count -= 1
	}

	if count < 1 {
		count = 1
	}
	if count > 4 {
		count = 4
	}
	return int(count)
}
