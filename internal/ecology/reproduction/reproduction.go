// Package reproduction implements the per-tile logistic growth step and
// the redistribution rule that turns per-tile survivor counts back into a
// species-level population distributed across its tiles.
package reproduction

import (
	"math"

	"evochron/internal/ecology/tile"
	"evochron/internal/simconfig"
)

// Inputs bundles what one (species, tile) reproduction step needs.
type Inputs struct {
	Survivors          float64
	Capacity           float64 // carrying capacity K for this species at this tile
	ReproductionSpeed  float64 // abstract trait, [0,15]
	GenerationTimeDays float64
	TurnYears          float64
	SurvivalRate       float64 // survivors / prior population, [0,1]
}

// TileOutcome is the result of one (species, tile) reproduction step.
type TileOutcome struct {
	NewPopulation float64
	EffectiveRate float64
}

// maxGenerationSteps bounds how many discrete logistic steps ComputeTile
// will actually iterate per turn. A turn can span generationsPerTurn
// generations numbering in the hundreds of millions for fast-reproducing
// species; since logisticStep's delta shrinks to ~0 as population
// approaches capacity, iterating far beyond this many steps changes the
// result negligibly, so the loop is capped rather than run in full.
const maxGenerationSteps = 60

// ComputeTile implements §4.3's logistic reproduction formula: an
// intrinsic rate scaled by reproduction speed and generation turnover,
// modulated by survival and resource saturation, then integrated one
// generation at a time across the turn (capped per generation at
// GrowthStepCap/DeclineStepCap) rather than as a single per-turn step, and
// clamped to the absolute population ceiling.
func ComputeTile(in Inputs) TileOutcome {
	cfg := simconfig.Cfg().Reproduction

	if in.Survivors <= 0 {
		return TileOutcome{NewPopulation: 0}
	}

	generationsPerTurn := math.Max(10, in.TurnYears*365.25/math.Max(1, in.GenerationTimeDays))
	generationScale := math.Log10(generationsPerTurn) / cfg.GenerationScaleDiv

	intrinsicRate := in.ReproductionSpeed * cfg.IntrinsicRateScale * generationScale

	survivalModifier := clip2((in.SurvivalRate-0.5)*1.5, cfg.SurvivalModMin, math.Inf(1))

	effectiveRate := intrinsicRate + survivalModifier
	if in.Capacity > 0 {
		saturation := in.Survivors / in.Capacity
		if saturation > cfg.SaturationThreshold {
			effectiveRate -= 0.05 * (saturation - cfg.SaturationThreshold)
		}
	}
	effectiveRate = clip2(effectiveRate, cfg.EffectiveRateMin, cfg.EffectiveRateMax)

	steps := int(math.Min(generationsPerTurn, maxGenerationSteps))
	newPopulation := in.Survivors
	for i := 0; i < steps; i++ {
		newPopulation = logisticStep(newPopulation, in.Capacity, effectiveRate, cfg.GrowthStepCap, cfg.DeclineStepCap)
	}

	if math.IsInf(newPopulation, 0) || math.IsNaN(newPopulation) {
		newPopulation = math.Min(in.Capacity, cfg.AbsoluteCapKg)
	}
	if newPopulation > cfg.AbsoluteCapKg {
		newPopulation = cfg.AbsoluteCapKg
	}
	if newPopulation < 0 {
		newPopulation = 0
	}

	return TileOutcome{NewPopulation: newPopulation, EffectiveRate: effectiveRate}
}

// logisticStep integrates one generation of logistic growth with hard
// per-step caps on growth and decline, since an uncapped logistic curve
// would overshoot instantly given how large effectiveRate can compound to
// across many generations in a single turn.
func logisticStep(population, capacity, rate, growthCap, declineCap float64) float64 {
	if capacity <= 0 {
		capacity = population // no known capacity: hold steady rather than collapse
	}
	logisticDelta := rate * population * (1 - population/math.Max(capacity, 1e-9))

	maxGrowth := population * growthCap
	maxDecline := population * declineCap

	delta := clip2(logisticDelta, -maxDecline, maxGrowth)
	return population + delta
}

func clip2(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Redistribute implements §4.3's redistribution rule: tiles receive shares
// proportional to the species' prior distribution; a species with no
// prior distribution (newly speciated this turn) keeps the tiles the
// speciation stage assigned rather than spreading to every tile.
func Redistribute(total float64, priorShares map[tile.ID]float64, newlyAssignedTiles []tile.ID) map[tile.ID]float64 {
	out := make(map[tile.ID]float64)
	if len(priorShares) > 0 {
		for tid, share := range priorShares {
			out[tid] = total * share
		}
		return out
	}
	if len(newlyAssignedTiles) == 0 {
		return out
	}
	each := total / float64(len(newlyAssignedTiles))
	for _, tid := range newlyAssignedTiles {
		out[tid] = each
	}
	return out
}
