package species

import (
	"fmt"
	"math"

	"evochron/internal/ecoerrors"
	"evochron/internal/simconfig"
)

// TraitBudget returns the sum limit for a species given its trophic level
// and the active era, per the trait_budget config table.
func TraitBudget(trophicLevel float64, era string) float64 {
	cfg := simconfig.Cfg().TraitBudget
	limit := cfg.BaseLimit + trophicLevel*cfg.TrophicMultiplier
	if cap, ok := cfg.EraCaps[era]; ok && cap < limit {
		limit = cap
	}
	return limit
}

// Validate checks the invariants listed in spec §3/§8 that are checkable
// from the species' own fields (cross-species invariants such as
// prey-alive-or-pruned are checked by the pipeline after all species are
// loaded). Returns an ecoerrors.SimError of KindInvariantViolation on the
// first violation found.
func (s *Species) Validate(era string) error {
	for name, v := range s.AbstractTraits {
		if v < 0 || v > 15 {
			return ecoerrors.New(ecoerrors.KindInvariantViolation,
				fmt.Sprintf("trait %s=%.2f out of [0,15] on %s", name, v, s.LineageCode))
		}
	}

	sum := 0.0
	over := 0
	specializedLimit := simconfig.Cfg().TraitBudget.SpecializedLimit
	baseLimit := simconfig.Cfg().TraitBudget.BaseLimit / float64(max(1, len(s.AbstractTraits)))
	for _, v := range s.AbstractTraits {
		sum += v
		if v > baseLimit {
			over++
		}
		if v > specializedLimit {
			return ecoerrors.New(ecoerrors.KindInvariantViolation,
				fmt.Sprintf("trait exceeds specialized limit on %s", s.LineageCode))
		}
	}
	if limit := TraitBudget(s.TrophicLevel, era); sum > limit {
		return ecoerrors.New(ecoerrors.KindInvariantViolation,
			fmt.Sprintf("trait sum %.2f exceeds budget %.2f on %s", sum, limit, s.LineageCode))
	}
	if over > 2 {
		return ecoerrors.New(ecoerrors.KindInvariantViolation,
			fmt.Sprintf("more than two traits exceed base limit on %s", s.LineageCode))
	}

	if s.TrophicLevel < 2.0 {
		if len(s.PreySpecies) != 0 || s.DietType != DietAutotroph {
			return ecoerrors.New(ecoerrors.KindInvariantViolation,
				fmt.Sprintf("species %s below trophic 2.0 must be autotroph with no prey", s.LineageCode))
		}
	}

	if len(s.PreySpecies) > 0 {
		preySet := make(map[string]bool, len(s.PreySpecies))
		for _, p := range s.PreySpecies {
			preySet[p] = true
		}
		sumPref := 0.0
		for code := range s.PreyPreferences {
			if !preySet[code] {
				return ecoerrors.New(ecoerrors.KindInvariantViolation,
					fmt.Sprintf("prey_preferences key %s not in prey_species on %s", code, s.LineageCode))
			}
		}
		for _, w := range s.PreyPreferences {
			sumPref += w
		}
		if len(s.PreyPreferences) > 0 && math.Abs(sumPref-1.0) > 0.1 {
			return ecoerrors.New(ecoerrors.KindInvariantViolation,
				fmt.Sprintf("prey_preferences sum %.3f deviates from 1 on %s", sumPref, s.LineageCode))
		}
	}

	if s.IsPlant() {
		if !ValidGrowthForm(s.GrowthForm, s.LifeFormStage) {
			return ecoerrors.New(ecoerrors.KindInvariantViolation,
				fmt.Sprintf("growth form %s invalid for stage %d on %s", s.GrowthForm, s.LifeFormStage, s.LineageCode))
		}
	}

	if s.TaxonomicRank == RankHybrid {
		if len(s.HybridParentCodes) == 0 {
			return ecoerrors.New(ecoerrors.KindInvariantViolation,
				fmt.Sprintf("hybrid %s missing parent codes", s.LineageCode))
		}
		if s.HybridFertility < 0 || s.HybridFertility > 1 {
			return ecoerrors.New(ecoerrors.KindInvariantViolation,
				fmt.Sprintf("hybrid fertility out of range on %s", s.LineageCode))
		}
	} else if len(s.HybridParentCodes) != 0 {
		return ecoerrors.New(ecoerrors.KindInvariantViolation,
			fmt.Sprintf("non-hybrid %s carries hybrid parent codes", s.LineageCode))
	}

	return nil
}

// ValidatePredatorPreyGap checks that a prey's trophic level is within the
// allowed gap of the predator's (§3, §8). Called by the pipeline once both
// species are resolved.
func ValidatePredatorPreyGap(predator, prey *Species) error {
	gap := predator.TrophicLevel - prey.TrophicLevel
	if gap < 0.3 || gap > 3.0 {
		return ecoerrors.New(ecoerrors.KindInvariantViolation,
			fmt.Sprintf("trophic gap %.2f between %s and prey %s out of [0.3,3.0]", gap, predator.LineageCode, prey.LineageCode))
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
