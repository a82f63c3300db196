package speciation

import (
	"fmt"
	"strings"

	"evochron/internal/ecology/species"
	"evochron/internal/ecology/tile"
	"evochron/internal/ecoerrors"
)

// habitatTransitions lists the habitat pairs a single speciation event may
// legally cross (amphibious intermediates both ways); anything else is
// reverted to the parent's habitat.
var habitatTransitions = map[tile.HabitatType]map[tile.HabitatType]bool{}

func init() {
	legal := [][2]tile.HabitatType{
		{tile.HabitatFreshwater, tile.HabitatAmphibious},
		{tile.HabitatAmphibious, tile.HabitatTerrestrial},
		{tile.HabitatAmphibious, tile.HabitatCoastal},
		{tile.HabitatCoastal, tile.HabitatMarine},
		{tile.HabitatTerrestrial, tile.HabitatAerial},
		{tile.HabitatMarine, tile.HabitatDeepSea},
	}
	for _, pair := range legal {
		if habitatTransitions[pair[0]] == nil {
			habitatTransitions[pair[0]] = map[tile.HabitatType]bool{}
		}
		habitatTransitions[pair[0]][pair[1]] = true
		if habitatTransitions[pair[1]] == nil {
			habitatTransitions[pair[1]] = map[tile.HabitatType]bool{}
		}
		habitatTransitions[pair[1]][pair[0]] = true
	}
}

// ValidateHabitatTransition reverts child to parent's habitat type if the
// proposed transition isn't an adjacency the table permits.
func ValidateHabitatTransition(child *species.Species, parentHabitat tile.HabitatType) {
	if child.HabitatType == parentHabitat {
		return
	}
	if allowed, ok := habitatTransitions[parentHabitat]; ok && allowed[child.HabitatType] {
		return
	}
	child.HabitatType = parentHabitat
}

// ValidatePreyList repairs a child's prey list/preferences so the
// invariants in species.Validate hold: preferences reference only listed
// prey and sum to ~1, falling back to the parent's prey list if the
// proposal leaves a predator with no valid prey.
func ValidatePreyList(child, parent *species.Species) {
	if child.TrophicLevel < 2.0 {
		child.PreySpecies = nil
		child.PreyPreferences = map[string]float64{}
		return
	}

	valid := make([]string, 0, len(child.PreySpecies))
	for _, p := range child.PreySpecies {
		if ecoerrors.Is(species.ValidatePredatorPreyGap(child, &species.Species{TrophicLevel: preyLevel(p, parent)}), ecoerrors.KindInvariantViolation) {
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		valid = append([]string{}, parent.PreySpecies...)
	}
	child.PreySpecies = valid

	prefs := map[string]float64{}
	sum := 0.0
	for _, p := range valid {
		v := child.PreyPreferences[p]
		if v <= 0 {
			v = 1.0
		}
		prefs[p] = v
		sum += v
	}
	if sum > 0 {
		for p, v := range prefs {
			prefs[p] = v / sum
		}
	}
	child.PreyPreferences = prefs
}

func preyLevel(preyCode string, parent *species.Species) float64 {
	// without a species registry lookup available at this layer, assume
	// prey trophic level one below the parent as a conservative estimate;
	// callers with a full registry should re-validate post-commit.
	_ = preyCode
	return parent.TrophicLevel - 1.0
}

// ValidateOrganStageChanges caps the number of organ systems that may
// change in a single speciation event (≤2) and the number of stage
// levels any one organ may jump (≤2), per §4.4.
func ValidateOrganStageChanges(child, parent *species.Species) {
	changed := 0
	for category, organ := range child.Organs {
		parentStage := 0
		if po, ok := parent.Organs[category]; ok {
			parentStage = po.EvolutionStage
		}
		if organ.EvolutionStage == parentStage {
			continue
		}
		changed++
		if organ.EvolutionStage-parentStage > 2 {
			organ.EvolutionStage = parentStage + 2
		}
		if changed > 2 {
			organ.EvolutionStage = parentStage
		}
	}
}

// ValidateTraitBudget clamps a child's abstract traits to the trophic/era
// trait budget, scaling every trait down by the same factor if over budget.
func ValidateTraitBudget(child *species.Species, era string) {
	budget := species.TraitBudget(child.TrophicLevel, era)
	sum := 0.0
	for _, v := range child.AbstractTraits {
		sum += v
	}
	if sum <= budget {
		return
	}
	scale := budget / sum
	for name, v := range child.AbstractTraits {
		child.AbstractTraits[name] = v * scale
	}
}

// FallbackContent synthesises a minimal, rule-based ProposedChanges bundle
// when AI content generation is unavailable (§6/§7's degradation path),
// so the pipeline never blocks on the content service.
func FallbackContent(parent *species.Species, axis string, siblingIndex int) ProposedChanges {
	changes := ProposedChanges{
		MorphologyChanges: map[string]float64{},
		TraitChanges:      map[string]float64{},
		HabitatType:        string(parent.HabitatType),
	}

	switch axis {
	case "environment_adapter":
		changes.TraitChanges["temperature_tolerance"] = 1.0
		changes.TraitChanges["drought_tolerance"] = -0.5
	case "activity_specialist":
		changes.TraitChanges["speed"] = 1.0
		changes.TraitChanges["stamina"] = -0.5
	case "reproduction_specialist":
		changes.TraitChanges["reproduction_speed"] = 1.0
		changes.TraitChanges["lifespan"] = -0.5
	case "defender":
		changes.TraitChanges["defense"] = 1.0
		changes.TraitChanges["speed"] = -0.5
	default:
		changes.TraitChanges["size"] = 1.0
		changes.TraitChanges["metabolic_efficiency"] = -0.5
	}

	changes.LatinName = fmt.Sprintf("%s sp%d", strings.TrimSuffix(parent.LatinName, " sp"), siblingIndex+1)
	changes.CommonName = fmt.Sprintf("%s variant %d", parent.CommonName, siblingIndex+1)
	changes.Description = fmt.Sprintf("a %s-lineage descendant of %s, diverging along the %s axis", parent.GenusCode, parent.CommonName, axis)
	return changes
}
