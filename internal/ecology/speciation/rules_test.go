package speciation

import (
	"testing"

	"evochron/internal/ecology/species"
	"evochron/internal/ecology/tile"
)

func TestValidateHabitatTransitionAllowsAdjacentPair(t *testing.T) {
	child := &species.Species{HabitatType: tile.HabitatAmphibious}
	ValidateHabitatTransition(child, tile.HabitatFreshwater)
	if child.HabitatType != tile.HabitatAmphibious {
		t.Errorf("HabitatType = %v, a legal freshwater->amphibious transition should be kept", child.HabitatType)
	}
}

func TestValidateHabitatTransitionRevertsIllegalJump(t *testing.T) {
	child := &species.Species{HabitatType: tile.HabitatDeepSea}
	ValidateHabitatTransition(child, tile.HabitatTerrestrial)
	if child.HabitatType != tile.HabitatTerrestrial {
		t.Errorf("HabitatType = %v, an illegal terrestrial->deep sea jump should revert to the parent's habitat", child.HabitatType)
	}
}

func TestValidatePreyListClearsBelowCarnivoreThreshold(t *testing.T) {
	child := &species.Species{TrophicLevel: 1.5, PreySpecies: []string{"A1"}, PreyPreferences: map[string]float64{"A1": 1.0}}
	parent := &species.Species{TrophicLevel: 2.0}
	ValidatePreyList(child, parent)
	if len(child.PreySpecies) != 0 {
		t.Error("a species below trophic 2.0 should have no prey")
	}
}

func TestValidatePreyListNormalizesPreferences(t *testing.T) {
	child := &species.Species{
		TrophicLevel:    3.0,
		PreySpecies:     []string{"A1", "A2"},
		PreyPreferences: map[string]float64{"A1": 2.0, "A2": 2.0},
	}
	parent := &species.Species{TrophicLevel: 3.0, PreySpecies: []string{"A1", "A2"}}
	ValidatePreyList(child, parent)

	sum := 0.0
	for _, v := range child.PreyPreferences {
		sum += v
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("preference sum = %v, want ~1.0 after normalization", sum)
	}
}

func TestValidatePreyListFallsBackToParentWhenNoValidPrey(t *testing.T) {
	child := &species.Species{TrophicLevel: 3.0, PreySpecies: []string{}}
	parent := &species.Species{TrophicLevel: 3.0, PreySpecies: []string{"P1", "P2"}}
	ValidatePreyList(child, parent)
	if len(child.PreySpecies) != 2 {
		t.Errorf("PreySpecies = %v, should fall back to parent's prey list when the proposal leaves none", child.PreySpecies)
	}
}

func TestValidateOrganStageChangesCapsJump(t *testing.T) {
	child := &species.Species{
		Organs: map[species.OrganCategory]*species.Organ{
			species.OrganPhotosynthetic: {EvolutionStage: 4},
		},
	}
	parent := &species.Species{Organs: map[species.OrganCategory]*species.Organ{}}
	ValidateOrganStageChanges(child, parent)

	if child.Organs[species.OrganPhotosynthetic].EvolutionStage > 2 {
		t.Errorf("EvolutionStage = %d, a single speciation event should cap a stage jump at 2", child.Organs[species.OrganPhotosynthetic].EvolutionStage)
	}
}

func TestValidateTraitBudgetScalesDownOverBudget(t *testing.T) {
	child := &species.Species{
		TrophicLevel:   1.0,
		AbstractTraits: map[string]float64{"a": 100, "b": 100},
	}
	ValidateTraitBudget(child, "precambrian")

	sum := 0.0
	for _, v := range child.AbstractTraits {
		sum += v
	}
	budget := species.TraitBudget(1.0, "precambrian")
	if sum > budget+0.01 {
		t.Errorf("trait sum = %v, should be scaled down to budget %v", sum, budget)
	}
}

func TestFallbackContentSetsAxisSpecificChanges(t *testing.T) {
	parent := &species.Species{GenusCode: "Genusia", LatinName: "Genusia prima", CommonName: "prime genusian", HabitatType: tile.HabitatTerrestrial}
	changes := FallbackContent(parent, "defender", 0)

	if changes.TraitChanges["defense"] <= 0 {
		t.Error("the defender axis should raise the defense trait")
	}
	if changes.LatinName == "" || changes.CommonName == "" || changes.Description == "" {
		t.Error("FallbackContent should always populate naming and description fields")
	}
}
