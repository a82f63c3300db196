package speciation

import (
	"math/rand"
	"testing"

	"evochron/internal/ecology/genus"
	"evochron/internal/ecology/species"
)

func baseParent() *species.Species {
	return &species.Species{
		LineageCode:     "A1",
		GenusCode:       "Genusia",
		TrophicLevel:    2.0,
		DietType:        species.DietHerbivore,
		MorphologyStats: map[string]float64{"body_length_cm": 10},
		AbstractTraits:  map[string]float64{"speed": 5, "defense": 3},
		HiddenTraits:    map[string]float64{"gene_diversity": 0.5, "evolution_potential": 0.4},
		Organs:          map[species.OrganCategory]*species.Organ{},
		Capabilities:    map[string]bool{},
		DormantTraits:   map[string]*species.DormantGene{},
		DormantOrgans:   map[string]*species.DormantGene{},
		PreySpecies:     []string{},
		PreyPreferences: map[string]float64{},
	}
}

func TestBuildChildCopiesAndScalesMorphology(t *testing.T) {
	parent := baseParent()
	r := rand.New(rand.NewSource(1))
	changes := ProposedChanges{MorphologyChanges: map[string]float64{"body_length_cm": 1.2}}

	child := BuildChild(parent, nil, "A2", 10, changes, r)

	if child.LineageCode != "A2" || child.ParentCode != "A1" {
		t.Errorf("lineage/parent codes not set correctly: %+v", child)
	}
	if child.MorphologyStats["body_length_cm"] != 12 {
		t.Errorf("body_length_cm = %v, want 12 (10 * 1.2)", child.MorphologyStats["body_length_cm"])
	}
	if &child.MorphologyStats == &parent.MorphologyStats {
		t.Error("child morphology map must be an independent copy")
	}
}

func TestBuildChildClampsMorphologyFactor(t *testing.T) {
	parent := baseParent()
	r := rand.New(rand.NewSource(1))
	changes := ProposedChanges{MorphologyChanges: map[string]float64{"body_length_cm": 5.0}}

	child := BuildChild(parent, nil, "A2", 10, changes, r)
	if child.MorphologyStats["body_length_cm"] != 13 {
		t.Errorf("body_length_cm = %v, want 13 (10 * clamped factor 1.3)", child.MorphologyStats["body_length_cm"])
	}
}

func TestBuildChildClampsTrophicLevelDrift(t *testing.T) {
	parent := baseParent()
	r := rand.New(rand.NewSource(1))
	proposed := parent.TrophicLevel + 5
	changes := ProposedChanges{TrophicLevel: &proposed}

	child := BuildChild(parent, nil, "A2", 10, changes, r)
	if child.TrophicLevel > parent.TrophicLevel+0.5 {
		t.Errorf("TrophicLevel = %v, should not drift more than 0.5 from parent %v", child.TrophicLevel, parent.TrophicLevel)
	}
}

func TestBuildChildGeneDiversityIncreases(t *testing.T) {
	parent := baseParent()
	r := rand.New(rand.NewSource(1))
	child := BuildChild(parent, nil, "A2", 10, ProposedChanges{}, r)

	if child.HiddenTraits["gene_diversity"] <= parent.HiddenTraits["gene_diversity"] {
		t.Error("gene_diversity should increase slightly in the child relative to the parent")
	}
}

func TestDifferentiationAxisCyclesDeterministically(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < len(differentiationAxes); i++ {
		seen[DifferentiationAxis(i)] = true
	}
	if len(seen) != len(differentiationAxes) {
		t.Errorf("expected %d distinct axes across a full cycle, got %d", len(differentiationAxes), len(seen))
	}
	if DifferentiationAxis(0) != DifferentiationAxis(len(differentiationAxes)) {
		t.Error("DifferentiationAxis should wrap around cyclically")
	}
}

func TestApplyTraitChangesEnforcesTradeoff(t *testing.T) {
	child := &species.Species{AbstractTraits: map[string]float64{"speed": 5, "defense": 3}}
	changes := map[string]float64{"speed": 4}
	applyTraitChangesWithTradeoff(child, changes)

	if child.AbstractTraits["defense"] >= 3 {
		t.Error("a pure increase with no proposed decrease should synthesize a compensating decrease")
	}
}

func TestInheritDormantGenesPopulatesFromParentTraits(t *testing.T) {
	parent := baseParent()
	child := &species.Species{
		AbstractTraits: parent.AbstractTraits,
		Organs:         parent.Organs,
		DormantTraits:  map[string]*species.DormantGene{},
		DormantOrgans:  map[string]*species.DormantGene{},
	}
	r := rand.New(rand.NewSource(42))
	inheritDormantGenes(child, parent, r)

	if len(child.DormantTraits) == 0 {
		t.Error("inheritDormantGenes should populate at least some dormant traits across many trait rolls")
	}
}

func TestDiscoverGeneLibraryAddsUnseenEntries(t *testing.T) {
	g := genus.NewGenus("Genusia")
	g.Discover("unseen_trait", false, 1)

	child := &species.Species{
		AbstractTraits: map[string]float64{},
		Organs:         map[species.OrganCategory]*species.Organ{},
		DormantTraits:  map[string]*species.DormantGene{},
		DormantOrgans:  map[string]*species.DormantGene{},
	}
	r := rand.New(rand.NewSource(1))
	discoverGeneLibrary(child, g, 5, r)

	if _, ok := child.DormantTraits["unseen_trait"]; !ok {
		t.Error("discoverGeneLibrary should add a dormant trait for a gene the child hasn't seen yet")
	}
}
