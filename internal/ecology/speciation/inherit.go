package speciation

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"evochron/internal/ecology/genus"
	"evochron/internal/ecology/species"
)

// ProposedChanges is the AI-sourced (or rule-synthesised) content bundle
// for one offspring, validated by the rules engine before being applied.
type ProposedChanges struct {
	MorphologyChanges map[string]float64 // multiplicative, per dimension
	TraitChanges      map[string]float64 // additive deltas
	TrophicLevel      *float64
	PreySpecies       []string
	PreyPreferences   map[string]float64
	HabitatType       string
	LatinName         string
	CommonName        string
	Description       string
	MilestoneTriggered string
	KeyInnovation      string
}

// differentiationAxis names the sibling-divergence pattern a per-offspring
// index is deterministically assigned, per §4.4.
var differentiationAxes = []string{
	"environment_adapter", "activity_specialist", "reproduction_specialist", "defender", "extreme_specialist",
}

// DifferentiationAxis returns the deterministic axis for sibling index i
// (0-based); it depends on the index alone, so repeated runs are stable.
func DifferentiationAxis(siblingIndex int) string {
	return differentiationAxes[siblingIndex%len(differentiationAxes)]
}

// BuildChild constructs an offspring species from a parent, applying
// morphology scaling, validated trait changes, a bounded trophic shift,
// dormant-gene inheritance and gene-library discovery, per §4.4. Organ
// stages are inherited from the parent, not advanced here.
func BuildChild(parent *species.Species, g *genus.Genus, lineageCode string, turn int, changes ProposedChanges, r *rand.Rand) *species.Species {
	child := &species.Species{
		ID:             uuid.New(),
		LineageCode:    lineageCode,
		ParentCode:     parent.LineageCode,
		GenusCode:      parent.GenusCode,
		TaxonomicRank:  species.RankSpecies,
		Status:         species.StatusAlive,
		CreatedTurn:    turn,
		TrophicLevel:   parent.TrophicLevel,
		DietType:       parent.DietType,
		HabitatType:    parent.HabitatType,
		MorphologyStats: copyMap(parent.MorphologyStats),
		AbstractTraits:  copyMap(parent.AbstractTraits),
		HiddenTraits:    copyMap(parent.HiddenTraits),
		Organs:          copyOrgans(parent.Organs, turn),
		Capabilities:    copyBoolMap(parent.Capabilities),
		DormantTraits:   copyDormant(parent.DormantTraits),
		DormantOrgans:   copyDormant(parent.DormantOrgans),
		PreySpecies:     append([]string{}, parent.PreySpecies...),
		PreyPreferences: copyMap(parent.PreyPreferences),
		LifeFormStage:   parent.LifeFormStage,
		GrowthForm:      parent.GrowthForm,
	}

	for dim, factor := range changes.MorphologyChanges {
		bounded := clip(factor, 0.8, 1.3)
		if v, ok := child.MorphologyStats[dim]; ok {
			child.MorphologyStats[dim] = v * bounded
		}
	}

	applyTraitChangesWithTradeoff(child, changes.TraitChanges)

	for name, v := range child.HiddenTraits {
		child.HiddenTraits[name] = clip(v+0.01, 0, 1)
	}
	if v, ok := child.HiddenTraits["gene_diversity"]; ok {
		child.HiddenTraits["gene_diversity"] = clip(v+0.02, 0, 1)
	}

	if changes.TrophicLevel != nil {
		proposed := *changes.TrophicLevel
		child.TrophicLevel = clip(proposed, parent.TrophicLevel-0.5, parent.TrophicLevel+0.5)
	}
	child.TrophicLevel = clip(child.TrophicLevel, 1.0, 5.5)

	inheritDormantGenes(child, parent, r)
	if g != nil {
		discoverGeneLibrary(child, g, turn, r)
	}

	return child
}

func applyTraitChangesWithTradeoff(child *species.Species, changes map[string]float64) {
	increases, decreases := 0.0, 0.0
	for _, delta := range changes {
		if delta > 0 {
			increases += delta
		} else {
			decreases += -delta
		}
	}
	// enforce tradeoff: sum of increases must not exceed 2x sum of
	// decreases; if only increases were proposed, synthesise a
	// compensating decrease on the lowest-value trait.
	if decreases == 0 && increases > 0 {
		if name, _ := lowestTrait(child); name != "" {
			changes[name] = -increases / 2
			decreases = increases / 2
		}
	}
	if increases > 2*decreases && decreases > 0 {
		scale := (2 * decreases) / increases
		for name, delta := range changes {
			if delta > 0 {
				changes[name] = delta * scale
			}
		}
	}

	for name, delta := range changes {
		if v, ok := child.AbstractTraits[name]; ok {
			child.AbstractTraits[name] = clip(v+delta, 0, 15)
		}
	}
}

func lowestTrait(s *species.Species) (string, float64) {
	name, value := "", 1e18
	for k, v := range s.AbstractTraits {
		if v < value {
			name, value = k, v
		}
	}
	return name, value
}

func inheritDormantGenes(child, parent *species.Species, r *rand.Rand) {
	for name, traitValue := range parent.AbstractTraits {
		if r.Float64() < 0.80 {
			key := fmt.Sprintf("%s_enhanced", name)
			child.DormantTraits[key] = &species.DormantGene{
				Name: key, Potential: clip(traitValue+2, 0, 15),
				ActivationThreshold: 0.5, Inherited: true,
			}
		}
	}
	for category := range parent.Organs {
		if r.Float64() < 0.75 {
			key := fmt.Sprintf("%s_evolved", category)
			child.DormantOrgans[key] = &species.DormantGene{
				Name: key, Potential: 1.0, ActivationThreshold: 0.6, Inherited: true,
			}
		}
	}
	if r.Float64() < 0.10 {
		name := "harmful_mutation"
		child.DormantTraits[name] = &species.DormantGene{
			Name: name, Potential: -1.0, ActivationThreshold: 0.9, Inherited: false,
		}
	}
}

func discoverGeneLibrary(child *species.Species, g *genus.Genus, turn int, r *rand.Rand) {
	known := make(map[string]bool, len(child.DormantTraits)+len(child.DormantOrgans))
	for name := range child.DormantTraits {
		known[name] = true
	}
	for name := range child.DormantOrgans {
		known[name] = true
	}
	for _, entry := range g.Unseen(known) {
		gene := &species.DormantGene{
			Name: entry.Name, Potential: r.Float64(), ActivationThreshold: 0.5 + r.Float64()*0.3, Inherited: true,
		}
		if entry.IsOrgan {
			child.DormantOrgans[entry.Name] = gene
		} else {
			child.DormantTraits[entry.Name] = gene
		}
	}
	for name := range child.AbstractTraits {
		g.Discover(name, false, turn)
	}
	for category := range child.Organs {
		g.Discover(string(category), true, turn)
	}
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyDormant(m map[string]*species.DormantGene) map[string]*species.DormantGene {
	out := make(map[string]*species.DormantGene, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func copyOrgans(m map[species.OrganCategory]*species.Organ, turn int) map[species.OrganCategory]*species.Organ {
	out := make(map[species.OrganCategory]*species.Organ, len(m))
	for k, v := range m {
		cp := *v
		cp.Parameters = copyMap(v.Parameters)
		cp.EvolutionHistory = append([]species.EvolutionEvent{}, v.EvolutionHistory...)
		out[k] = &cp
	}
	return out
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
