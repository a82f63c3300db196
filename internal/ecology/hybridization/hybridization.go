// Package hybridization detects sympatric congener pairs close enough to
// cross-breed and synthesises hybrid offspring (§4.7).
package hybridization

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"evochron/internal/ecology/geneflow"
	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

// Candidate is one eligible hybridization pair, scored for ranking.
type Candidate struct {
	A, B        *species.Species
	Distance    float64
	Fertility   float64
	SympatryRatio float64
	Score       float64
}

// Fertility computes hybrid fertility from genetic distance per §4.7:
// 1 - distance*0.5 up to fertility_full_fertility_distance, then linear
// decay from that value to zero at max_distance.
func Fertility(distance float64) float64 {
	cfg := simconfig.Cfg().Hybrid
	if distance <= cfg.FertilityFullRange {
		return 1 - distance*0.5
	}
	if distance >= cfg.MaxDistance {
		return 0
	}
	span := cfg.MaxDistance - cfg.FertilityFullRange
	frac := (distance - cfg.FertilityFullRange) / span
	fullFertility := 1 - cfg.FertilityFullRange*0.5
	return fullFertility * (1 - frac)
}

// DetectCandidates scans same-genus sympatric pairs and returns those
// eligible for hybridization, ranked by score, per §4.7.
func DetectCandidates(sameGenus []*species.Species, habitatTiles map[string][]string, population map[string]float64, commonAncestorTurn map[string]int, currentTurn int) []Candidate {
	cfg := simconfig.Cfg().Hybrid
	var candidates []Candidate

	for i := 0; i < len(sameGenus); i++ {
		for j := i + 1; j < len(sameGenus); j++ {
			a, b := sameGenus[i], sameGenus[j]
			if population[a.LineageCode] < cfg.MinPopulationKg || population[b.LineageCode] < cfg.MinPopulationKg {
				continue
			}

			overlap := geneflow.HabitatOverlap(habitatTiles[a.LineageCode], habitatTiles[b.LineageCode])
			if overlap <= 0 {
				continue
			}

			ancestorTurn := commonAncestorTurn[pairKey(a.LineageCode, b.LineageCode)]
			distance := geneflow.Distance(a, b, ancestorTurn, currentTurn, nil)
			if distance > cfg.MaxDistance {
				continue
			}

			fertility := Fertility(distance)
			if fertility <= 0 {
				continue
			}

			score := overlap * fertility * (1 - distance)
			candidates = append(candidates, Candidate{
				A: a, B: b, Distance: distance, Fertility: fertility,
				SympatryRatio: overlap, Score: score,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > cfg.TopN {
		candidates = candidates[:cfg.TopN]
	}
	return candidates
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// CreateHybrid synthesises a new hybrid species from a candidate pair per
// §4.7: 70/20/10 max/mean/min trait mixing with noise, organ merging
// keeping the more-advanced side, morphology averaging, a gene-diversity
// boost, and hybrid provenance fields.
func CreateHybrid(c Candidate, lineageCode string, turn int, r *rand.Rand) *species.Species {
	a, b := c.A, c.B

	h := &species.Species{
		ID:            uuid.New(),
		LineageCode:   lineageCode,
		ParentCode:    a.LineageCode,
		GenusCode:     a.GenusCode,
		TaxonomicRank: species.RankHybrid,
		Status:        species.StatusAlive,
		CreatedTurn:   turn,
		TrophicLevel:  (a.TrophicLevel + b.TrophicLevel) / 2,
		DietType:      a.DietType,
		HabitatType:   a.HabitatType,

		MorphologyStats:   mixMorphology(a.MorphologyStats, b.MorphologyStats),
		AbstractTraits:    mixTraits(a.AbstractTraits, b.AbstractTraits, r),
		HiddenTraits:      mixHidden(a.HiddenTraits, b.HiddenTraits),
		Organs:            mergeOrgans(a.Organs, b.Organs, turn),
		Capabilities:      mergeCapabilities(a.Capabilities, b.Capabilities),
		DormantTraits:     map[string]*species.DormantGene{},
		DormantOrgans:     map[string]*species.DormantGene{},
		PreySpecies:       unionPrey(a.PreySpecies, b.PreySpecies),
		PreyPreferences:   map[string]float64{},

		HybridParentCodes: []string{a.LineageCode, b.LineageCode},
		HybridFertility:   c.Fertility,

		LatinName:  fmt.Sprintf("%s x %s", a.LatinName, b.LatinName),
		CommonName: fmt.Sprintf("%s-%s hybrid", a.CommonName, b.CommonName),
	}

	for _, p := range h.PreySpecies {
		h.PreyPreferences[p] = 1.0 / float64(len(h.PreySpecies))
	}

	return h
}

func mixMorphology(a, b map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(a))
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			out[k] = av
			continue
		}
		out[k] = (av + bv) / 2
	}
	return out
}

// mixTraits applies 70% weight to the max-valued parent trait, 20% to the
// mean, 10% to the min, plus small noise, per §4.7.
func mixTraits(a, b map[string]float64, r *rand.Rand) map[string]float64 {
	out := make(map[string]float64, len(a))
	for name, av := range a {
		bv, ok := b[name]
		if !ok {
			bv = av
		}
		maxV, minV := av, bv
		if bv > av {
			maxV, minV = bv, av
		}
		mean := (av + bv) / 2
		value := 0.7*maxV + 0.2*mean + 0.1*minV
		value += (r.Float64()*2 - 1) * 0.2
		out[name] = clip(value, 0, 15)
	}
	return out
}

func mixHidden(a, b map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(a))
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			bv = av
		}
		out[k] = clip((av+bv)/2, 0, 1)
	}
	if v, ok := out["gene_diversity"]; ok {
		out["gene_diversity"] = clip(v+0.10, 0, 1)
	} else {
		out["gene_diversity"] = 0.10
	}
	return out
}

// mergeOrgans keeps the more advanced (higher evolution stage) organ per
// category between the two parents.
func mergeOrgans(a, b map[species.OrganCategory]*species.Organ, turn int) map[species.OrganCategory]*species.Organ {
	out := make(map[species.OrganCategory]*species.Organ, len(a)+len(b))
	for cat, organ := range a {
		cp := *organ
		out[cat] = &cp
	}
	for cat, organ := range b {
		existing, ok := out[cat]
		if !ok || organ.EvolutionStage > existing.EvolutionStage {
			cp := *organ
			out[cat] = &cp
		}
	}
	_ = turn
	return out
}

func mergeCapabilities(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = out[k] || v
	}
	return out
}

func unionPrey(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range append(append([]string{}, a...), b...) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
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
