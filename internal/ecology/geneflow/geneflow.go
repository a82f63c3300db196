// Package geneflow implements trait convergence between sympatric
// congeners below a genetic-distance threshold (§4.6).
package geneflow

import (
	"math"

	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

// Distance computes the genetic distance between two species per §4.6:
// a weighted blend of morphology, trait, organ and time-divergence
// differences (plus an optional embedding term when available).
func Distance(a, b *species.Species, commonAncestorTurn, currentTurn int, embeddingDiff *float64) float64 {
	cfg := simconfig.Cfg().GeneFlow

	morphology := morphologyDiff(a, b)
	traits := traitDiff(a, b)
	organs := organJaccardDiff(a, b)
	timeDiv := math.Min(1, float64(currentTurn-commonAncestorTurn)/cfg.TimeDivergenceDiv)

	if embeddingDiff != nil {
		return 0.24*morphology + 0.20*traits + 0.20*organs + 0.16*timeDiv + 0.20*clip(*embeddingDiff, 0, 1)
	}
	return 0.30*morphology + 0.25*traits + 0.25*organs + 0.20*timeDiv
}

func morphologyDiff(a, b *species.Species) float64 {
	lengthDiff := ratioDiff(a.MorphologyStats["body_length_cm"], b.MorphologyStats["body_length_cm"])
	weightDiff := ratioDiff(a.MorphologyStats["body_weight_g"], b.MorphologyStats["body_weight_g"])
	return (lengthDiff + weightDiff) / 2
}

func ratioDiff(x, y float64) float64 {
	if x <= 0 || y <= 0 {
		return 0
	}
	lo, hi := x, y
	if lo > hi {
		lo, hi = hi, lo
	}
	return 1 - lo/hi
}

func traitDiff(a, b *species.Species) float64 {
	sumSq, n := 0.0, 0
	seen := make(map[string]bool)
	for name, av := range a.AbstractTraits {
		bv, ok := b.AbstractTraits[name]
		if !ok {
			continue
		}
		seen[name] = true
		d := (av - bv) / 15.0
		sumSq += d * d
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(n))
}

func organJaccardDiff(a, b *species.Species) float64 {
	union := make(map[species.OrganCategory]bool)
	intersection := 0
	for cat := range a.Organs {
		union[cat] = true
	}
	for cat := range b.Organs {
		if union[cat] {
			intersection++
		}
		union[cat] = true
	}
	if len(union) == 0 {
		return 0
	}
	return 1 - float64(intersection)/float64(len(union))
}

// HabitatOverlap computes the Jaccard similarity between two species'
// occupied-tile sets.
func HabitatOverlap(tilesA, tilesB []string) float64 {
	setA := make(map[string]bool, len(tilesA))
	for _, t := range tilesA {
		setA[t] = true
	}
	setB := make(map[string]bool, len(tilesB))
	for _, t := range tilesB {
		setB[t] = true
	}
	intersection, union := 0, len(setA)
	for t := range setB {
		if setA[t] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Flow computes the asymmetric convergence rate for a pair and moves
// shared trait values toward each other in place, per §4.6. Returns false
// (no-op) if distance or overlap disqualify the pair.
func Flow(a, b *species.Species, distance, overlap, popA, popB float64) bool {
	cfg := simconfig.Cfg().GeneFlow
	if distance > cfg.DistanceThreshold {
		return false
	}
	if overlap < cfg.OverlapThreshold {
		return false
	}

	rate := cfg.FlowRateBase * (1 - distance/cfg.DistanceThreshold) * overlap

	total := popA + popB
	rateA, rateB := rate, rate
	if total > 0 {
		// the larger population pushes the smaller more: scale the
		// recipient's rate up by the pusher's population share.
		rateA = rate * (2 * popB / total)
		rateB = rate * (2 * popA / total)
	}

	for name, av := range a.AbstractTraits {
		bv, ok := b.AbstractTraits[name]
		if !ok {
			continue
		}
		newA := av + (bv-av)*rateA
		newB := bv + (av-bv)*rateB
		a.AbstractTraits[name] = clip(newA, 0, 15)
		b.AbstractTraits[name] = clip(newB, 0, 15)
	}
	return true
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
