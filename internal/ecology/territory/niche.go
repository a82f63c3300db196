// Package territory implements the per-tile per-species occupancy model
// and the niche-similarity computation that drives competition pressure
// in both the mortality stage and this package's own occupancy update.
package territory

import (
	"math"

	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

// Similarity returns the niche similarity in [0,1] between two species,
// blending structured feature-space similarity with an optional embedding
// cosine similarity. Weights are 0.6/0.4 when embeddings are supplied and
// 1.0/0.0 otherwise, so downstream code never needs to know whether the
// embedding service was available (§9 design note).
func Similarity(a, b *species.Species, embeddingCosine *float64) float64 {
	feature := featureSimilarity(a, b)
	if embeddingCosine == nil {
		return feature
	}
	return 0.6*feature + 0.4*clip(*embeddingCosine, 0, 1)
}

func featureSimilarity(a, b *species.Species) float64 {
	trophicDiff := math.Abs(a.TrophicLevel - b.TrophicLevel) / 4.5 // trophic range span
	sizeDiff := logRatioDiff(a.MorphologyStats["body_length_cm"], b.MorphologyStats["body_length_cm"])
	habitatDiff := 0.0
	if a.HabitatType != b.HabitatType {
		habitatDiff = 1.0
	}
	thermalDiff := normalizedTraitDiff(a.AbstractTraits["cold_tolerance"], b.AbstractTraits["cold_tolerance"])
	droughtDiff := normalizedTraitDiff(a.AbstractTraits["drought_tolerance"], b.AbstractTraits["drought_tolerance"])

	avgDiff := (trophicDiff + sizeDiff + habitatDiff + thermalDiff + droughtDiff) / 5.0
	return clip(1-avgDiff, 0, 1)
}

func logRatioDiff(x, y float64) float64 {
	if x <= 0 || y <= 0 {
		return 0
	}
	lo, hi := x, y
	if lo > hi {
		lo, hi = hi, lo
	}
	return 1 - lo/hi
}

func normalizedTraitDiff(x, y float64) float64 {
	return math.Abs(x-y) / 15.0
}

// CompetitionFactor maps a niche similarity to the competition coefficient
// used by both mortality pressure and occupancy loss: strong (0.8) at
// similarity >= 0.70, weak (0.3) at 0.50-0.70, none below.
func CompetitionFactor(similarity float64) float64 {
	cfg := simconfig.Cfg().Mortality
	switch {
	case similarity >= cfg.StrongCompetition:
		return cfg.StrongCompetitionCoef
	case similarity >= cfg.WeakCompetition:
		return cfg.WeakCompetitionCoef
	default:
		return 0
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
