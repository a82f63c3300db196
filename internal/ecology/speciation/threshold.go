// Package speciation implements candidate detection, offspring allocation
// and inherited-child construction for the speciation engine (§4.4).
package speciation

import "evochron/internal/ecology/species"

// PopulationThreshold returns the minimum population required to
// speciate, bucketed by body length then adjusted by weight, r/K
// strategy, metabolic rate and trophic level (§4.4).
func PopulationThreshold(s *species.Species) float64 {
	length := s.MorphologyStats["body_length_cm"]
	var base float64
	switch {
	case length < 0.01:
		base = 2_000_000
	case length < 0.1:
		base = 1_000_000
	case length < 1:
		base = 100_000
	case length < 10:
		base = 10_000
	case length < 50:
		base = 2_000
	case length < 200:
		base = 500
	default:
		base = 100
	}

	weight := s.MorphologyStats["body_weight_g"]
	weightModifier := 1.0
	if weight > 0 {
		// heavier species need fewer individuals to found a lineage
		weightModifier = 1.0 / (1.0 + weight/1000.0)
		if weightModifier < 0.2 {
			weightModifier = 0.2
		}
	}

	reproSpeed := s.AbstractTraits["reproduction_speed"]
	rkModifier := 1.0 + reproSpeed/15.0 // r-strategists (fast reproduction) speciate from larger pools

	metabolicRate := s.MorphologyStats["metabolic_rate"]
	metabolicModifier := 1.0
	if metabolicRate > 0 {
		metabolicModifier = 1.0 + metabolicRate/100.0
	}

	trophicModifier := 1.0 / (1.0 + (s.TrophicLevel-1.0)*0.15)

	threshold := base * weightModifier * rkModifier * metabolicModifier * trophicModifier
	if threshold < 50 {
		threshold = 50
	}
	if threshold > 5_000_000 {
		threshold = 5_000_000
	}
	return threshold
}
