// Package cascade propagates secondary population effects when a lineage
// commits to extinction, per spec's predation-pressure and cyclic-reference
// notes (§4.3, §9): losing a predator releases its prey, losing a prey
// species starves its predators, and losing a species many others prey
// upon destabilises the wider community. This runs as a pure delta pass,
// not a pipeline stage of its own — the mortality stage still owns the
// turn's base death rate; the pipeline applies the resulting multipliers
// right after mortality, before the same turn's reproduction.
package cascade

import (
	"evochron/internal/ecology/species"
)

// Type names the mechanism by which an extinction propagates.
type Type string

const (
	TypeFoodLoss          Type = "food_loss"          // predator loses a prey species
	TypePredatorRelease   Type = "predator_release"   // prey released from a predator
	TypeCompetitorRelease Type = "competitor_release"
	TypeKeystoneCollapse  Type = "keystone_collapse"
)

// Event is one secondary effect on a surviving lineage.
type Event struct {
	TriggerLineage  string
	AffectedLineage string
	Type            Type
	Impact          float64 // population multiplier delta; negative = decline
	Description     string
}

// Result is every effect produced by one lineage's extinction.
type Result struct {
	ExtinctLineage       string
	Events               []Event
	SecondaryExtinctions []string
	PopulationMultiplier map[string]float64
}

// keystoneThreshold is the minimum share of a community's species preying on
// a lineage before that lineage counts as a keystone (its loss destabilises
// species it has no direct relationship with at all). Species the lineage
// itself preyed upon do not count toward this share.
const keystoneThreshold = 0.25

// Calculate derives the cascade of an extinct lineage's removal across the
// surviving community, using each survivor's PreySpecies/PreyPreferences to
// infer predation relationships (no separate relationship graph is tracked;
// the species' own diet model is the source of truth).
func Calculate(extinct *species.Species, survivors []*species.Species) Result {
	result := Result{
		ExtinctLineage:       extinct.LineageCode,
		PopulationMultiplier: make(map[string]float64),
	}

	dependents := 0
	for _, s := range survivors {
		isPredatorOfExtinct := preys(s, extinct.LineageCode)
		isPreyOfExtinct := preys(extinct, s.LineageCode)

		switch {
		case isPredatorOfExtinct:
			dependents++
			pref := s.PreyPreferences[extinct.LineageCode]
			impact := -pref
			if len(s.PreySpecies) <= 1 {
				impact = -1.0 // obligate: the extinct lineage was its only prey
			}
			result.Events = append(result.Events, Event{
				TriggerLineage: extinct.LineageCode, AffectedLineage: s.LineageCode,
				Type: TypeFoodLoss, Impact: impact,
				Description: "starvation following loss of prey species " + extinct.LineageCode,
			})
			result.PopulationMultiplier[s.LineageCode] = 1 + impact
		case isPreyOfExtinct:
			result.Events = append(result.Events, Event{
				TriggerLineage: extinct.LineageCode, AffectedLineage: s.LineageCode,
				Type: TypePredatorRelease, Impact: 0.2,
				Description: "population surge after predator " + extinct.LineageCode + " vanished",
			})
			result.PopulationMultiplier[s.LineageCode] = 1.2
		}
	}

	if len(survivors) > 0 && float64(dependents)/float64(len(survivors)) >= keystoneThreshold {
		for _, s := range survivors {
			if _, already := result.PopulationMultiplier[s.LineageCode]; already {
				continue
			}
			result.Events = append(result.Events, Event{
				TriggerLineage: extinct.LineageCode, AffectedLineage: s.LineageCode,
				Type: TypeKeystoneCollapse, Impact: -0.1,
				Description: "ecosystem destabilization following keystone collapse of " + extinct.LineageCode,
			})
			result.PopulationMultiplier[s.LineageCode] = 0.9
		}
	}

	for code, mult := range result.PopulationMultiplier {
		if mult <= 0.1 {
			result.SecondaryExtinctions = append(result.SecondaryExtinctions, code)
		}
	}

	return result
}

func preys(predator *species.Species, preyLineage string) bool {
	for _, p := range predator.PreySpecies {
		if p == preyLineage {
			return true
		}
	}
	return false
}
