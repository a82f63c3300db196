package territory

import (
	"evochron/internal/ecology/habitat"
	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

// PresenceStatus buckets an occupancy value for reporting.
type PresenceStatus string

const (
	PresenceEstablished PresenceStatus = "established"
	PresencePresent     PresenceStatus = "present"
	PresenceMarginal    PresenceStatus = "marginal"
	PresenceAbsent      PresenceStatus = "absent"
)

// StatusOf buckets an occupancy value using the configured thresholds.
func StatusOf(occupancy float64) PresenceStatus {
	cfg := simconfig.Cfg().Territory
	switch {
	case occupancy >= cfg.EstablishedMin:
		return PresenceEstablished
	case occupancy >= cfg.PresentMin:
		return PresencePresent
	case occupancy >= cfg.MarginalMin:
		return PresenceMarginal
	default:
		return PresenceAbsent
	}
}

// Inputs bundles what Update needs for one (tile, species) cell.
type Inputs struct {
	Row               *habitat.Population
	SuitabilityScore  float64
	PopulationShare   float64 // this species' share of total biomass at the tile
	TurnsPresent      int     // consecutive turns with population > 0 at this tile
	IsRefuge          bool    // tile death rate < refuge threshold for this species
	CoInhabitants     []CoInhabitant
}

// CoInhabitant is a same-layer co-occupant at the same tile, used for the
// competition-loss term.
type CoInhabitant struct {
	Species   *species.Species
	Occupancy float64
	PopShare  float64
}

// Update advances a single occupancy cell by one turn, per §4.9. Returns
// the new occupancy value, clipped to [0,1].
func Update(self *species.Species, in Inputs) float64 {
	cfg := simconfig.Cfg().Territory
	occupancy := 0.0
	if in.Row != nil {
		occupancy = in.Row.Occupancy
	}

	if in.Row == nil || in.Row.Population <= 0 {
		return clip(occupancy-cfg.NoPopulationDecay, 0, 1)
	}

	gain := cfg.SuitabilityGain * in.SuitabilityScore
	gain += cfg.PopulationGain * in.PopulationShare
	if in.TurnsPresent > 2 {
		gain += cfg.PresenceBonus
	}
	if in.IsRefuge {
		gain += cfg.RefugeBonus
	}

	loss := 0.0
	for _, co := range in.CoInhabitants {
		similarity := Similarity(self, co.Species, nil)
		strongerBy := co.Occupancy - occupancy
		if strongerBy <= 0 {
			continue
		}
		loss += similarity * strongerBy * co.PopShare
	}
	loss *= 0.25
	if loss > cfg.CompetitionLossCap {
		loss = cfg.CompetitionLossCap
	}

	return clip(occupancy+gain-loss, 0, 1)
}

// EcologicalLayer groups co-inhabitants sharing self's competition layer.
func EcologicalLayer(s *species.Species) int {
	return s.EcologicalLayer()
}
