package adaptation

import (
	"math/rand"

	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

// RegressionContext bundles the environmental descriptors the regression
// check's use-it-or-lose-it rules key on.
type RegressionContext struct {
	LowLight    bool // persistent low light
	Sessile     bool
	Parasitic   bool
	Mismatched  []string // trait names under persistently mismatched pressure
}

// RegressionEvent describes one regression action taken, for the lineage
// event log.
type RegressionEvent struct {
	Description string
}

// ShouldCheckRegression reports whether this turn is a regression-check
// turn: every regression_check_turns turns, or forced when the trait sum
// exceeds the trophic-dependent maintenance threshold.
func ShouldCheckRegression(s *species.Species, turn int, era string) bool {
	cfg := simconfig.Cfg().Adaptation
	if turn%cfg.RegressionCheckTurns == 0 {
		return true
	}
	sum := 0.0
	for _, v := range s.AbstractTraits {
		sum += v
	}
	return sum > species.TraitBudget(s.TrophicLevel, era)*0.9
}

// ApplyRegression runs the entropy tax and use-it-or-lose-it rules,
// returning the events produced for the lineage log.
func ApplyRegression(s *species.Species, ctx RegressionContext, r *rand.Rand) []RegressionEvent {
	var events []RegressionEvent

	if name, value := highestTrait(s); name != "" {
		delta := value * (0.05 + r.Float64()*0.10)
		s.AbstractTraits[name] = clip(value-delta, 0, 15)
		events = append(events, RegressionEvent{Description: "entropy tax reduced " + name})
	}

	if ctx.LowLight {
		if v, ok := s.AbstractTraits["light_need"]; ok {
			s.AbstractTraits["light_need"] = clip(v-0.3, 0, 15)
		}
		if r.Float64() < simconfig.Cfg().Adaptation.DormantActivateChance {
			if deactivateOrgan(s, species.OrganSensory) || deactivateOrgan(s, species.OrganLocomotion) {
				events = append(events, RegressionEvent{Description: "vision/locomotion organ deactivated under low light"})
			}
		}
	}

	if ctx.Sessile {
		if v, ok := s.AbstractTraits["locomotion"]; ok {
			s.AbstractTraits["locomotion"] = clip(v-0.3, 0, 15)
		}
	}

	if ctx.Parasitic && r.Float64() < simconfig.Cfg().Adaptation.ParasiteDeactivate {
		if deactivateOrgan(s, species.OrganDigestive) {
			events = append(events, RegressionEvent{Description: "digestive organ deactivated under parasitism"})
		}
	}

	for _, trait := range ctx.Mismatched {
		if v, ok := s.AbstractTraits[trait]; ok && v > 7 {
			delta := 0.05 + r.Float64()*0.10
			s.AbstractTraits[trait] = clip(v-delta, 0, 15)
		}
	}

	return events
}

func highestTrait(s *species.Species) (string, float64) {
	name, value := "", -1.0
	for k, v := range s.AbstractTraits {
		if v > value {
			name, value = k, v
		}
	}
	return name, value
}

func deactivateOrgan(s *species.Species, category species.OrganCategory) bool {
	organ, ok := s.Organs[category]
	if !ok || !organ.IsActive {
		return false
	}
	organ.IsActive = false
	return true
}

// ShouldRefreshDescription reports whether accumulated drift warrants an
// AI-generated description rewrite (§4.5).
func ShouldRefreshDescription(s *species.Species, turn int) bool {
	cfg := simconfig.Cfg().Adaptation
	return s.AccumulatedAdaptationScore >= cfg.DescriptionDriftMin &&
		turn-s.LastDescriptionUpdateTurn >= cfg.DescriptionMinTurns
}
