package adaptation

import (
	"math/rand"
	"testing"

	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

func TestShouldCheckRegressionOnScheduledTurn(t *testing.T) {
	cfg := simconfig.Cfg().Adaptation
	s := &species.Species{AbstractTraits: map[string]float64{}}
	if !ShouldCheckRegression(s, cfg.RegressionCheckTurns, "precambrian") {
		t.Error("ShouldCheckRegression should be true on a turn divisible by RegressionCheckTurns")
	}
}

func TestShouldCheckRegressionForcedByTraitBudget(t *testing.T) {
	s := &species.Species{TrophicLevel: 1.0, AbstractTraits: map[string]float64{}}
	budget := species.TraitBudget(s.TrophicLevel, "precambrian")
	s.AbstractTraits["a"] = budget * 0.95

	if !ShouldCheckRegression(s, 1, "precambrian") {
		t.Error("ShouldCheckRegression should be forced true when trait sum exceeds 90% of budget, even off-schedule")
	}
}

func TestShouldCheckRegressionFalseOtherwise(t *testing.T) {
	s := &species.Species{TrophicLevel: 1.0, AbstractTraits: map[string]float64{"a": 0.1}}
	if ShouldCheckRegression(s, 1, "precambrian") {
		t.Error("ShouldCheckRegression should be false off-schedule with low trait load")
	}
}

func TestApplyRegressionReducesHighestTrait(t *testing.T) {
	s := &species.Species{AbstractTraits: map[string]float64{"speed": 10, "defense": 2}}
	r := rand.New(rand.NewSource(1))
	events := ApplyRegression(s, RegressionContext{}, r)

	if s.AbstractTraits["speed"] >= 10 {
		t.Error("the entropy tax should reduce the highest-value trait")
	}
	if len(events) == 0 {
		t.Error("ApplyRegression should record at least the entropy-tax event")
	}
}

func TestApplyRegressionLowLightReducesLightNeed(t *testing.T) {
	s := &species.Species{AbstractTraits: map[string]float64{"light_need": 10}}
	r := rand.New(rand.NewSource(1))
	ApplyRegression(s, RegressionContext{LowLight: true}, r)

	if s.AbstractTraits["light_need"] >= 10 {
		t.Error("low light should reduce the light_need trait")
	}
}

func TestApplyRegressionSessileReducesLocomotion(t *testing.T) {
	s := &species.Species{AbstractTraits: map[string]float64{"locomotion": 10}}
	r := rand.New(rand.NewSource(1))
	ApplyRegression(s, RegressionContext{Sessile: true}, r)

	if s.AbstractTraits["locomotion"] >= 10 {
		t.Error("a sessile species should have its locomotion trait reduced")
	}
}

func TestApplyRegressionMismatchedTraitsAboveSeven(t *testing.T) {
	s := &species.Species{AbstractTraits: map[string]float64{"speed": 9}}
	r := rand.New(rand.NewSource(1))
	ApplyRegression(s, RegressionContext{Mismatched: []string{"speed"}}, r)

	if s.AbstractTraits["speed"] >= 9 {
		t.Error("a mismatched trait above 7 should be reduced")
	}
}

func TestDeactivateOrganNoopWhenAlreadyInactive(t *testing.T) {
	s := &species.Species{Organs: map[species.OrganCategory]*species.Organ{
		species.OrganDigestive: {IsActive: false},
	}}
	if deactivateOrgan(s, species.OrganDigestive) {
		t.Error("deactivateOrgan should report false for an organ that was already inactive")
	}
}

func TestShouldRefreshDescription(t *testing.T) {
	cfg := simconfig.Cfg().Adaptation
	s := &species.Species{AccumulatedAdaptationScore: cfg.DescriptionDriftMin, LastDescriptionUpdateTurn: 0}
	if !ShouldRefreshDescription(s, cfg.DescriptionMinTurns) {
		t.Error("ShouldRefreshDescription should be true once both drift and turn thresholds are met")
	}
	if ShouldRefreshDescription(s, cfg.DescriptionMinTurns-1) {
		t.Error("ShouldRefreshDescription should be false before the minimum turn gap has elapsed")
	}
}
