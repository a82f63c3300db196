package territory

import (
	"testing"

	"evochron/internal/ecology/habitat"
	"evochron/internal/ecology/species"
	"evochron/internal/simconfig"
)

func TestStatusOfBuckets(t *testing.T) {
	cfg := simconfig.Cfg().Territory
	if got := StatusOf(cfg.EstablishedMin); got != PresenceEstablished {
		t.Errorf("StatusOf(EstablishedMin) = %v, want established", got)
	}
	if got := StatusOf(cfg.PresentMin); got != PresencePresent {
		t.Errorf("StatusOf(PresentMin) = %v, want present", got)
	}
	if got := StatusOf(cfg.MarginalMin); got != PresenceMarginal {
		t.Errorf("StatusOf(MarginalMin) = %v, want marginal", got)
	}
	if got := StatusOf(-1); got != PresenceAbsent {
		t.Errorf("StatusOf(-1) = %v, want absent", got)
	}
}

func TestUpdateDecaysWithNoPopulation(t *testing.T) {
	cfg := simconfig.Cfg().Territory
	self := &species.Species{}
	in := Inputs{Row: &habitat.Population{Population: 0, Occupancy: 0.5}}
	got := Update(self, in)
	want := 0.5 - cfg.NoPopulationDecay
	if want < 0 {
		want = 0
	}
	if got != want {
		t.Errorf("Update with zero population = %v, want %v", got, want)
	}
}

func TestUpdateDecaysWithNilRow(t *testing.T) {
	self := &species.Species{}
	got := Update(self, Inputs{Row: nil})
	if got != 0 {
		t.Errorf("Update with a nil row and zero baseline occupancy = %v, want 0", got)
	}
}

func TestUpdateGrowsWithSuitabilityAndPopulation(t *testing.T) {
	self := &species.Species{}
	in := Inputs{
		Row:              &habitat.Population{Population: 100, Occupancy: 0.1},
		SuitabilityScore: 1.0,
		PopulationShare:  1.0,
	}
	got := Update(self, in)
	if got <= 0.1 {
		t.Errorf("Update with strong suitability and population share = %v, should grow above the 0.1 baseline", got)
	}
}

func TestUpdateCompetitionLossCapped(t *testing.T) {
	cfg := simconfig.Cfg().Territory
	self := &species.Species{AbstractTraits: map[string]float64{}, MorphologyStats: map[string]float64{}}
	rival := &species.Species{AbstractTraits: map[string]float64{}, MorphologyStats: map[string]float64{}}
	in := Inputs{
		Row: &habitat.Population{Population: 100, Occupancy: 0.1},
		CoInhabitants: []CoInhabitant{
			{Species: rival, Occupancy: 100, PopShare: 100},
		},
	}
	got := Update(self, in)
	if got < 0.1-cfg.CompetitionLossCap-1e-9 {
		t.Errorf("Update() = %v, competition loss should never exceed the configured cap", got)
	}
}

func TestEcologicalLayerDelegatesToSpecies(t *testing.T) {
	s := &species.Species{TrophicLevel: 3.0}
	if EcologicalLayer(s) != s.EcologicalLayer() {
		t.Error("territory.EcologicalLayer should delegate to species.Species.EcologicalLayer")
	}
}
