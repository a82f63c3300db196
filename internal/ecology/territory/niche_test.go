package territory

import (
	"testing"

	"evochron/internal/ecology/species"
	"evochron/internal/ecology/tile"
	"evochron/internal/simconfig"
)

func TestMain(m *testing.M) {
	simconfig.MustInit("")
	m.Run()
}

func identicalSpecies() (*species.Species, *species.Species) {
	a := &species.Species{
		TrophicLevel:    2.0,
		HabitatType:     tile.HabitatTerrestrial,
		MorphologyStats: map[string]float64{"body_length_cm": 10},
		AbstractTraits:  map[string]float64{"cold_tolerance": 5, "drought_tolerance": 5},
	}
	b := &species.Species{
		TrophicLevel:    2.0,
		HabitatType:     tile.HabitatTerrestrial,
		MorphologyStats: map[string]float64{"body_length_cm": 10},
		AbstractTraits:  map[string]float64{"cold_tolerance": 5, "drought_tolerance": 5},
	}
	return a, b
}

func TestSimilarityIdenticalSpeciesIsOne(t *testing.T) {
	a, b := identicalSpecies()
	if got := Similarity(a, b, nil); got != 1.0 {
		t.Errorf("Similarity of identical species = %v, want 1.0", got)
	}
}

func TestSimilarityDecreasesWithDivergence(t *testing.T) {
	a, b := identicalSpecies()
	b.TrophicLevel = 4.5
	b.HabitatType = tile.HabitatMarine

	if got := Similarity(a, b, nil); got >= 1.0 {
		t.Errorf("Similarity of divergent species = %v, should be less than 1.0", got)
	}
}

func TestSimilarityBlendsEmbeddingWhenProvided(t *testing.T) {
	a, b := identicalSpecies()
	embedding := 0.0
	got := Similarity(a, b, &embedding)
	if got != 0.6 {
		t.Errorf("Similarity with feature=1.0 and embedding=0.0 = %v, want 0.6 (the 0.6/0.4 blend)", got)
	}
}

func TestCompetitionFactorBuckets(t *testing.T) {
	cfg := simconfig.Cfg().Mortality
	if got := CompetitionFactor(cfg.StrongCompetition); got != cfg.StrongCompetitionCoef {
		t.Errorf("CompetitionFactor at the strong threshold = %v, want %v", got, cfg.StrongCompetitionCoef)
	}
	if got := CompetitionFactor(cfg.WeakCompetition); got != cfg.WeakCompetitionCoef {
		t.Errorf("CompetitionFactor at the weak threshold = %v, want %v", got, cfg.WeakCompetitionCoef)
	}
	if got := CompetitionFactor(0); got != 0 {
		t.Errorf("CompetitionFactor below the weak threshold = %v, want 0", got)
	}
}
