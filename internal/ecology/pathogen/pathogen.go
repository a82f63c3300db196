// Package pathogen models disease agents and their active outbreaks, the
// mechanism behind the mortality stage's disease pressure term (§4.3): a
// scalar DiseasePressure on a species alone doesn't capture how a disease's
// own epidemiological properties (virulence, transmissibility, host
// specificity) evolve as it spreads, so an outbreak is simulated in full
// and collapsed to a pressure scalar the mortality stage already consumes.
package pathogen

import (
	"math/rand"

	"github.com/google/uuid"

	"evochron/internal/ecology/species"
)

// Kind is the category of pathogen, each with a distinct epidemiological
// profile (virulence/transmissibility/persistence tradeoffs).
type Kind string

const (
	KindVirus    Kind = "virus"    // fast-mutating, highly transmissible
	KindBacteria Kind = "bacteria" // variable, moderately persistent
	KindFungus   Kind = "fungus"   // slow, environmentally persistent
	KindPrion    Kind = "prion"    // never mutates, almost always fatal
	KindParasite Kind = "parasite" // chronic, vector-borne
)

// Pathogen is a disease-causing agent tracked against a host lineage.
type Pathogen struct {
	ID               uuid.UUID
	Name             string
	Kind             Kind
	OriginLineage    string
	Virulence        float64 // [0,1], host mortality contribution
	Transmissibility float64 // [0,1], drives R0
	Latency          float64 // [0,1], time before symptoms
	Persistence      float64 // [0,1], environmental survival
	MutationRate     float64 // [0,1]
	HostSpecificity  float64 // [0,1]; 0 = broad host range, 1 = narrow
	Generation       int
	OriginTurn       int
	MutationsCount   int
}

// New creates a pathogen of the given kind with randomised properties drawn
// from that kind's epidemiological envelope.
func New(name string, kind Kind, originLineage string, originTurn int, r *rand.Rand) *Pathogen {
	p := &Pathogen{
		ID: uuid.New(), Name: name, Kind: kind,
		OriginLineage: originLineage, OriginTurn: originTurn,
	}
	switch kind {
	case KindVirus:
		p.Virulence = 0.3 + r.Float64()*0.5
		p.Transmissibility = 0.4 + r.Float64()*0.5
		p.Latency = r.Float64() * 0.5
		p.Persistence = r.Float64() * 0.3
		p.MutationRate = 0.3 + r.Float64()*0.5
		p.HostSpecificity = 0.3 + r.Float64()*0.5
	case KindBacteria:
		p.Virulence = 0.2 + r.Float64()*0.6
		p.Transmissibility = 0.2 + r.Float64()*0.5
		p.Latency = 0.1 + r.Float64()*0.4
		p.Persistence = 0.2 + r.Float64()*0.5
		p.MutationRate = 0.1 + r.Float64()*0.3
		p.HostSpecificity = 0.2 + r.Float64()*0.6
	case KindFungus:
		p.Virulence = 0.1 + r.Float64()*0.4
		p.Transmissibility = 0.1 + r.Float64()*0.3
		p.Latency = 0.3 + r.Float64()*0.5
		p.Persistence = 0.5 + r.Float64()*0.5
		p.MutationRate = 0.05 + r.Float64()*0.15
		p.HostSpecificity = 0.4 + r.Float64()*0.5
	case KindPrion:
		p.Virulence = 0.95 + r.Float64()*0.05
		p.Transmissibility = 0.05 + r.Float64()*0.1
		p.Latency = 0.7 + r.Float64()*0.3
		p.Persistence = 0.9 + r.Float64()*0.1
		p.HostSpecificity = 0.8 + r.Float64()*0.2
	case KindParasite:
		p.Virulence = 0.1 + r.Float64()*0.3
		p.Transmissibility = 0.1 + r.Float64()*0.4
		p.Latency = 0.2 + r.Float64()*0.3
		p.Persistence = 0.3 + r.Float64()*0.4
		p.MutationRate = 0.05 + r.Float64()*0.15
		p.HostSpecificity = 0.5 + r.Float64()*0.4
	}
	return p
}

// Mutate applies one turn of random drift to the pathogen's properties,
// biased toward declining virulence as the pathogen becomes endemic.
// Prions never mutate.
func (p *Pathogen) Mutate(r *rand.Rand) {
	if p.Kind == KindPrion {
		return
	}
	if r.Float64() < p.MutationRate {
		if r.Float64() < 0.7 {
			p.Virulence = clamp(p.Virulence-0.02-r.Float64()*0.03, 0, 1)
		} else {
			p.Virulence = clamp(p.Virulence+0.01+r.Float64()*0.02, 0, 1)
		}
		p.MutationsCount++
	}
	if r.Float64() < p.MutationRate {
		delta := (r.Float64() - 0.5) * 0.05
		p.Transmissibility = clamp(p.Transmissibility+delta, 0.01, 1)
		p.MutationsCount++
	}
	if r.Float64() < p.MutationRate*0.1 {
		p.HostSpecificity = clamp(p.HostSpecificity-0.05, 0, 1)
		p.MutationsCount++
	}
}

// IsEndemic reports whether the pathogen has settled into a low-virulence,
// well-adapted state rather than an acute epidemic one.
func (p *Pathogen) IsEndemic() bool {
	return p.Virulence < 0.3 && p.MutationsCount > 10
}

// R0 returns the basic reproduction number at the given population density
// and host disease resistance (both [0,1]).
func (p *Pathogen) R0(populationDensity, diseaseResistance float64) float64 {
	base := p.Transmissibility * 3.0
	densityFactor := 0.5 + populationDensity*0.5
	resistanceFactor := 1.0 - diseaseResistance*0.7
	durationFactor := 0.5 + p.Latency*0.5
	return base * densityFactor * resistanceFactor * durationFactor
}

// Mortality returns the fraction of infected hosts that die per turn,
// moderated by host disease resistance.
func (p *Pathogen) Mortality(hostDiseaseResistance float64) float64 {
	m := p.Virulence * (1 - hostDiseaseResistance*0.8)
	return clamp(m, 0.01, 0.95)
}

// CanInfect reports whether the pathogen can cross into a host of the
// given lineage, given the host's disease resistance. hostDiet is accepted
// but not consulted.
func (p *Pathogen) CanInfect(hostLineage string, hostDiet species.DietType, hostResistance float64) bool {
	if hostLineage == p.OriginLineage {
		return true
	}
	crossSpeciesChance := 1.0 - p.HostSpecificity
	protectionChance := hostResistance * 0.5
	return crossSpeciesChance > protectionChance
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
