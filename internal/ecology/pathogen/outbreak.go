package pathogen

import "github.com/google/uuid"

// Severity buckets an outbreak by the share of the host population it has
// touched.
type Severity string

const (
	SeverityMinor    Severity = "minor"    // < 1% of population
	SeverityModerate Severity = "moderate" // 1-5%
	SeveritySevere   Severity = "severe"   // 5-20%
	SeverityPandemic Severity = "pandemic" // > 20%
)

// Outbreak is an active infection within one species on one tile.
type Outbreak struct {
	ID              uuid.UUID
	PathogenID      uuid.UUID
	Lineage         string
	TileID          string
	StartTurn       int
	Severity        Severity
	PeakInfected    float64
	TotalInfected   float64
	TotalDeaths     float64
	CurrentInfected float64
	RecoveredCount  float64
	Active          bool
}

// NewOutbreak seeds an outbreak with an initial infected count.
func NewOutbreak(pathogenID uuid.UUID, lineage, tileID string, startTurn int, initialInfected float64) *Outbreak {
	return &Outbreak{
		ID: uuid.New(), PathogenID: pathogenID, Lineage: lineage, TileID: tileID,
		StartTurn: startTurn, Severity: SeverityMinor,
		CurrentInfected: initialInfected, TotalInfected: initialInfected, Active: true,
	}
}

// Update advances the outbreak by one turn given the pathogen's current
// properties and the host's susceptible population and disease resistance.
func (o *Outbreak) Update(p *Pathogen, susceptiblePopulation, diseaseResistance float64) {
	if !o.Active {
		return
	}

	r0 := p.R0(o.CurrentInfected/(susceptiblePopulation+1), diseaseResistance)
	mortality := p.Mortality(diseaseResistance)

	newInfections := o.CurrentInfected * r0 * (susceptiblePopulation / (susceptiblePopulation + o.RecoveredCount + 1))
	if cap := susceptiblePopulation / 10; newInfections > cap {
		newInfections = cap
	}
	if newInfections < 0 {
		newInfections = 0
	}

	deaths := o.CurrentInfected * mortality * 0.1
	if deaths > o.CurrentInfected {
		deaths = o.CurrentInfected
	}

	recoveries := o.CurrentInfected * (1 - mortality) * 0.15
	if recoveries > o.CurrentInfected-deaths {
		recoveries = o.CurrentInfected - deaths
	}

	o.CurrentInfected = o.CurrentInfected + newInfections - deaths - recoveries
	o.TotalInfected += newInfections
	o.TotalDeaths += deaths
	o.RecoveredCount += recoveries

	if o.CurrentInfected > o.PeakInfected {
		o.PeakInfected = o.CurrentInfected
	}

	infectionRate := o.TotalInfected / (susceptiblePopulation + 1)
	switch {
	case infectionRate > 0.20:
		o.Severity = SeverityPandemic
	case infectionRate > 0.05:
		o.Severity = SeveritySevere
	case infectionRate > 0.01:
		o.Severity = SeverityModerate
	default:
		o.Severity = SeverityMinor
	}

	// fewer than one infected host left: the outbreak has burnt out
	if o.CurrentInfected < 1 {
		o.Active = false
		o.CurrentInfected = 0
	}
}

// DiseasePressure collapses an active outbreak to the scalar the mortality
// stage's TileContext.DiseasePressure field expects: the outbreak's
// cumulative deaths (TotalDeaths) as a share of the susceptible population.
func (o *Outbreak) DiseasePressure(susceptiblePopulation float64) float64 {
	if !o.Active || susceptiblePopulation <= 0 {
		return 0
	}
	return o.TotalDeaths / susceptiblePopulation
}
