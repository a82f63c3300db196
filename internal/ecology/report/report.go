// Package report builds the TurnReport: a purely derived, per-turn
// summary with no authoritative state (§3).
package report

import "evochron/internal/ecology/tile"

// SpeciesSnapshot is one species' per-turn summary row.
type SpeciesSnapshot struct {
	LineageCode        string
	Population         float64
	Deaths             float64
	Births             float64
	DeathRate          float64
	DeathTileDistribution map[tile.ID]float64
	EcologicalRealismFlags []string
}

// BranchingEvent records a speciation or hybridization event that
// occurred during the turn, for downstream narrative/UI consumption.
type BranchingEvent struct {
	Type        string // "speciation" or "hybridization"
	ParentCode  string
	ChildCodes  []string
	Description string
}

// EnvironmentalEvent records a notable terrain-delta or climate shift
// surfaced during the environment stage.
type EnvironmentalEvent struct {
	Description string
	AffectedTiles []tile.ID
}

// PressureSummary aggregates stage-wide pressure signals used by the
// speciation/adaptation stages, surfaced for observability.
type PressureSummary struct {
	MeanMortalityPressure float64
	MeanCompetitionPressure float64
	SpeciesUnderSpeciationPressure int
	ExtinctionsThisTurn int
}

// EcologicalRealismSummary flags aggregate anomalies worth a human look:
// runaway populations, trophic gaps, or capacity violations that were
// clamped rather than rejected.
type EcologicalRealismSummary struct {
	ClampedCapacityOverflows int
	TrophicGapViolationsRepaired int
	Notes []string
}

// TurnReport is the complete, purely-derived output of one turn.
type TurnReport struct {
	Turn                int
	Species             []SpeciesSnapshot
	Pressure            PressureSummary
	BranchingEvents      []BranchingEvent
	EnvironmentalEvents []EnvironmentalEvent
	Realism             EcologicalRealismSummary
}

// Builder accumulates report data across the pipeline stages of one turn.
type Builder struct {
	report TurnReport
}

// NewBuilder starts a fresh report for the given turn index.
func NewBuilder(turn int) *Builder {
	return &Builder{report: TurnReport{Turn: turn}}
}

func (b *Builder) AddSpeciesSnapshot(s SpeciesSnapshot) {
	b.report.Species = append(b.report.Species, s)
}

func (b *Builder) AddBranchingEvent(e BranchingEvent) {
	b.report.BranchingEvents = append(b.report.BranchingEvents, e)
}

func (b *Builder) AddEnvironmentalEvent(e EnvironmentalEvent) {
	b.report.EnvironmentalEvents = append(b.report.EnvironmentalEvents, e)
}

func (b *Builder) SetPressure(p PressureSummary) {
	b.report.Pressure = p
}

func (b *Builder) NoteClampedOverflow() {
	b.report.Realism.ClampedCapacityOverflows++
}

func (b *Builder) NoteTrophicGapRepaired() {
	b.report.Realism.TrophicGapViolationsRepaired++
}

func (b *Builder) Note(note string) {
	b.report.Realism.Notes = append(b.report.Realism.Notes, note)
}

// Build finalizes and returns the assembled TurnReport.
func (b *Builder) Build() TurnReport {
	return b.report
}
