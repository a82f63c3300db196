// Package pipeline orchestrates the turn state machine (§2, §4.1): Init,
// then the eleven stages Environment, Suitability, Territory, Mortality,
// Reproduction, Adaptation, GeneFlow, Speciation, Hybridization,
// Milestones and Report, then Committed. Each stage consumes the previous stage's
// outputs over a single in-memory working set; fatal errors abort the
// turn before Committed, non-fatal errors degrade to a fallback and the
// stage continues (§7).
package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"evochron/internal/ecoerrors"
	"evochron/internal/ecology/adaptation"
	"evochron/internal/ecology/cascade"
	"evochron/internal/ecology/genus"
	"evochron/internal/ecology/geneflow"
	"evochron/internal/ecology/habitat"
	"evochron/internal/ecology/hybridization"
	"evochron/internal/ecology/mortality"
	"evochron/internal/ecology/pathogen"
	"evochron/internal/ecology/phylogeny"
	"evochron/internal/ecology/plant"
	"evochron/internal/ecology/reproduction"
	"evochron/internal/ecology/report"
	"evochron/internal/ecology/rng"
	"evochron/internal/ecology/speciation"
	"evochron/internal/ecology/species"
	"evochron/internal/ecology/suitability"
	"evochron/internal/ecology/territory"
	"evochron/internal/ecology/tile"
	"evochron/internal/eventstore"
	"evochron/internal/simconfig"
	"evochron/internal/simlog"
)

// Stage names used for logging and the stage-skip/fail report fields.
const (
	StageInit          = "init"
	StageEnvironment   = "environment"
	StageSuitability   = "suitability"
	StageTerritory     = "territory"
	StageMortality     = "mortality"
	StageReproduction  = "reproduction"
	StageAdaptation    = "adaptation"
	StageGeneFlow      = "gene_flow"
	StageSpeciation    = "speciation"
	StageHybridization = "hybridization"
	StageMilestones    = "milestones"
	StageReportBuild   = "report"
	StageCommitted     = "committed"
)

// World is the mutable working set one turn operates over. Persistence to
// a repository happens outside this package, after Committed.
type World struct {
	Seed           int64
	Turn           int
	Era            string
	Grid           *tile.Grid
	Species        map[string]*species.Species // lineage_code -> species
	Genera         map[string]*genus.Genus
	Habitats       *habitat.Store
	Delta          mortality.EnvironmentalDelta
	UsedLatinNames map[string]bool
	nextLineageSeq int

	Phylogeny *phylogeny.Tree
	Outbreaks map[string]*pathogen.Outbreak // lineage_code -> active outbreak
	Pathogens map[string]*pathogen.Pathogen // pathogen ID string -> agent
}

// NewWorld creates an empty working set seeded for deterministic RNG draws.
func NewWorld(seed int64, grid *tile.Grid, era string) *World {
	return &World{
		Seed: seed, Era: era, Grid: grid,
		Species: make(map[string]*species.Species),
		Genera:  make(map[string]*genus.Genus),
		Habitats: habitat.NewStore(),
		UsedLatinNames: make(map[string]bool),
		Phylogeny: phylogeny.NewTree(),
		Outbreaks: make(map[string]*pathogen.Outbreak),
		Pathogens: make(map[string]*pathogen.Pathogen),
	}
}

// RunTurn executes the staged pipeline once and returns the
// assembled TurnReport, per §4.1's run_turn(turn_index) contract. Fatal
// stage failures (invariant violations, configuration errors) abort and
// propagate; all other stage failures are logged and degrade to a
// rule-based fallback so the turn still commits.
func RunTurn(ctx context.Context, w *World, turnIndex int, eventStore eventstore.LineageEventStore) (report.TurnReport, error) {
	w.Turn = turnIndex
	ctx = simlog.WithTurn(ctx, turnIndex)
	builder := report.NewBuilder(turnIndex)
	turnRand := rng.ForTurn(w.Seed, turnIndex)

	alive := aliveSpecies(w)
	ensurePhylogenyRoots(w, alive, turnIndex)
	tiles := w.Grid.All()
	tileList := make([]tile.Tile, 0, len(tiles))
	for _, id := range tiles {
		if t, ok := w.Grid.Get(id); ok {
			tileList = append(tileList, t)
		}
	}
	tilesByID := make(map[tile.ID]tile.Tile, len(tileList))
	for _, t := range tileList {
		tilesByID[t.ID] = t
	}

	// Suitability.
	suitCtx := simlog.WithStage(ctx, StageSuitability)
	suitMatrix := suitability.Compute(alive, tileList)
	_ = suitCtx

	// Territory / niche occupancy.
	runTerritory(ctx, w, alive, suitMatrix)

	// Mortality.
	deathRateBySpeciesTile, err := runMortality(ctx, w, alive, tilesByID, suitMatrix, turnIndex, turnRand, builder)
	if err != nil {
		if ecoerrors.KindOf(err).Fatal() {
			return builder.Build(), err
		}
		simlog.StageFailed(ctx, err)
	}

	// Reproduction.
	runReproduction(ctx, w, alive, tilesByID, suitMatrix, deathRateBySpeciesTile)

	// Adaptation.
	runAdaptation(ctx, w, alive, turnIndex, turnRand)

	// Gene flow.
	runGeneFlow(ctx, w, alive, turnIndex)

	// Speciation.
	runSpeciation(ctx, w, alive, deathRateBySpeciesTile, turnIndex, turnRand, builder)

	// Hybridization.
	runHybridization(ctx, w, turnIndex, turnRand, builder)

	// Plant milestones.
	runMilestones(ctx, w, turnIndex, builder)

	// Report construction + commit.
	for _, s := range aliveSpecies(w) {
		rows := w.Habitats.ForSpecies(s.LineageCode)
		builder.AddSpeciesSnapshot(report.SpeciesSnapshot{
			LineageCode: s.LineageCode,
			Population:  habitat.TotalPopulation(rows),
		})
	}

	if eventStore != nil {
		// The store is accepted here, but no stage appends lineage events
		// to it; branching events appear only in the returned TurnReport.
		_ = eventStore
	}

	return builder.Build(), nil
}

// ensurePhylogenyRoots registers any alive species not yet tracked by the
// phylogeny as a founder (root) lineage, so speciation/hybridization always
// has a parent node to hang children from.
func ensurePhylogenyRoots(w *World, alive []*species.Species, turn int) {
	for _, s := range alive {
		if w.Phylogeny.Get(s.LineageCode) == nil {
			w.Phylogeny.AddRoot(s.LineageCode, turn)
		}
	}
}

func aliveSpecies(w *World) []*species.Species {
	out := make([]*species.Species, 0, len(w.Species))
	for _, s := range w.Species {
		if s.Status == species.StatusAlive {
			out = append(out, s)
		}
	}
	return out
}

func runTerritory(ctx context.Context, w *World, alive []*species.Species, suit *suitability.Matrix) {
	_ = simlog.WithStage(ctx, StageTerritory)
	for _, s := range alive {
		rows := w.Habitats.ForSpecies(s.LineageCode)
		total := habitat.TotalPopulation(rows)
		for _, row := range rows {
			popShare := 0.0
			if total > 0 {
				popShare = row.Population / total
			}
			co := coInhabitants(w, s, row.TileID)
			row.Occupancy = territory.Update(s, territory.Inputs{
				Row: row, SuitabilityScore: suit.At(s.LineageCode, row.TileID),
				PopulationShare: popShare, TurnsPresent: 3, CoInhabitants: co,
			})
		}
	}
}

func coInhabitants(w *World, self *species.Species, tileID tile.ID) []territory.CoInhabitant {
	var out []territory.CoInhabitant
	for _, row := range w.Habitats.ForTile(tileID) {
		if row.SpeciesCode == self.LineageCode {
			continue
		}
		other, ok := w.Species[row.SpeciesCode]
		if !ok || other.EcologicalLayer() != self.EcologicalLayer() {
			continue
		}
		out = append(out, territory.CoInhabitant{Species: other, Occupancy: row.Occupancy})
	}
	return out
}

// outbreakEmergenceChance is the per-tile, per-turn probability of a novel
// pathogen emerging once a species' local density crosses the configured
// disease floor with no outbreak already active against it.
const outbreakEmergenceChance = 0.02

func runMortality(ctx context.Context, w *World, alive []*species.Species, tilesByID map[tile.ID]tile.Tile, suit *suitability.Matrix, turn int, turnRand *rand.Rand, builder *report.Builder) (map[string]map[tile.ID]float64, error) {
	_ = simlog.WithStage(ctx, StageMortality)
	cfg := simconfig.Cfg().Mortality

	deathRateBySpeciesTile := make(map[string]map[tile.ID]float64)
	for _, s := range alive {
		diseaseResistance := s.HiddenTraits["disease_resistance"]
		tileRates := make(map[tile.ID]float64)
		deathRateBySpeciesTile[s.LineageCode] = tileRates

		for _, row := range w.Habitats.ForSpecies(s.LineageCode) {
			outbreak := w.Outbreaks[s.LineageCode]
			density := row.Population / math.Max(1, 10*10)
			if (outbreak == nil || !outbreak.Active) && density > cfg.DiseaseDensityFloor && turnRand.Float64() < outbreakEmergenceChance {
				p := pathogen.New(s.LineageCode+"-pathogen", pickPathogenKind(turnRand), s.LineageCode, turn, turnRand)
				w.Pathogens[p.ID.String()] = p
				outbreak = pathogen.NewOutbreak(p.ID, s.LineageCode, string(row.TileID), turn, math.Max(1, row.Population*0.01))
				w.Outbreaks[s.LineageCode] = outbreak
			}

			diseasePressure := 0.0
			if outbreak != nil && outbreak.Active {
				if p := w.Pathogens[outbreak.PathogenID.String()]; p != nil {
					p.Mutate(turnRand)
					outbreak.Update(p, row.Population, diseaseResistance)
					diseasePressure = outbreak.DiseasePressure(row.Population)
				}
			}

			result := mortality.ComputeTileMortality(s, mortality.TileContext{
				Population: row.Population, Tile: tilesByID[row.TileID],
				CoInhabitants: coOccupants(w, s, row.TileID), MinViablePopulation: 10,
				DiseasePressure: diseasePressure,
			})
			row.Population = result.Survivors
			tileRates[row.TileID] = result.DeathRate
		}
	}
	w.Habitats.PruneZeroed()
	applyExtinctionCascades(w, alive, turn)
	return deathRateBySpeciesTile, nil
}

// applyExtinctionCascades checks which previously-alive species have no
// surviving population rows after this turn's mortality pass, marks them
// extinct in the phylogeny, and scales the populations of surviving
// predators and prey of each extinct lineage (and, after a keystone loss,
// the rest of the community) per the predation relationships implied by
// their own prey lists.
func applyExtinctionCascades(w *World, wasAlive []*species.Species, turn int) {
	var survivors []*species.Species
	var newlyExtinct []*species.Species
	for _, s := range wasAlive {
		if habitat.TotalPopulation(w.Habitats.ForSpecies(s.LineageCode)) > 0 {
			survivors = append(survivors, s)
			continue
		}
		s.Status = species.StatusExtinct
		newlyExtinct = append(newlyExtinct, s)
	}

	for _, extinct := range newlyExtinct {
		w.Phylogeny.MarkExtinct(extinct.LineageCode, turn)
		result := cascade.Calculate(extinct, survivors)
		for code, mult := range result.PopulationMultiplier {
			for _, row := range w.Habitats.ForSpecies(code) {
				row.Population *= mult
				if row.Population < 0 {
					row.Population = 0
				}
			}
		}
	}
}

var pathogenKinds = []pathogen.Kind{
	pathogen.KindVirus, pathogen.KindBacteria, pathogen.KindFungus,
	pathogen.KindPrion, pathogen.KindParasite,
}

func pickPathogenKind(r *rand.Rand) pathogen.Kind {
	return pathogenKinds[r.Intn(len(pathogenKinds))]
}

func coOccupants(w *World, self *species.Species, tileID tile.ID) []mortality.CoOccupant {
	var out []mortality.CoOccupant
	for _, row := range w.Habitats.ForTile(tileID) {
		if row.SpeciesCode == self.LineageCode {
			continue
		}
		if other, ok := w.Species[row.SpeciesCode]; ok {
			out = append(out, mortality.CoOccupant{Species: other, Occupancy: row.Occupancy})
		}
	}
	return out
}

func runReproduction(ctx context.Context, w *World, alive []*species.Species, tilesByID map[tile.ID]tile.Tile, suit *suitability.Matrix, deathRateBySpeciesTile map[string]map[tile.ID]float64) {
	_ = simlog.WithStage(ctx, StageReproduction)
	capacity := mortality.ComputeCapacity(ctx, alive, tilesByID, suit.At, w.Habitats, w.Delta)
	turnYears := simconfig.Cfg().Era.YearsForEra(w.Era)

	for _, s := range alive {
		speciesDeathRates := deathRateBySpeciesTile[s.LineageCode]
		rows := w.Habitats.ForSpecies(s.LineageCode)
		priorTotal := habitat.TotalPopulation(rows)
		shares := habitat.PriorDistribution(rows)
		newTotal := 0.0
		for _, row := range rows {
			tileCapacity := 0.0
			if perTile, ok := capacity[s.LineageCode]; ok {
				tileCapacity = perTile[row.TileID]
			}
			survivalRate := 1 - speciesDeathRates[row.TileID]
			if survivalRate < 0 {
				survivalRate = 0
			} else if survivalRate > 1 {
				survivalRate = 1
			}
			outcome := reproduction.ComputeTile(reproduction.Inputs{
				Survivors: row.Population, Capacity: tileCapacity,
				ReproductionSpeed: s.AbstractTraits["reproduction_speed"],
				GenerationTimeDays: s.MorphologyStats["generation_time_days"],
				TurnYears: turnYears, SurvivalRate: survivalRate,
			})
			row.Population = outcome.NewPopulation
			newTotal += outcome.NewPopulation
		}
		_ = priorTotal
		redistributed := reproduction.Redistribute(newTotal, shares, nil)
		for _, row := range rows {
			if v, ok := redistributed[row.TileID]; ok {
				row.Population = v
			}
		}
	}
}

func runAdaptation(ctx context.Context, w *World, alive []*species.Species, turn int, turnRand *rand.Rand) {
	_ = simlog.WithStage(ctx, StageAdaptation)
	pressures := []adaptation.Pressure{
		{Type: "climate_shift", Trait: "cold_tolerance", Intensity: 1.0},
	}
	for _, s := range alive {
		lineageRand := rng.ForLineage(w.Seed, turn, s.LineageCode)
		adaptation.DriftTraits(s, pressures, 10, lineageRand)
		adaptation.DriftOrganParameters(s, pressures, lineageRand)
		adaptation.ProgressOrganStages(s, 1.0, 1.0, turn, lineageRand)

		if adaptation.ShouldCheckRegression(s, turn, w.Era) {
			adaptation.ApplyRegression(s, adaptation.RegressionContext{}, lineageRand)
		}
	}
	_ = turnRand
}

func runGeneFlow(ctx context.Context, w *World, alive []*species.Species, turn int) {
	_ = simlog.WithStage(ctx, StageGeneFlow)
	byGenus := make(map[string][]*species.Species)
	for _, s := range alive {
		byGenus[s.GenusCode] = append(byGenus[s.GenusCode], s)
	}
	for genusCode, members := range byGenus {
		g, ok := w.Genera[genusCode]
		if !ok {
			g = genus.NewGenus(genusCode)
			w.Genera[genusCode] = g
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				ancestorTurn := a.CreatedTurn
				if anc := w.Phylogeny.CommonAncestor(a.LineageCode, b.LineageCode); anc != nil {
					ancestorTurn = anc.OriginTurn
				}
				distance := geneflow.Distance(a, b, ancestorTurn, turn, nil)
				overlap := geneflow.HabitatOverlap(tileIDStrings(w, a), tileIDStrings(w, b))
				popA := habitat.TotalPopulation(w.Habitats.ForSpecies(a.LineageCode))
				popB := habitat.TotalPopulation(w.Habitats.ForSpecies(b.LineageCode))
				if geneflow.Flow(a, b, distance, overlap, popA, popB) {
					g.UpdateDistance(a.LineageCode, b.LineageCode, distance)
				}
			}
		}
	}
}

func tileIDStrings(w *World, s *species.Species) []string {
	rows := w.Habitats.ForSpecies(s.LineageCode)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r.TileID)
	}
	return out
}

func runSpeciation(ctx context.Context, w *World, alive []*species.Species, deathRateBySpeciesTile map[string]map[tile.ID]float64, turn int, turnRand *rand.Rand, builder *report.Builder) {
	_ = simlog.WithStage(ctx, StageSpeciation)

	for _, s := range alive {
		speciesDeathRates := deathRateBySpeciesTile[s.LineageCode]
		rows := w.Habitats.ForSpecies(s.LineageCode)
		total := habitat.TotalPopulation(rows)
		tileIDs := make([]tile.ID, len(rows))
		tileRates := make([]float64, len(rows))
		for i, r := range rows {
			tileIDs[i] = r.TileID
			tileRates[i] = speciesDeathRates[r.TileID]
		}

		in := speciation.CandidateInputs{
			CandidatePopulation: total, CurrentTurn: turn,
			TileDeathRates: tileRates, SpeciesCount: len(alive),
		}
		if !speciation.Eligible(s, in) {
			continue
		}

		lineageRand := rng.ForLineage(w.Seed, turn, s.LineageCode)
		if !speciation.ProbabilityCheck(s, in, lineageRand) {
			speciation.RecordFailure(s)
			continue
		}

		isolation := speciation.DetectIsolation(w.Grid, tileIDs, speciesDeathRates)
		isoType := speciation.Classify(isolation, false, 0, false)

		offspringCount := speciation.OffspringCount(s, total, len(alive), 0, lineageRand)
		allocations := speciation.AllocateTiles(isolation.Components, offspringCount, lineageRand)

		g := w.Genera[s.GenusCode]
		childCodes := make([]string, 0, offspringCount)
		for i := 0; i < offspringCount && i < len(allocations); i++ {
			w.nextLineageSeq++
			childCode := fmt.Sprintf("%s%d", s.LineageCode, w.nextLineageSeq)
			axis := speciation.DifferentiationAxis(i)
			changes := speciation.FallbackContent(s, axis, i)
			child := speciation.BuildChild(s, g, childCode, turn, changes, lineageRand)

			speciation.ValidateOrganStageChanges(child, s)
			speciation.ValidatePreyList(child, s)
			speciation.ValidateHabitatTransition(child, s.HabitatType)
			speciation.ValidateTraitBudget(child, w.Era)
			child.LastSpeciationTurn = turn
			child.LatinName = speciation.UniqueLatinName(changes.LatinName, w.UsedLatinNames)
			w.UsedLatinNames[child.LatinName] = true

			w.Species[child.LineageCode] = child
			w.Phylogeny.AddChild(s.LineageCode, child.LineageCode, turn)
			childCodes = append(childCodes, child.LineageCode)

			for _, tid := range allocations[i] {
				w.Habitats.Upsert(habitat.Population{
					TileID: tid, SpeciesCode: child.LineageCode, Turn: turn,
					Population: total / float64(offspringCount),
				})
			}
		}

		if len(childCodes) > 0 {
			s.LastSpeciationTurn = turn
			builder.AddBranchingEvent(report.BranchingEvent{
				Type: "speciation", ParentCode: s.LineageCode, ChildCodes: childCodes,
				Description: speciation.KeyInnovationLabel(isoType),
			})
		}
	}
}

func runHybridization(ctx context.Context, w *World, turn int, turnRand *rand.Rand, builder *report.Builder) {
	_ = simlog.WithStage(ctx, StageHybridization)
	byGenus := make(map[string][]*species.Species)
	for _, s := range aliveSpecies(w) {
		byGenus[s.GenusCode] = append(byGenus[s.GenusCode], s)
	}

	population := make(map[string]float64)
	habitatTiles := make(map[string][]string)
	ancestorTurn := make(map[string]int)
	for _, s := range aliveSpecies(w) {
		rows := w.Habitats.ForSpecies(s.LineageCode)
		population[s.LineageCode] = habitat.TotalPopulation(rows)
		habitatTiles[s.LineageCode] = tileIDStrings(w, s)
	}

	for _, members := range byGenus {
		if len(members) < 2 {
			continue
		}
		candidates := hybridization.DetectCandidates(members, habitatTiles, population, ancestorTurn, turn)
		for _, c := range candidates {
			w.nextLineageSeq++
			childCode := fmt.Sprintf("%sx%s%d", c.A.LineageCode, c.B.LineageCode, w.nextLineageSeq)
			h := hybridization.CreateHybrid(c, childCode, turn, turnRand)
			w.Species[h.LineageCode] = h
			w.Phylogeny.AddChild(c.A.LineageCode, h.LineageCode, turn)
			builder.AddBranchingEvent(report.BranchingEvent{
				Type: "hybridization", ParentCode: c.A.LineageCode,
				ChildCodes: []string{h.LineageCode}, Description: "hybrid of " + c.A.LineageCode + " and " + c.B.LineageCode,
			})
		}
	}
}

func runMilestones(ctx context.Context, w *World, turn int, builder *report.Builder) {
	_ = simlog.WithStage(ctx, StageMilestones)
	for _, s := range aliveSpecies(w) {
		if !s.IsPlant() {
			continue
		}
		if id := plant.CheckAutoTrigger(s, turn); id != "" {
			builder.Note(fmt.Sprintf("%s achieved milestone %s", s.LineageCode, id))
		}
	}
}
