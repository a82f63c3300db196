// Command simulate drives the ecology engine standalone: `simulate
// --turns N [--width W --height H --seed S]` initialises a fresh world
// over a terrainstub-generated grid, runs the turn pipeline N times, and
// writes a per-turn textual and CSV report to a reports directory (§6's
// CLI surface contract).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"evochron/internal/ecology/habitat"
	"evochron/internal/ecology/pipeline"
	"evochron/internal/ecology/species"
	"evochron/internal/ecology/tile"
	"evochron/internal/ecoerrors"
	"evochron/internal/eventstore"
	"evochron/internal/ecology/report"
	"evochron/internal/simconfig"
	"evochron/internal/simlog"
	"evochron/internal/terrainstub"
)

func main() {
	turns := flag.Int("turns", 100, "number of turns to run")
	width := flag.Int("width", 12, "grid width")
	height := flag.Int("height", 12, "grid height")
	seed := flag.Int64("seed", 1, "world seed")
	reportsDir := flag.String("reports", "reports", "directory to write per-turn reports into")
	flag.Parse()

	simlog.Init()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := simconfig.Init(""); err != nil {
		log.Fatal().Err(err).Msg("loading simulation configuration")
	}

	if err := run(*turns, *width, *height, *seed, *reportsDir); err != nil {
		log.Error().Err(err).Msg("simulation aborted")
		os.Exit(1)
	}
}

func run(turns, width, height int, seed int64, reportsDir string) error {
	ctx := context.Background()

	gen := terrainstub.NewGenerator(seed, width, height)
	grid := gen.Generate()

	world := pipeline.NewWorld(seed, grid, "precambrian")
	seedGenesis(world, grid)

	eventStore := eventstore.NewMemoryLineageEventStore()

	csvWriter, err := report.NewCSVWriter(reportsDir)
	if err != nil {
		return fmt.Errorf("opening csv report writer: %w", err)
	}
	defer csvWriter.Close()

	for t := 1; t <= turns; t++ {
		world.Delta = terrainstub.DeltaForTurn(t)

		turnReport, err := pipeline.RunTurn(ctx, world, t, eventStore)
		if err != nil {
			if ecoerrors.KindOf(err).Fatal() {
				return fmt.Errorf("turn %d: unrecoverable: %w", t, err)
			}
			log.Warn().Err(err).Int("turn", t).Msg("turn completed with degraded stage")
		}

		if err := writeTextReport(reportsDir, turnReport); err != nil {
			return fmt.Errorf("writing turn %d text report: %w", t, err)
		}
		if err := csvWriter.WriteTurn(turnReport); err != nil {
			return fmt.Errorf("writing turn %d csv report: %w", t, err)
		}

		log.Info().Int("turn", t).Int("species", len(turnReport.Species)).
			Int("branching_events", len(turnReport.BranchingEvents)).Msg("turn committed")
	}

	return nil
}

// seedGenesis populates a minimal founder community: one autotroph spread
// across every non-ocean tile at a modest starting biomass, so the first few turns
// have something for the pipeline's suitability/mortality/reproduction
// stages to act on before any speciation branches appear.
func seedGenesis(world *pipeline.World, grid *tile.Grid) {
	founder := &species.Species{
		LineageCode:   "A1",
		GenusCode:     "Genusia",
		TaxonomicRank: species.RankSpecies,
		Status:        species.StatusAlive,
		CreatedTurn:   0,
		TrophicLevel:  1.0,
		DietType:      species.DietAutotroph,
		HabitatType:   tile.HabitatTerrestrial,
		MorphologyStats: map[string]float64{
			"body_length_cm":       2,
			"weight_kg":            0.001,
			"generation_time_days": 30,
		},
		AbstractTraits: map[string]float64{
			"cold_tolerance":        3,
			"heat_tolerance":        3,
			"drought_tolerance":     3,
			"reproduction_speed":    5,
			"photosynthesis_efficiency": 4,
			"root_development":     2,
		},
		HiddenTraits:  map[string]float64{},
		Organs:        map[species.OrganCategory]*species.Organ{},
		Capabilities:  map[string]bool{},
		DormantTraits: map[string]*species.DormantGene{},
		DormantOrgans: map[string]*species.DormantGene{},
		LifeFormStage: 0,
		LatinName:     "Genusia prima",
		CommonName:    "founder alga",
		Description:   "the first photosynthesising lineage of this world",
	}
	world.Species[founder.LineageCode] = founder
	world.UsedLatinNames[founder.LatinName] = true

	for _, id := range grid.All() {
		t, ok := grid.Get(id)
		if !ok || t.IsOcean {
			continue
		}
		world.Habitats.Upsert(habitat.Population{
			TileID: id, SpeciesCode: founder.LineageCode, Turn: 0,
			Population: 1000, Suitability: 0.5,
		})
	}
}

func writeTextReport(dir string, r report.TurnReport) error {
	path := filepath.Join(dir, fmt.Sprintf("turn_%05d.txt", r.Turn))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "turn %d  (%s)\n", r.Turn, time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(f, "species alive: %d\n", len(r.Species))
	for _, s := range r.Species {
		fmt.Fprintf(f, "  %-16s population=%.1f deaths=%.1f births=%.1f death_rate=%.4f\n",
			s.LineageCode, s.Population, s.Deaths, s.Births, s.DeathRate)
	}
	if len(r.BranchingEvents) > 0 {
		fmt.Fprintln(f, "branching events:")
		for _, e := range r.BranchingEvents {
			fmt.Fprintf(f, "  [%s] %s -> %v: %s\n", e.Type, e.ParentCode, e.ChildCodes, e.Description)
		}
	}
	if len(r.Realism.Notes) > 0 {
		fmt.Fprintln(f, "notes:")
		for _, n := range r.Realism.Notes {
			fmt.Fprintf(f, "  - %s\n", n)
		}
	}
	return nil
}
