// Package terrainstub is a deterministic stand-in for the external
// terrain-evolution module the ecology core depends on but never owns
// (tile.Tile docs, §"Non-goals"): it produces an initial tile grid from a
// seed plus width/height, and per-turn environmental deltas (temperature
// drift, sea-level change) driving mortality.EnvironmentalDelta. A real
// deployment replaces this package; the CLI and engine tests use it as
// their only terrain source.
package terrainstub

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"

	"evochron/internal/ecology/mortality"
	"evochron/internal/ecology/tile"
)

// Generator produces a deterministic tile grid and per-turn environmental
// deltas from Perlin noise fields, seeded for reproducibility.
type Generator struct {
	width, height int
	elevation     *perlin.Perlin
	moisture      *perlin.Perlin
	resource      *perlin.Perlin
	seed          int64
}

// NewGenerator builds a Generator for a width x height grid. alpha=2,
// beta=2, n=3 matches the teacher's default octave count for a gently
// rolling continuous field at this scale.
func NewGenerator(seed int64, width, height int) *Generator {
	return &Generator{
		width:     width,
		height:    height,
		elevation: perlin.NewPerlin(2, 2, 3, seed),
		moisture:  perlin.NewPerlin(2, 2, 3, seed+1),
		resource:  perlin.NewPerlin(2, 2, 3, seed+2),
		seed:      seed,
	}
}

// tileCoord maps a flat index to fractional x/y used as the noise
// sampling coordinate, scaled down so the octaves span the whole grid.
func (g *Generator) tileCoord(x, y int) (float64, float64) {
	const scale = 8.0
	return float64(x) / scale, float64(y) / scale
}

// Generate builds the initial tile.Grid: one tile per cell, 4-neighbor
// (von Neumann) adjacency, temperature derived from a latitude band plus
// elevation lapse, humidity and resources from independent noise fields.
func (g *Generator) Generate() *tile.Grid {
	tiles := make([]tile.Tile, 0, g.width*g.height)
	var edges [][2]tile.ID

	idOf := func(x, y int) tile.ID { return tile.ID(fmt.Sprintf("t_%d_%d", x, y)) }

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			nx, ny := g.tileCoord(x, y)
			elev := g.elevation.Noise2D(nx, ny)
			moist := (g.moisture.Noise2D(nx+100, ny+100) + 1) / 2
			res := (g.resource.Noise2D(nx+200, ny+200) + 1) / 2

			latitude := math.Abs(float64(y)/float64(g.height)*2 - 1) // 0 equator, 1 poles
			temp := 30.0 - latitude*55.0 - math.Max(0, elev)*20.0
			elevationM := elev * 2000

			isOcean := elevationM < -100
			isLake := !isOcean && moist > 0.92 && elevationM < 50

			var biome tile.Biome
			switch {
			case isOcean:
				biome = "ocean"
			case isLake:
				biome = "lake"
			case elevationM > 1200:
				biome = "mountain"
			case temp < -5:
				biome = "tundra"
			case moist < 0.25:
				biome = "desert"
			case moist > 0.65 && temp > 18:
				biome = "rainforest"
			default:
				biome = "grassland"
			}

			id := idOf(x, y)
			tiles = append(tiles, tile.Tile{
				ID:          id,
				Temperature: temp,
				Humidity:    moist,
				Resources:   res,
				Elevation:   elevationM,
				Biome:       biome,
				Cover:       moist * 0.7,
				IsLake:      isLake,
				IsOcean:     isOcean,
			})

			if x < g.width-1 {
				edges = append(edges, [2]tile.ID{id, idOf(x+1, y)})
			}
			if y < g.height-1 {
				edges = append(edges, [2]tile.ID{id, idOf(x, y+1)})
			}
		}
	}

	return tile.NewGrid(tiles, edges)
}

// DeltaForTurn produces a slow, deterministic environmental drift: a
// gentle warming trend plus a very small sea-level rise, large enough
// over hundreds of turns to stress coastal/marine species without
// swamping any single turn's mortality computation.
func DeltaForTurn(turnIndex int) mortality.EnvironmentalDelta {
	return mortality.EnvironmentalDelta{
		TempChange:     float64(turnIndex) * 0.002,
		SeaLevelChange: float64(turnIndex) * 0.01,
	}
}
