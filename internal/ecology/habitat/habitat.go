// Package habitat models the (tile, species, turn) population rows the
// mortality, reproduction and territory stages read and rewrite each turn.
package habitat

import "evochron/internal/ecology/tile"

// Population is a (tile, species, turn) triple. A species exists at a tile
// iff a Population row is present with Population > 0, or is within the
// grace period before removal.
type Population struct {
	TileID      tile.ID
	SpeciesCode string // lineage_code
	Turn        int

	Population float64 // biomass, kg
	Suitability float64 // [0,1]
	Occupancy   float64 // [0,1], independent of Population

	TurnsAtZero int // consecutive turns at Population == 0, for grace-period removal
}

// Key uniquely identifies a row within a single turn's working set.
type Key struct {
	TileID      tile.ID
	SpeciesCode string
}

func KeyOf(p Population) Key {
	return Key{TileID: p.TileID, SpeciesCode: p.SpeciesCode}
}

// GracePeriodTurns is how many consecutive turns a species may sit at zero
// population on a tile before the row is removed entirely.
const GracePeriodTurns = 3

// Store is the in-memory working set the engine mutates during a turn.
// Persistence is via the repository package's WriteHabitats/LatestHabitats,
// not through this type directly.
type Store struct {
	rows map[Key]*Population
}

func NewStore() *Store {
	return &Store{rows: make(map[Key]*Population)}
}

func (s *Store) Upsert(p Population) {
	s.rows[KeyOf(p)] = &p
}

func (s *Store) Get(tileID tile.ID, speciesCode string) (*Population, bool) {
	p, ok := s.rows[Key{TileID: tileID, SpeciesCode: speciesCode}]
	return p, ok
}

// ForSpecies returns every row for a given species, across all its tiles.
func (s *Store) ForSpecies(speciesCode string) []*Population {
	var out []*Population
	for _, p := range s.rows {
		if p.SpeciesCode == speciesCode {
			out = append(out, p)
		}
	}
	return out
}

// ForTile returns every row at a given tile, across all co-occurring
// species (used by competition/mortality to find co-inhabitants).
func (s *Store) ForTile(tileID tile.ID) []*Population {
	var out []*Population
	for _, p := range s.rows {
		if p.TileID == tileID {
			out = append(out, p)
		}
	}
	return out
}

// All returns every row currently in the store.
func (s *Store) All() []*Population {
	out := make([]*Population, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, p)
	}
	return out
}

// PruneZeroed removes rows that have sat at zero population past the
// grace period, incrementing TurnsAtZero otherwise. Called once at the
// end of the mortality stage, before reproduction runs.
func (s *Store) PruneZeroed() {
	for key, p := range s.rows {
		if p.Population <= 0 {
			p.TurnsAtZero++
			if p.TurnsAtZero > GracePeriodTurns {
				delete(s.rows, key)
			}
		} else {
			p.TurnsAtZero = 0
		}
	}
}

// TotalPopulation sums biomass for a species across all its tiles.
func TotalPopulation(rows []*Population) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.Population
	}
	return total
}

// PriorDistribution returns each row's share of the species' total
// population, used by the reproduction stage's redistribution rule.
func PriorDistribution(rows []*Population) map[tile.ID]float64 {
	total := TotalPopulation(rows)
	shares := make(map[tile.ID]float64, len(rows))
	if total <= 0 {
		return shares
	}
	for _, r := range rows {
		shares[r.TileID] = r.Population / total
	}
	return shares
}
