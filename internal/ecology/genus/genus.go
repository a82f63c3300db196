// Package genus groups species by genus_code and tracks what has been
// discovered by any member (the gene library) plus pairwise genetic
// distances, updated at each speciation event.
package genus

import "sort"

// GeneLibraryEntry records a trait or organ name discovered by any member
// species of the genus, for use as a basis for new dormant genes on
// children that have not yet expressed it themselves.
type GeneLibraryEntry struct {
	Name        string
	IsOrgan     bool
	DiscoveredTurn int
}

// Genus is the taxonomic grouping above Species.
type Genus struct {
	Code string

	GeneLibrary map[string]GeneLibraryEntry

	// GeneticDistances is keyed by sort(codeA,codeB) joined with "|".
	GeneticDistances map[string]float64
}

// NewGenus creates an empty genus record.
func NewGenus(code string) *Genus {
	return &Genus{
		Code:             code,
		GeneLibrary:      make(map[string]GeneLibraryEntry),
		GeneticDistances: make(map[string]float64),
	}
}

// DistanceKey builds the canonical key for a pair of species codes.
func DistanceKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + "|" + pair[1]
}

// Distance looks up a cached genetic distance between two species codes.
func (g *Genus) Distance(a, b string) (float64, bool) {
	d, ok := g.GeneticDistances[DistanceKey(a, b)]
	return d, ok
}

// UpdateDistance records a genetic distance for a pair, as computed by the
// gene-flow stage.
func (g *Genus) UpdateDistance(a, b string, distance float64) {
	g.GeneticDistances[DistanceKey(a, b)] = distance
}

// Discover adds a trait or organ name to the gene library if not already
// present, recording the turn it was first observed.
func (g *Genus) Discover(name string, isOrgan bool, turn int) {
	if _, ok := g.GeneLibrary[name]; ok {
		return
	}
	g.GeneLibrary[name] = GeneLibraryEntry{Name: name, IsOrgan: isOrgan, DiscoveredTurn: turn}
}

// Unseen returns gene library entries not present in the given set of
// known names (used when constructing a child's dormant genes from
// genus-wide discoveries it has not itself expressed).
func (g *Genus) Unseen(known map[string]bool) []GeneLibraryEntry {
	var out []GeneLibraryEntry
	for name, entry := range g.GeneLibrary {
		if !known[name] {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
