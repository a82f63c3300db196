package tile

import "sort"

// Grid is an immutable-within-turn view over the tile set plus the
// adjacency graph the speciation stage walks for geographic isolation
// detection. The map-state singleton owns mutation between turns; the
// ecology core only ever reads through this type during a turn.
type Grid struct {
	tiles     map[ID]Tile
	neighbors map[ID][]ID
}

// NewGrid builds a Grid from a flat tile list and an adjacency list (each
// entry a pair of neighboring tile ids, undirected).
func NewGrid(tiles []Tile, edges [][2]ID) *Grid {
	g := &Grid{
		tiles:     make(map[ID]Tile, len(tiles)),
		neighbors: make(map[ID][]ID, len(tiles)),
	}
	for _, t := range tiles {
		g.tiles[t.ID] = t
	}
	for _, e := range edges {
		g.neighbors[e[0]] = append(g.neighbors[e[0]], e[1])
		g.neighbors[e[1]] = append(g.neighbors[e[1]], e[0])
	}
	return g
}

// Get returns the tile for id and whether it exists.
func (g *Grid) Get(id ID) (Tile, bool) {
	t, ok := g.tiles[id]
	return t, ok
}

// Neighbors returns the adjacency list for id.
func (g *Grid) Neighbors(id ID) []ID {
	return g.neighbors[id]
}

// All returns every tile id in the grid, sorted for deterministic iteration.
func (g *Grid) All() []ID {
	ids := make([]ID, 0, len(g.tiles))
	for id := range g.tiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len reports the number of tiles in the grid.
func (g *Grid) Len() int {
	return len(g.tiles)
}

// ConnectedComponents partitions the given subset of tile ids into
// connected components using the grid's adjacency graph, restricted to
// edges between tiles in the subset. Used by the speciation stage's
// geographic isolation detector. Deterministic: components are returned in
// an order keyed by their smallest member id, and each component's members
// are sorted.
func (g *Grid) ConnectedComponents(subset []ID) [][]ID {
	inSubset := make(map[ID]bool, len(subset))
	for _, id := range subset {
		inSubset[id] = true
	}

	uf := newUnionFind(subset)
	for _, id := range subset {
		for _, n := range g.neighbors[id] {
			if inSubset[n] {
				uf.union(id, n)
			}
		}
	}

	groups := make(map[ID][]ID)
	for _, id := range subset {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}

	components := make([][]ID, 0, len(groups))
	for _, members := range groups {
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		components = append(components, members)
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })
	return components
}

// unionFind is a standard disjoint-set structure over tile ids.
type unionFind struct {
	parent map[ID]ID
	rank   map[ID]int
}

func newUnionFind(ids []ID) *unionFind {
	uf := &unionFind{parent: make(map[ID]ID, len(ids)), rank: make(map[ID]int, len(ids))}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(id ID) ID {
	root := id
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for id != root {
		next := uf.parent[id]
		uf.parent[id] = root
		id = next
	}
	return root
}

func (uf *unionFind) union(a, b ID) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
