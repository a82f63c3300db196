package speciation

import (
	"math/rand"

	"evochron/internal/ecology/tile"
)

// AllocateTiles assigns one cluster of tiles per offspring, per §4.4: if
// isolation detection produced at least as many clusters as offspring,
// shuffle and assign one cluster each; otherwise split the largest
// cluster into contiguous pieces until there are enough groups.
func AllocateTiles(components [][]tile.ID, offspringCount int, r *rand.Rand) [][]tile.ID {
	clusters := make([][]tile.ID, len(components))
	copy(clusters, components)

	for len(clusters) < offspringCount {
		clusters = splitLargest(clusters)
	}

	r.Shuffle(len(clusters), func(i, j int) { clusters[i], clusters[j] = clusters[j], clusters[i] })

	if len(clusters) <= offspringCount {
		return clusters
	}

	// more clusters than offspring: merge every extra cluster into the
	// first cluster in shuffled order.
	merged := clusters[:offspringCount]
	for _, extra := range clusters[offspringCount:] {
		idx := 0
		merged[idx] = append(merged[idx], extra...)
	}
	return merged
}

func splitLargest(clusters [][]tile.ID) [][]tile.ID {
	largestIdx, largestSize := -1, 0
	for i, c := range clusters {
		if len(c) > largestSize {
			largestIdx, largestSize = i, len(c)
		}
	}
	if largestIdx < 0 || largestSize < 2 {
		// nothing left to split; append an empty cluster so the
		// caller's loop terminates rather than spinning forever.
		return append(clusters, []tile.ID{})
	}

	largest := clusters[largestIdx]
	mid := len(largest) / 2
	a, b := largest[:mid], largest[mid:]

	out := make([][]tile.ID, 0, len(clusters)+1)
	for i, c := range clusters {
		if i == largestIdx {
			out = append(out, a, b)
			continue
		}
		out = append(out, c)
	}
	return out
}
