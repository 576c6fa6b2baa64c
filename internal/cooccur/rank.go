package cooccur

import (
	"errors"
	"sort"
)

// ErrEmptyGraph is returned by ArgmaxDegree when the graph has no nodes.
var ErrEmptyGraph = errors.New("graph has no nodes")

// DegreeEntry pairs an entity with its degree.
type DegreeEntry struct {
	Entity string `json:"entity"`
	Degree int    `json:"degree"`
}

// DegreeRanking returns every node with its degree, ordered by descending
// degree. Ties are broken by lexicographic entity order.
func DegreeRanking(g *Graph) []DegreeEntry {
	ranking := make([]DegreeEntry, 0, g.NodeCount())
	for n := range g.nodes {
		ranking = append(ranking, DegreeEntry{Entity: n, Degree: g.Degree(n)})
	}
	sort.Slice(ranking, func(i, j int) bool {
		return rankBefore(ranking[i], ranking[j])
	})
	return ranking
}

// ArgmaxDegree returns the entity with maximum degree, choosing the
// lexicographically smallest among ties.
func ArgmaxDegree(g *Graph) (string, error) {
	if g == nil || g.NodeCount() == 0 {
		return "", ErrEmptyGraph
	}

	var best DegreeEntry
	first := true
	for n := range g.nodes {
		cand := DegreeEntry{Entity: n, Degree: g.Degree(n)}
		if first || rankBefore(cand, best) {
			best = cand
			first = false
		}
	}
	return best.Entity, nil
}

func rankBefore(a, b DegreeEntry) bool {
	if a.Degree != b.Degree {
		return a.Degree > b.Degree
	}
	return a.Entity < b.Entity
}
