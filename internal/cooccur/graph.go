// Package cooccur builds undirected co-occurrence graphs from records of
// entities observed together, and ranks entities by degree.
//
// An entity is an opaque string (an author display name or a work id). Two
// entities are adjacent iff they appear together in at least one record.
// Edges are stored as unordered pairs, so adjacency is symmetric by
// construction and self-loops cannot exist.
package cooccur

import "sort"

// Record is a list of entities observed together in one source document.
// It may be empty and may contain duplicates.
type Record []string

// Pair is an unordered entity pair, normalized so that A < B.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewPair returns the normalized pair for a and b.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Graph is an undirected co-occurrence graph. A Graph returned by Build,
// Builder.Graph, Union or FromEdges is not mutated afterwards.
type Graph struct {
	nodes map[string]struct{}
	edges map[Pair]struct{}
	adj   map[string]map[string]struct{}
}

func newGraph() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[Pair]struct{}),
		adj:   make(map[string]map[string]struct{}),
	}
}

func (g *Graph) addNode(e string) {
	if _, ok := g.nodes[e]; ok {
		return
	}
	g.nodes[e] = struct{}{}
	g.adj[e] = make(map[string]struct{})
}

// addEdge adds {a, b}. Self-pairs only register the node.
func (g *Graph) addEdge(a, b string) {
	g.addNode(a)
	g.addNode(b)
	if a == b {
		return
	}
	p := NewPair(a, b)
	if _, ok := g.edges[p]; ok {
		return
	}
	g.edges[p] = struct{}{}
	g.adj[p.A][p.B] = struct{}{}
	g.adj[p.B][p.A] = struct{}{}
}

func (g *Graph) clone() *Graph {
	c := newGraph()
	for n := range g.nodes {
		c.addNode(n)
	}
	for p := range g.edges {
		c.addEdge(p.A, p.B)
	}
	return c
}

// NodeCount returns the number of distinct entities.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct unordered edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasNode reports whether e is a node of g.
func (g *Graph) HasNode(e string) bool {
	_, ok := g.nodes[e]
	return ok
}

// HasEdge reports whether {a, b} is an edge of g. Argument order is irrelevant.
func (g *Graph) HasEdge(a, b string) bool {
	if a == b {
		return false
	}
	_, ok := g.edges[NewPair(a, b)]
	return ok
}

// Degree returns the number of distinct neighbors of e, or 0 if e is not a node.
func (g *Graph) Degree(e string) int {
	return len(g.adj[e])
}

// Nodes returns all entities in lexicographic order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Edges returns all edges ordered by (A, B).
func (g *Graph) Edges() []Pair {
	out := make([]Pair, 0, len(g.edges))
	for p := range g.edges {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Neighbors returns the neighbors of e in lexicographic order.
// Returns nil if e is not a node.
func (g *Graph) Neighbors(e string) []string {
	nbrs, ok := g.adj[e]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(nbrs))
	for n := range nbrs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether g and other have the same node and edge sets.
func (g *Graph) Equal(other *Graph) bool {
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for n := range g.nodes {
		if _, ok := other.nodes[n]; !ok {
			return false
		}
	}
	for p := range g.edges {
		if _, ok := other.edges[p]; !ok {
			return false
		}
	}
	return true
}

// Builder accumulates records into a co-occurrence graph.
// The zero value is not usable; call NewBuilder.
type Builder struct {
	g *Graph
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{g: newGraph()}
}

// Add folds one record into the accumulating graph. Duplicate entities within
// the record collapse before pairing. A single-entity record contributes an
// isolated node; an empty record contributes nothing.
func (b *Builder) Add(rec Record) {
	seen := make(map[string]struct{}, len(rec))
	uniq := make([]string, 0, len(rec))
	for _, e := range rec {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		uniq = append(uniq, e)
	}

	for i, a := range uniq {
		b.g.addNode(a)
		for _, c := range uniq[i+1:] {
			b.g.addEdge(a, c)
		}
	}
}

// Graph returns a snapshot of the graph built so far. Further calls to Add do
// not affect the returned value.
func (b *Builder) Graph() *Graph {
	return b.g.clone()
}

// Build returns the co-occurrence graph of records.
func Build(records []Record) *Graph {
	b := NewBuilder()
	for _, rec := range records {
		b.Add(rec)
	}
	return b.g
}

// Union returns a graph whose node and edge sets are the unions of those of
// graphs. Nil graphs are skipped.
func Union(graphs ...*Graph) *Graph {
	u := newGraph()
	for _, g := range graphs {
		if g == nil {
			continue
		}
		for n := range g.nodes {
			u.addNode(n)
		}
		for p := range g.edges {
			u.addEdge(p.A, p.B)
		}
	}
	return u
}

// FromEdges reconstructs a graph from explicit node and edge lists, as read
// back from storage. Endpoints of edges are added as nodes; self-pairs are
// dropped.
func FromEdges(nodes []string, edges []Pair) *Graph {
	g := newGraph()
	for _, n := range nodes {
		g.addNode(n)
	}
	for _, p := range edges {
		g.addEdge(p.A, p.B)
	}
	return g
}
