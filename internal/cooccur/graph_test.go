package cooccur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		records   []Record
		wantNodes []string
		wantEdges []Pair
		wantDeg   map[string]int
	}{
		{
			name:      "single record forms a triangle",
			records:   []Record{{"Alice", "Bob", "Carol"}},
			wantNodes: []string{"Alice", "Bob", "Carol"},
			wantEdges: []Pair{{"Alice", "Bob"}, {"Alice", "Carol"}, {"Bob", "Carol"}},
			wantDeg:   map[string]int{"Alice": 2, "Bob": 2, "Carol": 2},
		},
		{
			name:      "two records share a node",
			records:   []Record{{"Alice", "Bob"}, {"Bob", "Carol"}},
			wantNodes: []string{"Alice", "Bob", "Carol"},
			wantEdges: []Pair{{"Alice", "Bob"}, {"Bob", "Carol"}},
			wantDeg:   map[string]int{"Alice": 1, "Bob": 2, "Carol": 1},
		},
		{
			name:      "duplicate within record collapses",
			records:   []Record{{"Dan", "Dan"}},
			wantNodes: []string{"Dan"},
			wantEdges: []Pair{},
			wantDeg:   map[string]int{"Dan": 0},
		},
		{
			name:      "single entity is an isolated node",
			records:   []Record{{"x"}},
			wantNodes: []string{"x"},
			wantEdges: []Pair{},
			wantDeg:   map[string]int{"x": 0},
		},
		{
			name:      "empty record contributes nothing",
			records:   []Record{{}, {"a", "b"}},
			wantNodes: []string{"a", "b"},
			wantEdges: []Pair{{"a", "b"}},
		},
		{
			name:      "no records",
			records:   nil,
			wantNodes: []string{},
			wantEdges: []Pair{},
		},
		{
			name:      "repeated pair across records is one edge",
			records:   []Record{{"b", "a"}, {"a", "b"}, {"a", "b", "a"}},
			wantNodes: []string{"a", "b"},
			wantEdges: []Pair{{"a", "b"}},
			wantDeg:   map[string]int{"a": 1, "b": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.records)
			assert.Equal(t, tt.wantNodes, g.Nodes())
			assert.Equal(t, tt.wantEdges, g.Edges())
			for e, d := range tt.wantDeg {
				assert.Equal(t, d, g.Degree(e), "degree(%s)", e)
			}
		})
	}
}

func TestBuild_SymmetryAndNoSelfLoops(t *testing.T) {
	g := Build([]Record{
		{"a", "b", "c", "a"},
		{"c", "d"},
		{"e", "e", "e"},
		{"d"},
	})

	for _, p := range g.Edges() {
		assert.True(t, g.HasEdge(p.A, p.B))
		assert.True(t, g.HasEdge(p.B, p.A))
		assert.True(t, g.HasNode(p.A))
		assert.True(t, g.HasNode(p.B))
		assert.NotEqual(t, p.A, p.B)
		assert.Less(t, p.A, p.B)
		assert.Contains(t, g.Neighbors(p.A), p.B)
		assert.Contains(t, g.Neighbors(p.B), p.A)
	}
	for _, n := range g.Nodes() {
		assert.False(t, g.HasEdge(n, n))
		assert.NotContains(t, g.Neighbors(n), n)
	}
	assert.Equal(t, 0, g.Degree("e"))
}

func TestUnion_MatchesBuildOfConcatenation(t *testing.T) {
	r1 := []Record{{"a", "b"}, {"c"}}
	r2 := []Record{{"b", "a"}, {"b", "d", "e"}}

	whole := Build(append(append([]Record{}, r1...), r2...))
	parts := Union(Build(r1), Build(r2))

	assert.True(t, whole.Equal(parts))
	assert.True(t, parts.Equal(whole))
	assert.Equal(t, whole.Nodes(), parts.Nodes())
	assert.Equal(t, whole.Edges(), parts.Edges())
}

func TestUnion_Idempotent(t *testing.T) {
	g := Build([]Record{{"a", "b", "c"}})
	u := Union(g, g, nil)
	assert.True(t, g.Equal(u))
}

func TestBuilder_SnapshotIsIndependent(t *testing.T) {
	b := NewBuilder()
	b.Add(Record{"a", "b"})
	snap := b.Graph()

	b.Add(Record{"b", "c"})

	assert.Equal(t, []string{"a", "b"}, snap.Nodes())
	assert.Equal(t, []string{"a", "b", "c"}, b.Graph().Nodes())
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	rec := Record{"b", "a", "b"}
	Build([]Record{rec})
	assert.Equal(t, Record{"b", "a", "b"}, rec)
}

func TestFromEdges(t *testing.T) {
	g := FromEdges([]string{"lonely"}, []Pair{{"x", "y"}, {"y", "x"}, {"z", "z"}})

	require.Equal(t, []string{"lonely", "x", "y", "z"}, g.Nodes())
	assert.Equal(t, []Pair{{"x", "y"}}, g.Edges())
	assert.Equal(t, 0, g.Degree("z"))
}

func TestNeighbors_UnknownEntity(t *testing.T) {
	g := Build([]Record{{"a", "b"}})
	assert.Nil(t, g.Neighbors("missing"))
	assert.Equal(t, 0, g.Degree("missing"))
}

func TestNewPair_Normalizes(t *testing.T) {
	assert.Equal(t, Pair{A: "a", B: "b"}, NewPair("b", "a"))
	assert.Equal(t, NewPair("a", "b"), NewPair("b", "a"))
}
