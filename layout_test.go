package main

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEstimator gives every node the same size, so expected positions can
// be worked out by hand.
type fixedEstimator struct {
	width, height float64
}

func (e fixedEstimator) Estimate(string) Size {
	return Size{Width: e.width, Height: e.height}
}

var testEstimator = fixedEstimator{width: 10, height: 4}

func topics(ids ...string) []Node {
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{ID: id, Text: id, Kind: KindTopic}
	}
	return out
}

func links(pairs ...string) []Connection {
	var out []Connection
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Connection{ID: pairs[i] + "-" + pairs[i+1], From: pairs[i], To: pairs[i+1]})
	}
	return out
}

func boxAt(p Point) Rect {
	return Rect{X: p.X, Y: p.Y, Width: testEstimator.width, Height: testEstimator.height}
}

func spanOf(pos Positions, ids ...string) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, id := range ids {
		lo = math.Min(lo, pos[id].X)
		hi = math.Max(hi, pos[id].X+testEstimator.width)
	}
	return lo, hi
}

func assertNoOverlap(t *testing.T, pos Positions) {
	t.Helper()
	ids := make([]string, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			a, b := boxAt(pos[ids[i]]), boxAt(pos[ids[j]])
			assert.False(t, a.Intersects(b), "%s %v overlaps %s %v", ids[i], a, ids[j], b)
		}
	}
}

func TestLayoutBalancedTree(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	nodes := topics("r", "a", "b", "a1", "a2", "b1", "b2")
	conns := links("r", "a", "r", "b", "a", "a1", "a", "a2", "b", "b1", "b", "b2")

	pos := e.Compute(nodes, conns)
	require.Len(t, pos, 7)

	assert.Equal(t, Point{X: 25, Y: 2}, pos["r"])
	assert.Equal(t, Point{X: 11, Y: 8}, pos["a"])
	assert.Equal(t, Point{X: 39, Y: 8}, pos["b"])
	assert.Equal(t, Point{X: 4, Y: 14}, pos["a1"])
	assert.Equal(t, Point{X: 18, Y: 14}, pos["a2"])
	assert.Equal(t, Point{X: 32, Y: 14}, pos["b1"])
	assert.Equal(t, Point{X: 46, Y: 14}, pos["b2"])

	_, aHi := spanOf(pos, "a", "a1", "a2")
	bLo, _ := spanOf(pos, "b", "b1", "b2")
	assert.LessOrEqual(t, aHi, bLo, "sibling subtrees overlap")
	assertNoOverlap(t, pos)
}

func TestLayoutSingleRootThreeChildren(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	nodes := topics("main", "a", "b", "c")
	nodes[0].Kind = KindMain
	pos := e.Compute(nodes, links("main", "a", "main", "b", "main", "c"))

	assert.Equal(t, pos["a"].Y, pos["b"].Y)
	assert.Equal(t, pos["b"].Y, pos["c"].Y)
	assert.Less(t, pos["main"].Y, pos["a"].Y)
	assert.Less(t, pos["a"].X, pos["b"].X)
	assert.Less(t, pos["b"].X, pos["c"].X)

	// The parent is centered over its children.
	center := pos["main"].X + testEstimator.width/2
	lo, hi := spanOf(pos, "a", "b", "c")
	assert.InDelta(t, (lo+hi)/2, center, 1e-9)
}

func TestLayoutOrphan(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	nodes := topics("main", "orphan")
	nodes[0].Kind = KindMain

	pos := e.Compute(nodes, nil)
	require.Contains(t, pos, "main")
	require.Contains(t, pos, "orphan")
	assert.Equal(t, e.TopMargin, pos["main"].Y)
	assert.False(t, boxAt(pos["main"]).Intersects(boxAt(pos["orphan"])))
	assert.Greater(t, pos["orphan"].Y, pos["main"].Y+testEstimator.height)
}

func TestLayoutNoRootFallsBackToFirstNode(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	pos := e.Compute(topics("a", "b"), nil)

	assert.Equal(t, e.TopMargin, pos["a"].Y)
	assert.Greater(t, pos["b"].Y, pos["a"].Y)
	assertNoOverlap(t, pos)
}

func TestLayoutDisconnectedTrees(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	pos := e.Compute(topics("r1", "c1", "r2", "c2"), links("r1", "c1", "r2", "c2"))

	_, hi1 := spanOf(pos, "r1", "c1")
	lo2, _ := spanOf(pos, "r2", "c2")
	assert.LessOrEqual(t, hi1, lo2)
	assert.Equal(t, pos["r1"].Y, pos["r2"].Y)
	assertNoOverlap(t, pos)
}

func TestLayoutCycle(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	pos := e.Compute(topics("A", "B", "C"), links("A", "B", "B", "C", "C", "A"))

	require.Len(t, pos, 3)
	assert.Less(t, pos["A"].Y, pos["B"].Y)
	assert.Less(t, pos["B"].Y, pos["C"].Y)
}

func TestLayoutCycleBelowRoot(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	pos := e.Compute(topics("r", "A", "B"), links("r", "A", "A", "B", "B", "A"))

	require.Len(t, pos, 3)
	assert.Equal(t, e.TopMargin, pos["r"].Y)
	assertNoOverlap(t, pos)
}

func TestLayoutMultipleParents(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	pos := e.Compute(topics("r", "a", "b", "x"), links("r", "a", "r", "b", "a", "x", "b", "x"))

	require.Len(t, pos, 4)
	assert.Equal(t, pos["a"].Y+e.LevelHeight, pos["x"].Y)
	lo, hi := spanOf(pos, "a")
	assert.True(t, pos["x"].X >= lo-e.Spacing && pos["x"].X+testEstimator.width <= hi+e.Spacing, "x is placed under its first parent")
	assertNoOverlap(t, pos)
}

func TestLayoutCyclesDoNotOverlapSiblings(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	conns := links(
		"n3", "n3", "n6", "n1", "n6", "n4", "n2", "n1", "n3", "n4", "n0", "n2", "n6", "n1",
		"n6", "n5", "n6", "n5", "n0", "n6", "n3", "n2", "n4", "n6", "n1", "n3", "n0", "n1",
	)
	pos := e.Compute(topics("n0", "n1", "n2", "n3", "n4", "n5", "n6"), conns)

	require.Len(t, pos, 7)
	assert.Equal(t, Point{X: 25, Y: 2}, pos["n0"])
	assert.Equal(t, pos["n3"].Y, pos["n5"].Y)
	assertNoOverlap(t, pos)
}

func TestLayoutIgnoresDanglingAndSelfConnections(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	conns := append(links("r", "a", "a", "ghost", "ghost", "r"), Connection{ID: "loop", From: "a", To: "a"})
	pos := e.Compute(topics("r", "a"), conns)

	assert.Len(t, pos, 2)
	assert.NotContains(t, pos, "ghost")
	assert.Less(t, pos["r"].Y, pos["a"].Y)
}

func TestLayoutEmpty(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	assert.Empty(t, e.Compute(nil, nil))
	assert.Empty(t, e.Compute(nil, links("a", "b")))
}

func TestLayoutOrphanGridWraps(t *testing.T) {
	e := NewLayoutEngine(testEstimator)
	e.OrphanColumns = 2
	nodes := topics("main", "o1", "o2", "o3")
	nodes[0].Kind = KindMain

	pos := e.Compute(nodes, nil)
	assert.Equal(t, pos["o1"].Y, pos["o2"].Y)
	assert.Less(t, pos["o1"].X, pos["o2"].X)
	assert.Greater(t, pos["o3"].Y, pos["o1"].Y)
	assertNoOverlap(t, pos)
}

func TestLayoutClampsLongNodes(t *testing.T) {
	e := NewLayoutEngine(fixedEstimator{width: 200, height: 4})
	e.MaxNodeWidth = 20
	pos := e.Compute(topics("r", "a", "b"), links("r", "a", "r", "b"))

	assert.Equal(t, e.MaxNodeWidth+e.Spacing, pos["b"].X-pos["a"].X)
}

func TestLayoutApply(t *testing.T) {
	m := NewMap("apply", testEstimator)
	root := m.AddMainNode(100, 100, "root")
	child, _, err := m.AddChild(root, "child")
	require.NoError(t, err)

	pos := NewLayoutEngine(testEstimator).Apply(m)
	r, _ := m.Node(root)
	c, _ := m.Node(child)
	assert.Equal(t, pos[root], Point{X: r.X, Y: r.Y})
	assert.Equal(t, pos[child], Point{X: c.X, Y: c.Y})
	assert.Less(t, r.Y, c.Y)
}

func TestLayoutDoesNotMutateInput(t *testing.T) {
	nodes := topics("r", "a")
	nodes[0].X, nodes[0].Y = 7, 9
	conns := links("r", "a")
	NewLayoutEngine(testEstimator).Compute(nodes, conns)

	assert.Equal(t, 7.0, nodes[0].X)
	assert.Equal(t, 9.0, nodes[0].Y)
	assert.Equal(t, links("r", "a"), conns)
}

// randomGraph builds n nodes and a connection for every pair of ends,
// including self loops, repeats and cycles.
func randomGraph(n int, ends []int) ([]Node, []Connection) {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{ID: fmt.Sprintf("n%d", i), Text: fmt.Sprintf("topic %d", i), Kind: KindTopic}
	}
	var conns []Connection
	for i := 0; i+1 < len(ends); i += 2 {
		from, to := ends[i]%n, ends[i+1]%n
		conns = append(conns, Connection{ID: fmt.Sprintf("c%d", i), From: nodes[from].ID, To: nodes[to].ID})
	}
	return nodes, conns
}

func TestLayoutProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	e := NewLayoutEngine(NewCellEstimator(maxNodeWidth))

	properties.Property("every node gets a finite position", prop.ForAll(
		func(n int, ends []int) bool {
			nodes, conns := randomGraph(n, ends)
			pos := e.Compute(nodes, conns)
			if len(pos) != len(nodes) {
				return false
			}
			for _, node := range nodes {
				p, ok := pos[node.ID]
				if !ok || !p.IsFinite() {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 30),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("layout is deterministic", prop.ForAll(
		func(n int, ends []int) bool {
			nodes, conns := randomGraph(n, ends)
			first := e.Compute(nodes, conns)
			second := e.Compute(nodes, conns)
			if len(first) != len(second) {
				return false
			}
			for id, p := range first {
				if second[id] != p {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 30),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	fixed := NewLayoutEngine(testEstimator)
	properties.Property("boxes never overlap, cycles included", prop.ForAll(
		func(n int, ends []int) bool {
			nodes, conns := randomGraph(n, ends)
			pos := fixed.Compute(nodes, conns)
			for i := range nodes {
				for j := i + 1; j < len(nodes); j++ {
					if boxAt(pos[nodes[i].ID]).Intersects(boxAt(pos[nodes[j].ID])) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 12),
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}
