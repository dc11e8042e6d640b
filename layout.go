package main

import "math"

// Positions maps node ids to document-space top-left corners.
type Positions map[string]Point

// LayoutEngine assigns tree positions to an arbitrary node graph. Cycles,
// several roots, nodes with more than one parent and disconnected nodes are
// all valid input; the result is always total and deterministic.
type LayoutEngine struct {
	Estimator SizeEstimator

	Spacing      float64 // horizontal gap added to every node's slot
	LevelHeight  float64 // vertical distance between tree levels
	TopMargin    float64
	LeftMargin   float64
	MaxNodeWidth float64 // own-width clamp, so one long node cannot widen the whole tree

	OrphanColumns int // 0 means as many as fit in the tree's width
	OrphanGap     float64
}

func NewLayoutEngine(estimator SizeEstimator) *LayoutEngine {
	if estimator == nil {
		estimator = NewCellEstimator(maxNodeWidth)
	}
	return &LayoutEngine{
		Estimator:    estimator,
		Spacing:      4,
		LevelHeight:  6,
		TopMargin:    2,
		LeftMargin:   2,
		MaxNodeWidth: maxNodeWidth,
		OrphanGap:    3,
	}
}

// layoutTree is the scratch state of one layout pass.
type layoutTree struct {
	index      map[string]Node
	childrenOf map[string][]string
	parentOf   map[string]string
	connected  map[string]bool
}

func deriveTree(nodes []Node, conns []Connection) *layoutTree {
	t := &layoutTree{
		index:      make(map[string]Node, len(nodes)),
		childrenOf: make(map[string][]string),
		parentOf:   make(map[string]string),
		connected:  make(map[string]bool),
	}
	for _, n := range nodes {
		t.index[n.ID] = n
	}
	for _, c := range conns {
		_, okFrom := t.index[c.From]
		_, okTo := t.index[c.To]
		if !okFrom || !okTo || c.From == c.To {
			continue
		}
		t.childrenOf[c.From] = append(t.childrenOf[c.From], c.To)
		// The first connection into a node decides its layout parent.
		if _, has := t.parentOf[c.To]; !has {
			t.parentOf[c.To] = c.From
		}
		t.connected[c.From] = true
		t.connected[c.To] = true
	}
	return t
}

// roots returns the parentless nodes that take part in a connection, plus a
// parentless main node even when it is unconnected. With no such node the
// main node, or else the first node, is used.
func (t *layoutTree) roots(nodes []Node) []string {
	var roots []string
	for _, n := range nodes {
		if _, has := t.parentOf[n.ID]; has {
			continue
		}
		if t.connected[n.ID] || n.Kind == KindMain {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) > 0 || len(nodes) == 0 {
		return roots
	}
	if main, ok := mainNode(nodes); ok {
		return []string{main.ID}
	}
	return []string{nodes[0].ID}
}

func layoutRoots(nodes []Node, conns []Connection) []string {
	return deriveTree(nodes, conns).roots(nodes)
}

type layoutPass struct {
	engine    *LayoutEngine
	tree      *layoutTree
	kids      map[string][]string
	widths    map[string]float64
	visited   map[string]bool
	positions Positions
}

// Compute returns a fresh position for every node. Neither argument is
// modified. Connections that reference unknown nodes are ignored.
func (e *LayoutEngine) Compute(nodes []Node, conns []Connection) Positions {
	positions := make(Positions, len(nodes))
	if len(nodes) == 0 {
		return positions
	}

	p := &layoutPass{
		engine:    e,
		tree:      deriveTree(nodes, conns),
		kids:      make(map[string][]string),
		widths:    make(map[string]float64),
		visited:   make(map[string]bool),
		positions: positions,
	}

	offset := 0.0
	for _, root := range p.tree.roots(nodes) {
		if p.visited[root] {
			continue
		}
		p.visited[root] = true
		p.claim(root)
		w := p.width(root)
		p.place(root, e.LeftMargin+offset, w, 0)
		offset += w
	}

	p.placeOrphans(nodes, offset)
	return positions
}

// Apply computes a layout for m and writes it back to m's nodes.
func (e *LayoutEngine) Apply(m *Map) Positions {
	positions := e.Compute(m.Nodes(), m.Connections())
	m.ApplyPositions(positions)
	return positions
}

func (e *LayoutEngine) size(n Node) Size {
	s := e.Estimator.Estimate(n.Text)
	if e.MaxNodeWidth > 0 {
		s.Width = math.Min(s.Width, e.MaxNodeWidth)
	}
	return s
}

// claim fixes the tree that widths and placement are computed from. A node
// claims all of its unvisited children before any of them is recursed into,
// so a node reachable along two paths lands under the shallower one and
// every node has exactly one layout parent. Cycles end at visited nodes.
func (p *layoutPass) claim(id string) {
	var claimed []string
	for _, child := range p.tree.childrenOf[id] {
		if p.visited[child] {
			continue
		}
		p.visited[child] = true
		claimed = append(claimed, child)
	}
	p.kids[id] = claimed
	for _, child := range claimed {
		p.claim(child)
	}
}

// width is the horizontal room a node's claimed subtree needs.
func (p *layoutPass) width(id string) float64 {
	if w, ok := p.widths[id]; ok {
		return w
	}
	own := p.engine.size(p.tree.index[id]).Width + p.engine.Spacing
	sum := 0.0
	for _, child := range p.kids[id] {
		sum += p.width(child)
	}
	w := math.Max(own, sum)
	p.widths[id] = w
	return w
}

// place positions id centered in [left, left+slice) at the given depth and
// lays its claimed children out side by side beneath it.
func (p *layoutPass) place(id string, left, slice float64, depth int) {
	e := p.engine
	own := e.size(p.tree.index[id]).Width
	p.positions[id] = Point{
		X: left + slice/2 - own/2,
		Y: e.TopMargin + float64(depth)*e.LevelHeight,
	}

	kids := p.kids[id]
	if len(kids) == 0 {
		return
	}
	total := 0.0
	for _, child := range kids {
		total += p.width(child)
	}
	cursor := left
	if total < slice {
		cursor += (slice - total) / 2
	}
	for _, child := range kids {
		w := p.width(child)
		p.place(child, cursor, w, depth+1)
		cursor += w
	}
}

// placeOrphans puts every node the tree walk never reached into a wrapping
// grid below the laid-out trees.
func (p *layoutPass) placeOrphans(nodes []Node, treesWidth float64) {
	e := p.engine
	var orphans []Node
	for _, n := range nodes {
		if !p.visited[n.ID] {
			orphans = append(orphans, n)
		}
	}
	if len(orphans) == 0 {
		return
	}

	top := e.TopMargin
	placed := false
	for id, pt := range p.positions {
		bottom := pt.Y + e.size(p.tree.index[id]).Height
		if !placed || bottom > top {
			top = bottom
			placed = true
		}
	}
	if placed {
		top += e.OrphanGap
	}

	cellW := e.MaxNodeWidth + e.Spacing
	if e.MaxNodeWidth <= 0 {
		cellW = 0
		for _, n := range orphans {
			cellW = math.Max(cellW, e.size(n).Width+e.Spacing)
		}
	}
	cols := e.OrphanColumns
	if cols <= 0 {
		cols = int(treesWidth / cellW)
	}
	if cols < 1 {
		cols = 1
	}

	rowTop := top
	for start := 0; start < len(orphans); start += cols {
		end := min(start+cols, len(orphans))
		rowHeight := e.LevelHeight
		for col, n := range orphans[start:end] {
			s := e.size(n)
			rowHeight = math.Max(rowHeight, s.Height+e.OrphanGap)
			p.positions[n.ID] = Point{
				X: e.LeftMargin + float64(col)*cellW + (cellW-s.Width)/2,
				Y: rowTop,
			}
			p.visited[n.ID] = true
		}
		rowTop += rowHeight
	}
}
