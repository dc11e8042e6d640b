package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNodeNotFound        = errors.New("node not found")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrDuplicateConnection = errors.New("nodes are already connected")
	ErrSelfConnection      = errors.New("cannot connect a node to itself")
)

// NodeKind marks the semantic role of a node.
type NodeKind string

const (
	KindTopic NodeKind = "topic"
	KindMain  NodeKind = "main"
)

// Node is a mind-map topic. X and Y are the document-space top-left corner.
type Node struct {
	ID   string   `json:"id" validate:"required"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Text string   `json:"text"`
	Kind NodeKind `json:"kind,omitempty" validate:"omitempty,oneof=topic main"`
}

// Connection links two nodes. From is the parent for layout purposes; for
// drawing the direction does not matter.
type Connection struct {
	ID   string `json:"id" validate:"required"`
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required,nefield=From"`
}

// Joins reports whether the connection touches both a and b, in either direction.
func (c Connection) Joins(a, b string) bool {
	return (c.From == a && c.To == b) || (c.From == b && c.To == a)
}

// Touches reports whether the connection has id as an endpoint.
func (c Connection) Touches(id string) bool {
	return c.From == id || c.To == id
}

// Map is one mind map: nodes in insertion order keyed by id, plus the
// connections between them. A connection never references a missing node.
type Map struct {
	ID    string
	Title string

	order       []string
	nodes       map[string]*Node
	connections []Connection
	estimator   SizeEstimator
}

func NewMap(title string, estimator SizeEstimator) *Map {
	if estimator == nil {
		estimator = NewCellEstimator(maxNodeWidth)
	}
	return &Map{
		ID:        uuid.New().String(),
		Title:     title,
		nodes:     make(map[string]*Node),
		estimator: estimator,
	}
}

func newID() string {
	return uuid.New().String()
}

// Len returns the number of nodes.
func (m *Map) Len() int {
	return len(m.order)
}

// Node returns a copy of the node with the given id.
func (m *Map) Node(id string) (Node, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns copies of all nodes in insertion order.
func (m *Map) Nodes() []Node {
	out := make([]Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.nodes[id])
	}
	return out
}

// Connections returns a copy of the connection list in creation order.
func (m *Map) Connections() []Connection {
	out := make([]Connection, len(m.connections))
	copy(out, m.connections)
	return out
}

// AddNode creates a topic node at (x, y) and returns its id.
func (m *Map) AddNode(x, y float64, text string) string {
	n := Node{ID: newID(), X: x, Y: y, Text: text, Kind: KindTopic}
	m.insert(n, len(m.order))
	return n.ID
}

// AddMainNode creates the map's central topic.
func (m *Map) AddMainNode(x, y float64, text string) string {
	n := Node{ID: newID(), X: x, Y: y, Text: text, Kind: KindMain}
	m.insert(n, len(m.order))
	return n.ID
}

// AddNodeWithID inserts n at index in the insertion order, used to restore
// a deleted node on undo. An out of range index appends.
func (m *Map) AddNodeWithID(n Node, index int) {
	if _, exists := m.nodes[n.ID]; exists {
		return
	}
	if n.Kind == "" {
		n.Kind = KindTopic
	}
	m.insert(n, index)
}

func (m *Map) insert(n Node, index int) {
	if index < 0 || index > len(m.order) {
		index = len(m.order)
	}
	m.order = append(m.order, "")
	copy(m.order[index+1:], m.order[index:])
	m.order[index] = n.ID
	m.nodes[n.ID] = &n
}

// IndexOf returns the insertion index of the node, or -1.
func (m *Map) IndexOf(id string) int {
	for i, nid := range m.order {
		if nid == id {
			return i
		}
	}
	return -1
}

// RemoveNode deletes a node and every connection touching it. The removed
// connections are returned so the deletion can be undone.
func (m *Map) RemoveNode(id string) (Node, []Connection, error) {
	n, ok := m.nodes[id]
	if !ok {
		return Node{}, nil, fmt.Errorf("remove %s: %w", id, ErrNodeNotFound)
	}
	removed := *n
	delete(m.nodes, id)
	if i := m.IndexOf(id); i >= 0 {
		m.order = append(m.order[:i], m.order[i+1:]...)
	}

	var dropped []Connection
	kept := m.connections[:0]
	for _, c := range m.connections {
		if c.Touches(id) {
			dropped = append(dropped, c)
			continue
		}
		kept = append(kept, c)
	}
	m.connections = kept
	return removed, dropped, nil
}

// Connect links from to to. Self connections, unknown endpoints and a
// second connection between the same unordered pair are rejected.
func (m *Map) Connect(from, to string) (Connection, error) {
	if from == to {
		return Connection{}, ErrSelfConnection
	}
	if _, ok := m.nodes[from]; !ok {
		return Connection{}, fmt.Errorf("connect from %s: %w", from, ErrNodeNotFound)
	}
	if _, ok := m.nodes[to]; !ok {
		return Connection{}, fmt.Errorf("connect to %s: %w", to, ErrNodeNotFound)
	}
	if m.Connected(from, to) {
		return Connection{}, ErrDuplicateConnection
	}
	c := Connection{ID: newID(), From: from, To: to}
	m.connections = append(m.connections, c)
	return c, nil
}

// Connected reports whether a and b are joined in either direction.
func (m *Map) Connected(a, b string) bool {
	for _, c := range m.connections {
		if c.Joins(a, b) {
			return true
		}
	}
	return false
}

// RestoreConnection re-adds a previously removed connection at the end of
// the connection list.
func (m *Map) RestoreConnection(c Connection) {
	m.RestoreConnectionAt(c, -1)
}

// RestoreConnectionAt re-adds a previously removed connection at index, so
// the first-connection parent rule sees the same order as before. An index
// out of range appends. It is a no-op when an endpoint is gone or the pair
// is already connected.
func (m *Map) RestoreConnectionAt(c Connection, index int) {
	if _, ok := m.nodes[c.From]; !ok {
		return
	}
	if _, ok := m.nodes[c.To]; !ok {
		return
	}
	if c.From == c.To || m.Connected(c.From, c.To) {
		return
	}
	if index < 0 || index >= len(m.connections) {
		m.connections = append(m.connections, c)
		return
	}
	m.connections = append(m.connections, Connection{})
	copy(m.connections[index+1:], m.connections[index:])
	m.connections[index] = c
}

// ConnectionIndex returns the position of a connection in the list, or -1.
func (m *Map) ConnectionIndex(id string) int {
	for i, c := range m.connections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// ConnectionIndexesOf returns the list positions of every connection
// touching a node, in ascending order.
func (m *Map) ConnectionIndexesOf(id string) []int {
	var out []int
	for i, c := range m.connections {
		if c.Touches(id) {
			out = append(out, i)
		}
	}
	return out
}

// Disconnect removes the connection with the given id.
func (m *Map) Disconnect(id string) (Connection, error) {
	for i, c := range m.connections {
		if c.ID == id {
			m.connections = append(m.connections[:i], m.connections[i+1:]...)
			return c, nil
		}
	}
	return Connection{}, fmt.Errorf("disconnect %s: %w", id, ErrConnectionNotFound)
}

// Connection returns the connection with the given id.
func (m *Map) Connection(id string) (Connection, bool) {
	for _, c := range m.connections {
		if c.ID == id {
			return c, true
		}
	}
	return Connection{}, false
}

func (m *Map) SetText(id, text string) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("set text %s: %w", id, ErrNodeNotFound)
	}
	n.Text = text
	return nil
}

func (m *Map) SetKind(id string, kind NodeKind) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("set kind %s: %w", id, ErrNodeNotFound)
	}
	n.Kind = kind
	return nil
}

// MoveNodes shifts every listed node by (dx, dy). Unknown ids are skipped.
func (m *Map) MoveNodes(ids []string, dx, dy float64) {
	for _, id := range ids {
		if n, ok := m.nodes[id]; ok {
			n.X += dx
			n.Y += dy
		}
	}
}

// Positions snapshots the position of every node.
func (m *Map) Positions() Positions {
	out := make(Positions, len(m.order))
	for _, id := range m.order {
		n := m.nodes[id]
		out[id] = Point{n.X, n.Y}
	}
	return out
}

// ApplyPositions writes positions back to the nodes they name.
func (m *Map) ApplyPositions(p Positions) {
	for id, pt := range p {
		if n, ok := m.nodes[id]; ok {
			n.X, n.Y = pt.X, pt.Y
		}
	}
}

// MainNode returns the first node flagged as the main topic.
func (m *Map) MainNode() (Node, bool) {
	return mainNode(m.Nodes())
}

func mainNode(nodes []Node) (Node, bool) {
	for _, n := range nodes {
		if n.Kind == KindMain {
			return n, true
		}
	}
	return Node{}, false
}

// Bounds implements GeometryProvider.
func (m *Map) Bounds(id string) (Rect, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return Rect{}, false
	}
	s := m.estimator.Estimate(n.Text)
	return Rect{X: n.X, Y: n.Y, Width: s.Width, Height: s.Height}, true
}

// ContentBounds returns the union of all node boxes, or a zero Rect for an
// empty map.
func (m *Map) ContentBounds() Rect {
	var r Rect
	for _, id := range m.order {
		b, _ := m.Bounds(id)
		r = r.Union(b)
	}
	return r
}

// NodeAt returns the topmost node containing the document point. Later
// nodes are drawn over earlier ones, so the search runs backwards.
func (m *Map) NodeAt(p Point) (string, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		id := m.order[i]
		if b, _ := m.Bounds(id); b.Contains(p) {
			return id, true
		}
	}
	return "", false
}

// NodesIn returns the ids of nodes whose boxes intersect r, in insertion order.
func (m *Map) NodesIn(r Rect) []string {
	var out []string
	for _, id := range m.order {
		if b, _ := m.Bounds(id); b.Intersects(r) || r.Contains(b.Center()) {
			out = append(out, id)
		}
	}
	return out
}

// Children returns the targets of connections leaving id, in creation order.
func (m *Map) Children(id string) []string {
	var out []string
	for _, c := range m.connections {
		if c.From == id {
			out = append(out, c.To)
		}
	}
	return out
}

// AddChild creates a node connected under parentID. It is placed below the
// parent's last child, or directly below the parent when it has none.
func (m *Map) AddChild(parentID, text string) (string, Connection, error) {
	parent, ok := m.Bounds(parentID)
	if !ok {
		return "", Connection{}, fmt.Errorf("add child to %s: %w", parentID, ErrNodeNotFound)
	}
	x := parent.X
	y := parent.Bottom() + 2
	if children := m.Children(parentID); len(children) > 0 {
		last, _ := m.Bounds(children[len(children)-1])
		x = last.Right() + 2
		y = last.Y
	}
	id := m.AddNode(x, y, text)
	c, err := m.Connect(parentID, id)
	if err != nil {
		return "", Connection{}, err
	}
	return id, c, nil
}

// Outline renders the map as an indented text tree rooted at the layout
// roots, used for clipboard copy.
func (m *Map) Outline() string {
	var b strings.Builder
	seen := make(map[string]bool)
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := m.nodes[id]
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(strings.ReplaceAll(n.Text, "\n", " "))
		b.WriteString("\n")
		for _, child := range m.Children(id) {
			walk(child, depth+1)
		}
	}
	for _, root := range layoutRoots(m.Nodes(), m.Connections()) {
		walk(root, 0)
	}
	for _, id := range m.order {
		walk(id, 0)
	}
	return b.String()
}
