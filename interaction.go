package main

import (
	"errors"
	"log/slog"
)

// Notifier receives the document's change signals. ContentChanged fires
// after an undoable mutation (save and history hooks listen to it);
// PositionsChanged fires whenever something on screen moved and the
// renderer has to re-route and repaint.
type Notifier interface {
	ContentChanged()
	PositionsChanged()
}

// NotifyFuncs adapts plain functions to Notifier. Nil fields are skipped.
type NotifyFuncs struct {
	OnContent   func()
	OnPositions func()
}

func (n NotifyFuncs) ContentChanged() {
	if n.OnContent != nil {
		n.OnContent()
	}
}

func (n NotifyFuncs) PositionsChanged() {
	if n.OnPositions != nil {
		n.OnPositions()
	}
}

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers struct {
	Shift bool
	Alt   bool
	Ctrl  bool
}

type interactionKind int

const (
	interactionNone interactionKind = iota
	interactionDrag
	interactionBoxSelect
	interactionConnect
	interactionPan
)

func (k interactionKind) String() string {
	switch k {
	case interactionDrag:
		return "drag"
	case interactionBoxSelect:
		return "box-select"
	case interactionConnect:
		return "connect"
	case interactionPan:
		return "pan"
	default:
		return "none"
	}
}

// interaction is the one active pointer gesture. Points are in screen space.
type interaction struct {
	kind   interactionKind
	start  Point
	last   Point
	nodeID string
	origin Positions
	moved  bool
}

// Document is everything that belongs to one open map: its data, view
// transform, router, layout engine and history.
type Document struct {
	Map      *Map
	Viewport *Viewport
	Router   *EdgeRouter
	Layout   *LayoutEngine
	History  *History

	ZoomStep    float64
	ConnectMode bool
	Filename    string

	notifier Notifier
	logger   *slog.Logger

	selection    []string
	selectedConn string
	current      *interaction
}

func NewDocument(m *Map, config *Config, estimator SizeEstimator, notifier Notifier, logger *slog.Logger) *Document {
	if notifier == nil {
		notifier = NotifyFuncs{}
	}
	if logger == nil {
		logger = discardLogger()
	}
	viewport := NewViewport(config.Zoom.Min, config.Zoom.Max)
	return &Document{
		Map:      m,
		Viewport: viewport,
		Router:   config.newEdgeRouter(m, viewport),
		Layout:   config.newLayoutEngine(estimator),
		History:  NewHistory(config.HistoryLimit),
		ZoomStep: config.Zoom.Step,
		notifier: notifier,
		logger:   logger.With("map", m.ID),
	}
}

// Active reports the kind of the gesture in progress, or "none".
func (d *Document) Active() string {
	if d.current == nil {
		return interactionNone.String()
	}
	return d.current.kind.String()
}

func (d *Document) Selection() []string {
	return append([]string(nil), d.selection...)
}

func (d *Document) IsSelected(id string) bool {
	for _, s := range d.selection {
		if s == id {
			return true
		}
	}
	return false
}

// Select replaces the node selection and clears any selected connection.
func (d *Document) Select(ids ...string) {
	d.selection = d.selection[:0]
	for _, id := range ids {
		if _, ok := d.Map.Node(id); ok && !d.IsSelected(id) {
			d.selection = append(d.selection, id)
		}
	}
	d.selectedConn = ""
}

func (d *Document) toggleSelected(id string) {
	for i, s := range d.selection {
		if s == id {
			d.selection = append(d.selection[:i], d.selection[i+1:]...)
			return
		}
	}
	d.selection = append(d.selection, id)
}

func (d *Document) SelectedConnection() string {
	return d.selectedConn
}

// Primary returns the most recently selected node.
func (d *Document) Primary() (string, bool) {
	if len(d.selection) == 0 {
		return "", false
	}
	return d.selection[len(d.selection)-1], true
}

// PointerDown starts a gesture. A press while another gesture is active is
// ignored: gestures are serialized by the pointer itself.
func (d *Document) PointerDown(screen Point, mods Modifiers) {
	if d.current != nil {
		return
	}
	doc := d.Viewport.ScreenToDocument(screen)
	it := &interaction{start: screen, last: screen}

	if id, ok := d.Map.NodeAt(doc); ok {
		if mods.Alt || d.ConnectMode {
			it.kind = interactionConnect
			it.nodeID = id
			d.Select(id)
			d.current = it
			return
		}
		switch {
		case mods.Shift:
			d.toggleSelected(id)
			d.selectedConn = ""
		case !d.IsSelected(id):
			d.Select(id)
		}
		it.kind = interactionDrag
		it.nodeID = id
		it.origin = d.positionsOf(d.selection)
		d.current = it
		return
	}

	if c, ok := d.Router.ConnectionAt(d.Map.Connections(), screen); ok {
		d.Select()
		d.selectedConn = c.ID
		return
	}

	if mods.Shift {
		it.kind = interactionBoxSelect
	} else {
		d.Select()
		it.kind = interactionPan
	}
	d.current = it
}

// PointerMove updates the active gesture.
func (d *Document) PointerMove(screen Point) {
	it := d.current
	if it == nil {
		return
	}
	delta := screen.Sub(it.last)
	it.last = screen

	switch it.kind {
	case interactionDrag:
		if delta == (Point{}) {
			return
		}
		docDelta := delta.Scale(1 / d.Viewport.Scale)
		d.Map.MoveNodes(d.selection, docDelta.X, docDelta.Y)
		it.moved = true
		d.notifier.PositionsChanged()
	case interactionPan:
		d.Viewport.Pan(delta.X, delta.Y)
		d.notifier.PositionsChanged()
	case interactionBoxSelect, interactionConnect:
		d.notifier.PositionsChanged()
	}
}

// PointerUp finishes the active gesture. The slot is always cleared.
func (d *Document) PointerUp(screen Point) {
	it := d.current
	if it == nil {
		return
	}
	d.PointerMove(screen)
	d.current = nil

	switch it.kind {
	case interactionDrag:
		if !it.moved {
			return
		}
		after := d.positionsOf(d.selection)
		d.History.Record(ActionMoveNodes, MoveNodesData{Positions: after}, MoveNodesData{Positions: it.origin})
		d.notifier.ContentChanged()
	case interactionBoxSelect:
		r := NewRectFromPoints(d.Viewport.ScreenToDocument(it.start), d.Viewport.ScreenToDocument(screen))
		for _, id := range d.Map.NodesIn(r) {
			if !d.IsSelected(id) {
				d.selection = append(d.selection, id)
			}
		}
		d.notifier.PositionsChanged()
	case interactionConnect:
		target, ok := d.Map.NodeAt(d.Viewport.ScreenToDocument(screen))
		if ok && target != it.nodeID {
			d.connect(it.nodeID, target)
		}
		d.notifier.PositionsChanged()
	}
}

func (d *Document) connect(from, to string) {
	c, err := d.Map.Connect(from, to)
	if err != nil {
		if errors.Is(err, ErrDuplicateConnection) || errors.Is(err, ErrSelfConnection) {
			d.logger.Debug("connection rejected", "from", from, "to", to, "error", err)
			return
		}
		d.logger.Warn("connect failed", "from", from, "to", to, "error", err)
		return
	}
	d.History.Record(ActionAddConnection, ConnectionData{Connection: c}, nil)
	d.notifier.ContentChanged()
}

// Wheel zooms by steps zoom increments around the screen point.
func (d *Document) Wheel(screen Point, steps float64) {
	d.Viewport.ZoomAt(screen, steps*d.ZoomStep)
	d.notifier.PositionsChanged()
}

// Preview returns the screen-space path of a connection being dragged.
func (d *Document) Preview() (Path, bool) {
	it := d.current
	if it == nil || it.kind != interactionConnect {
		return Path{}, false
	}
	p, ok := d.Router.RoutePreview(it.nodeID, d.Viewport.ScreenToDocument(it.last))
	if !ok {
		return Path{}, false
	}
	return p.ToScreen(d.Viewport), true
}

// SelectionRect returns the screen-space rectangle of an active box select.
func (d *Document) SelectionRect() (Rect, bool) {
	it := d.current
	if it == nil || it.kind != interactionBoxSelect {
		return Rect{}, false
	}
	return NewRectFromPoints(it.start, it.last), true
}

// ScreenRoutes routes every connection and maps the paths to screen space.
func (d *Document) ScreenRoutes() []RoutedConnection {
	routes := d.Router.RouteAll(d.Map.Connections())
	for i := range routes {
		routes[i].Path = routes[i].Path.ToScreen(d.Viewport)
	}
	return routes
}

func (d *Document) positionsOf(ids []string) Positions {
	out := make(Positions, len(ids))
	for _, id := range ids {
		if n, ok := d.Map.Node(id); ok {
			out[id] = Point{n.X, n.Y}
		}
	}
	return out
}

// AutoLayout rewrites every node position with the layout engine.
func (d *Document) AutoLayout() {
	if d.Map.Len() == 0 {
		return
	}
	before := d.Map.Positions()
	after := d.Layout.Apply(d.Map)
	d.History.Record(ActionLayout, MoveNodesData{Positions: after}, MoveNodesData{Positions: before})
	d.logger.Info("auto layout", "nodes", d.Map.Len(), "connections", len(d.Map.Connections()))
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
}

// FitToView zooms and centers all nodes inside a container of the given
// screen size.
func (d *Document) FitToView(width, height float64) {
	d.Viewport.FitToView(d.Map.ContentBounds(), width, height, fitPadding)
	d.notifier.PositionsChanged()
}

// AddNodeAt creates a node centered on a screen point.
func (d *Document) AddNodeAt(screen Point, text string) string {
	doc := d.Viewport.ScreenToDocument(screen)
	size := d.Map.estimator.Estimate(text)
	var id string
	if d.Map.Len() == 0 {
		id = d.Map.AddMainNode(doc.X-size.Width/2, doc.Y-size.Height/2, text)
	} else {
		id = d.Map.AddNode(doc.X-size.Width/2, doc.Y-size.Height/2, text)
	}
	n, _ := d.Map.Node(id)
	d.History.Record(ActionAddNode, AddNodeData{Node: n, Index: d.Map.IndexOf(id)}, nil)
	d.Select(id)
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
	return id
}

// AddChildOf creates a connected child under parent.
func (d *Document) AddChildOf(parent, text string) (string, error) {
	id, c, err := d.Map.AddChild(parent, text)
	if err != nil {
		return "", err
	}
	n, _ := d.Map.Node(id)
	d.History.Record(ActionAddNode, AddNodeData{Node: n, Index: d.Map.IndexOf(id), Connection: &c}, nil)
	d.Select(id)
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
	return id, nil
}

// EditText replaces a node's text.
func (d *Document) EditText(id, text string) error {
	n, ok := d.Map.Node(id)
	if !ok {
		return ErrNodeNotFound
	}
	if n.Text == text {
		return nil
	}
	if err := d.Map.SetText(id, text); err != nil {
		return err
	}
	d.History.Record(ActionEditNode, EditNodeData{ID: id, NewText: text, OldText: n.Text}, nil)
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
	return nil
}

// DeleteSelection removes the selected connection, or else every selected
// node with its connections, as one undo step.
func (d *Document) DeleteSelection() bool {
	if d.selectedConn != "" {
		index := d.Map.ConnectionIndex(d.selectedConn)
		c, err := d.Map.Disconnect(d.selectedConn)
		d.selectedConn = ""
		if err != nil {
			return false
		}
		d.History.Record(ActionDeleteConnection, ConnectionData{Connection: c, Index: index}, nil)
		d.notifier.PositionsChanged()
		d.notifier.ContentChanged()
		return true
	}
	if len(d.selection) == 0 {
		return false
	}

	var actions []Action
	for _, id := range d.selection {
		index := d.Map.IndexOf(id)
		connIndexes := d.Map.ConnectionIndexesOf(id)
		n, conns, err := d.Map.RemoveNode(id)
		if err != nil {
			continue
		}
		actions = append(actions, Action{
			Type: ActionDeleteNode,
			Data: DeleteNodeData{Node: n, Index: index, Connections: conns, ConnectionIndexes: connIndexes},
		})
	}
	d.selection = d.selection[:0]
	if len(actions) == 0 {
		return false
	}
	d.History.Record(ActionBatch, BatchData{Actions: actions}, nil)
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
	return true
}

// DeleteConnectionAt removes the connection under a screen point, using
// the router's wide hit-test tolerance.
func (d *Document) DeleteConnectionAt(screen Point) bool {
	c, ok := d.Router.ConnectionAt(d.Map.Connections(), screen)
	if !ok {
		return false
	}
	d.selectedConn = c.ID
	return d.DeleteSelection()
}

func (d *Document) Undo() bool {
	if !d.History.Undo(d.Map) {
		return false
	}
	d.pruneSelection()
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
	return true
}

func (d *Document) Redo() bool {
	if !d.History.Redo(d.Map) {
		return false
	}
	d.pruneSelection()
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
	return true
}

func (d *Document) pruneSelection() {
	kept := d.selection[:0]
	for _, id := range d.selection {
		if _, ok := d.Map.Node(id); ok {
			kept = append(kept, id)
		}
	}
	d.selection = kept
	if _, ok := d.Map.Connection(d.selectedConn); !ok {
		d.selectedConn = ""
	}
}

// ToggleMain switches a node between main topic and plain topic.
func (d *Document) ToggleMain(id string) error {
	n, ok := d.Map.Node(id)
	if !ok {
		return ErrNodeNotFound
	}
	kind := KindMain
	if n.Kind == KindMain {
		kind = KindTopic
	}
	if err := d.Map.SetKind(id, kind); err != nil {
		return err
	}
	d.notifier.PositionsChanged()
	d.notifier.ContentChanged()
	return nil
}

func (d *Document) Rename(title string) {
	if title == "" || title == d.Map.Title {
		return
	}
	d.Map.Title = title
	d.notifier.ContentChanged()
}
