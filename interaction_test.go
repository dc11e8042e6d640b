package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	content   int
	positions int
}

func (n *countingNotifier) ContentChanged()   { n.content++ }
func (n *countingNotifier) PositionsChanged() { n.positions++ }

func newTestDocument(t *testing.T) (*Document, *countingNotifier) {
	t.Helper()
	notifier := &countingNotifier{}
	m := NewMap("doc", testEstimator)
	return NewDocument(m, defaultConfig(), testEstimator, notifier, nil), notifier
}

func position(t *testing.T, d *Document, id string) Point {
	t.Helper()
	n, ok := d.Map.Node(id)
	require.True(t, ok)
	return Point{X: n.X, Y: n.Y}
}

func TestDocumentDragIsOneUndoStep(t *testing.T) {
	d, notifier := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")

	d.PointerDown(Point{X: 5, Y: 2}, Modifiers{})
	assert.Equal(t, "drag", d.Active())
	d.PointerMove(Point{X: 10, Y: 4})
	d.PointerMove(Point{X: 15, Y: 7})
	d.PointerUp(Point{X: 15, Y: 7})

	assert.Equal(t, "none", d.Active())
	assert.Equal(t, Point{X: 10, Y: 5}, position(t, d, a))
	assert.Equal(t, 1, notifier.content)
	assert.Equal(t, []string{a}, d.Selection())

	require.True(t, d.Undo())
	assert.Equal(t, Point{}, position(t, d, a))
	assert.False(t, d.History.CanUndo())
}

func TestDocumentDragScalesToDocument(t *testing.T) {
	d, _ := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")
	d.Viewport.Scale = 2

	d.PointerDown(Point{X: 4, Y: 4}, Modifiers{})
	d.PointerUp(Point{X: 14, Y: 4})

	assert.Equal(t, Point{X: 5, Y: 0}, position(t, d, a))
}

func TestDocumentClickSelectsWithoutHistory(t *testing.T) {
	d, notifier := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")
	b := d.Map.AddNode(30, 0, "b")

	d.PointerDown(Point{X: 2, Y: 2}, Modifiers{})
	d.PointerUp(Point{X: 2, Y: 2})
	d.PointerDown(Point{X: 32, Y: 2}, Modifiers{Shift: true})
	d.PointerUp(Point{X: 32, Y: 2})

	assert.Equal(t, []string{a, b}, d.Selection())
	primary, ok := d.Primary()
	require.True(t, ok)
	assert.Equal(t, b, primary)
	assert.False(t, d.History.CanUndo())
	assert.Zero(t, notifier.content)

	// Dragging one of several selected nodes moves them all.
	d.PointerDown(Point{X: 2, Y: 2}, Modifiers{})
	d.PointerUp(Point{X: 2, Y: 12})
	assert.Equal(t, Point{X: 0, Y: 10}, position(t, d, a))
	assert.Equal(t, Point{X: 30, Y: 10}, position(t, d, b))

	// Shift-click on a selected node removes it.
	d.PointerDown(Point{X: 2, Y: 12}, Modifiers{Shift: true})
	d.PointerUp(Point{X: 2, Y: 12})
	assert.Equal(t, []string{b}, d.Selection())
}

func TestDocumentBoxSelect(t *testing.T) {
	d, _ := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")
	b := d.Map.AddNode(30, 0, "b")
	d.Map.AddNode(0, 40, "c")

	d.PointerDown(Point{X: -2, Y: -2}, Modifiers{Shift: true})
	d.PointerMove(Point{X: 45, Y: 10})
	r, ok := d.SelectionRect()
	require.True(t, ok)
	assert.Equal(t, Rect{X: -2, Y: -2, Width: 47, Height: 12}, r)

	d.PointerUp(Point{X: 45, Y: 10})
	_, ok = d.SelectionRect()
	assert.False(t, ok)
	assert.Equal(t, []string{a, b}, d.Selection())
	assert.False(t, d.History.CanUndo())
}

func TestDocumentPanBackground(t *testing.T) {
	d, _ := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")
	d.Select(a)

	d.PointerDown(Point{X: 50, Y: 50}, Modifiers{})
	assert.Equal(t, "pan", d.Active())
	assert.Empty(t, d.Selection())
	d.PointerMove(Point{X: 60, Y: 55})
	d.PointerUp(Point{X: 60, Y: 55})

	assert.Equal(t, ViewportState{Scale: 1, OffsetX: 10, OffsetY: 5}, d.Viewport.State())
	assert.Equal(t, Point{}, position(t, d, a))
}

func TestDocumentConnectGesture(t *testing.T) {
	d, notifier := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")
	b := d.Map.AddNode(40, 0, "b")

	d.PointerDown(Point{X: 5, Y: 2}, Modifiers{Alt: true})
	assert.Equal(t, "connect", d.Active())
	d.PointerMove(Point{X: 30, Y: 2})
	p, ok := d.Preview()
	require.True(t, ok)
	assert.Equal(t, Point{X: 30, Y: 2}, p.End)
	d.PointerUp(Point{X: 45, Y: 2})

	_, ok = d.Preview()
	assert.False(t, ok)
	require.Len(t, d.Map.Connections(), 1)
	c := d.Map.Connections()[0]
	assert.Equal(t, a, c.From)
	assert.Equal(t, b, c.To)
	assert.Equal(t, 1, notifier.content)
	assert.Equal(t, Point{}, position(t, d, a), "connecting does not move the source")

	require.True(t, d.Undo())
	assert.Empty(t, d.Map.Connections())
}

func TestDocumentConnectModeRejectsSelfAndDuplicates(t *testing.T) {
	d, _ := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")
	b := d.Map.AddNode(40, 0, "b")
	_, err := d.Map.Connect(b, a)
	require.NoError(t, err)
	d.ConnectMode = true

	d.PointerDown(Point{X: 5, Y: 2}, Modifiers{})
	d.PointerUp(Point{X: 6, Y: 2})
	d.PointerDown(Point{X: 5, Y: 2}, Modifiers{})
	d.PointerUp(Point{X: 45, Y: 2})

	assert.Len(t, d.Map.Connections(), 1)
	assert.False(t, d.History.CanUndo())
}

func TestDocumentOneGestureAtATime(t *testing.T) {
	d, _ := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")

	d.PointerDown(Point{X: 50, Y: 50}, Modifiers{})
	d.PointerDown(Point{X: 5, Y: 2}, Modifiers{})
	assert.Equal(t, "pan", d.Active())

	d.PointerUp(Point{X: 50, Y: 50})
	assert.Equal(t, "none", d.Active())
	d.PointerUp(Point{X: 50, Y: 50})
	d.PointerMove(Point{X: 70, Y: 70})
	assert.Equal(t, Point{}, position(t, d, a))
	assert.Equal(t, ViewportState{Scale: 1}, d.Viewport.State())
}

func TestDocumentSelectAndDeleteConnection(t *testing.T) {
	d, _ := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")
	b := d.Map.AddNode(50, 0, "b")
	c, err := d.Map.Connect(a, b)
	require.NoError(t, err)

	d.PointerDown(Point{X: 30, Y: 5}, Modifiers{})
	assert.Equal(t, "none", d.Active())
	assert.Equal(t, c.ID, d.SelectedConnection())

	require.True(t, d.DeleteSelection())
	assert.Empty(t, d.Map.Connections())
	assert.Empty(t, d.SelectedConnection())

	require.True(t, d.Undo())
	assert.Equal(t, []Connection{c}, d.Map.Connections())

	assert.True(t, d.DeleteConnectionAt(Point{X: 30, Y: 2}))
	assert.Empty(t, d.Map.Connections())
	assert.False(t, d.DeleteConnectionAt(Point{X: 30, Y: 2}))
}

func TestDocumentWheelKeepsCursorPoint(t *testing.T) {
	d, _ := newTestDocument(t)
	cursor := Point{X: 33, Y: 7}
	before := d.Viewport.ScreenToDocument(cursor)

	d.Wheel(cursor, 3)
	assert.InDelta(t, 1.3, d.Viewport.Scale, 1e-9)
	assert.True(t, closeTo(before, d.Viewport.ScreenToDocument(cursor), 1e-9))

	for i := 0; i < 50; i++ {
		d.Wheel(cursor, -1)
	}
	assert.Equal(t, defaultMinZoom, d.Viewport.Scale)
}

func TestDocumentAddAndDelete(t *testing.T) {
	d, _ := newTestDocument(t)

	root := d.AddNodeAt(Point{X: 50, Y: 20}, "root")
	n, _ := d.Map.Node(root)
	assert.Equal(t, KindMain, n.Kind)
	assert.Equal(t, Point{X: 45, Y: 18}, Point{X: n.X, Y: n.Y})

	other := d.AddNodeAt(Point{X: 100, Y: 20}, "other")
	n, _ = d.Map.Node(other)
	assert.Equal(t, KindTopic, n.Kind)

	child, err := d.AddChildOf(root, "child")
	require.NoError(t, err)
	assert.Equal(t, []string{child}, d.Selection())
	_, err = d.AddChildOf("missing", "x")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	d.Select(root, child)
	require.True(t, d.DeleteSelection())
	assert.Equal(t, 1, d.Map.Len())
	assert.Empty(t, d.Map.Connections())
	assert.Empty(t, d.Selection())
	assert.False(t, d.DeleteSelection())

	require.True(t, d.Undo())
	assert.Equal(t, 3, d.Map.Len())
	assert.Len(t, d.Map.Connections(), 1)
	assert.Equal(t, 0, d.Map.IndexOf(root))

	require.True(t, d.Undo())
	require.True(t, d.Undo())
	require.True(t, d.Undo())
	assert.Zero(t, d.Map.Len())
	assert.False(t, d.Undo())

	require.True(t, d.Redo())
	assert.Equal(t, 1, d.Map.Len())
}

func TestDocumentUndoDeleteKeepsConnectionOrder(t *testing.T) {
	d, _ := newTestDocument(t)
	r1 := d.Map.AddNode(0, 0, "r1")
	r2 := d.Map.AddNode(20, 0, "r2")
	x := d.Map.AddNode(0, 10, "x")
	y := d.Map.AddNode(20, 10, "y")
	_, err := d.Map.Connect(r2, y)
	require.NoError(t, err)
	_, err = d.Map.Connect(r1, x)
	require.NoError(t, err)
	_, err = d.Map.Connect(r2, x)
	require.NoError(t, err)
	original := d.Map.Connections()
	layout := d.Layout.Compute(d.Map.Nodes(), d.Map.Connections())

	d.Select(r1)
	require.True(t, d.DeleteSelection())
	require.True(t, d.Undo())
	assert.Equal(t, original, d.Map.Connections())
	assert.Equal(t, layout, d.Layout.Compute(d.Map.Nodes(), d.Map.Connections()))

	d.selectedConn = original[1].ID
	require.True(t, d.DeleteSelection())
	require.True(t, d.Undo())
	assert.Equal(t, original, d.Map.Connections())
}

func TestDocumentEditToggleRename(t *testing.T) {
	d, notifier := newTestDocument(t)
	a := d.Map.AddNode(0, 0, "a")

	require.NoError(t, d.EditText(a, "alpha"))
	require.NoError(t, d.EditText(a, "alpha"))
	assert.Equal(t, 1, notifier.content)
	assert.ErrorIs(t, d.EditText("missing", "x"), ErrNodeNotFound)

	require.NoError(t, d.ToggleMain(a))
	n, _ := d.Map.Node(a)
	assert.Equal(t, KindMain, n.Kind)
	require.NoError(t, d.ToggleMain(a))
	n, _ = d.Map.Node(a)
	assert.Equal(t, KindTopic, n.Kind)

	d.Rename("Renamed")
	assert.Equal(t, "Renamed", d.Map.Title)

	require.True(t, d.Undo())
	n, _ = d.Map.Node(a)
	assert.Equal(t, "a", n.Text)
}

func TestDocumentAutoLayoutUndo(t *testing.T) {
	d, _ := newTestDocument(t)
	root := d.Map.AddMainNode(100, 100, "root")
	child, _, err := d.Map.AddChild(root, "child")
	require.NoError(t, err)
	before := d.Map.Positions()

	d.AutoLayout()
	assert.NotEqual(t, before, d.Map.Positions())
	assert.Less(t, position(t, d, root).Y, position(t, d, child).Y)

	require.True(t, d.Undo())
	assert.Equal(t, before, d.Map.Positions())
}

func TestDocumentFitToView(t *testing.T) {
	d, _ := newTestDocument(t)
	d.Map.AddNode(0, 0, "a")
	d.Map.AddNode(90, 40, "b")

	d.FitToView(80, 24)
	content := d.Map.ContentBounds()
	screen := d.Viewport.DocumentRectToScreen(content)
	assert.GreaterOrEqual(t, screen.X, 0.0)
	assert.GreaterOrEqual(t, screen.Y, 0.0)
	assert.LessOrEqual(t, screen.Right(), 80.0)
	assert.LessOrEqual(t, screen.Bottom(), 24.0)
}
