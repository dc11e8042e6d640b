package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAddNode(t *testing.T) {
	m := NewMap("history", testEstimator)
	h := NewHistory(0)
	root := m.AddNode(0, 0, "root")

	id, c, err := m.AddChild(root, "child")
	require.NoError(t, err)
	n, _ := m.Node(id)
	h.Record(ActionAddNode, AddNodeData{Node: n, Index: m.IndexOf(id), Connection: &c}, nil)

	require.True(t, h.Undo(m))
	_, ok := m.Node(id)
	assert.False(t, ok)
	assert.Empty(t, m.Connections())
	assert.True(t, h.CanRedo())

	require.True(t, h.Redo(m))
	_, ok = m.Node(id)
	assert.True(t, ok)
	assert.Equal(t, []Connection{c}, m.Connections())
	assert.False(t, h.CanRedo())
}

func TestHistoryBatchDelete(t *testing.T) {
	m := NewMap("history", testEstimator)
	h := NewHistory(0)
	a := m.AddNode(0, 0, "a")
	b := m.AddNode(20, 0, "b")
	c := m.AddNode(40, 0, "c")
	ab, _ := m.Connect(a, b)
	bc, _ := m.Connect(b, c)

	var actions []Action
	for _, id := range []string{a, b} {
		index := m.IndexOf(id)
		connIndexes := m.ConnectionIndexesOf(id)
		n, conns, err := m.RemoveNode(id)
		require.NoError(t, err)
		actions = append(actions, Action{Type: ActionDeleteNode, Data: DeleteNodeData{Node: n, Index: index, Connections: conns, ConnectionIndexes: connIndexes}})
	}
	h.Record(ActionBatch, BatchData{Actions: actions}, nil)
	assert.Equal(t, 1, m.Len())

	require.True(t, h.Undo(m))
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 0, m.IndexOf(a))
	assert.Equal(t, 1, m.IndexOf(b))
	assert.Equal(t, []Connection{ab, bc}, m.Connections())

	require.True(t, h.Redo(m))
	assert.Equal(t, 1, m.Len())
	assert.Empty(t, m.Connections())
}

func TestHistoryMoveAndEdit(t *testing.T) {
	m := NewMap("history", testEstimator)
	h := NewHistory(0)
	a := m.AddNode(0, 0, "a")

	before := m.Positions()
	m.MoveNodes([]string{a}, 3, 4)
	h.Record(ActionMoveNodes, MoveNodesData{Positions: m.Positions()}, MoveNodesData{Positions: before})
	require.NoError(t, m.SetText(a, "renamed"))
	h.Record(ActionEditNode, EditNodeData{ID: a, NewText: "renamed", OldText: "a"}, nil)

	require.True(t, h.Undo(m))
	n, _ := m.Node(a)
	assert.Equal(t, "a", n.Text)
	assert.Equal(t, 3.0, n.X)

	require.True(t, h.Undo(m))
	n, _ = m.Node(a)
	assert.Equal(t, Point{}, Point{X: n.X, Y: n.Y})
	assert.False(t, h.Undo(m))

	require.True(t, h.Redo(m))
	require.True(t, h.Redo(m))
	n, _ = m.Node(a)
	assert.Equal(t, "renamed", n.Text)
	assert.Equal(t, Point{X: 3, Y: 4}, Point{X: n.X, Y: n.Y})
}

func TestHistoryConnections(t *testing.T) {
	m := NewMap("history", testEstimator)
	h := NewHistory(0)
	a := m.AddNode(0, 0, "a")
	b := m.AddNode(20, 0, "b")

	c, err := m.Connect(a, b)
	require.NoError(t, err)
	h.Record(ActionAddConnection, ConnectionData{Connection: c}, nil)
	require.True(t, h.Undo(m))
	assert.Empty(t, m.Connections())
	require.True(t, h.Redo(m))
	assert.Equal(t, []Connection{c}, m.Connections())

	_, err = m.Disconnect(c.ID)
	require.NoError(t, err)
	h.Record(ActionDeleteConnection, ConnectionData{Connection: c}, nil)
	require.True(t, h.Undo(m))
	assert.Equal(t, []Connection{c}, m.Connections())
}

func TestHistoryRecordClearsRedoAndHonorsLimit(t *testing.T) {
	m := NewMap("history", testEstimator)
	h := NewHistory(2)
	a := m.AddNode(0, 0, "a")

	for i := 1; i <= 3; i++ {
		before := m.Positions()
		m.MoveNodes([]string{a}, 1, 0)
		h.Record(ActionMoveNodes, MoveNodesData{Positions: m.Positions()}, MoveNodesData{Positions: before})
	}
	require.True(t, h.Undo(m))
	require.True(t, h.Undo(m))
	assert.False(t, h.Undo(m), "oldest action is trimmed")
	n, _ := m.Node(a)
	assert.Equal(t, 1.0, n.X)

	h.Record(ActionEditNode, EditNodeData{ID: a, NewText: "a", OldText: "a"}, nil)
	assert.False(t, h.CanRedo())
}
