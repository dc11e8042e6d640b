package main

type ActionType int

const (
	ActionAddNode ActionType = iota
	ActionDeleteNode
	ActionEditNode
	ActionMoveNodes
	ActionLayout
	ActionAddConnection
	ActionDeleteConnection
	ActionBatch
)

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

type AddNodeData struct {
	Node       Node
	Index      int
	Connection *Connection // set when the node was created as a child
}

type DeleteNodeData struct {
	Node        Node
	Index       int
	Connections []Connection
	// ConnectionIndexes holds each connection's list position before removal.
	ConnectionIndexes []int
}

type EditNodeData struct {
	ID      string
	NewText string
	OldText string
}

// MoveNodesData covers drags and layout passes: both are bulk position rewrites.
type MoveNodesData struct {
	Positions Positions
}

type ConnectionData struct {
	Connection Connection
	Index      int // list position before a delete
}

// BatchData groups actions that undo and redo as one step, in recorded order.
type BatchData struct {
	Actions []Action
}

// History is the undo/redo stack of one document.
type History struct {
	undoStack []Action
	redoStack []Action
	limit     int
}

func NewHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) Record(actionType ActionType, data, inverse interface{}) {
	h.undoStack = append(h.undoStack, Action{Type: actionType, Data: data, Inverse: inverse})
	if h.limit > 0 && len(h.undoStack) > h.limit {
		h.undoStack = h.undoStack[len(h.undoStack)-h.limit:]
	}
	h.redoStack = h.redoStack[:0]
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Undo reverts the most recent action on m. It reports whether anything changed.
func (h *History) Undo(m *Map) bool {
	if len(h.undoStack) == 0 {
		return false
	}
	last := len(h.undoStack) - 1
	action := h.undoStack[last]
	h.undoStack = h.undoStack[:last]
	undoAction(m, action)
	h.redoStack = append(h.redoStack, action)
	return true
}

func undoAction(m *Map, action Action) {
	switch action.Type {
	case ActionAddNode:
		data := action.Data.(AddNodeData)
		m.RemoveNode(data.Node.ID)
	case ActionDeleteNode:
		data := action.Data.(DeleteNodeData)
		m.AddNodeWithID(data.Node, data.Index)
		for i, c := range data.Connections {
			index := -1
			if i < len(data.ConnectionIndexes) {
				index = data.ConnectionIndexes[i]
			}
			m.RestoreConnectionAt(c, index)
		}
	case ActionEditNode:
		data := action.Data.(EditNodeData)
		m.SetText(data.ID, data.OldText)
	case ActionMoveNodes, ActionLayout:
		inverse := action.Inverse.(MoveNodesData)
		m.ApplyPositions(inverse.Positions)
	case ActionAddConnection:
		data := action.Data.(ConnectionData)
		m.Disconnect(data.Connection.ID)
	case ActionDeleteConnection:
		data := action.Data.(ConnectionData)
		m.RestoreConnectionAt(data.Connection, data.Index)
	case ActionBatch:
		data := action.Data.(BatchData)
		for i := len(data.Actions) - 1; i >= 0; i-- {
			undoAction(m, data.Actions[i])
		}
	}
}

// Redo re-applies the most recently undone action.
func (h *History) Redo(m *Map) bool {
	if len(h.redoStack) == 0 {
		return false
	}
	last := len(h.redoStack) - 1
	action := h.redoStack[last]
	h.redoStack = h.redoStack[:last]
	redoAction(m, action)
	h.undoStack = append(h.undoStack, action)
	return true
}

func redoAction(m *Map, action Action) {
	switch action.Type {
	case ActionAddNode:
		data := action.Data.(AddNodeData)
		m.AddNodeWithID(data.Node, data.Index)
		if data.Connection != nil {
			m.RestoreConnection(*data.Connection)
		}
	case ActionDeleteNode:
		data := action.Data.(DeleteNodeData)
		m.RemoveNode(data.Node.ID)
	case ActionEditNode:
		data := action.Data.(EditNodeData)
		m.SetText(data.ID, data.NewText)
	case ActionMoveNodes, ActionLayout:
		data := action.Data.(MoveNodesData)
		m.ApplyPositions(data.Positions)
	case ActionAddConnection:
		data := action.Data.(ConnectionData)
		m.RestoreConnection(data.Connection)
	case ActionDeleteConnection:
		data := action.Data.(ConnectionData)
		m.Disconnect(data.Connection.ID)
	case ActionBatch:
		data := action.Data.(BatchData)
		for _, a := range data.Actions {
			redoAction(m, a)
		}
	}
}
