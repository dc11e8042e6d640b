package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.helpView.Width = msg.Width
		m.input.Width = msg.Width - 24
		return m, nil

	case tea.MouseMsg:
		switch {
		case m.mode == ModeNormal && !m.help:
			m.handleMouse(msg)
		case msg.Action == tea.MouseActionRelease:
			// A gesture started before help or a prompt opened still ends.
			m.releasePointer(Point{X: float64(msg.X), Y: float64(msg.Y)})
		}

	case tea.KeyMsg:
		switch m.mode {
		case ModeStartup:
			cmd = m.handleStartupKey(msg)
		case ModeTextInput, ModeFileInput:
			cmd = m.handleInputKey(msg)
		case ModeConfirm:
			cmd = m.handleConfirmKey(msg)
		default:
			cmd = m.handleNormalKey(msg)
		}
	}
	m.flushChanges()
	return m, cmd
}

// handleMouse forwards terminal mouse events to the current document. Cells
// are used directly as screen points.
func (m *model) handleMouse(msg tea.MouseMsg) {
	doc := m.getDocument()
	if doc == nil {
		return
	}
	screen := Point{X: float64(msg.X), Y: float64(msg.Y)}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Y < m.barRows() {
			return
		}
		m.clearMessages()
		switch msg.Button {
		case tea.MouseButtonLeft:
			doc.PointerDown(screen, Modifiers{Shift: msg.Shift, Alt: msg.Alt, Ctrl: msg.Ctrl})
		case tea.MouseButtonRight:
			if doc.DeleteConnectionAt(screen) {
				m.successMessage = "Connection deleted"
			}
		case tea.MouseButtonWheelUp:
			doc.Wheel(screen, 1)
		case tea.MouseButtonWheelDown:
			doc.Wheel(screen, -1)
		}
	case tea.MouseActionMotion:
		doc.PointerMove(screen)
	case tea.MouseActionRelease:
		m.releasePointer(screen)
	}
}

// releasePointer ends the gesture of every open document.
func (m *model) releasePointer(screen Point) {
	for _, buf := range m.buffers {
		if buf.doc.Active() != interactionNone.String() {
			buf.doc.PointerUp(screen)
		}
	}
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

func (m *model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	if m.help {
		if key.Matches(msg, m.keys.Help, m.keys.Quit) || msg.Type == tea.KeyEsc {
			m.help = false
		}
		return nil
	}
	doc := m.getDocument()
	if doc == nil {
		m.mode = ModeStartup
		m.refreshMapList()
		return nil
	}
	m.clearMessages()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()
	case key.Matches(msg, m.keys.Help):
		m.help = true
	case key.Matches(msg, m.keys.FastPan), key.Matches(msg, m.keys.Pan):
		m.handlePan(msg.String(), m.getMoveSpeed(msg.String()))
	case key.Matches(msg, m.keys.ZoomIn):
		m.handleZoom(1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.handleZoom(-1)
	case key.Matches(msg, m.keys.ResetZoom):
		doc.Viewport.ResetZoom()
	case key.Matches(msg, m.keys.Fit):
		m.fitToView()
	case key.Matches(msg, m.keys.Layout):
		doc.AutoLayout()
		m.fitToView()
		m.successMessage = "Layout applied"
	case key.Matches(msg, m.keys.NewNode):
		m.beginInput(InputNewNode, "", "New topic: ", "")
	case key.Matches(msg, m.keys.NewChild):
		id, ok := doc.Primary()
		if !ok {
			m.errorMessage = "select a parent node first"
			return nil
		}
		m.beginInput(InputNewChild, id, "Child topic: ", "")
	case key.Matches(msg, m.keys.Edit):
		id, ok := doc.Primary()
		if !ok {
			m.errorMessage = "select a node to edit"
			return nil
		}
		n, _ := doc.Map.Node(id)
		m.beginInput(InputEditNode, id, "Edit: ", n.Text)
	case key.Matches(msg, m.keys.Delete):
		if len(doc.Selection()) == 0 && doc.SelectedConnection() == "" {
			return nil
		}
		if m.config.Confirmations && len(doc.Selection()) > 1 {
			m.beginConfirm(ConfirmDeleteSelection, "")
			return nil
		}
		doc.DeleteSelection()
	case key.Matches(msg, m.keys.Connect):
		doc.ConnectMode = !doc.ConnectMode
	case key.Matches(msg, m.keys.ToggleMain):
		if id, ok := doc.Primary(); ok {
			if err := doc.ToggleMain(id); err != nil {
				m.errorMessage = err.Error()
			}
		}
	case key.Matches(msg, m.keys.Undo):
		if !doc.History.CanUndo() {
			m.errorMessage = "nothing to undo"
			return nil
		}
		doc.Undo()
	case key.Matches(msg, m.keys.Redo):
		if !doc.History.CanRedo() {
			m.errorMessage = "nothing to redo"
			return nil
		}
		doc.Redo()
	case key.Matches(msg, m.keys.Save):
		if err := m.saveBuffer(m.getCurrentBuffer()); err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.successMessage = "Saved " + doc.Map.Title
	case key.Matches(msg, m.keys.Rename):
		m.beginInput(InputTitle, "", "Title: ", doc.Map.Title)
	case key.Matches(msg, m.keys.ExportPNG):
		m.beginFileInput(FileOpExportPNG, fileBaseName(doc.Map.Title)+".png")
	case key.Matches(msg, m.keys.ExportTXT):
		m.beginFileInput(FileOpExportTXT, fileBaseName(doc.Map.Title)+".txt")
	case key.Matches(msg, m.keys.ExportJSON):
		m.beginFileInput(FileOpExportJSON, fileBaseName(doc.Map.Title)+".json")
	case key.Matches(msg, m.keys.Import):
		m.beginFileInput(FileOpImport, "")
	case key.Matches(msg, m.keys.Copy):
		m.copySelection(doc)
	case key.Matches(msg, m.keys.Paste):
		m.pasteClipboard(doc)
	case key.Matches(msg, m.keys.NextBuffer):
		m.switchBuffer(1)
	case key.Matches(msg, m.keys.PrevBuffer):
		m.switchBuffer(-1)
	case key.Matches(msg, m.keys.NewBuffer):
		m.openBuffer(NewMap("Untitled", m.estimator), ViewportState{Scale: 1})
	case key.Matches(msg, m.keys.Close):
		if buf := m.getCurrentBuffer(); buf != nil && !buf.saved && m.config.Confirmations {
			m.beginConfirm(ConfirmCloseBuffer, "")
			return nil
		}
		m.closeCurrent()
	case key.Matches(msg, m.keys.Open):
		m.refreshMapList()
		m.mode = ModeStartup
	case msg.Type == tea.KeyEsc:
		doc.Select()
		doc.ConnectMode = false
	}
	return nil
}

func (m *model) handleStartupKey(msg tea.KeyMsg) tea.Cmd {
	m.clearMessages()
	switch msg.String() {
	case "q", "ctrl+c":
		return m.requestQuit()
	case "esc":
		if len(m.buffers) > 0 {
			m.mode = ModeNormal
		}
	case "j", "down":
		if m.selectedMapIndex < len(m.mapList)-1 {
			m.selectedMapIndex++
		}
	case "k", "up":
		if m.selectedMapIndex > 0 {
			m.selectedMapIndex--
		}
	case "enter", "o":
		if len(m.mapList) == 0 {
			return nil
		}
		summary := m.mapList[m.selectedMapIndex]
		mm, state, err := m.store.Load(summary.ID)
		if err != nil {
			m.errorMessage = err.Error()
			return nil
		}
		m.openBuffer(mm, state)
		m.mode = ModeNormal
	case "n":
		m.openBuffer(NewMap("Untitled", m.estimator), ViewportState{Scale: 1})
		m.mode = ModeNormal
		m.beginInput(InputTitle, "", "Title: ", "")
	case "i":
		m.beginFileInput(FileOpImport, "")
	case "d", "x":
		if len(m.mapList) == 0 {
			return nil
		}
		m.beginConfirm(ConfirmDeleteMap, m.mapList[m.selectedMapIndex].ID)
	}
	return nil
}

func (m *model) beginInput(purpose InputPurpose, target, prompt, value string) {
	m.purpose = purpose
	m.target = target
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.mode = ModeTextInput
}

func (m *model) beginFileInput(op FileOperation, value string) {
	m.fileOp = op
	m.input.Prompt = "File: "
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.mode = ModeFileInput
}

func (m *model) beginConfirm(action ConfirmAction, id string) {
	m.confirm = action
	m.confirmID = id
	m.mode = ModeConfirm
}

// returnMode is where input and confirm modes go back to.
func (m *model) returnMode() Mode {
	if len(m.buffers) == 0 {
		return ModeStartup
	}
	return ModeNormal
}

func (m *model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = m.returnMode()
		return nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		mode := m.mode
		m.mode = m.returnMode()
		if mode == ModeFileInput {
			m.commitFile(value)
		} else {
			m.commitText(value)
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *model) commitText(text string) {
	doc := m.getDocument()
	if doc == nil {
		return
	}
	switch m.purpose {
	case InputNewNode:
		if text == "" {
			return
		}
		doc.AddNodeAt(m.canvasCenter(), text)
	case InputNewChild:
		if text == "" {
			return
		}
		if _, err := doc.AddChildOf(m.target, text); err != nil {
			m.errorMessage = err.Error()
		}
	case InputEditNode:
		if err := doc.EditText(m.target, text); err != nil {
			m.errorMessage = err.Error()
		}
	case InputTitle:
		doc.Rename(text)
	}
}

func (m *model) commitFile(name string) {
	if name == "" {
		return
	}
	if m.fileOp == FileOpImport {
		mm, state, err := m.store.Import(name)
		if err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.openBuffer(mm, state)
		m.mode = ModeNormal
		m.successMessage = "Imported " + mm.Title
		return
	}

	doc := m.getDocument()
	if doc == nil {
		return
	}
	path := m.config.GetSavePath(name)
	var err error
	switch m.fileOp {
	case FileOpExportPNG:
		err = exportPNG(doc, path)
	case FileOpExportTXT:
		w, h := m.canvasSize()
		err = exportVisualTXT(doc, path, w, h)
	case FileOpExportJSON:
		err = m.store.Export(doc.Map, doc.Viewport, path)
	}
	if err != nil {
		m.logger.Error("export failed", "file", path, "error", err)
		m.errorMessage = err.Error()
		return
	}
	m.logger.Info("exported", "map", doc.Map.ID, "file", path)
	m.successMessage = "Exported " + path
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.mode = m.returnMode()
		return m.confirmed()
	case "n", "N", "esc":
		m.mode = m.returnMode()
		if m.confirm == ConfirmDeleteMap {
			m.mode = ModeStartup
		}
	}
	return nil
}

func (m *model) confirmed() tea.Cmd {
	switch m.confirm {
	case ConfirmDeleteSelection:
		if doc := m.getDocument(); doc != nil {
			doc.DeleteSelection()
		}
	case ConfirmCloseBuffer:
		m.closeCurrent()
	case ConfirmDeleteMap:
		if err := m.store.Delete(m.confirmID); err != nil {
			m.errorMessage = err.Error()
		}
		for i, buf := range m.buffers {
			if buf.doc.Map.ID == m.confirmID {
				m.closeBuffer(i)
				break
			}
		}
		m.refreshMapList()
		m.mode = ModeStartup
	case ConfirmQuit:
		return tea.Quit
	}
	return nil
}

func (m *model) closeCurrent() {
	m.closeBuffer(m.currentBufferIndex)
	if len(m.buffers) == 0 {
		m.refreshMapList()
		m.mode = ModeStartup
	}
}

// requestQuit saves what autosave would and quits, asking first when a
// buffer still has unsaved changes.
func (m *model) requestQuit() tea.Cmd {
	unsaved := 0
	for i := range m.buffers {
		buf := &m.buffers[i]
		if buf.saved || buf.doc.Map.Len() == 0 {
			continue
		}
		if m.config.Autosave {
			if err := m.saveBuffer(buf); err != nil {
				m.logger.Error("save on quit failed", "map", buf.doc.Map.ID, "error", err)
				unsaved++
			}
			continue
		}
		unsaved++
	}
	if unsaved > 0 && m.config.Confirmations {
		m.beginConfirm(ConfirmQuit, "")
		return nil
	}
	return tea.Quit
}

// copySelection copies the primary node's text, or the whole map as an
// indented outline when nothing is selected.
func (m *model) copySelection(doc *Document) {
	text := doc.Map.Outline()
	if id, ok := doc.Primary(); ok {
		n, _ := doc.Map.Node(id)
		text = n.Text
	}
	if err := writeClipboardText(text); err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return
	}
	m.successMessage = "Copied"
}

// pasteClipboard adds one node per clipboard line. With a selection the
// lines become children of the primary node; otherwise the first line is
// a new node and the rest become its children.
func (m *model) pasteClipboard(doc *Document) {
	raw, err := readClipboardText()
	if err != nil {
		m.errorMessage = "clipboard: " + err.Error()
		return
	}
	lines := clipboardLines(raw)
	if len(lines) == 0 {
		m.errorMessage = "clipboard is empty"
		return
	}
	count := len(lines)
	parent, ok := doc.Primary()
	if !ok {
		parent = doc.AddNodeAt(m.canvasCenter(), lines[0])
		lines = lines[1:]
	}
	for _, line := range lines {
		if _, err := doc.AddChildOf(parent, line); err != nil {
			m.errorMessage = err.Error()
			return
		}
	}
	doc.Select(parent)
	m.successMessage = fmt.Sprintf("Pasted %d topics", count)
}

// fileBaseName makes a title usable as a file name.
func fileBaseName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "mindmap"
	}
	return filepath.Clean(name)
}
