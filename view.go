package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	modeStyle       = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeTabStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedRowText = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

func (m model) View() string {
	if m.mode == ModeStartup || len(m.buffers) == 0 || (m.mode == ModeConfirm && m.confirm == ConfirmDeleteMap) {
		return m.startupView()
	}
	if m.help {
		return m.fullHelpView()
	}

	w, h := m.canvasSize()
	var b strings.Builder
	if m.barRows() > 0 {
		b.WriteString(m.renderBufferBar(w))
		b.WriteString("\n")
	}
	canvas := NewCanvas(w, h)
	if doc := m.getDocument(); doc != nil {
		canvas.DrawDocument(doc)
	}
	b.WriteString(strings.Join(canvas.Render(), "\n"))
	b.WriteString("\n")
	b.WriteString(m.statusLine(w))
	return b.String()
}

func (m model) renderBufferBar(width int) string {
	var bar strings.Builder
	bar.WriteString("Open maps: ")
	for i, buf := range m.buffers {
		if i > 0 {
			bar.WriteString(dimStyle.Render(" | "))
		}
		name := buf.doc.Map.Title
		if name == "" {
			name = fmt.Sprintf("Map %d", i+1)
			if main, ok := buf.doc.Map.MainNode(); ok {
				name = main.Text
			}
		}
		if !buf.saved {
			name += "*"
		}
		if i == m.currentBufferIndex {
			name = activeTabStyle.Render(name)
		}
		bar.WriteString(name)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(bar.String())
}

func (m model) modeString() string {
	switch m.mode {
	case ModeStartup:
		return "STARTUP"
	case ModeNormal:
		if doc := m.getDocument(); doc != nil && doc.ConnectMode {
			return "CONNECT"
		}
		return "NORMAL"
	case ModeTextInput:
		return "TEXT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) confirmPrompt() string {
	switch m.confirm {
	case ConfirmDeleteSelection:
		return "Delete selected nodes? (y/n)"
	case ConfirmQuit:
		return "Quit with unsaved changes? (y/n)"
	case ConfirmCloseBuffer:
		return "Close map with unsaved changes? (y/n)"
	case ConfirmDeleteMap:
		return "Delete this map from disk? (y/n)"
	default:
		return "Are you sure? (y/n)"
	}
}

func (m model) statusLine(width int) string {
	mode := modeStyle.Render(m.modeString())
	switch m.mode {
	case ModeTextInput, ModeFileInput:
		return lipgloss.NewStyle().MaxWidth(width).Render(mode + " " + m.input.View())
	case ModeConfirm:
		return lipgloss.NewStyle().MaxWidth(width).Render(mode + " " + m.confirmPrompt())
	}

	parts := []string{mode}
	if doc := m.getDocument(); doc != nil {
		title := doc.Map.Title
		if buf := m.getCurrentBuffer(); buf != nil && !buf.saved {
			title += " [+]"
		}
		parts = append(parts,
			title,
			fmt.Sprintf("%d%%", int(doc.Viewport.Scale*100+0.5)),
			fmt.Sprintf("%d nodes", doc.Map.Len()),
		)
		if n := len(doc.Selection()); n > 0 {
			parts = append(parts, fmt.Sprintf("%d selected", n))
		}
		if active := doc.Active(); active != interactionNone.String() {
			parts = append(parts, active)
		}
	}
	switch {
	case m.errorMessage != "":
		parts = append(parts, errorStyle.Render("ERROR: "+m.errorMessage))
	case m.successMessage != "":
		parts = append(parts, successStyle.Render(m.successMessage))
	default:
		parts = append(parts, m.helpView.ShortHelpView(m.keys.ShortHelp()))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(parts, " │ "))
}

func (m model) fullHelpView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("mindcanvas help"))
	b.WriteString("\n\n")
	b.WriteString(m.helpView.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString("Mouse: drag nodes or the background, shift-drag to box select,\n")
	b.WriteString("alt-drag from a node to connect, wheel to zoom, right-click a line to delete it.\n\n")
	b.WriteString(dimStyle.Render("? or esc to close"))
	return b.String()
}

func (m model) startupView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("mindcanvas"))
	b.WriteString("\n\n")
	if len(m.mapList) == 0 {
		b.WriteString(dimStyle.Render("No saved maps yet."))
		b.WriteString("\n")
	}
	for i, s := range m.mapList {
		row := fmt.Sprintf("%s  %s", s.Title, dimStyle.Render(fmt.Sprintf("(%d nodes)", s.Nodes)))
		if i == m.selectedMapIndex {
			row = selectedRowText.Render("> "+s.Title) + "  " + dimStyle.Render(fmt.Sprintf("(%d nodes)", s.Nodes))
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch m.mode {
	case ModeTextInput, ModeFileInput:
		b.WriteString(m.input.View())
	case ModeConfirm:
		b.WriteString(m.confirmPrompt())
	default:
		b.WriteString(dimStyle.Render("enter open · n new · i import · d delete · q quit"))
	}
	if m.errorMessage != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errorMessage))
	}
	return b.String()
}
