package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pan        key.Binding
	FastPan    key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ResetZoom  key.Binding
	Fit        key.Binding
	Layout     key.Binding
	NewNode    key.Binding
	NewChild   key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Connect    key.Binding
	ToggleMain key.Binding
	Undo       key.Binding
	Redo       key.Binding
	Save       key.Binding
	Rename     key.Binding
	ExportPNG  key.Binding
	ExportTXT  key.Binding
	ExportJSON key.Binding
	Import     key.Binding
	Copy       key.Binding
	Paste      key.Binding
	NextBuffer key.Binding
	PrevBuffer key.Binding
	NewBuffer  key.Binding
	Close      key.Binding
	Open       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pan:        key.NewBinding(key.WithKeys("h", "j", "k", "l", "left", "down", "up", "right"), key.WithHelp("hjkl/←↓↑→", "pan")),
		FastPan:    key.NewBinding(key.WithKeys("H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right"), key.WithHelp("HJKL", "pan fast")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		ResetZoom:  key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		Fit:        key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit to view")),
		Layout:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto layout")),
		NewNode:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new node")),
		NewChild:   key.NewBinding(key.WithKeys("c", "tab"), key.WithHelp("c/tab", "new child")),
		Edit:       key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e/enter", "edit text")),
		Delete:     key.NewBinding(key.WithKeys("x", "delete", "backspace"), key.WithHelp("x/del", "delete")),
		Connect:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "toggle connect mode")),
		ToggleMain: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle main topic")),
		Undo:       key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Redo:       key.NewBinding(key.WithKeys("ctrl+r", "ctrl+y"), key.WithHelp("ctrl+r", "redo")),
		Save:       key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Rename:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename map")),
		ExportPNG:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "export png")),
		ExportTXT:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "export txt")),
		ExportJSON: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export json")),
		Import:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import json")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy text")),
		Paste:      key.NewBinding(key.WithKeys("v", "P"), key.WithHelp("v", "paste as node")),
		NextBuffer: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next buffer")),
		PrevBuffer: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous buffer")),
		NewBuffer:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new map")),
		Close:      key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close buffer")),
		Open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open map")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewNode, k.NewChild, k.Layout, k.Fit, k.Undo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pan, k.FastPan, k.ZoomIn, k.ZoomOut, k.ResetZoom, k.Fit},
		{k.NewNode, k.NewChild, k.Edit, k.Delete, k.Connect, k.ToggleMain, k.Layout},
		{k.Undo, k.Redo, k.Copy, k.Paste, k.Save, k.Rename},
		{k.ExportPNG, k.ExportTXT, k.ExportJSON, k.Import},
		{k.NextBuffer, k.PrevBuffer, k.NewBuffer, k.Close, k.Open, k.Help, k.Quit},
	}
}
