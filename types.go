package main

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
)

// changeTracker collects a document's change signals between two updates.
type changeTracker struct {
	dirty bool
	moved bool
}

func (t *changeTracker) ContentChanged()   { t.dirty = true }
func (t *changeTracker) PositionsChanged() { t.moved = true }

type Buffer struct {
	doc     *Document
	changes *changeTracker
	saved   bool
}

type model struct {
	width              int
	height             int
	buffers            []Buffer
	currentBufferIndex int
	mode               Mode
	help               bool

	config    *Config
	store     *Store
	estimator SizeEstimator
	logger    *slog.Logger

	keys      keyMap
	helpView  help.Model
	input     textinput.Model
	purpose   InputPurpose
	target    string
	fileOp    FileOperation
	confirm   ConfirmAction
	confirmID string

	mapList          []MapSummary
	selectedMapIndex int

	errorMessage   string
	successMessage string
}
