package main

// handlePan moves the view by whole cells. Direction keys move the
// viewer, so the content shifts the opposite way.
func (m *model) handlePan(key string, speed int) {
	doc := m.getDocument()
	if doc == nil {
		return
	}
	step := float64(speed)
	switch key {
	case "h", "left", "H", "shift+left":
		doc.Viewport.Pan(step, 0)
	case "l", "right", "L", "shift+right":
		doc.Viewport.Pan(-step, 0)
	case "k", "up", "K", "shift+up":
		doc.Viewport.Pan(0, step)
	case "j", "down", "J", "shift+down":
		doc.Viewport.Pan(0, -step)
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return fastPanStep
	default:
		return panStep
	}
}

// handleZoom zooms by steps increments around the middle of the canvas.
func (m *model) handleZoom(steps float64) {
	doc := m.getDocument()
	if doc == nil {
		return
	}
	doc.Wheel(m.canvasCenter(), steps)
}

func (m *model) fitToView() {
	doc := m.getDocument()
	if doc == nil {
		return
	}
	w, h := m.canvasSize()
	doc.FitToView(float64(w), float64(h))
}
