package main

import "math"

const (
	defaultMinZoom = 0.25
	defaultMaxZoom = 2.0
)

// ViewportState is the persisted part of a viewport.
type ViewportState struct {
	Scale   float64 `json:"scale" yaml:"scale"`
	OffsetX float64 `json:"offsetX" yaml:"offset_x"`
	OffsetY float64 `json:"offsetY" yaml:"offset_y"`
}

// Viewport maps between document space, where node coordinates live, and
// screen space, the cells of the visible canvas. Origin is the screen
// position of the canvas container's top-left corner.
//
// Scale is kept inside [MinZoom, MaxZoom] by every method that writes it.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	Origin  Point

	MinZoom float64
	MaxZoom float64
}

// NewViewport returns an identity viewport with the given zoom limits.
// Invalid limits fall back to the defaults.
func NewViewport(minZoom, maxZoom float64) *Viewport {
	if minZoom <= 0 || maxZoom <= 0 || minZoom > maxZoom {
		minZoom, maxZoom = defaultMinZoom, defaultMaxZoom
	}
	v := &Viewport{MinZoom: minZoom, MaxZoom: maxZoom}
	v.ResetZoom()
	return v
}

func (v *Viewport) clampScale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return clamp(1, v.MinZoom, v.MaxZoom)
	}
	return clamp(s, v.MinZoom, v.MaxZoom)
}

// ScreenToDocument converts a screen point to document space.
func (v *Viewport) ScreenToDocument(p Point) Point {
	return Point{
		X: (p.X - v.Origin.X - v.OffsetX) / v.Scale,
		Y: (p.Y - v.Origin.Y - v.OffsetY) / v.Scale,
	}
}

// DocumentToScreen converts a document point to screen space.
func (v *Viewport) DocumentToScreen(p Point) Point {
	return Point{
		X: p.X*v.Scale + v.OffsetX + v.Origin.X,
		Y: p.Y*v.Scale + v.OffsetY + v.Origin.Y,
	}
}

// DocumentRectToScreen converts a document rect to screen space.
func (v *Viewport) DocumentRectToScreen(r Rect) Rect {
	tl := v.DocumentToScreen(Point{r.X, r.Y})
	return Rect{X: tl.X, Y: tl.Y, Width: r.Width * v.Scale, Height: r.Height * v.Scale}
}

// ZoomAt changes the scale by delta and shifts the offset so the document
// point under anchor (a screen point) stays under it.
func (v *Viewport) ZoomAt(anchor Point, delta float64) {
	v.SetZoom(anchor, v.Scale+delta)
}

// SetZoom sets an absolute scale, anchored the same way as ZoomAt.
func (v *Viewport) SetZoom(anchor Point, scale float64) {
	next := v.clampScale(scale)
	if next == v.Scale {
		return
	}
	ax := anchor.X - v.Origin.X
	ay := anchor.Y - v.Origin.Y
	ratio := next / v.Scale
	v.OffsetX = ax - (ax-v.OffsetX)*ratio
	v.OffsetY = ay - (ay-v.OffsetY)*ratio
	v.Scale = next
}

// Pan shifts the view by screen-space deltas; scale does not affect it.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ResetZoom restores scale 1 with no offset.
func (v *Viewport) ResetZoom() {
	v.Scale = v.clampScale(1)
	v.OffsetX = 0
	v.OffsetY = 0
}

// FitToView scales and centers content (a document rect) inside a
// container of the given screen size. The content is padded by padding
// document units on every side. Empty content resets the zoom; zero-width
// or zero-height content uses scale 1.
func (v *Viewport) FitToView(content Rect, containerW, containerH, padding float64) {
	if content == (Rect{}) || containerW <= 0 || containerH <= 0 {
		v.ResetZoom()
		return
	}

	padded := content.Inset(padding)
	scale := 1.0
	if content.Width > 0 && content.Height > 0 {
		scale = math.Min(containerW/padded.Width, containerH/padded.Height)
	}
	v.Scale = v.clampScale(scale)

	c := padded.Center()
	v.OffsetX = containerW/2 - c.X*v.Scale
	v.OffsetY = containerH/2 - c.Y*v.Scale
}

func (v *Viewport) State() ViewportState {
	return ViewportState{Scale: v.Scale, OffsetX: v.OffsetX, OffsetY: v.OffsetY}
}

// Restore loads a persisted state, clamping the scale to this viewport's
// limits. A missing scale means 1.
func (v *Viewport) Restore(s ViewportState) {
	if s.Scale <= 0 {
		s.Scale = 1
	}
	v.Scale = v.clampScale(s.Scale)
	v.OffsetX, v.OffsetY = 0, 0
	if off := (Point{X: s.OffsetX, Y: s.OffsetY}); off.IsFinite() {
		v.OffsetX, v.OffsetY = off.X, off.Y
	}
}
