package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var errNothingToExport = errors.New("nothing to export")

// Pixels per document unit. Document units are terminal cells, which are
// roughly twice as tall as they are wide.
const (
	charWidth  = 8.0
	charHeight = 16.0
)

// exportPNG draws the map at scale 1 with the same router the editor uses.
func exportPNG(d *Document, filename string) error {
	bounds := d.Map.ContentBounds()
	if bounds.IsEmpty() {
		return errNothingToExport
	}

	padding := 2.0
	bounds = bounds.Inset(padding)
	imageWidth := int(math.Ceil(bounds.Width * charWidth))
	imageHeight := int(math.Ceil(bounds.Height * charHeight))

	toPixel := func(p Point) (float64, float64) {
		return (p.X - bounds.X) * charWidth, (p.Y - bounds.Y) * charHeight
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Connections first so boxes cover their ends.
	router := NewEdgeRouter(d.Map, nil)
	router.Curvature = d.Router.Curvature
	router.CurvatureCap = d.Router.CurvatureCap
	dc.SetColor(color.Gray{Y: 96})
	dc.SetLineWidth(router.StrokeWidth)
	for _, rc := range router.RouteAll(d.Map.Connections()) {
		drawPathPNG(dc, rc.Path, toPixel)
	}

	for _, n := range d.Map.Nodes() {
		b, _ := d.Map.Bounds(n.ID)
		drawNodePNG(dc, n, b, toPixel)
	}

	return dc.SavePNG(filename)
}

func drawPathPNG(dc *gg.Context, p Path, toPixel func(Point) (float64, float64)) {
	if p.Stub {
		return
	}
	sx, sy := toPixel(p.Start)
	c1x, c1y := toPixel(p.Control1)
	c2x, c2y := toPixel(p.Control2)
	ex, ey := toPixel(p.End)
	dc.MoveTo(sx, sy)
	dc.CubicTo(c1x, c1y, c2x, c2y, ex, ey)
	dc.Stroke()

	// Arrowhead along the final tangent.
	dx, dy := ex-c2x, ey-c2y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	arrowSize := 7.0
	arrowAngle := 0.5
	dc.MoveTo(ex, ey)
	dc.LineTo(ex-arrowSize*dx+arrowSize*dy*arrowAngle, ey-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(ex-arrowSize*dx-arrowSize*dy*arrowAngle, ey-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n Node, b Rect, toPixel func(Point) (float64, float64)) {
	x, y := toPixel(Point{b.X, b.Y})
	width := b.Width * charWidth
	height := b.Height * charHeight

	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(x, y, width, height, 4)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	if n.Kind == KindMain {
		dc.SetLineWidth(2.5)
	}
	dc.DrawRoundedRectangle(x, y, width, height, 4)
	dc.Stroke()

	for i, line := range wrapText(n.Text, int(b.Width)) {
		dc.DrawString(line, x+charWidth, y+charHeight*float64(i+1)+charHeight*0.75)
	}
}

// exportVisualTXT writes the document as it currently appears in the
// editor, without selection or cursor decorations.
func exportVisualTXT(d *Document, filename string, width, height int) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if width < 1 {
		width = 80
	}
	if height < 1 {
		height = 24
	}

	canvas := NewCanvas(width, height)
	canvas.SetOrigin(d.Viewport.Origin)
	for _, rc := range d.ScreenRoutes() {
		canvas.DrawPath(rc.Path, stylePlain, true)
	}
	for _, n := range d.Map.Nodes() {
		b, _ := d.Map.Bounds(n.ID)
		canvas.DrawBox(d.Viewport.DocumentRectToScreen(b), n.Text, n.Kind == KindMain, stylePlain)
	}
	for _, line := range canvas.Lines() {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}
