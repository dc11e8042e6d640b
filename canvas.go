package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cellStyle int

const (
	stylePlain cellStyle = iota
	styleNode
	styleMain
	styleSelected
	styleConnection
	styleSelectedConnection
	stylePreview
	styleSelectBox
)

var cellStyles = map[cellStyle]lipgloss.Style{
	stylePlain:              lipgloss.NewStyle(),
	styleNode:               lipgloss.NewStyle(),
	styleMain:               lipgloss.NewStyle().Bold(true),
	styleSelected:           lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	styleConnection:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	styleSelectedConnection: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	stylePreview:            lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	styleSelectBox:          lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
}

// Canvas is a cell grid the document is rasterized into. Screen points
// are translated by origin, the screen position of the grid's top-left cell.
type Canvas struct {
	width  int
	height int
	origin Point
	cells  [][]rune
	styles [][]cellStyle
}

func NewCanvas(width, height int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{width: width, height: height}
	c.cells = make([][]rune, height)
	c.styles = make([][]cellStyle, height)
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", width))
		c.styles[y] = make([]cellStyle, width)
	}
	return c
}

func (c *Canvas) isValidPos(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

func (c *Canvas) SetOrigin(p Point) {
	c.origin = p
}

func (c *Canvas) set(x, y int, r rune, style cellStyle) {
	x -= round(c.origin.X)
	y -= round(c.origin.Y)
	if c.isValidPos(x, y) {
		c.cells[y][x] = r
		c.styles[y][x] = style
	}
}

// DrawDocument paints connections, nodes, the connection preview and the
// box-select rectangle, in that order.
func (c *Canvas) DrawDocument(d *Document) {
	c.SetOrigin(d.Viewport.Origin)
	for _, rc := range d.ScreenRoutes() {
		style := styleConnection
		if rc.Connection.ID == d.SelectedConnection() {
			style = styleSelectedConnection
		}
		c.DrawPath(rc.Path, style, true)
	}

	for _, n := range d.Map.Nodes() {
		b, _ := d.Map.Bounds(n.ID)
		style := styleNode
		if n.Kind == KindMain {
			style = styleMain
		}
		if d.IsSelected(n.ID) {
			style = styleSelected
		}
		c.DrawBox(d.Viewport.DocumentRectToScreen(b), n.Text, n.Kind == KindMain, style)
	}

	if p, ok := d.Preview(); ok {
		c.DrawPath(p, stylePreview, false)
	}
	if r, ok := d.SelectionRect(); ok {
		c.DrawSelection(r)
	}
}

// DrawPath rasterizes a screen-space curve. Each cell takes a line glyph
// matching the local direction of the curve.
func (c *Canvas) DrawPath(p Path, style cellStyle, arrow bool) {
	if p.Stub {
		c.set(round(p.Start.X), round(p.Start.Y), '•', style)
		return
	}
	length := p.Start.Dist(p.Control1) + p.Control1.Dist(p.Control2) + p.Control2.Dist(p.End)
	n := int(math.Ceil(length * 2))
	if n < 8 {
		n = 8
	}
	pts := p.Sample(n)
	for i := 1; i < len(pts); i++ {
		x, y := round(pts[i].X), round(pts[i].Y)
		c.set(x, y, lineGlyph(pts[i].Sub(pts[i-1])), style)
	}
	if arrow {
		c.set(round(p.End.X), round(p.End.Y), arrowGlyph(p.EndSide), style)
	}
}

func lineGlyph(d Point) rune {
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case ax >= 2*ay:
		return '─'
	case ay >= 2*ax:
		return '│'
	case d.X*d.Y > 0:
		return '╲'
	default:
		return '╱'
	}
}

func arrowGlyph(s Side) rune {
	switch s {
	case SideLeft:
		return '▶'
	case SideRight:
		return '◀'
	case SideTop:
		return '▼'
	case SideBottom:
		return '▲'
	default:
		return '•'
	}
}

// DrawBox draws a node outline with its text wrapped to the box. Boxes
// too small for a border collapse to a single block glyph.
func (c *Canvas) DrawBox(r Rect, text string, double bool, style cellStyle) {
	x0, y0 := round(r.X), round(r.Y)
	x1, y1 := round(r.Right())-1, round(r.Bottom())-1
	if x1-x0 < 2 || y1-y0 < 2 {
		c.set(x0, y0, '■', style)
		return
	}

	h, v, tl, tr, bl, br := '─', '│', '┌', '┐', '└', '┘'
	if double {
		h, v, tl, tr, bl, br = '═', '║', '╔', '╗', '╚', '╝'
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, h, style)
		c.set(x, y1, h, style)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, v, style)
		c.set(x1, y, v, style)
		for x := x0 + 1; x < x1; x++ {
			c.set(x, y, ' ', style)
		}
	}
	c.set(x0, y0, tl, style)
	c.set(x1, y0, tr, style)
	c.set(x0, y1, bl, style)
	c.set(x1, y1, br, style)

	lines := wrapText(text, x1-x0+1)
	for i, line := range lines {
		y := y0 + 1 + i
		if y >= y1 {
			break
		}
		x := x0 + 1
		for _, ch := range line {
			if x >= x1 {
				break
			}
			c.set(x, y, ch, style)
			x += lipgloss.Width(string(ch))
		}
	}
}

// DrawSelection outlines a box-select rectangle without clearing its inside.
func (c *Canvas) DrawSelection(r Rect) {
	x0, y0 := round(r.X), round(r.Y)
	x1, y1 := round(r.Right()), round(r.Bottom())
	for x := x0; x <= x1; x++ {
		c.set(x, y0, '┄', styleSelectBox)
		c.set(x, y1, '┄', styleSelectBox)
	}
	for y := y0; y <= y1; y++ {
		c.set(x0, y, '┆', styleSelectBox)
		c.set(x1, y, '┆', styleSelectBox)
	}
}

// Lines returns the grid as plain text, one string per row.
func (c *Canvas) Lines() []string {
	out := make([]string, c.height)
	for y, row := range c.cells {
		out[y] = string(row)
	}
	return out
}

// Render returns the grid with styles applied, grouping runs of equal style.
func (c *Canvas) Render() []string {
	out := make([]string, c.height)
	for y, row := range c.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && c.styles[y][x] == c.styles[y][start] {
				continue
			}
			run := string(row[start:x])
			if s := c.styles[y][start]; s == stylePlain {
				b.WriteString(run)
			} else {
				b.WriteString(cellStyles[s].Render(run))
			}
			start = x
		}
		out[y] = b.String()
	}
	return out
}

func round(f float64) int {
	return int(math.Round(f))
}
