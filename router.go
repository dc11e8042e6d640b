package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	defaultCurvature    = 0.4
	defaultCurvatureCap = 100
	defaultHitTolerance = 8
	defaultStrokeWidth  = 2
	pathSamples         = 32
)

// Path is a single cubic Bézier from one node border to another:
// M Start C Control1, Control2, End. Stub paths have coincident anchors.
type Path struct {
	Start    Point
	Control1 Point
	Control2 Point
	End      Point

	StartSide Side
	EndSide   Side // SideNone for a preview ending at the cursor
	Stub      bool
}

// D returns the SVG path data. The display stroke and the wider hit-test
// stroke are both drawn from this one value.
func (p Path) D() string {
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, p.Start)
	b.WriteString(" C ")
	writePoint(&b, p.Control1)
	b.WriteString(", ")
	writePoint(&b, p.Control2)
	b.WriteString(", ")
	writePoint(&b, p.End)
	return b.String()
}

func writePoint(b *strings.Builder, p Point) {
	b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
}

func (p Path) String() string {
	return fmt.Sprintf("Path(%s)", p.D())
}

// At evaluates the curve at t in [0, 1].
func (p Path) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p.Start.X + b*p.Control1.X + c*p.Control2.X + d*p.End.X,
		Y: a*p.Start.Y + b*p.Control1.Y + c*p.Control2.Y + d*p.End.Y,
	}
}

// Sample returns n+1 evenly spaced (in t) points along the curve.
func (p Path) Sample(n int) []Point {
	if n < 1 {
		n = 1
	}
	pts := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = p.At(float64(i) / float64(n))
	}
	return pts
}

// ToScreen maps the path through the viewport. The transform is affine, so
// mapping the control points maps the curve exactly.
func (p Path) ToScreen(v *Viewport) Path {
	p.Start = v.DocumentToScreen(p.Start)
	p.Control1 = v.DocumentToScreen(p.Control1)
	p.Control2 = v.DocumentToScreen(p.Control2)
	p.End = v.DocumentToScreen(p.End)
	return p
}

// DistanceTo approximates the shortest distance from q to the curve by
// measuring against its sampled polyline.
func (p Path) DistanceTo(q Point) float64 {
	pts := p.Sample(pathSamples)
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		best = math.Min(best, segmentDistance(q, pts[i-1], pts[i]))
	}
	return best
}

// HitTest reports whether q is within tolerance of the curve.
func (p Path) HitTest(q Point, tolerance float64) bool {
	return p.DistanceTo(q) <= tolerance
}

func segmentDistance(q, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return q.Dist(a)
	}
	t := clamp(((q.X-a.X)*ab.X+(q.Y-a.Y)*ab.Y)/l2, 0, 1)
	return q.Dist(a.Add(ab.Scale(t)))
}

// RoutedConnection pairs a connection with its current path.
type RoutedConnection struct {
	Connection Connection
	Path       Path
}

// EdgeRouter draws connections as curves that leave and enter node borders
// perpendicularly. Curvature grows with anchor distance and saturates at
// CurvatureCap screen units.
type EdgeRouter struct {
	geometry GeometryProvider
	viewport *Viewport

	Curvature    float64
	CurvatureCap float64
	HitTolerance float64
	StrokeWidth  float64
}

// NewEdgeRouter creates a router. viewport may be nil, in which case the
// curvature cap is applied in document units.
func NewEdgeRouter(geometry GeometryProvider, viewport *Viewport) *EdgeRouter {
	return &EdgeRouter{
		geometry:     geometry,
		viewport:     viewport,
		Curvature:    defaultCurvature,
		CurvatureCap: defaultCurvatureCap,
		HitTolerance: defaultHitTolerance,
		StrokeWidth:  defaultStrokeWidth,
	}
}

// Route builds the path between two nodes. It returns false when either
// node no longer exists.
func (r *EdgeRouter) Route(fromID, toID string) (Path, bool) {
	a, ok := r.geometry.Bounds(fromID)
	if !ok {
		return Path{}, false
	}
	b, ok := r.geometry.Bounds(toID)
	if !ok {
		return Path{}, false
	}
	return r.RouteRects(a, b), true
}

// RouteRects builds the path between two boxes.
func (r *EdgeRouter) RouteRects(a, b Rect) Path {
	sa, sb := facingSides(a.Center(), b.Center())
	start := a.SideMidpoint(sa)
	end := b.SideMidpoint(sb)

	dist := start.Dist(end)
	if dist == 0 {
		return stubPath(start, sa, sb)
	}
	curv := r.curvature(dist)
	return Path{
		Start:     start,
		Control1:  start.Add(sa.Normal().Scale(curv)),
		Control2:  end.Add(sb.Normal().Scale(curv)),
		End:       end,
		StartSide: sa,
		EndSide:   sb,
	}
}

// RoutePreview builds the live path from a node to a cursor position given
// in document space. The cursor has no side, so its control point lies on
// the line back toward the fixed anchor.
func (r *EdgeRouter) RoutePreview(fromID string, cursor Point) (Path, bool) {
	a, ok := r.geometry.Bounds(fromID)
	if !ok {
		return Path{}, false
	}
	sa, _ := facingSides(a.Center(), cursor)
	start := a.SideMidpoint(sa)

	dist := start.Dist(cursor)
	if dist == 0 {
		return stubPath(start, sa, SideNone), true
	}
	curv := r.curvature(dist)
	back := start.Sub(cursor).Scale(1 / dist)
	return Path{
		Start:     start,
		Control1:  start.Add(sa.Normal().Scale(curv)),
		Control2:  cursor.Add(back.Scale(curv)),
		End:       cursor,
		StartSide: sa,
	}, true
}

// RouteAll routes every connection whose endpoints both exist.
func (r *EdgeRouter) RouteAll(conns []Connection) []RoutedConnection {
	out := make([]RoutedConnection, 0, len(conns))
	for _, c := range conns {
		if p, ok := r.Route(c.From, c.To); ok {
			out = append(out, RoutedConnection{Connection: c, Path: p})
		}
	}
	return out
}

// ConnectionAt returns the first connection whose screen-space path passes
// within HitTolerance of the screen point.
func (r *EdgeRouter) ConnectionAt(conns []Connection, screen Point) (Connection, bool) {
	best := math.Inf(1)
	var hit Connection
	for _, rc := range r.RouteAll(conns) {
		p := rc.Path
		if r.viewport != nil {
			p = p.ToScreen(r.viewport)
		}
		if !p.HitTest(screen, r.HitTolerance) {
			continue
		}
		if d := p.DistanceTo(screen); d < best {
			best = d
			hit = rc.Connection
		}
	}
	return hit, !math.IsInf(best, 1)
}

func (r *EdgeRouter) curvature(dist float64) float64 {
	limit := r.CurvatureCap
	if r.viewport != nil && r.viewport.Scale > 0 {
		limit /= r.viewport.Scale
	}
	return math.Min(dist*r.Curvature, limit)
}

// facingSides classifies the connection between two centers. Mostly
// horizontal pairs (ties included) use the left/right sides facing each
// other; otherwise top/bottom.
func facingSides(a, b Point) (Side, Side) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return SideRight, SideLeft
		}
		return SideLeft, SideRight
	}
	if dy > 0 {
		return SideBottom, SideTop
	}
	return SideTop, SideBottom
}

func stubPath(at Point, sa, sb Side) Path {
	return Path{Start: at, Control1: at, Control2: at, End: at, StartSide: sa, EndSide: sb, Stub: true}
}
