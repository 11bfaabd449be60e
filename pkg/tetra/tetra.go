// Package tetra draws the tetrahedron illustration: four labelled vertices,
// six edges with the hidden ones dashed, seen from a fixed 3D viewpoint.
package tetra

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/jbeda/geom"

	"github.com/ha1tch/provfig/pkg/render"
)

// Vec3 is a point in model space.
type Vec3 struct {
	X, Y, Z float64
}

// Vertices A, B, C and D.
var Vertices = [4]Vec3{
	{0, 1, -1},
	{1, -1, -1},
	{0, 0, 1},
	{1 - math.Sqrt(3), -0.4, -1},
}

// Letters name the vertices.
var Letters = [4]string{"A", "B", "C", "D"}

// Descriptions are the phrases written next to each vertex.
var Descriptions = [4]string{
	"Rules of\nthe Game",
	"Resources and\nPower Dynamics",
	"Actors and\nCoalitions",
	"Discourses",
}

// TextOffsets move each description away from its vertex, in model units.
var TextOffsets = [4]Vec3{
	{-0.4, 0.1, 0},
	{0.5, 0, 0.25},
	{-0.45, 0.1, -0.15},
	{0.5, 0, 0.21},
}

// Faces are vertex index triplets.
var Faces = [4][3]int{
	{0, 1, 2},
	{0, 1, 3},
	{0, 2, 3},
	{1, 2, 3},
}

// Edge joins two vertices, A < B.
type Edge struct {
	A, B int
}

// Hidden lists the edges drawn dashed for the default view: every edge
// that meets D.
var Hidden = map[Edge]bool{
	{1, 3}: true,
	{0, 3}: true,
	{2, 3}: true,
}

// Edges returns the unique edges of Faces in sorted order.
func Edges() []Edge {
	seen := make(map[Edge]bool)
	var out []Edge
	for _, f := range Faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			e := Edge{a, b}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Options controls the illustration.
type Options struct {
	Elev, Azim float64    // view angles in degrees
	Size       [2]float64 // inches
	DPI        float64
	ShowLabels bool // vertex letters
	ShowText   bool // descriptions
	ShowAxes   bool // the limits cube with axis names
	FontSize   float64
	LabelColor string
	TextColor  string
	LineWidth  float64
	VertexSize float64 // marker area in square points
}

// DefaultOptions returns the published view.
func DefaultOptions() Options {
	return Options{
		Elev:       20,
		Azim:       45,
		Size:       [2]float64{10, 8},
		DPI:        450,
		ShowText:   true,
		FontSize:   13,
		LabelColor: "darkred",
		LineWidth:  1.8,
		VertexSize: 70,
		TextColor:  "black",
	}
}

// View is an orthographic projection looking at the origin from the
// direction given by elevation and azimuth.
type View struct {
	sinE, cosE, sinA, cosA float64
	mid                    Vec3
	half                   float64
}

// NewView builds a view whose limits cube is centred on the vertices and
// spans their largest extent, so all three axes share one scale.
func NewView(elev, azim float64) View {
	e, a := elev*math.Pi/180, azim*math.Pi/180
	lo, hi := Vertices[0], Vertices[0]
	var sum Vec3
	for _, v := range Vertices {
		lo = Vec3{math.Min(lo.X, v.X), math.Min(lo.Y, v.Y), math.Min(lo.Z, v.Z)}
		hi = Vec3{math.Max(hi.X, v.X), math.Max(hi.Y, v.Y), math.Max(hi.Z, v.Z)}
		sum = Vec3{sum.X + v.X, sum.Y + v.Y, sum.Z + v.Z}
	}
	n := float64(len(Vertices))
	half := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z)) / 2
	return View{
		sinE: math.Sin(e), cosE: math.Cos(e),
		sinA: math.Sin(a), cosA: math.Cos(a),
		mid:  Vec3{sum.X / n, sum.Y / n, sum.Z / n},
		half: half,
	}
}

// Project maps v to screen coordinates, y up, in units of the limits cube
// half width.
func (w View) Project(v Vec3) geom.Coord {
	x := (v.X - w.mid.X) / w.half
	y := (v.Y - w.mid.Y) / w.half
	z := (v.Z - w.mid.Z) / w.half
	return geom.Coord{
		X: -w.sinA*x + w.cosA*y,
		Y: -w.sinE*w.cosA*x - w.sinE*w.sinA*y + w.cosE*z,
	}
}

// Depth returns the distance of v towards the viewer.
func (w View) Depth(v Vec3) float64 {
	return w.cosE*w.cosA*v.X + w.cosE*w.sinA*v.Y + w.sinE*v.Z
}

// cubeCorners returns the corners of the limits cube.
func (w View) cubeCorners() []Vec3 {
	var out []Vec3
	for _, dx := range []float64{-1, 1} {
		for _, dy := range []float64{-1, 1} {
			for _, dz := range []float64{-1, 1} {
				out = append(out, Vec3{
					w.mid.X + dx*w.half,
					w.mid.Y + dy*w.half,
					w.mid.Z + dz*w.half,
				})
			}
		}
	}
	return out
}

// Bounds returns the screen rectangle of the limits cube. Framing on the
// cube keeps the drawing scale independent of the viewing angle.
func (w View) Bounds() geom.Rect {
	corners := w.cubeCorners()
	p := w.Project(corners[0])
	r := geom.Rect{Min: p, Max: p}
	for _, c := range corners[1:] {
		r.ExpandToContainCoord(w.Project(c))
	}
	return r
}

// screen fits the view bounds into a page with a margin.
type screen struct {
	bounds geom.Rect
	scale  float64
	origin geom.Coord
}

func newScreen(b geom.Rect, w, h, margin float64) screen {
	s := math.Min((w-2*margin)/b.Width(), (h-2*margin)/b.Height())
	return screen{
		bounds: b,
		scale:  s,
		origin: geom.Coord{
			X: (w - b.Width()*s) / 2,
			Y: (h - b.Height()*s) / 2,
		},
	}
}

func (s screen) pt(c geom.Coord) render.Point {
	return render.Point{
		X: s.origin.X + (c.X-s.bounds.Min.X)*s.scale,
		Y: s.origin.Y + (s.bounds.Max.Y-c.Y)*s.scale,
	}
}

// Draw paints the illustration onto c.
func Draw(c render.Canvas, opts Options) error {
	view := NewView(opts.Elev, opts.Azim)
	w, h := c.Size()
	scr := newScreen(view.Bounds(), w, h, 0.05*math.Min(w, h))
	at := func(v Vec3) render.Point { return scr.pt(view.Project(v)) }

	black, err := render.ParseColor("black")
	if err != nil {
		return err
	}

	if opts.ShowAxes {
		drawAxes(c, view, at)
	}

	solid := render.Stroke{Color: black, Width: opts.LineWidth}
	dashed := render.Stroke{Color: black, Width: opts.LineWidth, Dash: []float64{5 * opts.LineWidth, 5 * opts.LineWidth}}
	for _, e := range Edges() {
		st := solid
		if Hidden[e] {
			st = dashed
		}
		c.Polyline([]render.Point{at(Vertices[e.A]), at(Vertices[e.B])}, st)
	}

	r := math.Sqrt(opts.VertexSize) / 2
	for _, v := range Vertices {
		p := at(v)
		c.Circle(p.X, p.Y, r, black)
	}

	if opts.ShowLabels {
		col, err := render.ParseColor(opts.LabelColor)
		if err != nil {
			return fmt.Errorf("label color: %w", err)
		}
		for i, v := range Vertices {
			p := at(v)
			c.Text(render.Text{X: p.X, Y: p.Y, S: Letters[i], Size: 12, Bold: true, Color: col})
		}
	}

	if opts.ShowText {
		col, err := render.ParseColor(opts.TextColor)
		if err != nil {
			return fmt.Errorf("text color: %w", err)
		}
		for i, v := range Vertices {
			o := TextOffsets[i]
			p := at(Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z})
			c.Text(render.Text{
				X: p.X, Y: p.Y, S: Descriptions[i], Size: opts.FontSize,
				Bold: true, Color: col, VAlign: render.AlignEnd,
			})
		}
	}
	return nil
}

func drawAxes(c render.Canvas, view View, at func(Vec3) render.Point) {
	grey, _ := render.ParseColor("#b0b0b0")
	black, _ := render.ParseColor("black")
	corners := view.cubeCorners()
	st := render.Stroke{Color: grey, Width: 0.8}
	for i := range corners {
		for j := i + 1; j < len(corners); j++ {
			// Corners differ in exactly one axis along an edge.
			if differing(corners[i], corners[j]) == 1 {
				c.Polyline([]render.Point{at(corners[i]), at(corners[j])}, st)
			}
		}
	}
	m, h := view.mid, view.half
	names := []struct {
		s string
		v Vec3
	}{
		{"X", Vec3{m.X, m.Y - 1.25*h, m.Z - h}},
		{"Y", Vec3{m.X + 1.25*h, m.Y, m.Z - h}},
		{"Z", Vec3{m.X - 1.15*h, m.Y - 1.15*h, m.Z}},
	}
	for _, n := range names {
		p := at(n.v)
		c.Text(render.Text{X: p.X, Y: p.Y, S: n.s, Size: 11, Color: black})
	}
}

func differing(a, b Vec3) int {
	n := 0
	if a.X != b.X {
		n++
	}
	if a.Y != b.Y {
		n++
	}
	if a.Z != b.Z {
		n++
	}
	return n
}

// RenderFile draws the illustration to path; the format follows the
// extension.
func RenderFile(ctx context.Context, path string, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format, err := render.FormatFor(path)
	if err != nil {
		return err
	}
	c, err := render.NewCanvas(format, opts.Size[0]*render.PointsPerInch, opts.Size[1]*render.PointsPerInch, opts.DPI)
	if err != nil {
		return err
	}
	if err := Draw(c, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
