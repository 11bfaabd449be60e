package render

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/province"
)

// PointsPerInch converts figure inches to canvas points.
const PointsPerInch = 72.0

// Extent is the shared map window every panel shows, in dataset units.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
}

func (e Extent) Width() float64  { return e.MaxX - e.MinX }
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// ComputeExtent pads the dataset bounds (or the bounds of the figure's
// extent acronyms) by Pad of the span on every side and adds NorthExtra of
// the y span at the top. Acronyms that match nothing fall back to the full
// dataset.
func ComputeExtent(ds *province.Dataset, fig *figure.Figure) Extent {
	b := ds.Bounds()
	if len(fig.ExtentAcronyms) > 0 {
		if sb, ok := ds.BoundsOf(fig.ExtentAcronyms); ok {
			b = sb
		}
	}
	if b.Empty() {
		return Extent{0, 0, 1, 1}
	}
	xspan, yspan := b.Width(), b.Height()
	if xspan == 0 {
		xspan = 1
	}
	if yspan == 0 {
		yspan = 1
	}
	return Extent{
		MinX: b.MinX - fig.Pad*xspan,
		MaxX: b.MaxX + fig.Pad*xspan,
		MinY: b.MinY - fig.Pad*yspan,
		MaxY: b.MaxY + fig.Pad*yspan + fig.NorthExtra*yspan,
	}
}

// Box is a rectangle on the page in points, top left origin.
type Box struct {
	X, Y, W, H float64
}

// Frac returns the page point at fractions (fx, fy) of the box, where fy
// is measured upward from the bottom edge like axes coordinates.
func (b Box) Frac(fx, fy float64) Point {
	return Point{X: b.X + fx*b.W, Y: b.Y + (1-fy)*b.H}
}

// mapper converts dataset coordinates into a page box with equal aspect.
type mapper struct {
	ext    Extent
	scale  float64
	ox, oy float64 // page position of (ext.MinX, ext.MaxY)
	box    Box     // the exact drawn map area
}

func newMapper(ext Extent, area Box) mapper {
	w, h := ext.Width(), ext.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	s := math.Min(area.W/w, area.H/h)
	if s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		s = 1
	}
	dw, dh := w*s, h*s
	ox := area.X + (area.W-dw)/2
	oy := area.Y + (area.H-dh)/2
	return mapper{
		ext:   ext,
		scale: s,
		ox:    ox,
		oy:    oy,
		box:   Box{X: ox, Y: oy, W: dw, H: dh},
	}
}

// pt maps a dataset coordinate to the page.
func (m mapper) pt(x, y float64) Point {
	return Point{
		X: m.ox + (x-m.ext.MinX)*m.scale,
		Y: m.oy + (m.ext.MaxY-y)*m.scale,
	}
}

func (m mapper) geomPt(p geom.Point) Point {
	return m.pt(p.X, p.Y)
}

// length converts a page length in points back to dataset units.
func (m mapper) length(pts float64) float64 {
	return pts / m.scale
}

// rings converts a polygonal geometry into page rings, one slice per
// polygon so holes are painted with the even-odd rule.
func (m mapper) rings(g geom.Polygonal) [][][]Point {
	var out [][][]Point
	for _, poly := range g.Polygons() {
		var rs [][]Point
		for _, ring := range poly {
			r := make([]Point, len(ring))
			for i, p := range ring {
				r[i] = m.pt(p.X, p.Y)
			}
			rs = append(rs, r)
		}
		out = append(out, rs)
	}
	return out
}

// Page layout constants in points.
const (
	titleMargin  = 28.0 // room above each map for its title
	legendMargin = 0.22 // fraction of the cell reserved for a panel legend hanging outside the map
	cellInset    = 6.0
)

// cellBox returns grid cell i of a rows x cols page in row-major order.
func cellBox(i, rows, cols int, pageW, pageH float64) Box {
	cw, ch := pageW/float64(cols), pageH/float64(rows)
	r, c := i/cols, i%cols
	return Box{X: float64(c) * cw, Y: float64(r) * ch, W: cw, H: ch}
}

// axesBox returns the map area of a cell. Panels whose legend hangs right
// of the map (anchor x > 1) give up part of their width to it.
func axesBox(cell Box, legendOutside bool) Box {
	b := Box{
		X: cell.X + cellInset,
		Y: cell.Y + titleMargin,
		W: cell.W - 2*cellInset,
		H: cell.H - titleMargin - cellInset,
	}
	if legendOutside {
		b.W *= 1 - legendMargin
	}
	return b
}
