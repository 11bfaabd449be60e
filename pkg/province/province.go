// Package province provides the province record, acronym tables and the
// immutable polygon dataset every figure is drawn from.
package province

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/geom"
)

// Province is one polygon record of the dataset.
type Province struct {
	Name       string            // bilingual official name
	Acronym    string            // standardized code, empty when unmapped
	Geometry   geom.Polygonal    // projected coordinates
	Attributes map[string]string // all attribute columns as read
}

// Centroid returns the area-weighted centroid of the province geometry.
func (p Province) Centroid() geom.Point {
	return p.Geometry.Centroid()
}

// Labelled reports whether the province carries an acronym.
func (p Province) Labelled() bool {
	return p.Acronym != ""
}

// CRS describes the coordinate reference system of a dataset.
type CRS struct {
	Name       string // human readable name, e.g. "NAD83 / Statistics Canada Lambert"
	Authority  string // e.g. "EPSG"
	Code       int    // authority code, 0 when unknown
	Definition string // WKT or proj string, may be empty
}

// String returns "AUTH:CODE" when known, else the name.
func (c CRS) String() string {
	if c.Authority != "" && c.Code != 0 {
		return fmt.Sprintf("%s:%d", strings.ToUpper(c.Authority), c.Code)
	}
	if c.Name != "" {
		return c.Name
	}
	return "unknown"
}

// Bounds is an axis-aligned extent in dataset units.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns MaxX-MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY-MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Empty reports whether no point was ever added.
func (b Bounds) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

func emptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

func (b *Bounds) extend(g geom.Geom) {
	gb := g.Bounds()
	if gb == nil {
		return
	}
	b.MinX = math.Min(b.MinX, gb.Min.X)
	b.MinY = math.Min(b.MinY, gb.Min.Y)
	b.MaxX = math.Max(b.MaxX, gb.Max.X)
	b.MaxY = math.Max(b.MaxY, gb.Max.Y)
}

// Dataset is an ordered, read-only collection of provinces.
type Dataset struct {
	provinces []Province
	crs       CRS
	source    string
	layer     string
	bounds    Bounds
}

// NewDataset builds a dataset from provinces. The slice is copied.
func NewDataset(provinces []Province, crs CRS, source string) *Dataset {
	ps := make([]Province, len(provinces))
	copy(ps, provinces)

	b := emptyBounds()
	for _, p := range ps {
		if p.Geometry != nil {
			b.extend(p.Geometry)
		}
	}
	return &Dataset{
		provinces: ps,
		crs:       crs,
		source:    source,
		bounds:    b,
	}
}

// WithLayer returns a copy of the dataset carrying a layer name, used by
// writers that need a table name.
func (d *Dataset) WithLayer(layer string) *Dataset {
	cp := *d
	cp.layer = layer
	return &cp
}

// Layer returns the layer name, defaulting to "provinces".
func (d *Dataset) Layer() string {
	if d.layer == "" {
		return "provinces"
	}
	return d.layer
}

// Provinces returns all records in dataset order.
func (d *Dataset) Provinces() []Province {
	out := make([]Province, len(d.provinces))
	copy(out, d.provinces)
	return out
}

// Labelled returns the records that carry an acronym, in dataset order.
func (d *Dataset) Labelled() []Province {
	var out []Province
	for _, p := range d.provinces {
		if p.Labelled() {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.provinces) }

// CRS returns the coordinate reference system.
func (d *Dataset) CRS() CRS { return d.crs }

// Source returns the path the dataset was read from.
func (d *Dataset) Source() string { return d.source }

// Bounds returns the total bounds of all geometries.
func (d *Dataset) Bounds() Bounds { return d.bounds }

// BoundsOf returns the total bounds of the provinces with the given
// acronyms. ok is false when none matched.
func (d *Dataset) BoundsOf(acronyms []string) (b Bounds, ok bool) {
	want := make(map[string]bool, len(acronyms))
	for _, a := range acronyms {
		want[a] = true
	}
	b = emptyBounds()
	for _, p := range d.provinces {
		if p.Geometry != nil && want[p.Acronym] {
			b.extend(p.Geometry)
			ok = true
		}
	}
	return b, ok
}

// Spans returns the x and y span of the total bounds. A zero span is
// reported as 1 so it can be used as a divisor and a scale.
func (d *Dataset) Spans() (xspan, yspan float64) {
	return spans(d.bounds)
}

func spans(b Bounds) (float64, float64) {
	xspan, yspan := b.Width(), b.Height()
	if xspan == 0 || b.Empty() {
		xspan = 1
	}
	if yspan == 0 || b.Empty() {
		yspan = 1
	}
	return xspan, yspan
}

// Lookup returns the first province with the given acronym.
func (d *Dataset) Lookup(acronym string) (Province, bool) {
	for _, p := range d.provinces {
		if p.Acronym == acronym && acronym != "" {
			return p, true
		}
	}
	return Province{}, false
}

// Acronyms returns the distinct acronyms present, in dataset order.
func (d *Dataset) Acronyms() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range d.provinces {
		if p.Acronym != "" && !seen[p.Acronym] {
			seen[p.Acronym] = true
			out = append(out, p.Acronym)
		}
	}
	return out
}

// Map returns a new dataset whose geometries are replaced by fn.
func (d *Dataset) Map(fn func(Province) (Province, error)) (*Dataset, error) {
	out := make([]Province, 0, len(d.provinces))
	for _, p := range d.provinces {
		np, err := fn(p)
		if err != nil {
			return nil, err
		}
		out = append(out, np)
	}
	nd := NewDataset(out, d.crs, d.source)
	nd.layer = d.layer
	return nd, nil
}

// VertexCount returns the number of ring vertices of g, counting the
// closing vertex of each ring.
func VertexCount(g geom.Polygonal) int {
	n := 0
	for _, poly := range g.Polygons() {
		for _, ring := range poly {
			n += len(ring)
		}
	}
	return n
}
