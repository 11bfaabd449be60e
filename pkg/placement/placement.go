// Package placement decides where each province label is drawn.
//
// A label point is chosen by strict precedence: an explicit coordinate
// override, a manual offset table entry, the Atlantic heuristic, and
// finally the polygon centroid. An additive label offset is applied on top
// of whichever rule won. Malformed coordinates never fail a render; they
// fall through to the next rule with a warning.
package placement

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/ctessum/geom"

	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/province"
)

// Placement sources, as printed in the coordinate report.
const (
	SourceOverride = "override"
	SourceManual   = "manual offset"
	SourceAtlantic = "atlantic"
	SourceCentroid = "centroid"

	suffixOffset = " + label offset"
)

// AtlanticMultipliers scale the vertical Atlantic offset per province so
// the four small neighbouring labels fan out instead of stacking.
var AtlanticMultipliers = map[string]float64{
	"NL": 1.0,
	"PE": 1.5,
	"NS": -0.5,
	"NB": -1.0,
}

// Placement is the resolved label position of one province.
type Placement struct {
	Acronym  string
	Label    geom.Point // where the text is centred
	Centroid geom.Point
	Source   string
	Leader   bool       // draw a leader line from Anchor to Label
	Anchor   geom.Point // leader line start
}

// Resolver resolves label positions for one dataset and figure.
type Resolver struct {
	ds        *province.Dataset
	fig       *figure.Figure
	xOff      float64
	yOff      float64
	threshold float64
	log       *slog.Logger
	warned    map[string]bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger routes fallback warnings to l.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// NewResolver prepares a resolver. Atlantic offsets are fractions of the
// full dataset span, not of the drawn extent.
func NewResolver(ds *province.Dataset, fig *figure.Figure, opts ...Option) *Resolver {
	xspan, yspan := ds.Spans()
	r := &Resolver{
		ds:        ds,
		fig:       fig,
		xOff:      xspan * fig.AtlanticOffset[0],
		yOff:      yspan * fig.AtlanticOffset[1],
		threshold: fig.LeaderThreshold,
		log:       slog.Default(),
		warned:    make(map[string]bool),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// warnInvalid logs a malformed coordinate once per field.
func (r *Resolver) warnInvalid(acr, field string, c figure.Coord) {
	key := acr + "." + field
	if r.warned[key] {
		return
	}
	r.warned[key] = true
	r.log.Warn("label_coordinate_invalid",
		"acronym", acr,
		"field", field,
		"value", fmt.Sprintf("%v", c.Raw()),
		"fallback", "next placement rule",
	)
}

// coord returns the value of c when it is set and valid. A set but
// malformed value is reported.
func (r *Resolver) coord(acr, field string, c figure.Coord) (geom.Point, bool) {
	if !c.IsSet() {
		return geom.Point{}, false
	}
	x, y, ok := c.Value()
	if !ok {
		r.warnInvalid(acr, field, c)
		return geom.Point{}, false
	}
	return geom.Point{X: x, Y: y}, true
}

// Resolve places the label of p.
func (r *Resolver) Resolve(p province.Province) Placement {
	acr := p.Acronym
	c := p.Centroid()
	pl := Placement{Acronym: acr, Centroid: c}
	style := r.fig.Styles[acr]

	if pt, ok := r.coord(acr, "xy", style.XY); ok {
		pl.Label, pl.Source = pt, SourceOverride
	} else if pt, ok := r.coord(acr, "atlantic_manual", r.fig.AtlanticManual[acr]); ok {
		pl.Label, pl.Source = pt, SourceManual
	} else if k, ok := AtlanticMultipliers[acr]; ok && province.IsAtlantic(acr) {
		pl.Label = geom.Point{X: c.X + r.xOff, Y: c.Y + k*r.yOff}
		pl.Source = SourceAtlantic
	} else {
		pl.Label, pl.Source = c, SourceCentroid
	}

	if d, ok := r.coord(acr, "label_offset", style.LabelOffset); ok {
		pl.Label.X += d.X
		pl.Label.Y += d.Y
		pl.Source += suffixOffset
	}

	if style.LeaderLine {
		anchor := c
		if pt, ok := r.coord(acr, "line_start", style.LineStart); ok {
			anchor = pt
		}
		pl.Anchor = anchor
		pl.Leader = beyond(pl.Label.X, pl.Label.Y, anchor.X, anchor.Y, r.threshold)
	}
	return pl
}

// ResolveAll places every labelled province in dataset order.
func (r *Resolver) ResolveAll() []Placement {
	var out []Placement
	for _, p := range r.ds.Labelled() {
		out = append(out, r.Resolve(p))
	}
	return out
}

const reportRule = "======================================================================"

// Report writes the CRS and a fixed-width coordinate table. The output
// depends only on its inputs, so two runs can be diffed.
func Report(w io.Writer, crs province.CRS, placements []Placement) error {
	var b strings.Builder
	fmt.Fprintf(&b, "CRS: %s\n", crs)
	fmt.Fprintf(&b, "\n%s\nPROVINCE LABEL COORDINATES\n%s\n", reportRule, reportRule)
	for _, p := range placements {
		fmt.Fprintf(&b, "%-4s: (%12.2f, %12.2f)  [%s]\n", p.Acronym, p.Label.X, p.Label.Y, p.Source)
	}
	fmt.Fprintf(&b, "%s\n\n", reportRule)
	_, err := io.WriteString(w, b.String())
	return err
}

// Overlap is a pair of label boxes that intersect.
type Overlap struct {
	A, B string
	Area float64
}

// Overlaps returns every pair of labels whose boxes intersect. size gives
// the box of a placement in map units. Pairs are ordered by acronym.
func Overlaps(placements []Placement, size func(Placement) (w, h float64)) []Overlap {
	boxes := make([]Rect, len(placements))
	for i, p := range placements {
		w, h := size(p)
		boxes[i] = Rect{X: p.Label.X, Y: p.Label.Y, W: w, H: h}
	}

	var out []Overlap
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			if area := RectOverlap(boxes[i], boxes[j]); area > 0 {
				a, b := placements[i].Acronym, placements[j].Acronym
				if b < a {
					a, b = b, a
				}
				out = append(out, Overlap{A: a, B: b, Area: area})
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
