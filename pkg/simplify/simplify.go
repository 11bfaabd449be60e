// Package simplify reduces the vertex count of province datasets while
// keeping every ring simple.
package simplify

import (
	"context"
	"log/slog"

	"github.com/ctessum/geom"

	"github.com/ha1tch/provfig/pkg/province"
)

// Stats summarizes a simplification run.
type Stats struct {
	Features       int
	VerticesBefore int
	VerticesAfter  int
}

// Reduction returns the fraction of vertices removed.
func (s Stats) Reduction() float64 {
	if s.VerticesBefore == 0 {
		return 0
	}
	return 1 - float64(s.VerticesAfter)/float64(s.VerticesBefore)
}

// Dataset simplifies every geometry of ds with the given tolerance in
// dataset units. A tolerance of zero or less returns an identical copy.
// Attributes, acronyms and CRS are carried over unchanged.
func Dataset(ctx context.Context, ds *province.Dataset, tolerance float64) (*province.Dataset, Stats, error) {
	var st Stats
	out, err := ds.Map(func(p province.Province) (province.Province, error) {
		if err := ctx.Err(); err != nil {
			return p, err
		}
		st.Features++
		if p.Geometry == nil {
			return p, nil
		}
		before := province.VertexCount(p.Geometry)
		g := simplifyGeometry(p.Geometry, tolerance, slog.With("feature", featureName(p)))
		after := province.VertexCount(g)
		st.VerticesBefore += before
		st.VerticesAfter += after
		slog.Debug("feature_simplified", "feature", featureName(p), "before", before, "after", after)

		np := p
		np.Geometry = g
		return np, nil
	})
	if err != nil {
		return nil, Stats{}, err
	}
	return out, st, nil
}

func featureName(p province.Province) string {
	if p.Acronym != "" {
		return p.Acronym
	}
	if p.Name != "" {
		return p.Name
	}
	return "feature"
}

// Geometry simplifies one polygonal geometry. The result never has more
// vertices than the input, and a ring that would collapse below a
// triangle keeps its original vertices. A tolerance of zero or less
// returns a copy. Self-intersecting input polygons are kept unchanged.
func Geometry(g geom.Polygonal, tolerance float64) geom.Polygonal {
	return simplifyGeometry(g, tolerance, slog.Default())
}

func simplifyGeometry(g geom.Polygonal, tolerance float64, log *slog.Logger) geom.Polygonal {
	polys := g.Polygons()
	out := make(geom.MultiPolygon, 0, len(polys))
	for i, poly := range polys {
		if tolerance <= 0 || degenerate(poly) {
			out = append(out, copyPolygon(poly))
			continue
		}
		// The simplifier does not terminate reliably on crossing rings.
		if SelfIntersects(poly) {
			log.Warn("self_intersecting_polygon_kept", "polygon", i)
			out = append(out, copyPolygon(poly))
			continue
		}
		sp, ok := poly.Simplify(tolerance).(geom.Polygon)
		if !ok || len(sp) != len(poly) {
			out = append(out, copyPolygon(poly))
			continue
		}
		np := make(geom.Polygon, len(poly))
		for j := range poly {
			if len(sp[j]) < 4 || len(sp[j]) > len(poly[j]) {
				np[j] = copyPath(poly[j])
			} else {
				np[j] = sp[j]
			}
		}
		if SelfIntersects(np) {
			out = append(out, copyPolygon(poly))
			continue
		}
		out = append(out, np)
	}

	if _, single := g.(geom.Polygon); single && len(out) == 1 {
		return out[0]
	}
	return out
}

// degenerate reports rings too short to simplify. The simplifier does not
// terminate on them.
func degenerate(poly geom.Polygon) bool {
	for _, r := range poly {
		if len(r) < 4 {
			return true
		}
	}
	return false
}

func copyPath(p geom.Path) geom.Path {
	cp := make(geom.Path, len(p))
	copy(cp, p)
	return cp
}

func copyPolygon(p geom.Polygon) geom.Polygon {
	cp := make(geom.Polygon, len(p))
	for i, r := range p {
		cp[i] = copyPath(r)
	}
	return cp
}
