package simplify

import (
	"math"
	"sort"

	"github.com/ctessum/geom"
)

type segment struct {
	a, b       geom.Point
	ring, idx  int
	ringLen    int // segments in the ring
	minX, maxX float64
}

func ringSegments(ring geom.Path, r int) []segment {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	if n < 2 {
		return nil
	}
	segs := make([]segment, 0, n)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		if a == b {
			continue
		}
		segs = append(segs, segment{
			a: a, b: b, ring: r, idx: i, ringLen: n,
			minX: math.Min(a.X, b.X), maxX: math.Max(a.X, b.X),
		})
	}
	return segs
}

// adjacent reports whether two segments of the same ring share a vertex
// by construction.
func adjacent(s, t segment) bool {
	if s.ring != t.ring {
		return false
	}
	d := s.idx - t.idx
	if d < 0 {
		d = -d
	}
	return d <= 1 || d == s.ringLen-1
}

// SelfIntersects reports whether any two edges of the polygon cross or
// overlap. Edges that merely touch at a vertex do not count.
func SelfIntersects(poly geom.Polygon) bool {
	var segs []segment
	for r, ring := range poly {
		segs = append(segs, ringSegments(ring, r)...)
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].minX < segs[j].minX })

	for i := range segs {
		for j := i + 1; j < len(segs) && segs[j].minX <= segs[i].maxX; j++ {
			if adjacent(segs[i], segs[j]) {
				if collinearOverlap(segs[i], segs[j]) {
					return true
				}
				continue
			}
			if crosses(segs[i], segs[j]) {
				return true
			}
		}
	}
	return false
}

func orient(a, b, c geom.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// crosses reports a proper crossing or a collinear overlap of positive
// length.
func crosses(s, t segment) bool {
	d1 := sign(orient(s.a, s.b, t.a))
	d2 := sign(orient(s.a, s.b, t.b))
	d3 := sign(orient(t.a, t.b, s.a))
	d4 := sign(orient(t.a, t.b, s.b))
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return collinearOverlap(s, t)
}

// collinearOverlap reports whether both segments lie on one line and share
// more than a single point.
func collinearOverlap(s, t segment) bool {
	if orient(s.a, s.b, t.a) != 0 || orient(s.a, s.b, t.b) != 0 {
		return false
	}
	// Project on the dominant axis.
	proj := func(p geom.Point) float64 { return p.X }
	if math.Abs(s.b.X-s.a.X) < math.Abs(s.b.Y-s.a.Y) {
		proj = func(p geom.Point) float64 { return p.Y }
	}
	s0, s1 := proj(s.a), proj(s.b)
	if s0 > s1 {
		s0, s1 = s1, s0
	}
	t0, t1 := proj(t.a), proj(t.b)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return math.Min(s1, t1)-math.Max(s0, t0) > 0
}
