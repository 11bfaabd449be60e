package simplify

import (
	"context"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/provfig/pkg/province"
)

// densePath walks a size x size square in steps of 1, closed.
func densePath(x0, y0, size float64) geom.Path {
	var p geom.Path
	for x := 0.0; x < size; x++ {
		p = append(p, geom.Point{X: x0 + x, Y: y0})
	}
	for y := 0.0; y < size; y++ {
		p = append(p, geom.Point{X: x0 + size, Y: y0 + y})
	}
	for x := size; x > 0; x-- {
		p = append(p, geom.Point{X: x0 + x, Y: y0 + size})
	}
	for y := size; y > 0; y-- {
		p = append(p, geom.Point{X: x0, Y: y0 + y})
	}
	return append(p, p[0])
}

func bowtie() geom.Polygon {
	return geom.Polygon{{
		{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 0, Y: 0},
	}}
}

func testDataset() *province.Dataset {
	return province.NewDataset([]province.Province{
		{Name: "Ontario", Acronym: "ON", Geometry: geom.Polygon{densePath(0, 0, 20)},
			Attributes: map[string]string{"PREABBR": "Ont."}},
		{Name: "Quebec / Québec", Acronym: "QC", Geometry: geom.MultiPolygon{
			{densePath(30, 0, 10)},
			{densePath(50, 0, 10), densePath(52, 2, 4)},
		}, Attributes: map[string]string{"PREABBR": "Que."}},
		{Name: "nowhere"},
	}, province.CRS{Authority: "EPSG", Code: 3347}, "test.gpkg")
}

func TestZeroToleranceIsIdentity(t *testing.T) {
	ds := testDataset()
	out, st, err := Dataset(context.Background(), ds, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Features)
	assert.Equal(t, st.VerticesBefore, st.VerticesAfter)
	assert.Zero(t, st.Reduction())

	in, got := ds.Provinces(), out.Provinces()
	require.Len(t, got, len(in))
	for i := range in {
		if in[i].Geometry == nil {
			assert.Nil(t, got[i].Geometry)
			continue
		}
		assert.Equal(t, in[i].Geometry.Polygons(), got[i].Geometry.Polygons())
	}
	assert.Equal(t, ds.CRS(), out.CRS())
}

func TestZeroToleranceCopies(t *testing.T) {
	poly := geom.Polygon{densePath(0, 0, 5)}
	cp := Geometry(poly, -1).(geom.Polygon)
	cp[0][0] = geom.Point{X: 99, Y: 99}
	assert.Equal(t, geom.Point{X: 0, Y: 0}, poly[0][0])
}

func TestSimplifyReducesMonotonically(t *testing.T) {
	ds := testDataset()
	ctx := context.Background()

	prev := -1
	for _, tol := range []float64{0, 0.5, 1} {
		out, st, err := Dataset(ctx, ds, tol)
		require.NoError(t, err)
		assert.LessOrEqual(t, st.VerticesAfter, st.VerticesBefore)
		if prev >= 0 {
			assert.LessOrEqual(t, st.VerticesAfter, prev, "tolerance %g", tol)
		}
		prev = st.VerticesAfter

		for _, p := range out.Provinces() {
			if p.Geometry == nil {
				continue
			}
			for _, poly := range p.Geometry.Polygons() {
				assert.False(t, SelfIntersects(poly), "%s at %g", p.Acronym, tol)
				for _, ring := range poly {
					assert.GreaterOrEqual(t, len(ring), 4)
				}
			}
		}
	}

	_, st, err := Dataset(ctx, ds, 0.5)
	require.NoError(t, err)
	assert.Less(t, st.VerticesAfter, st.VerticesBefore)
	assert.Greater(t, st.Reduction(), 0.5)
}

func TestSimplifyKeepsShape(t *testing.T) {
	mp, ok := Geometry(geom.MultiPolygon{{densePath(0, 0, 10)}}, 0.5).(geom.MultiPolygon)
	require.True(t, ok)
	require.Len(t, mp, 1)
	assert.InDelta(t, 100, mp.Area(), 1e-9)
}

func TestSelfIntersectingKept(t *testing.T) {
	for _, tol := range []float64{0, 1} {
		ds := province.NewDataset([]province.Province{
			{Acronym: "MB", Geometry: bowtie()},
			{Acronym: "ON", Geometry: geom.Polygon{densePath(0, 0, 10)}},
		}, province.CRS{}, "bad")
		out, st, err := Dataset(context.Background(), ds, tol)
		require.NoError(t, err, "tolerance %g", tol)
		assert.Equal(t, 2, st.Features)

		mb, ok := out.Lookup("MB")
		require.True(t, ok)
		assert.Equal(t, bowtie(), mb.Geometry, "tolerance %g", tol)
	}
}

func TestZeroToleranceKeepsInvalidInput(t *testing.T) {
	g := Geometry(bowtie(), 0)
	assert.Equal(t, bowtie(), g)
}

func TestSelfIntersects(t *testing.T) {
	tests := []struct {
		name string
		poly geom.Polygon
		want bool
	}{
		{"square", geom.Polygon{densePath(0, 0, 4)}, false},
		{"bowtie", bowtie(), true},
		{"hole inside", geom.Polygon{densePath(0, 0, 10), densePath(2, 2, 3)}, false},
		{"hole crossing shell", geom.Polygon{densePath(0, 0, 10), densePath(8.5, 2.5, 5)}, true},
		{"spike back over an edge", geom.Polygon{{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 0},
		}}, true},
		{"open ring", geom.Polygon{{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelfIntersects(tt.poly))
		})
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Dataset(ctx, testDataset(), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStandardizeAbbreviations(t *testing.T) {
	ds := province.NewDataset([]province.Province{
		{Name: "x", Attributes: map[string]string{"PREABBR": "N.W.T."}},
		{Name: "y", Attributes: map[string]string{"PREABBR": "ON"}},
		{Name: "z", Attributes: map[string]string{"PREABBR": "Atlantis"}},
		{Name: "w"},
	}, province.CRS{}, "t")

	out, n, err := StandardizeAbbreviations(ds, "PREABBR")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ps := out.Provinces()
	assert.Equal(t, "NT", ps[0].Acronym)
	assert.Equal(t, "NT", ps[0].Attributes["PREABBR"])
	assert.Equal(t, "ON", ps[1].Acronym)
	assert.Equal(t, "", ps[2].Acronym)
	assert.Equal(t, "Atlantis", ps[2].Attributes["PREABBR"])

	// The input is untouched.
	assert.Equal(t, "N.W.T.", ds.Provinces()[0].Attributes["PREABBR"])
}
