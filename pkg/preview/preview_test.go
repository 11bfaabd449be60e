package preview

import (
	"context"
	"testing"

	"github.com/ctessum/geom"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/placement"
	"github.com/ha1tch/provfig/pkg/province"
)

func square(x0, y0, size float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0}, {X: x0 + size, Y: y0}, {X: x0 + size, Y: y0 + size},
		{X: x0, Y: y0 + size}, {X: x0, Y: y0},
	}}
}

func testDataset() *province.Dataset {
	return province.NewDataset([]province.Province{
		{Name: "Ontario", Acronym: "ON", Geometry: square(0, 0, 100)},
		{Name: "Quebec", Acronym: "QC", Geometry: square(100, 0, 100)},
		{Name: "Alberta", Acronym: "AB", Geometry: square(0, 100, 100)},
		{Name: "Lake", Geometry: square(100, 100, 100)},
	}, province.CRS{Authority: "EPSG", Code: 3347}, "test")
}

func testFigure() *figure.Figure {
	f := figure.Default()
	f.Name = "test"
	f.Cols = 2
	f.Panels = []figure.Panel{
		{Title: "Left panel", Acronyms: []string{"ON", "QC"}},
		{Title: "Right panel", Acronyms: []string{"AB"}, LabelAcronyms: []string{"AB"}},
	}
	f.Legend = []figure.LegendEntry{
		{Label: "Regulated", Color: "#006400", Acronyms: []string{"ON", "AB"}},
		{Label: "Unregulated", Color: "#808080", Acronyms: []string{"QC"}},
	}
	return &f
}

func testPlacements() []placement.Placement {
	return []placement.Placement{
		{Acronym: "ON", Label: geom.Point{X: 50, Y: 50}},
		{Acronym: "QC", Label: geom.Point{X: 150, Y: 50}},
		{Acronym: "AB", Label: geom.Point{X: 50, Y: 150}},
	}
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func background(s tcell.Screen, x, y int) tcell.Color {
	_, _, st, _ := s.GetContent(x, y)
	_, bg, _ := st.Decompose()
	return bg
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var out []rune
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		out = append(out, r)
	}
	return string(out)
}

var (
	green = tcell.NewRGBColor(0x00, 0x64, 0x00)
	grey  = tcell.NewRGBColor(0x80, 0x80, 0x80)
	white = tcell.NewRGBColor(0xff, 0xff, 0xff)
)

func TestHit(t *testing.T) {
	holed := geom.Polygon{square(0, 0, 10)[0], square(3, 3, 4)[0]}
	v := &Viewer{shapes: []shape{{
		acronym: "ON",
		polys:   []geom.Polygon{holed},
		bounds:  holed.Bounds(),
	}}}
	tests := []struct {
		name string
		p    geom.Point
		want bool
	}{
		{"inside", geom.Point{X: 1, Y: 1}, true},
		{"in hole", geom.Point{X: 5, Y: 5}, false},
		{"outside bounds", geom.Point{X: 11, Y: 5}, false},
		{"between shell and hole", geom.Point{X: 8.5, Y: 5}, true},
		{"on edge", geom.Point{X: 0, Y: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acr, ok := v.hit(tt.p)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, "ON", acr)
			}
		})
	}
}

func TestDrawColoursPanels(t *testing.T) {
	s := newScreen(t, 80, 24)
	v := New(s, testDataset(), testFigure(), testPlacements())
	v.Draw()

	m := v.mapView(80, 24)
	onX, onY := m.cell(geom.Point{X: 20, Y: 20})
	qcX, qcY := m.cell(geom.Point{X: 180, Y: 20})
	abX, abY := m.cell(geom.Point{X: 20, Y: 180})
	lakeX, lakeY := m.cell(geom.Point{X: 180, Y: 180})

	assert.Equal(t, green, background(s, onX, onY))
	assert.Equal(t, grey, background(s, qcX, qcY))
	assert.Equal(t, white, background(s, abX, abY), "not selected in the first panel")
	assert.Equal(t, white, background(s, lakeX, lakeY))
	assert.Equal(t, tcell.ColorDefault, background(s, 0, m.y0), "outside the map")

	assert.Contains(t, rowText(s, 0), "Left panel")
	assert.Contains(t, rowText(s, 23), "panel 1/2")

	lx, ly := m.cell(geom.Point{X: 50, Y: 50})
	r, _, st, _ := s.GetContent(lx-1, ly)
	assert.Equal(t, 'O', r)
	_, bg, attr := st.Decompose()
	assert.Equal(t, green, bg, "labels keep the fill behind them")
	assert.NotZero(t, attr&tcell.AttrBold)
	assert.Contains(t, rowText(s, ly), "ON")
}

func TestLabelAcronymsFilter(t *testing.T) {
	s := newScreen(t, 80, 24)
	v := New(s, testDataset(), testFigure(), testPlacements())
	v.panel = 1
	v.Draw()

	m := v.mapView(80, 24)
	_, onY := m.cell(geom.Point{X: 50, Y: 50})
	_, abY := m.cell(geom.Point{X: 50, Y: 150})
	assert.NotContains(t, rowText(s, onY), "ON")
	assert.NotContains(t, rowText(s, onY), "QC")
	assert.Contains(t, rowText(s, abY), "AB")
	assert.Contains(t, rowText(s, 0), "Right panel")

	abX, abCellY := m.cell(geom.Point{X: 20, Y: 180})
	assert.Equal(t, green, background(s, abX, abCellY))
}

func TestHandleKey(t *testing.T) {
	s := newScreen(t, 40, 12)
	v := New(s, testDataset(), testFigure(), nil)

	key := func(k tcell.Key, r rune) bool {
		return v.handleKey(tcell.NewEventKey(k, r, tcell.ModNone))
	}
	assert.False(t, key(tcell.KeyTab, 0))
	assert.Equal(t, 1, v.Panel())
	assert.False(t, key(tcell.KeyRight, 0))
	assert.Equal(t, 0, v.Panel(), "wraps around")
	assert.False(t, key(tcell.KeyLeft, 0))
	assert.Equal(t, 1, v.Panel())
	assert.False(t, key(tcell.KeyRune, 'x'))
	assert.True(t, key(tcell.KeyRune, 'q'))
	assert.True(t, key(tcell.KeyEscape, 0))
}

func TestRunQuits(t *testing.T) {
	s := newScreen(t, 40, 12)
	v := New(s, testDataset(), testFigure(), testPlacements())

	s.InjectKey(tcell.KeyTab, 0, tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	require.NoError(t, v.Run(context.Background()))
	assert.Equal(t, 1, v.Panel())
}

func TestRunCancelled(t *testing.T) {
	s := newScreen(t, 40, 12)
	v := New(s, testDataset(), testFigure(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, v.Run(ctx), context.Canceled)
}

func TestTinyScreen(t *testing.T) {
	s := newScreen(t, 3, 1)
	v := New(s, testDataset(), testFigure(), testPlacements())
	assert.NotPanics(t, v.Draw)
}
