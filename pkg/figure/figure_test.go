package figure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordValue(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		ok   bool
		x, y float64
	}{
		{"floats", []any{1.5, 2.5}, true, 1.5, 2.5},
		{"ints", []any{1, 2}, true, 1, 2},
		{"numeric strings", []any{"10", " 2e3 "}, true, 10, 2000},
		{"array", [2]float64{3, 4}, true, 3, 4},
		{"float slice", []float64{5, 6}, true, 5, 6},
		{"nil", nil, false, 0, 0},
		{"three items", []any{1, 2, 3}, false, 0, 0},
		{"one item", []any{1}, false, 0, 0},
		{"non numeric", []any{"a", 2}, false, 0, 0},
		{"scalar", 42, false, 0, 0},
		{"map", map[string]any{"x": 1, "y": 2}, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := NewCoord(tt.raw).Value()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.x, x)
				assert.Equal(t, tt.y, y)
			}
		})
	}
}

func TestCoordYAML(t *testing.T) {
	f, err := Parse([]byte(`
rows: 1
cols: 1
panels: [{title: A, acronyms: [ON]}]
styles:
  ON: {xy: [100, "200"], label_offset: oops}
  QC: {xy: null}
atlantic_manual:
  NL: [1, 2]
`))
	require.NoError(t, err)

	x, y, ok := f.Styles["ON"].XY.Value()
	require.True(t, ok)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 200.0, y)

	assert.True(t, f.Styles["ON"].LabelOffset.IsSet())
	_, _, ok = f.Styles["ON"].LabelOffset.Value()
	assert.False(t, ok)

	assert.False(t, f.Styles["QC"].XY.IsSet())

	x, y, ok = f.AtlanticManual["NL"].Value()
	require.True(t, ok)
	assert.Equal(t, [2]float64{1, 2}, [2]float64{x, y})
}

func TestParseDefaults(t *testing.T) {
	f, err := Parse([]byte(`
rows: 1
cols: 2
panels:
  - {title: A, acronyms: [ON]}
  - {title: B, acronyms: [QC]}
`))
	require.NoError(t, err)
	assert.Equal(t, 0.04, f.Pad)
	assert.Equal(t, 0.09, f.NorthExtra)
	assert.Equal(t, [2]float64{0.06, 0.03}, f.AtlanticOffset)
	assert.Equal(t, 1000.0, f.LeaderThreshold)
	assert.Equal(t, "white", f.NeutralFill)
	assert.True(t, f.LabelBBox)
	assert.True(t, f.ShowLabels)
	assert.Equal(t, 10.0, f.LabelFontSize)
	assert.Equal(t, 0.02, f.IconGapFrac)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("rows: 1\ncols: 1\nnorth_extar: 0.2\n"))
	assert.Error(t, err)
}

func TestParseTrimsStyleKeys(t *testing.T) {
	f, err := Parse([]byte(`
rows: 1
cols: 1
panels:
  - {title: A}
styles:
  "PE ": {font_size: 8}
  "PE": {font_size: 9}
  " NS": {font_size: 7}
`))
	require.NoError(t, err)
	assert.Len(t, f.Styles, 2)
	assert.Equal(t, 9.0, f.FontSize("PE"))
	assert.Equal(t, 7.0, f.FontSize("NS"))

	ws, err := Validate(f)
	require.NoError(t, err)
	var dups []string
	for _, w := range ws {
		if strings.Contains(w.Message, "duplicate key") {
			dups = append(dups, w.String())
		}
	}
	assert.Equal(t, []string{`styles.PE: duplicate key after trimming "PE ", ignored`}, dups)
}

func TestValidatePanelCount(t *testing.T) {
	f := Default()
	f.Rows, f.Cols = 2, 2
	f.Panels = []Panel{{Title: "a"}, {Title: "b"}, {Title: "c"}}

	_, err := Validate(&f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPanelCount)
}

func TestValidateStructural(t *testing.T) {
	base := func() Figure {
		f := Default()
		f.Panels = []Panel{{Title: "a"}}
		return f
	}

	f := base()
	f.Rows = 0
	_, err := Validate(&f)
	assert.ErrorIs(t, err, ErrInvalid)

	f = base()
	f.DPI = 0
	_, err = Validate(&f)
	assert.ErrorIs(t, err, ErrInvalid)

	f = base()
	f.Icons = []IconLayer{{Name: "fire"}}
	_, err = Validate(&f)
	assert.ErrorIs(t, err, ErrInvalid)

	f = base()
	ws, err := Validate(&f)
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestValidateWarnings(t *testing.T) {
	f := Default()
	f.Panels = []Panel{{Title: "a", Acronyms: []string{"BC", "PEI", "XX"}}}
	f.Styles = map[string]Style{
		"NL": {XY: NewCoord("bad")},
		"ON": {XY: XY(1, 2)},
	}
	f.Legend = []LegendEntry{
		{Label: "h", Heading: true, Acronyms: []string{"BC"}},
		{Label: "a", Color: "red", Acronyms: []string{"BC"}, LineStyle: "wavy"},
	}

	ws, err := Validate(&f)
	require.NoError(t, err)

	fields := make(map[string]string)
	for _, w := range ws {
		fields[w.Field] += w.Message + ";"
	}
	assert.Contains(t, fields["panels[0].acronyms"], `did you mean "PE"`)
	assert.Contains(t, fields["panels[0].acronyms"], `unknown acronym "XX"`)
	assert.Contains(t, fields["styles.NL.xy"], "not a numeric pair")
	assert.NotContains(t, fields, "styles.ON.xy")
	assert.Contains(t, fields["legend[0]"], "heading")
	assert.Contains(t, fields["legend[1].line_style"], "wavy")
}

func TestPanelFills(t *testing.T) {
	f := Default()
	f.NeutralFill = "#D3D3D3"
	f.Legend = []LegendEntry{
		{Label: "green", Color: "#006400", Acronyms: []string{"BC", "QC"}},
	}
	f.Panels = []Panel{{
		Title:    "a",
		Acronyms: []string{"BC", "MB"},
		Legend: []LegendEntry{
			{Label: "All", Heading: true},
			{Label: "blue", Color: "#ADD8E6", Acronyms: []string{"BC"}, LineStyle: LineDashed, TextColor: "white"},
		},
	}}

	fills := f.PanelFills(0)
	assert.Equal(t, Fill{Color: "#ADD8E6", LineStyle: LineDashed, TextColor: "white"}, fills["BC"])
	assert.Equal(t, Fill{Color: "#D3D3D3", LineStyle: LineSolid}, fills["MB"])
	_, ok := fills["QC"]
	assert.False(t, ok, "QC is not selected by the panel")

	all := f.LegendFills(0)
	assert.Equal(t, "#006400", all["QC"].Color)

	assert.Empty(t, f.PanelFills(5))
}

func TestFigureLegendDefaultPalette(t *testing.T) {
	f := Default()
	f.Panels = []Panel{{Title: "a", Acronyms: []string{"ON", "MB"}}}

	leg := f.FigureLegend()
	require.Len(t, leg, 4)
	assert.Equal(t, "Other", leg[3].Label)

	fills := f.PanelFills(0)
	assert.Equal(t, DefaultLightGreen, fills["ON"].Color)
	assert.Equal(t, "white", fills["MB"].Color)

	// Any panel legend suppresses the default palette.
	f.Panels[0].Legend = []LegendEntry{{Label: "x", Color: "red", Acronyms: []string{"MB"}}}
	assert.Nil(t, f.FigureLegend())
}

func TestLabelStyle(t *testing.T) {
	size := 12.0
	off := false
	f := Default()
	f.Panels = []Panel{{}, {LabelAcronyms: []string{"BC"}}}
	f.Styles = map[string]Style{"BC": {FontSize: &size, BBox: &off}}

	assert.Equal(t, 12.0, f.FontSize("BC"))
	assert.Equal(t, 10.0, f.FontSize("ON"))
	assert.False(t, f.BBox("BC"))
	assert.True(t, f.BBox("ON"))

	assert.True(t, f.Labelled(0, "ON"))
	assert.False(t, f.Labelled(1, "ON"))
	assert.True(t, f.Labelled(1, "BC"))
	assert.False(t, f.Labelled(0, ""))

	f.ShowLabels = false
	assert.False(t, f.Labelled(0, "BC"))
}

func TestFontSizeFallback(t *testing.T) {
	tests := []struct {
		name string
		size float64
		want float64
	}{
		{"positive", 7, 7},
		{"zero", 0, 10},
		{"negative", -3, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := tt.size
			f := Default()
			f.Styles = map[string]Style{"ON": {FontSize: &size}}
			assert.Equal(t, tt.want, f.FontSize("ON"))
		})
	}
}

func TestIconsFor(t *testing.T) {
	f := Default()
	f.Icons = []IconLayer{
		{Name: "fire", SizePct: 4, Acronyms: []string{"BC", "AB"}},
		{Name: "warning", SizePct: -3, Acronyms: []string{"BC", "ON"}},
	}
	got := f.IconsFor("BC")
	require.Len(t, got, 2)
	assert.Equal(t, "fire", got[0].Name)
	assert.Equal(t, 0.04, got[0].Zoom())
	assert.Equal(t, 0.0, got[1].Zoom())

	assert.Len(t, f.IconsFor("ON"), 1)
	assert.Empty(t, f.IconsFor("QC"))
}

func TestBuiltins(t *testing.T) {
	names := Builtins()
	assert.Equal(t, []string{
		"actors", "governance", "regulatory-bodies", "selected",
		"title-practice", "urban-forestry-icons",
	}, names)

	for _, n := range names {
		t.Run(n, func(t *testing.T) {
			f, err := Builtin(n)
			require.NoError(t, err)
			assert.Equal(t, n, f.Name)

			ws, err := Validate(f)
			require.NoError(t, err)
			assert.Empty(t, ws)
		})
	}

	_, err := Builtin("nope")
	assert.ErrorIs(t, err, ErrUnknownFigure)
}

func TestBuiltinTitlePractice(t *testing.T) {
	f, err := Builtin("title-practice")
	require.NoError(t, err)
	assert.Equal(t, 0.92, f.PanelTitleY(0))
	assert.Equal(t, [2]float64{1.05, 0.80}, f.PanelLegendAnchor(0))
	assert.False(t, f.LabelBBox)

	fills := f.PanelFills(0)
	// AB is listed twice, the later Arborist entry wins.
	assert.Equal(t, "#8FBC8F", fills["AB"].Color)
	assert.Equal(t, "white", fills["BC"].TextColor)
	assert.Equal(t, "black", fills["NL"].TextColor)

	x, y, ok := f.Styles["ON"].XY.Value()
	require.True(t, ok)
	assert.Equal(t, 6645027.05, x)
	assert.Equal(t, 1642475.10, y)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: 1\ncols: 1\npanels: [{title: A}]\n"), 0644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", f.Name)
	assert.Equal(t, "custom", f.OutputName())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	f, err = Load("actors")
	require.NoError(t, err)
	assert.Equal(t, "Figure 2 - Actors", f.OutputName())
}

func TestMarshalRoundTrip(t *testing.T) {
	f, err := Builtin("title-practice")
	require.NoError(t, err)

	data, err := Marshal(f)
	require.NoError(t, err)

	g, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, g.Panels, len(f.Panels))
	for i := range f.Panels {
		assert.Equal(t, f.Panels[i].Title, g.Panels[i].Title)
		assert.Equal(t, f.Panels[i].Acronyms, g.Panels[i].Acronyms)
		assert.Equal(t, f.PanelLegendAnchor(i), g.PanelLegendAnchor(i))
		assert.Len(t, g.Panels[i].Legend, len(f.Panels[i].Legend))
	}
	x, _, ok := g.Styles["NL"].XY.Value()
	require.True(t, ok)
	assert.Equal(t, 8545714.44, x)
}
