package main

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3347"}},
  "features": [
    {"type": "Feature", "properties": {"PRNAME": "Ontario", "PREABBR": "Ont."},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[100000,0],[100000,100000],[0,100000],[0,0]]]}},
    {"type": "Feature", "properties": {"PRNAME": "Quebec / Québec", "PREABBR": "Que."},
     "geometry": {"type": "Polygon", "coordinates": [[[100000,0],[200000,0],[200000,100000],[100000,100000],[100000,0]]]}},
    {"type": "Feature", "properties": {"PRNAME": "Lake", "PREABBR": ""},
     "geometry": {"type": "Polygon", "coordinates": [[[0,100000],[100000,100000],[100000,200000],[0,200000],[0,100000]]]}}
  ]
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "provinces.geojson")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))
	return path
}

// run executes the CLI with a missing env file so the host environment
// does not leak in.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	env := filepath.Join(t.TempDir(), "none.env")
	cmd.SetArgs(append([]string{"--env-file", env}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestFiguresList(t *testing.T) {
	out, _, err := run(t, "figures")
	require.NoError(t, err)
	assert.Contains(t, out, "selected")
	assert.Contains(t, out, "governance")
}

func TestFiguresDump(t *testing.T) {
	out, _, err := run(t, "figures", "selected")
	require.NoError(t, err)
	assert.Contains(t, out, "name: selected")
	assert.Contains(t, out, "panels:")
}

func TestLabels(t *testing.T) {
	data := writeFixture(t)
	out, _, err := run(t, "labels", "selected", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "PROVINCE LABEL COORDINATES")
	assert.Contains(t, out, "ON  : (")
	assert.Contains(t, out, "QC  : (")
	assert.Contains(t, out, "EPSG:3347")
}

func TestRenderSVG(t *testing.T) {
	data := writeFixture(t)
	out := filepath.Join(t.TempDir(), "figs", "selected.svg")
	stdout, stderr, err := run(t, "render", "selected", "--data", data, "-o", out, "--report")
	require.NoError(t, err)

	svg, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, stdout, "PROVINCE LABEL COORDINATES")
	assert.Contains(t, stderr, "figure_saved")
}

func TestRenderSkipExisting(t *testing.T) {
	data := writeFixture(t)
	out := filepath.Join(t.TempDir(), "selected.svg")
	require.NoError(t, os.WriteFile(out, []byte("keep"), 0o644))

	_, stderr, err := run(t, "render", "selected", "--data", data, "-o", out, "--skip-existing")
	require.NoError(t, err)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
	assert.Contains(t, stderr, "figure_skipped")
}

func TestRenderBadFigureFailsBeforeData(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(def, []byte("rows: 1\ncols: 2\npanels:\n  - title: only one\n"), 0o644))

	_, _, err := run(t, "render", def, "--data", filepath.Join(dir, "missing.gpkg"), "-o", filepath.Join(dir, "x.svg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panel count")
}

func TestRenderArgs(t *testing.T) {
	_, _, err := run(t, "render")
	assert.Error(t, err)

	_, _, err = run(t, "render", "selected", "governance", "-o", "x.svg")
	assert.Error(t, err)

	_, _, err = run(t, "render", "selected", "--data", writeFixture(t), "-o", filepath.Join(t.TempDir(), "x.bmp"))
	assert.Error(t, err)
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestRenderDPI(t *testing.T) {
	data := writeFixture(t)
	dir := t.TempDir()
	tests := []struct {
		name  string
		env   string
		flags []string
		w, h  int
	}{
		{"figure", "", nil, 2400, 1800},
		{"environment", "36", nil, 288, 216},
		{"flag wins", "36", []string{"--dpi", "18"}, 144, 108},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROVFIG_DPI", tt.env)
			if tt.env == "" {
				os.Unsetenv("PROVFIG_DPI")
			}
			out := filepath.Join(dir, tt.name+".png")
			args := append([]string{"render", "selected", "--data", data, "-o", out}, tt.flags...)
			_, _, err := run(t, args...)
			require.NoError(t, err)
			w, h := pngSize(t, out)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestInfo(t *testing.T) {
	data := writeFixture(t)
	out, _, err := run(t, "info", data)
	require.NoError(t, err)
	assert.Contains(t, out, "Features: 3")
	assert.Contains(t, out, "Acronyms: ON QC")
	assert.Contains(t, out, "Unmapped: Lake")
	assert.Contains(t, out, "Vertices: 15")
}

func TestSimplify(t *testing.T) {
	data := writeFixture(t)
	out := filepath.Join(t.TempDir(), "simple.geojson")
	stdout, _, err := run(t, "simplify", data, out, "--tolerance", "0", "--standardize")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 features, 15 -> 15 vertices")

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"PREABBR": "QC"`)
}

func TestTetra(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tetra.svg")
	_, _, err := run(t, "tetra", "-o", out, "--labels")
	require.NoError(t, err)
	svg, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(svg), "Discourses"))
}

func TestTetraDPIFromEnvironment(t *testing.T) {
	t.Setenv("PROVFIG_DPI", "9")
	dir := t.TempDir()

	out := filepath.Join(dir, "tetra.png")
	_, _, err := run(t, "tetra", "-o", out)
	require.NoError(t, err)
	w, h := pngSize(t, out)
	assert.Equal(t, 90, w)
	assert.Equal(t, 72, h)

	out = filepath.Join(dir, "flag.png")
	_, _, err = run(t, "tetra", "-o", out, "--dpi", "18")
	require.NoError(t, err)
	w, h = pngSize(t, out)
	assert.Equal(t, 180, w)
	assert.Equal(t, 144, h)
}
