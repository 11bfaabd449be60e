// Package render draws figures: a grid of map panels with fills, labels,
// leader lines, icons, titles and legends, onto SVG, PNG or PDF canvases.
package render

import (
	"context"
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/placement"
	"github.com/ha1tch/provfig/pkg/province"
)

// Options configures a Renderer.
type Options struct {
	Logger *slog.Logger
	// IconFS resolves relative icon paths. Defaults to the working
	// directory.
	IconFS fs.FS
}

// Renderer draws one figure from one dataset. It is built once and may
// render to any number of canvases.
type Renderer struct {
	ds         *province.Dataset
	fig        *figure.Figure
	log        *slog.Logger
	ext        Extent
	icons      Icons
	placements []placement.Placement
	badColors  map[string]bool
}

// New validates fig, loads its icons and resolves every label position.
// Structural figure errors and missing icons are returned before anything
// is drawn.
func New(ds *province.Dataset, fig *figure.Figure, opts Options) (*Renderer, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	warnings, err := figure.Validate(fig)
	if err != nil {
		return nil, fmt.Errorf("figure %q: %w", fig.Name, err)
	}
	for _, w := range warnings {
		log.Warn("figure_warning", "figure", fig.Name, "field", w.Field, "message", w.Message)
	}

	fsys := opts.IconFS
	if fsys == nil {
		fsys = os.DirFS(".")
	}
	icons, err := LoadIcons(fsys, fig)
	if err != nil {
		return nil, fmt.Errorf("figure %q: %w", fig.Name, err)
	}

	res := placement.NewResolver(ds, fig, placement.WithLogger(log))
	return &Renderer{
		ds:         ds,
		fig:        fig,
		log:        log,
		ext:        ComputeExtent(ds, fig),
		icons:      icons,
		placements: res.ResolveAll(),
		badColors:  make(map[string]bool),
	}, nil
}

// Placements returns the resolved label positions in dataset order.
func (r *Renderer) Placements() []placement.Placement {
	out := make([]placement.Placement, len(r.placements))
	copy(out, r.placements)
	return out
}

// Extent returns the shared map window.
func (r *Renderer) Extent() Extent { return r.ext }

// PageSize returns the figure size in points.
func (r *Renderer) PageSize() (w, h float64) {
	return r.fig.Size[0] * PointsPerInch, r.fig.Size[1] * PointsPerInch
}

func (r *Renderer) badColor(s string, err error) {
	if r.badColors[s] {
		return
	}
	r.badColors[s] = true
	r.log.Warn("color_invalid", "figure", r.fig.Name, "color", s, "error", err, "fallback", "default")
}

func (r *Renderer) color(s string, def color.NRGBA) color.NRGBA {
	return colorOr(s, def, r.badColor)
}

// Render draws every panel, then the figure legend. The context is checked
// between panels.
func (r *Renderer) Render(ctx context.Context, c Canvas) error {
	pw, ph := c.Size()
	for i := range r.fig.Panels {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.drawPanel(c, i, cellBox(i, r.fig.Rows, r.fig.Cols, pw, ph))
	}

	if !r.fig.HideLegend {
		rows := legendRows(r.fig.FigureLegend(), r.badColor)
		a := r.fig.LegendAnchor
		drawLegend(c, rows, a[0]*pw, (1-a[1])*ph, legendStyle{
			FontSize: r.fig.LegendFontSize,
			Frame:    r.fig.LegendFrame,
		})
	}
	return nil
}

func (r *Renderer) panelMapper(i int, cell Box) mapper {
	outside := len(r.fig.Panels[i].Legend) > 0 && r.fig.PanelLegendAnchor(i)[0] > 1
	return newMapper(r.ext, axesBox(cell, outside))
}

func (r *Renderer) drawPanel(c Canvas, i int, cell Box) {
	fig := r.fig
	m := r.panelMapper(i, cell)
	provinces := r.ds.Provinces()

	outline := Stroke{Color: colorBlack, Width: 0.25}
	for _, p := range provinces {
		if p.Geometry == nil {
			continue
		}
		for _, rings := range m.rings(p.Geometry) {
			c.Polygon(rings, colorNone, outline)
		}
	}

	fills := fig.PanelFills(i)
	neutral := r.color(fig.NeutralFill, colorWhite)
	for _, p := range provinces {
		if p.Geometry == nil {
			continue
		}
		fill, dash := neutral, []float64(nil)
		if f, ok := fills[p.Acronym]; ok {
			fill = r.color(f.Color, neutral)
			dash = dashFor(f.LineStyle, 0.35)
		}
		edge := Stroke{Color: colorBlack, Width: 0.35, Dash: dash}
		for _, rings := range m.rings(p.Geometry) {
			c.Polygon(rings, fill, edge)
		}
	}

	legendFills := fig.LegendFills(i)
	for _, pl := range r.placements {
		if !fig.Labelled(i, pl.Acronym) {
			continue
		}
		lp := m.geomPt(pl.Label)
		if pl.Leader {
			c.Polyline([]Point{m.geomPt(pl.Anchor), lp}, Stroke{Color: colorLeader, Width: 0.5})
		}
		r.drawLabel(c, pl.Acronym, lp, legendFills[pl.Acronym].TextColor)
	}

	r.drawIcons(c, m)

	title := m.box.Frac(0.5, fig.PanelTitleY(i))
	c.Text(Text{
		X: title.X, Y: title.Y - 6, S: fig.Panels[i].Title,
		Size: fig.TitleSize, Bold: true, Color: colorBlack, VAlign: AlignEnd,
	})

	if rows := legendRows(fig.Panels[i].Legend, r.badColor); len(rows) > 0 {
		a := fig.PanelLegendAnchor(i)
		at := m.box.Frac(a[0], a[1])
		drawLegend(c, rows, at.X+legendWidth(c, rows, fig.LegendFontSize, a[0]), at.Y, legendStyle{
			FontSize: fig.LegendFontSize,
		})
	}
}

// legendWidth shifts legends that hang right of the map so their left
// edge, not their right edge, sits at the anchor.
func legendWidth(c Canvas, rows []legendRow, size, ax float64) float64 {
	if ax <= 1 {
		return 0
	}
	w, _ := legendSize(c, rows, legendStyle{FontSize: size})
	return w
}

func (r *Renderer) drawLabel(c Canvas, acr string, at Point, legendText string) {
	style := r.fig.Styles[acr]
	size := r.fig.FontSize(acr)
	col := colorBlack
	switch {
	case style.TextColor != "":
		col = r.color(style.TextColor, colorBlack)
	case legendText != "":
		col = r.color(legendText, colorBlack)
	}

	if r.fig.BBox(acr) {
		w, h := c.MeasureText(acr, size, true)
		pad := 0.12 * size
		c.RoundedRect(at.X-w/2-pad, at.Y-h/2-pad, w+2*pad, h+2*pad, pad, colorLabelBox, Stroke{})
	}
	c.Text(Text{X: at.X, Y: at.Y, S: acr, Size: size, Bold: true, Color: col})
}

// drawIcons stacks each province's icons below its label, one vertical gap
// apart, nudged sideways by a fraction of the dataset width.
func (r *Renderer) drawIcons(c Canvas, m mapper) {
	if len(r.fig.Icons) == 0 {
		return
	}
	xspan, yspan := r.ds.Spans()
	gap := yspan * r.fig.IconGapFrac
	nudge := xspan * r.fig.IconNudgeFrac
	for _, pl := range r.placements {
		for k, layer := range r.fig.IconsFor(pl.Acronym) {
			img := r.icons[layer.Path]
			if img == nil {
				continue
			}
			w, h := iconSize(img, layer.Zoom())
			if w <= 0 || h <= 0 {
				continue
			}
			at := m.pt(pl.Label.X+nudge, pl.Label.Y-float64(k+1)*gap)
			c.Image(img, at.X-w/2, at.Y-h/2, w, h)
		}
	}
}

// CheckOverlaps logs every pair of labels whose boxes intersect in the
// first panel. Overlaps never fail a render.
func (r *Renderer) CheckOverlaps(c Canvas) []placement.Overlap {
	if !r.fig.ShowLabels || len(r.fig.Panels) == 0 {
		return nil
	}
	pw, ph := c.Size()
	m := r.panelMapper(0, cellBox(0, r.fig.Rows, r.fig.Cols, pw, ph))

	var labelled []placement.Placement
	for _, pl := range r.placements {
		if r.fig.Labelled(0, pl.Acronym) {
			labelled = append(labelled, pl)
		}
	}
	overlaps := placement.Overlaps(labelled, func(pl placement.Placement) (float64, float64) {
		size := r.fig.FontSize(pl.Acronym)
		w, h := c.MeasureText(pl.Acronym, size, true)
		pad := 0.24 * size
		return m.length(w + pad), m.length(h + pad)
	})
	for _, o := range overlaps {
		r.log.Warn("label_overlap", "figure", r.fig.Name, "a", o.A, "b", o.B)
	}
	return overlaps
}

// RenderFile renders to path, choosing the backend from its extension.
// Parent directories are created.
func (r *Renderer) RenderFile(ctx context.Context, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	w, h := r.PageSize()
	c, err := NewCanvas(format, w, h, r.fig.DPI)
	if err != nil {
		return err
	}
	r.CheckOverlaps(c)
	if err := r.Render(ctx, c); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.log.Info("figure_saved", "figure", r.fig.Name, "path", path, "format", string(format))
	return nil
}
