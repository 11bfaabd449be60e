// Package preview shows figure panels in the terminal. Each character cell
// is coloured by the province under its centre, and labels are drawn at
// their resolved positions, so placement can be checked without rendering
// a file.
package preview

import (
	"context"
	"fmt"
	"image/color"

	"github.com/ctessum/geom"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/placement"
	"github.com/ha1tch/provfig/pkg/province"
	"github.com/ha1tch/provfig/pkg/render"
)

// cellAspect is the height of a terminal cell over its width.
const cellAspect = 2.0

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorWhite)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleHelp    = styleStatus.Foreground(tcell.ColorSilver)
)

type shape struct {
	acronym string
	polys   []geom.Polygon
	bounds  *geom.Bounds
}

// Viewer draws one panel at a time on a tcell screen.
type Viewer struct {
	screen     tcell.Screen
	fig        *figure.Figure
	ext        render.Extent
	shapes     []shape
	placements []placement.Placement
	panel      int
}

// New prepares a viewer. placements are the resolved label positions of
// the figure, in dataset coordinates.
func New(screen tcell.Screen, ds *province.Dataset, fig *figure.Figure, placements []placement.Placement) *Viewer {
	v := &Viewer{
		screen:     screen,
		fig:        fig,
		ext:        render.ComputeExtent(ds, fig),
		placements: placements,
	}
	for _, p := range ds.Provinces() {
		if p.Geometry == nil {
			continue
		}
		v.shapes = append(v.shapes, shape{
			acronym: p.Acronym,
			polys:   p.Geometry.Polygons(),
			bounds:  p.Geometry.Bounds(),
		})
	}
	return v
}

// Panel returns the index of the panel on screen.
func (v *Viewer) Panel() int { return v.panel }

// Run draws and handles keys until the user quits or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		select {
		case <-ctx.Done():
			v.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-quit:
		}
	}()

	for {
		v.Draw()
		v.screen.Show()

		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return nil
			}
		case *tcell.EventInterrupt:
			if err, ok := ev.Data().(error); ok && err != nil {
				return err
			}
		}
	}
}

// handleKey reports whether the viewer should exit.
func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	n := len(v.fig.Panels)
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyTab, tcell.KeyRight:
		if n > 0 {
			v.panel = (v.panel + 1) % n
		}
	case tcell.KeyBacktab, tcell.KeyLeft:
		if n > 0 {
			v.panel = (v.panel + n - 1) % n
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		}
	}
	return false
}

// view maps terminal cells to dataset coordinates for the map area.
type view struct {
	x0, y0, w, h int     // map area in cells
	scale        float64 // dataset units per cell width
	minX, maxY   float64 // dataset coordinate of the top left corner
}

func (v *Viewer) mapView(w, h int) view {
	top, bottom := 1, 1
	mh := h - top - bottom
	if mh < 1 || w < 1 {
		return view{}
	}
	ew, eh := v.ext.Width(), v.ext.Height()
	// Fit the extent with cells twice as tall as wide.
	scale := ew / float64(w)
	if s := eh / (float64(mh) * cellAspect); s > scale {
		scale = s
	}
	usedW := int(ew/scale + 0.5)
	usedH := int(eh/(scale*cellAspect) + 0.5)
	return view{
		x0:    (w - usedW) / 2,
		y0:    top + (mh-usedH)/2,
		w:     usedW,
		h:     usedH,
		scale: scale,
		minX:  v.ext.MinX,
		maxY:  v.ext.MaxY,
	}
}

// at returns the dataset point under the centre of cell (cx, cy).
func (m view) at(cx, cy int) geom.Point {
	return geom.Point{
		X: m.minX + (float64(cx-m.x0)+0.5)*m.scale,
		Y: m.maxY - (float64(cy-m.y0)+0.5)*m.scale*cellAspect,
	}
}

// cell returns the terminal cell containing dataset point p.
func (m view) cell(p geom.Point) (int, int) {
	cx := m.x0 + int((p.X-m.minX)/m.scale)
	cy := m.y0 + int((m.maxY-p.Y)/(m.scale*cellAspect))
	return cx, cy
}

func styleFor(c color.NRGBA) tcell.Style {
	if c.A == 0 {
		return styleDefault
	}
	bg := tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	return styleDefault.Background(bg).Foreground(tcell.ColorBlack)
}

// fillStyles returns the cell style of every acronym in the current panel
// and the style of unselected provinces.
func (v *Viewer) fillStyles() (map[string]tcell.Style, tcell.Style) {
	neutral := styleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	if c, err := render.ParseColor(v.fig.NeutralFill); err == nil {
		neutral = styleFor(c)
	}
	styles := make(map[string]tcell.Style)
	for acr, f := range v.fig.PanelFills(v.panel) {
		st := neutral
		if c, err := render.ParseColor(f.Color); err == nil {
			st = styleFor(c)
		}
		styles[acr] = st
	}
	return styles, neutral
}

// Draw paints the current panel.
func (v *Viewer) Draw() {
	s := v.screen
	s.Clear()
	w, h := s.Size()
	if w < 1 || h < 1 || len(v.fig.Panels) == 0 {
		return
	}

	m := v.mapView(w, h)
	styles, neutral := v.fillStyles()
	for cy := m.y0; cy < m.y0+m.h; cy++ {
		for cx := m.x0; cx < m.x0+m.w; cx++ {
			acr, ok := v.hit(m.at(cx, cy))
			if !ok {
				continue
			}
			st, sel := styles[acr]
			if !sel {
				st = neutral
			}
			s.SetContent(cx, cy, ' ', nil, st)
		}
	}

	for _, pl := range v.placements {
		if m.scale == 0 || !v.fig.Labelled(v.panel, pl.Acronym) {
			continue
		}
		cx, cy := m.cell(pl.Label)
		v.drawCentered(cx, cy, pl.Acronym, true)
	}

	p := v.fig.Panels[v.panel]
	v.drawCenteredStyle(w/2, 0, p.Title, styleTitle)
	status := fmt.Sprintf(" %s  panel %d/%d ", v.fig.Name, v.panel+1, len(v.fig.Panels))
	v.fillRow(h-1, styleStatus)
	v.drawString(0, h-1, status, styleStatus)
	v.drawString(runewidth.StringWidth(status)+1, h-1, "Tab/←/→:Panel  q:Quit", styleHelp)
}

// hit returns the acronym of the province containing p. Unlabelled
// provinces report an empty acronym.
func (v *Viewer) hit(p geom.Point) (string, bool) {
	for _, sh := range v.shapes {
		b := sh.bounds
		if b == nil || p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
			continue
		}
		for _, poly := range sh.polys {
			if p.Within(poly) != geom.Outside {
				return sh.acronym, true
			}
		}
	}
	return "", false
}

// drawCentered writes a label centred on (cx, cy), keeping the background
// of the cells underneath.
func (v *Viewer) drawCentered(cx, cy int, s string, bold bool) {
	x := cx - runewidth.StringWidth(s)/2
	for _, r := range s {
		_, _, st, _ := v.screen.GetContent(x, cy)
		st = st.Foreground(tcell.ColorBlack).Bold(bold)
		v.screen.SetContent(x, cy, r, nil, st)
		x += runewidth.RuneWidth(r)
	}
}

func (v *Viewer) drawCenteredStyle(cx, y int, s string, style tcell.Style) {
	v.drawString(cx-runewidth.StringWidth(s)/2, y, s, style)
}

func (v *Viewer) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func (v *Viewer) fillRow(y int, style tcell.Style) {
	w, _ := v.screen.Size()
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}
