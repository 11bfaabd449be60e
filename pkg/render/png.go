// Native PNG rendering for figures.
// Mirrors the SVG output using fogleman/gg at the requested resolution.

package render

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// PNGCanvas rasterizes at dpi. Callers work in points; everything is
// multiplied by scale = dpi/72 on the way in.
type PNGCanvas struct {
	dc    *gg.Context
	w, h  float64
	scale float64
	faces *faceCache // faces at the target dpi, for drawing
	pts   *faceCache // faces at 72 dpi, for measuring in points
}

// NewPNG creates a white w x h point canvas rendered at dpi.
func NewPNG(w, h, dpi float64) *PNGCanvas {
	if dpi <= 0 {
		dpi = 72
	}
	s := dpi / 72
	dc := gg.NewContext(int(math.Round(w*s)), int(math.Round(h*s)))
	dc.SetColor(colorWhite)
	dc.Clear()
	dc.SetLineJoinRound()
	return &PNGCanvas{
		dc:    dc,
		w:     w,
		h:     h,
		scale: s,
		faces: newFaceCache(dpi),
		pts:   newFaceCache(72),
	}
}

func (c *PNGCanvas) Size() (float64, float64) { return c.w, c.h }

func (c *PNGCanvas) applyStroke(st Stroke) {
	c.dc.SetColor(st.Color)
	c.dc.SetLineWidth(st.Width * c.scale)
	if len(st.Dash) == 0 {
		c.dc.SetDash()
		return
	}
	dash := make([]float64, len(st.Dash))
	for i, d := range st.Dash {
		dash[i] = d * c.scale
	}
	c.dc.SetDash(dash...)
}

func (c *PNGCanvas) path(pts []Point, closed bool) {
	for i, p := range pts {
		x, y := p.X*c.scale, p.Y*c.scale
		if i == 0 {
			c.dc.MoveTo(x, y)
		} else {
			c.dc.LineTo(x, y)
		}
	}
	if closed && len(pts) > 0 {
		c.dc.ClosePath()
	}
}

func (c *PNGCanvas) Polygon(rings [][]Point, fill color.NRGBA, stroke Stroke) {
	c.dc.ClearPath()
	for _, ring := range rings {
		c.dc.NewSubPath()
		c.path(ring, true)
	}
	c.finish(fill, stroke)
}

// finish fills then strokes the current path and clears it.
func (c *PNGCanvas) finish(fill color.NRGBA, stroke Stroke) {
	if !isNone(fill) {
		c.dc.SetFillRuleEvenOdd()
		c.dc.SetColor(fill)
		c.dc.FillPreserve()
	}
	if stroke.visible() {
		c.applyStroke(stroke)
		c.dc.StrokePreserve()
	}
	c.dc.ClearPath()
}

func (c *PNGCanvas) Polyline(pts []Point, stroke Stroke) {
	if len(pts) < 2 || !stroke.visible() {
		return
	}
	c.dc.ClearPath()
	c.path(pts, false)
	c.dc.SetLineCapButt()
	c.applyStroke(stroke)
	c.dc.Stroke()
	c.dc.SetLineCapRound()
}

func (c *PNGCanvas) Text(t Text) {
	if t.S == "" || isNone(t.Color) {
		return
	}
	c.dc.SetFontFace(c.faces.face(t.Size, t.Bold))
	c.dc.SetColor(t.Color)

	ax := 0.5
	switch t.HAlign {
	case AlignStart:
		ax = 0
	case AlignEnd:
		ax = 1
	}
	lines := splitLines(t.S)
	y := blockTop(t.Y, t.Size, len(lines), t.VAlign)
	for _, l := range lines {
		c.dc.DrawStringAnchored(l, t.X*c.scale, y*c.scale, ax, 0.35)
		y += t.Size * lineSpacing
	}
}

func (c *PNGCanvas) MeasureText(s string, size float64, bold bool) (float64, float64) {
	return c.pts.measure(s, size, bold)
}

func (c *PNGCanvas) RoundedRect(x, y, w, h, r float64, fill color.NRGBA, stroke Stroke) {
	c.dc.ClearPath()
	s := c.scale
	c.dc.DrawRoundedRectangle(x*s, y*s, w*s, h*s, r*s)
	c.finish(fill, stroke)
}

func (c *PNGCanvas) Circle(x, y, r float64, fill color.NRGBA) {
	c.dc.ClearPath()
	c.dc.DrawCircle(x*c.scale, y*c.scale, r*c.scale)
	c.finish(fill, Stroke{})
}

// Image resamples img to the target pixel box before compositing, the
// same way large icons are shrunk for the diagram views.
func (c *PNGCanvas) Image(img image.Image, x, y, w, h float64) {
	pw, ph := int(math.Round(w*c.scale)), int(math.Round(h*c.scale))
	if pw <= 0 || ph <= 0 {
		return
	}
	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	c.dc.DrawImage(dst, int(math.Round(x*c.scale)), int(math.Round(y*c.scale)))
}

// Bounds returns the pixel size of the raster.
func (c *PNGCanvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.dc.Width(), c.dc.Height())
}

func (c *PNGCanvas) Encode(w io.Writer) error {
	return c.dc.EncodePNG(w)
}
