// SVG output for figures.
// Coordinates are written in points with two decimals so the output is
// stable across runs.

package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// SVGCanvas draws with github.com/ajstarks/svgo.
type SVGCanvas struct {
	buf   bytes.Buffer
	s     *svg.SVG
	w, h  float64
	faces *faceCache
	ended bool
}

// NewSVG starts a w x h point document on a white background.
func NewSVG(w, h float64) *SVGCanvas {
	c := &SVGCanvas{w: w, h: h, faces: newFaceCache(72)}
	c.s = svg.New(&c.buf)
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	c.s.Start(iw, ih)
	c.s.Rect(0, 0, iw, ih, "fill:white")
	return c
}

func (c *SVGCanvas) Size() (float64, float64) { return c.w, c.h }

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func fillStyle(fill color.NRGBA) string {
	if isNone(fill) {
		return "fill:none"
	}
	s := "fill:" + hex(fill)
	if fill.A < 255 {
		s += ";fill-opacity:" + num(opacity(fill))
	}
	return s
}

func strokeStyle(st Stroke) string {
	if !st.visible() {
		return "stroke:none"
	}
	s := "stroke:" + hex(st.Color) + ";stroke-width:" + num(st.Width) + ";stroke-linejoin:round"
	if st.Color.A < 255 {
		s += ";stroke-opacity:" + num(opacity(st.Color))
	}
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = num(d)
		}
		s += ";stroke-dasharray:" + strings.Join(parts, ",")
	}
	return s
}

func (c *SVGCanvas) Polygon(rings [][]Point, fill color.NRGBA, stroke Stroke) {
	var d strings.Builder
	for _, ring := range rings {
		for i, p := range ring {
			if i == 0 {
				d.WriteString("M")
			} else {
				d.WriteString(" L")
			}
			d.WriteString(num(p.X) + " " + num(p.Y))
		}
		if len(ring) > 0 {
			d.WriteString(" Z ")
		}
	}
	if d.Len() == 0 {
		return
	}
	c.s.Path(strings.TrimSpace(d.String()), fillStyle(fill)+";fill-rule:evenodd;"+strokeStyle(stroke))
}

func (c *SVGCanvas) Polyline(pts []Point, stroke Stroke) {
	if len(pts) < 2 || !stroke.visible() {
		return
	}
	var d strings.Builder
	for i, p := range pts {
		if i == 0 {
			d.WriteString("M")
		} else {
			d.WriteString(" L")
		}
		d.WriteString(num(p.X) + " " + num(p.Y))
	}
	c.s.Path(d.String(), "fill:none;stroke-linecap:butt;"+strokeStyle(stroke))
}

func (c *SVGCanvas) Text(t Text) {
	if t.S == "" || isNone(t.Color) {
		return
	}
	anchor := "middle"
	switch t.HAlign {
	case AlignStart:
		anchor = "start"
	case AlignEnd:
		anchor = "end"
	}
	style := fmt.Sprintf("font-family:Go,Helvetica,Arial,sans-serif;font-size:%spx;text-anchor:%s;dominant-baseline:central;%s",
		num(t.Size), anchor, fillStyle(t.Color))
	if t.Bold {
		style += ";font-weight:bold"
	}

	lines := splitLines(t.S)
	y := blockTop(t.Y, t.Size, len(lines), t.VAlign)
	for _, l := range lines {
		c.s.Gtransform(fmt.Sprintf("translate(%s,%s)", num(t.X), num(y)))
		c.s.Text(0, 0, l, style)
		c.s.Gend()
		y += t.Size * lineSpacing
	}
}

func (c *SVGCanvas) MeasureText(s string, size float64, bold bool) (float64, float64) {
	return c.faces.measure(s, size, bold)
}

// roundedRectPath returns an SVG path for a rectangle with corner radius r.
func roundedRectPath(x, y, w, h, r float64) string {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		return fmt.Sprintf("M%s %s H%s V%s H%s Z", num(x), num(y), num(x+w), num(y+h), num(x))
	}
	return fmt.Sprintf("M%s %s H%s A%s %s 0 0 1 %s %s V%s A%s %s 0 0 1 %s %s H%s A%s %s 0 0 1 %s %s V%s A%s %s 0 0 1 %s %s Z",
		num(x+r), num(y), num(x+w-r),
		num(r), num(r), num(x+w), num(y+r), num(y+h-r),
		num(r), num(r), num(x+w-r), num(y+h), num(x+r),
		num(r), num(r), num(x), num(y+h-r), num(y+r),
		num(r), num(r), num(x+r), num(y))
}

func (c *SVGCanvas) RoundedRect(x, y, w, h, r float64, fill color.NRGBA, stroke Stroke) {
	c.s.Path(roundedRectPath(x, y, w, h, r), fillStyle(fill)+";"+strokeStyle(stroke))
}

func (c *SVGCanvas) Circle(x, y, r float64, fill color.NRGBA) {
	d := fmt.Sprintf("M%s %s a%s %s 0 1 0 %s 0 a%s %s 0 1 0 %s 0 Z",
		num(x-r), num(y), num(r), num(r), num(2*r), num(r), num(r), num(-2*r))
	c.s.Path(d, fillStyle(fill)+";stroke:none")
}

func (c *SVGCanvas) Image(img image.Image, x, y, w, h float64) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	c.s.Gtransform(fmt.Sprintf("translate(%s,%s) scale(%s,%s)",
		num(x), num(y), numScale(w/float64(b.Dx())), numScale(h/float64(b.Dy()))))
	c.s.Image(0, 0, b.Dx(), b.Dy(), href)
	c.s.Gend()
}

func numScale(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}

// Encode closes the document and writes it out. Further drawing is ignored
// by the output.
func (c *SVGCanvas) Encode(w io.Writer) error {
	if !c.ended {
		c.s.End()
		c.ended = true
	}
	_, err := w.Write(c.buf.Bytes())
	return err
}
