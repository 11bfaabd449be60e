package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
)

// pdfEpoch is stamped as creation and modification date so identical
// figures produce identical files.
var pdfEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// PDFCanvas draws a single page vector PDF with go-pdf/fpdf. Text uses the
// core Helvetica fonts.
type PDFCanvas struct {
	pdf   *fpdf.Fpdf
	w, h  float64
	tr    func(string) string
	image int
}

// NewPDF creates a one page w x h point document.
func NewPDF(w, h float64) *PDFCanvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetCatalogSort(true)
	pdf.AddPage()
	return &PDFCanvas{
		pdf: pdf,
		w:   w,
		h:   h,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *PDFCanvas) Size() (float64, float64) { return c.w, c.h }

func (c *PDFCanvas) setFill(col color.NRGBA) {
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
}

func (c *PDFCanvas) setStroke(st Stroke) {
	c.pdf.SetDrawColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
	c.pdf.SetLineWidth(st.Width)
	c.pdf.SetDashPattern(st.Dash, 0)
}

// style returns the fpdf paint operator and sets colours. ok is false when
// there is nothing to paint.
func (c *PDFCanvas) style(fill color.NRGBA, stroke Stroke, evenOdd bool) (op string, ok bool) {
	f, s := !isNone(fill), stroke.visible()
	if f {
		c.setFill(fill)
	}
	if s {
		c.setStroke(stroke)
	}
	switch {
	case f && s:
		op = "FD"
	case f:
		op = "F"
	case s:
		op = "D"
	default:
		return "", false
	}
	if evenOdd && f {
		// Raw PDF operators for even-odd painting; fpdf passes them through.
		op = map[string]string{"FD": "B*", "F": "f*"}[op]
	}
	return op, true
}

// withAlpha runs draw under the opacity of col, restoring full opacity
// afterwards.
func (c *PDFCanvas) withAlpha(col color.NRGBA, draw func()) {
	if col.A < 255 {
		c.pdf.SetAlpha(opacity(col), "Normal")
		defer c.pdf.SetAlpha(1, "Normal")
	}
	draw()
}

func (c *PDFCanvas) Polygon(rings [][]Point, fill color.NRGBA, stroke Stroke) {
	// Fill and stroke alpha differ in practice only for the label box, so
	// polygons with a translucent fill are painted in two passes.
	if !isNone(fill) && fill.A < 255 && stroke.visible() {
		c.Polygon(rings, fill, Stroke{})
		c.Polygon(rings, colorNone, stroke)
		return
	}
	op, ok := c.style(fill, stroke, true)
	if !ok {
		return
	}
	alpha := fill
	if isNone(fill) {
		alpha = stroke.Color
	}
	c.withAlpha(alpha, func() {
		for _, ring := range rings {
			for i, p := range ring {
				if i == 0 {
					c.pdf.MoveTo(p.X, p.Y)
				} else {
					c.pdf.LineTo(p.X, p.Y)
				}
			}
			if len(ring) > 0 {
				c.pdf.ClosePath()
			}
		}
		c.pdf.DrawPath(op)
	})
}

func (c *PDFCanvas) Polyline(pts []Point, stroke Stroke) {
	if len(pts) < 2 || !stroke.visible() {
		return
	}
	c.setStroke(stroke)
	c.withAlpha(stroke.Color, func() {
		c.pdf.SetLineCapStyle("butt")
		for i, p := range pts {
			if i == 0 {
				c.pdf.MoveTo(p.X, p.Y)
			} else {
				c.pdf.LineTo(p.X, p.Y)
			}
		}
		c.pdf.DrawPath("D")
	})
}

func (c *PDFCanvas) setFont(size float64, bold bool) {
	st := ""
	if bold {
		st = "B"
	}
	c.pdf.SetFont("Helvetica", st, size)
}

func (c *PDFCanvas) Text(t Text) {
	if t.S == "" || isNone(t.Color) {
		return
	}
	c.setFont(t.Size, t.Bold)
	c.pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))

	lines := splitLines(t.S)
	y := blockTop(t.Y, t.Size, len(lines), t.VAlign)
	c.withAlpha(t.Color, func() {
		for _, l := range lines {
			s := c.tr(l)
			x := anchorX(t.X, c.pdf.GetStringWidth(s), t.HAlign)
			// Cap height of Helvetica is about 0.72 em; centre on it.
			c.pdf.Text(x, y+t.Size*0.36, s)
			y += t.Size * lineSpacing
		}
	})
}

func (c *PDFCanvas) MeasureText(s string, size float64, bold bool) (float64, float64) {
	c.setFont(size, bold)
	lines := splitLines(s)
	var w float64
	for _, l := range lines {
		w = math.Max(w, c.pdf.GetStringWidth(c.tr(l)))
	}
	return w, size*1.15 + size*lineSpacing*float64(len(lines)-1)
}

func (c *PDFCanvas) RoundedRect(x, y, w, h, r float64, fill color.NRGBA, stroke Stroke) {
	op, ok := c.style(fill, stroke, false)
	if !ok {
		return
	}
	alpha := fill
	if isNone(fill) {
		alpha = stroke.Color
	}
	c.withAlpha(alpha, func() {
		c.pdf.RoundedRect(x, y, w, h, math.Min(r, math.Min(w, h)/2), "1234", op)
	})
}

func (c *PDFCanvas) Circle(x, y, r float64, fill color.NRGBA) {
	if isNone(fill) {
		return
	}
	c.setFill(fill)
	c.withAlpha(fill, func() {
		c.pdf.Circle(x, y, r, "F")
	})
}

func (c *PDFCanvas) Image(img image.Image, x, y, w, h float64) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		c.pdf.SetError(fmt.Errorf("encode icon: %w", err))
		return
	}
	c.image++
	name := fmt.Sprintf("icon%d", c.image)
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	c.pdf.RegisterImageOptionsReader(name, opt, &buf)
	c.pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
}

func (c *PDFCanvas) Encode(w io.Writer) error {
	if err := c.pdf.Error(); err != nil {
		return err
	}
	return c.pdf.Output(w)
}
