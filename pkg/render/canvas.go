package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/ha1tch/provfig/pkg/figure"
)

// Point is a position in page points (1/72 in), origin top left, y down.
type Point struct {
	X, Y float64
}

// Align positions text relative to its anchor point.
type Align int

const (
	AlignMiddle Align = iota
	AlignStart        // left, or top for vertical alignment
	AlignEnd          // right, or bottom
)

// Stroke describes a line. A zero Width or a transparent Color draws
// nothing.
type Stroke struct {
	Color color.NRGBA
	Width float64   // points
	Dash  []float64 // on/off lengths in points, nil for solid
}

func (s Stroke) visible() bool {
	return s.Width > 0 && !isNone(s.Color)
}

// Text is one (possibly multi-line) string.
type Text struct {
	X, Y   float64
	S      string
	Size   float64 // points
	Bold   bool
	Color  color.NRGBA
	HAlign Align
	VAlign Align
}

// lineSpacing is the distance between baselines as a multiple of size.
const lineSpacing = 1.2

// Canvas is a drawing surface sized in points. Implementations exist for
// SVG, PNG and PDF output; all of them produce the same picture.
type Canvas interface {
	// Size returns the page size in points.
	Size() (w, h float64)
	// Polygon fills the rings with the even-odd rule, then strokes them.
	Polygon(rings [][]Point, fill color.NRGBA, stroke Stroke)
	Polyline(pts []Point, stroke Stroke)
	Text(t Text)
	// MeasureText returns the extent of s in points.
	MeasureText(s string, size float64, bold bool) (w, h float64)
	RoundedRect(x, y, w, h, r float64, fill color.NRGBA, stroke Stroke)
	Circle(x, y, r float64, fill color.NRGBA)
	// Image draws img scaled into the box with top left corner (x, y).
	Image(img image.Image, x, y, w, h float64)
	// Encode writes the finished document.
	Encode(w io.Writer) error
}

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ErrFormat is returned for unsupported output extensions.
var ErrFormat = errors.New("unsupported output format")

// FormatFor picks the format from a file name extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
	}
}

// NewCanvas creates a canvas of w x h points. dpi only affects raster
// output.
func NewCanvas(f Format, w, h, dpi float64) (Canvas, error) {
	switch f {
	case FormatSVG:
		return NewSVG(w, h), nil
	case FormatPNG:
		return NewPNG(w, h, dpi), nil
	case FormatPDF:
		return NewPDF(w, h), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, f)
	}
}

// dashFor returns the dash pattern of a legend line style scaled to the
// line width, following the usual plotting conventions.
func dashFor(style string, width float64) []float64 {
	unit := width
	if unit < 1 {
		unit = 1
	}
	var pattern []float64
	switch style {
	case figure.LineDashed:
		pattern = []float64{3.7, 1.6}
	case figure.LineDotted:
		pattern = []float64{1, 1.65}
	case figure.LineDashDot:
		pattern = []float64{6.4, 1.6, 1, 1.6}
	default:
		return nil
	}
	for i := range pattern {
		pattern[i] *= unit
	}
	return pattern
}

// splitLines splits multi-line text.
func splitLines(s string) []string {
	return strings.Split(s, "\n")
}

// blockTop returns the y of the first line's vertical centre for a text
// block of n lines anchored at y.
func blockTop(y, size float64, n int, v Align) float64 {
	h := size * lineSpacing * float64(n-1)
	switch v {
	case AlignStart:
		return y + size/2
	case AlignEnd:
		return y - h - size/2
	default:
		return y - h/2
	}
}

// anchorX returns the left edge of a line of width w anchored at x.
func anchorX(x, w float64, h Align) float64 {
	switch h {
	case AlignStart:
		return x
	case AlignEnd:
		return x - w
	default:
		return x - w/2
	}
}
