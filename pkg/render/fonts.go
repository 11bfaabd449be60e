package render

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	regularFont = mustParseFont(goregular.TTF)
	boldFont    = mustParseFont(gobold.TTF)
)

func mustParseFont(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(err) // should never happen with embedded font
	}
	return f
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache hands out Go font faces at one resolution.
type faceCache struct {
	dpi   float64
	faces map[faceKey]font.Face
}

func newFaceCache(dpi float64) *faceCache {
	return &faceCache{dpi: dpi, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) face(size float64, bold bool) font.Face {
	k := faceKey{size, bold}
	if f, ok := c.faces[k]; ok {
		return f
	}
	fnt := regularFont
	if bold {
		fnt = boldFont
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		panic(err)
	}
	c.faces[k] = f
	return f
}

// measure returns the advance width and line height of s in the cache's
// units (points at 72 dpi, pixels otherwise). Multi-line strings report
// the widest line and the full block height.
func (c *faceCache) measure(s string, size float64, bold bool) (w, h float64) {
	f := c.face(size, bold)
	lines := splitLines(s)
	for _, l := range lines {
		lw := float64(font.MeasureString(f, l)) / 64
		if lw > w {
			w = lw
		}
	}
	m := f.Metrics()
	lineH := float64(m.Ascent+m.Descent) / 64
	h = lineH + size*c.dpi/72*lineSpacing*float64(len(lines)-1)
	return w, h
}
