package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Colors used in rendering
var (
	colorBlack    = color.NRGBA{0, 0, 0, 255}
	colorWhite    = color.NRGBA{255, 255, 255, 255}
	colorNone     = color.NRGBA{}
	colorLabelBox = color.NRGBA{0xF5, 0xF5, 0xF5, 242} // #F5F5F5 at 0.95
	colorLeader   = color.NRGBA{0, 0, 0, 153}          // black at 0.6
	colorFrame    = color.NRGBA{0xCC, 0xCC, 0xCC, 255}
)

// ParseColor accepts "#rgb", "#rrggbb", CSS/X11 colour names and "none".
// "none" yields a fully transparent colour, which backends skip.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	low := strings.ToLower(s)
	switch {
	case low == "none" || low == "transparent":
		return colorNone, nil
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return colorNone, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{r, g, b, 255}, nil
	}
	if c, ok := colornames.Map[low]; ok {
		return color.NRGBA{c.R, c.G, c.B, 255}, nil
	}
	return colorNone, fmt.Errorf("unknown color %q", s)
}

// withAlpha returns c with opacity a in [0, 1].
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(a*255 + 0.5)
	return c
}

func isNone(c color.NRGBA) bool { return c.A == 0 }

// hex formats c as #rrggbb for vector backends.
func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// opacity returns the alpha of c in [0, 1].
func opacity(c color.NRGBA) float64 {
	return float64(c.A) / 255
}

// colorOr parses s, falling back to def when s is empty. Unparseable
// values also fall back and are reported through bad.
func colorOr(s string, def color.NRGBA, bad func(string, error)) color.NRGBA {
	if s == "" {
		return def
	}
	c, err := ParseColor(s)
	if err != nil {
		if bad != nil {
			bad(s, err)
		}
		return def
	}
	return c
}
