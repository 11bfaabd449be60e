package render

import (
	"image/color"
	"math"
	"strings"

	"github.com/ha1tch/provfig/pkg/figure"
)

// legendRow is one line of a drawn legend. Spacer rows are blank.
type legendRow struct {
	Label     string
	Fill      color.NRGBA
	LineStyle string
	Heading   bool
	Spacer    bool
}

// legendRows builds the rows of a legend. Swatch entries whose trimmed
// label was already seen are dropped; headings are always kept. Headings
// have no swatch, and every heading after the first row is preceded by a
// blank spacer.
func legendRows(entries []figure.LegendEntry, bad func(string, error)) []legendRow {
	var rows []legendRow
	seen := make(map[string]bool)
	for _, e := range entries {
		label := strings.TrimSpace(e.Label)
		if e.Heading {
			if len(rows) > 0 {
				rows = append(rows, legendRow{Spacer: true})
			}
			rows = append(rows, legendRow{Label: label, Heading: true})
			continue
		}
		if seen[label] {
			continue
		}
		seen[label] = true
		rows = append(rows, legendRow{
			Label:     label,
			Fill:      colorOr(e.Color, colorWhite, bad),
			LineStyle: e.LineStyle,
		})
	}
	return rows
}

// legendStyle controls how a legend block is drawn.
type legendStyle struct {
	FontSize float64
	Frame    bool
}

const (
	swatchW   = 1.8 // in font sizes
	swatchH   = 0.9
	swatchGap = 0.6
	rowHeight = 1.4
	framePad  = 0.5
)

// legendSize returns the block size of rows in points.
func legendSize(c Canvas, rows []legendRow, st legendStyle) (w, h float64) {
	fs := st.FontSize
	for _, r := range rows {
		if r.Spacer {
			continue
		}
		tw, _ := c.MeasureText(r.Label, fs, r.Heading)
		if !r.Heading {
			tw += (swatchW + swatchGap) * fs
		}
		w = math.Max(w, tw)
	}
	h = float64(len(rows)) * rowHeight * fs
	if st.Frame {
		w += 2 * framePad * fs
		h += 2 * framePad * fs
	}
	return w, h
}

// drawLegend draws rows with the block's upper right corner at (x, y).
func drawLegend(c Canvas, rows []legendRow, x, y float64, st legendStyle) {
	if len(rows) == 0 {
		return
	}
	fs := st.FontSize
	w, h := legendSize(c, rows, st)
	left, top := x-w, y
	if st.Frame {
		c.RoundedRect(left, top, w, h, 0.3*fs, withAlpha(colorWhite, 0.8), Stroke{Color: colorFrame, Width: 0.8})
		left += framePad * fs
		top += framePad * fs
	}
	for i, r := range rows {
		if r.Spacer {
			continue
		}
		cy := top + (float64(i)+0.5)*rowHeight*fs
		tx := left
		if !r.Heading {
			sx, sy := left, cy-swatchH*fs/2
			sw := swatchW * fs
			sh := swatchH * fs
			c.Polygon([][]Point{{
				{sx, sy}, {sx + sw, sy}, {sx + sw, sy + sh}, {sx, sy + sh},
			}}, r.Fill, Stroke{Color: colorBlack, Width: 0.5, Dash: dashFor(r.LineStyle, 0.5)})
			tx += (swatchW + swatchGap) * fs
		}
		c.Text(Text{
			X: tx, Y: cy, S: r.Label, Size: fs, Bold: r.Heading,
			Color: colorBlack, HAlign: AlignStart,
		})
	}
}
