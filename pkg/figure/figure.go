// Package figure holds declarative figure definitions: the grid of panels,
// legends, per-province style overrides and icon layers that drive a render.
package figure

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Figure is one multi-panel map figure.
type Figure struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Rows   int     `yaml:"rows"`
	Cols   int     `yaml:"cols"`
	Panels []Panel `yaml:"panels"`

	Size [2]float64 `yaml:"size"` // width, height in inches
	DPI  float64    `yaml:"dpi"`

	Pad            float64          `yaml:"pad"`             // fraction of span added on every side
	NorthExtra     float64          `yaml:"north_extra"`     // extra fraction of yspan at the top
	ExtentAcronyms []string         `yaml:"extent_acronyms"` // subset for the shared extent
	AtlanticOffset [2]float64       `yaml:"atlantic_offset"` // x, y fractions of the dataset spans
	AtlanticManual map[string]Coord `yaml:"atlantic_manual"`
	Styles         map[string]Style `yaml:"styles"`

	Legend         []LegendEntry `yaml:"legend"`
	LegendAnchor   [2]float64    `yaml:"legend_anchor"` // figure fraction, upper right corner
	LegendFontSize float64       `yaml:"legend_font_size"`
	LegendFrame    bool          `yaml:"legend_frame"`
	HideLegend     bool          `yaml:"hide_legend"`

	NeutralFill     string  `yaml:"neutral_fill"`
	ShowLabels      bool    `yaml:"show_labels"`
	LabelFontSize   float64 `yaml:"label_font_size"`
	LabelBBox       bool    `yaml:"label_bbox"`
	TitleSize       float64 `yaml:"title_size"`
	TitleY          float64 `yaml:"title_y"`
	LeaderThreshold float64 `yaml:"leader_threshold"`

	Icons         []IconLayer `yaml:"icons"`
	IconGapFrac   float64     `yaml:"icon_gap_frac"`
	IconNudgeFrac float64     `yaml:"icon_nudge_frac"`

	Output string `yaml:"output"` // file name stem

	// Raw style keys dropped by Parse because another key trimmed to the
	// same acronym.
	droppedStyleKeys []string
}

// Panel is one subplot of the grid.
type Panel struct {
	Title         string        `yaml:"title"`
	Acronyms      []string      `yaml:"acronyms"`       // provinces filled in this panel
	LabelAcronyms []string      `yaml:"label_acronyms"` // when set, only these are labelled
	Legend        []LegendEntry `yaml:"legend"`
	LegendAnchor  *[2]float64   `yaml:"legend_anchor"` // panel fraction, upper right corner
	TitleY        *float64      `yaml:"title_y"`
}

// Style overrides label drawing for one province.
type Style struct {
	XY          Coord    `yaml:"xy"`
	LabelOffset Coord    `yaml:"label_offset"`
	LineStart   Coord    `yaml:"line_start"`
	FontSize    *float64 `yaml:"font_size"`
	BBox        *bool    `yaml:"bbox"`
	TextColor   string   `yaml:"text_color"`
	LeaderLine  bool     `yaml:"leader_line"`
}

// LegendEntry maps a legend label to a fill and its member provinces.
// Headings are drawn bold without a swatch and colour nothing.
type LegendEntry struct {
	Label     string   `yaml:"label"`
	Color     string   `yaml:"color"`
	Acronyms  []string `yaml:"acronyms"`
	LineStyle string   `yaml:"line_style"`
	TextColor string   `yaml:"text_color"`
	Heading   bool     `yaml:"heading"`
}

// IconLayer stacks an image below the label of each listed province.
type IconLayer struct {
	Name     string   `yaml:"name"`
	Path     string   `yaml:"path"`
	SizePct  float64  `yaml:"size_pct"` // zoom = pct/100 of the native image size
	Acronyms []string `yaml:"acronyms"`
}

// Line styles accepted by legend entries.
const (
	LineSolid   = "solid"
	LineDashed  = "dashed"
	LineDotted  = "dotted"
	LineDashDot = "dashdot"
)

// Default fill colours used when a figure defines no legend at all.
const (
	DefaultGrey       = "#808080"
	DefaultDarkGreen  = "#006400"
	DefaultLightGreen = "#8FBC8F"
)

// Default returns a figure with every tunable at its default.
func Default() Figure {
	return Figure{
		Rows:            1,
		Cols:            1,
		Size:            [2]float64{14, 12},
		DPI:             300,
		Pad:             0.04,
		NorthExtra:      0.09,
		AtlanticOffset:  [2]float64{0.06, 0.03},
		LegendAnchor:    [2]float64{0.98, 0.96},
		LegendFontSize:  9,
		LegendFrame:     true,
		NeutralFill:     "white",
		ShowLabels:      true,
		LabelFontSize:   10,
		LabelBBox:       true,
		TitleSize:       11,
		TitleY:          1.0,
		LeaderThreshold: 1000,
		IconGapFrac:     0.02,
	}
}

// DefaultLegend is the palette applied when no legend is defined anywhere.
func DefaultLegend(neutral string) []LegendEntry {
	return []LegendEntry{
		{Label: "AB / SK / NL / NB / NS", Color: DefaultGrey, Acronyms: []string{"AB", "SK", "NL", "NB", "NS"}},
		{Label: "BC / QC", Color: DefaultDarkGreen, Acronyms: []string{"BC", "QC"}},
		{Label: "ON", Color: DefaultLightGreen, Acronyms: []string{"ON"}},
		{Label: "Other", Color: neutral},
	}
}

// PanelCount returns the number of grid cells.
func (f *Figure) PanelCount() int {
	return f.Rows * f.Cols
}

func (f *Figure) hasPanelLegend() bool {
	for _, p := range f.Panels {
		if len(p.Legend) > 0 {
			return true
		}
	}
	return false
}

// FigureLegend returns the legend drawn once for the whole figure. When no
// legend exists anywhere the default palette is returned.
func (f *Figure) FigureLegend() []LegendEntry {
	if len(f.Legend) > 0 {
		return f.Legend
	}
	if f.hasPanelLegend() {
		return nil
	}
	return DefaultLegend(f.NeutralFill)
}

// Fill is the resolved drawing style of one province within a panel.
type Fill struct {
	Color     string
	LineStyle string
	TextColor string
}

// LegendFills returns the style every legend of panel i assigns, figure
// legend first, later entries winning. Selection by the panel is ignored,
// so label text colours apply to unfilled provinces too.
func (f *Figure) LegendFills(i int) map[string]Fill {
	all := make(map[string]Fill)
	apply := func(entries []LegendEntry) {
		for _, e := range entries {
			if e.Heading {
				continue
			}
			ls := e.LineStyle
			if ls == "" {
				ls = LineSolid
			}
			for _, a := range e.Acronyms {
				all[a] = Fill{Color: e.Color, LineStyle: ls, TextColor: e.TextColor}
			}
		}
	}
	apply(f.FigureLegend())
	if i >= 0 && i < len(f.Panels) {
		apply(f.Panels[i].Legend)
	}
	return all
}

// PanelFills returns the fill of every province selected by panel i.
// Selected provinces without a legend entry get the neutral fill.
func (f *Figure) PanelFills(i int) map[string]Fill {
	out := make(map[string]Fill)
	if i < 0 || i >= len(f.Panels) {
		return out
	}
	all := f.LegendFills(i)
	for _, a := range f.Panels[i].Acronyms {
		if fill, ok := all[a]; ok {
			out[a] = fill
		} else {
			out[a] = Fill{Color: f.NeutralFill, LineStyle: LineSolid}
		}
	}
	return out
}

// PanelLegendAnchor returns where panel i's legend hangs from.
func (f *Figure) PanelLegendAnchor(i int) [2]float64 {
	if i >= 0 && i < len(f.Panels) && f.Panels[i].LegendAnchor != nil {
		return *f.Panels[i].LegendAnchor
	}
	return [2]float64{1.05, 0.85}
}

// PanelTitleY returns the title height of panel i as a panel fraction.
func (f *Figure) PanelTitleY(i int) float64 {
	if i >= 0 && i < len(f.Panels) && f.Panels[i].TitleY != nil {
		return *f.Panels[i].TitleY
	}
	return f.TitleY
}

// Labelled reports whether acronym gets a label in panel i.
func (f *Figure) Labelled(i int, acronym string) bool {
	if !f.ShowLabels || acronym == "" {
		return false
	}
	if i < 0 || i >= len(f.Panels) || len(f.Panels[i].LabelAcronyms) == 0 {
		return true
	}
	for _, a := range f.Panels[i].LabelAcronyms {
		if a == acronym {
			return true
		}
	}
	return false
}

// FontSize returns the label font size for acronym. Sizes that are not
// positive fall back to LabelFontSize.
func (f *Figure) FontSize(acronym string) float64 {
	if s, ok := f.Styles[acronym]; ok && s.FontSize != nil && *s.FontSize > 0 {
		return *s.FontSize
	}
	return f.LabelFontSize
}

// BBox reports whether acronym's label gets a background box.
func (f *Figure) BBox(acronym string) bool {
	if s, ok := f.Styles[acronym]; ok && s.BBox != nil {
		return *s.BBox
	}
	return f.LabelBBox
}

// IconsFor returns the icon layers that apply to acronym, in stacking order.
func (f *Figure) IconsFor(acronym string) []IconLayer {
	var out []IconLayer
	for _, l := range f.Icons {
		for _, a := range l.Acronyms {
			if a == acronym {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// Zoom returns the icon scale factor, never negative.
func (l IconLayer) Zoom() float64 {
	if l.SizePct <= 0 {
		return 0
	}
	return l.SizePct / 100
}

// OutputName returns the file name stem for rendered output.
func (f *Figure) OutputName() string {
	if f.Output != "" {
		return f.Output
	}
	return f.Name
}

// Coord is a coordinate pair as written in a figure file. Any YAML value is
// accepted; it is checked only when used, so a malformed pair falls back to
// the next placement rule instead of failing the whole figure.
type Coord struct {
	raw any
}

// XY returns a well-formed coordinate.
func XY(x, y float64) Coord {
	return Coord{raw: []any{x, y}}
}

// NewCoord wraps an arbitrary value.
func NewCoord(v any) Coord {
	return Coord{raw: v}
}

// IsSet reports whether a value was given at all.
func (c Coord) IsSet() bool { return c.raw != nil }

// Raw returns the value as written.
func (c Coord) Raw() any { return c.raw }

// Value returns the pair when it is a two element sequence of values
// convertible to float64.
func (c Coord) Value() (x, y float64, ok bool) {
	var items []any
	switch t := c.raw.(type) {
	case []any:
		items = t
	case []float64:
		for _, v := range t {
			items = append(items, v)
		}
	case [2]float64:
		return t[0], t[1], true
	case []string:
		for _, v := range t {
			items = append(items, v)
		}
	default:
		return 0, 0, false
	}
	if len(items) != 2 {
		return 0, 0, false
	}
	x, okx := toFloat(items[0])
	y, oky := toFloat(items[1])
	if !okx || !oky {
		return 0, 0, false
	}
	return x, y, true
}

func (c Coord) String() string {
	if x, y, ok := c.Value(); ok {
		return fmt.Sprintf("(%g, %g)", x, y)
	}
	return fmt.Sprintf("%v", c.raw)
}

// UnmarshalYAML keeps the decoded value untouched.
func (c *Coord) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	c.raw = v
	return nil
}

// MarshalYAML writes the value back as it was read.
func (c Coord) MarshalYAML() (any, error) {
	return c.raw, nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
