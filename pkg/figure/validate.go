package figure

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ha1tch/provfig/pkg/province"
)

var (
	// ErrPanelCount is returned when the number of panels does not match
	// the grid.
	ErrPanelCount = errors.New("panel count does not match grid")
	// ErrInvalid wraps every other fatal definition problem.
	ErrInvalid = errors.New("invalid figure")
)

// Warning is a non-fatal problem found in a definition.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// Validate checks f. Structural problems are returned as an error; unknown
// acronyms and malformed coordinates are returned as warnings because the
// renderer can proceed without them.
func Validate(f *Figure) ([]Warning, error) {
	if f.Rows < 1 || f.Cols < 1 {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalid, f.Rows, f.Cols)
	}
	if len(f.Panels) != f.PanelCount() {
		return nil, fmt.Errorf("%w: %d panels for a %dx%d grid, want %d",
			ErrPanelCount, len(f.Panels), f.Rows, f.Cols, f.PanelCount())
	}
	if f.Size[0] <= 0 || f.Size[1] <= 0 {
		return nil, fmt.Errorf("%w: size %gx%g", ErrInvalid, f.Size[0], f.Size[1])
	}
	if f.DPI <= 0 {
		return nil, fmt.Errorf("%w: dpi %g", ErrInvalid, f.DPI)
	}
	if f.Pad < 0 || f.NorthExtra < 0 {
		return nil, fmt.Errorf("%w: negative padding", ErrInvalid)
	}
	for i, l := range f.Icons {
		if l.Path == "" {
			return nil, fmt.Errorf("%w: icons[%d] has no path", ErrInvalid, i)
		}
	}

	v := &validator{}
	for i, p := range f.Panels {
		v.acronyms(fmt.Sprintf("panels[%d].acronyms", i), p.Acronyms)
		v.acronyms(fmt.Sprintf("panels[%d].label_acronyms", i), p.LabelAcronyms)
		v.legend(fmt.Sprintf("panels[%d].legend", i), p.Legend)
	}
	v.legend("legend", f.Legend)
	v.acronyms("extent_acronyms", f.ExtentAcronyms)
	for i, l := range f.Icons {
		v.acronyms(fmt.Sprintf("icons[%d].acronyms", i), l.Acronyms)
	}

	for _, acr := range sortedKeys(f.Styles) {
		s := f.Styles[acr]
		field := "styles." + acr
		v.acronym(field, acr)
		v.coord(field+".xy", s.XY)
		v.coord(field+".label_offset", s.LabelOffset)
		v.coord(field+".line_start", s.LineStart)
		if s.FontSize != nil && *s.FontSize <= 0 {
			v.warn(field+".font_size", "must be positive, default used")
		}
	}
	for _, k := range f.droppedStyleKeys {
		v.warn("styles."+strings.TrimSpace(k), "duplicate key after trimming %q, ignored", k)
	}
	for _, acr := range sortedKeys(f.AtlanticManual) {
		field := "atlantic_manual." + acr
		v.acronym(field, acr)
		v.coord(field, f.AtlanticManual[acr])
	}
	return v.warnings, nil
}

type validator struct {
	warnings []Warning
}

func (v *validator) warn(field, format string, args ...any) {
	v.warnings = append(v.warnings, Warning{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) acronym(field, acr string) {
	if province.IsCanonical(acr) {
		return
	}
	if s, ok := province.Suggest(acr); ok {
		v.warn(field, "unknown acronym %q, did you mean %q?", acr, s)
		return
	}
	v.warn(field, "unknown acronym %q", acr)
}

func (v *validator) acronyms(field string, acrs []string) {
	for _, a := range acrs {
		v.acronym(field, a)
	}
}

func (v *validator) coord(field string, c Coord) {
	if !c.IsSet() {
		return
	}
	if _, _, ok := c.Value(); !ok {
		v.warn(field, "%v is not a numeric pair, ignored", c.Raw())
	}
}

func (v *validator) legend(field string, entries []LegendEntry) {
	for i, e := range entries {
		ef := fmt.Sprintf("%s[%d]", field, i)
		if e.Heading {
			if len(e.Acronyms) > 0 {
				v.warn(ef, "heading %q lists acronyms, they are not coloured", e.Label)
			}
			continue
		}
		switch e.LineStyle {
		case "", LineSolid, LineDashed, LineDotted, LineDashDot:
		default:
			v.warn(ef+".line_style", "unknown line style %q, solid used", e.LineStyle)
		}
		v.acronyms(ef+".acronyms", e.Acronyms)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
