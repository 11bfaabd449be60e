package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // icon formats
	_ "image/png"
	"io/fs"
	"os"

	"github.com/ha1tch/provfig/pkg/figure"
)

// ErrIconMissing is returned when an icon layer points at a file that does
// not exist. It wraps fs.ErrNotExist.
var ErrIconMissing = fmt.Errorf("icon missing: %w", fs.ErrNotExist)

// Icons holds decoded icon images keyed by path.
type Icons map[string]image.Image

// LoadIcons decodes every icon referenced by fig. Relative paths are
// resolved against fsys. A missing file is reported as ErrIconMissing and
// nothing is drawn.
func LoadIcons(fsys fs.FS, fig *figure.Figure) (Icons, error) {
	icons := make(Icons)
	for _, l := range fig.Icons {
		if _, ok := icons[l.Path]; ok {
			continue
		}
		img, err := decodeIcon(fsys, l.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: layer %q: %s", ErrIconMissing, l.Name, l.Path)
			}
			return nil, fmt.Errorf("icon layer %q: %w", l.Name, err)
		}
		icons[l.Path] = img
	}
	return icons, nil
}

func decodeIcon(fsys fs.FS, path string) (image.Image, error) {
	var (
		f   fs.File
		err error
	)
	if fs.ValidPath(path) {
		f, err = fsys.Open(path)
	} else {
		// Absolute or parent-relative paths bypass the figure directory.
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// iconSize returns the drawn size of img in points: native pixels times
// the layer zoom.
func iconSize(img image.Image, zoom float64) (w, h float64) {
	b := img.Bounds()
	return float64(b.Dx()) * zoom, float64(b.Dy()) * zoom
}
