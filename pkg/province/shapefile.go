package province

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
)

// readShapefile decodes an ESRI shapefile. The CRS is taken from the .prj
// sidecar, which is also parsed to make sure it is a usable projection.
func readShapefile(path string, opts ReadOptions) ([]Province, CRS, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, CRS{}, err
	}
	defer dec.Close()

	var crs CRS
	prj := strings.TrimSuffix(path, ".shp") + ".prj"
	if wkt, rerr := os.ReadFile(prj); rerr == nil {
		if _, serr := dec.SR(); serr != nil {
			return nil, CRS{}, fmt.Errorf("projection %s: %w", prj, serr)
		}
		crs = crsFromWKT(string(wkt))
	}

	var provinces []Province
	for {
		g, fields, more := dec.DecodeRowFields(opts.NameField, opts.AbbrField)
		if !more {
			break
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			return nil, CRS{}, fmt.Errorf("record %d: expected polygon, got %T", len(provinces), g)
		}
		attrs := make(map[string]string, len(fields))
		for k, v := range fields {
			attrs[k] = strings.TrimSpace(v)
		}
		name := attrs[opts.NameField]
		provinces = append(provinces, Province{
			Name:       name,
			Acronym:    deriveAcronym(name, attrs[opts.AbbrField]),
			Geometry:   poly,
			Attributes: attrs,
		})
	}
	if err := dec.Error(); err != nil {
		return nil, CRS{}, err
	}
	return provinces, crs, nil
}

// crsFromWKT extracts the name and top-level authority of a WKT string.
func crsFromWKT(wkt string) CRS {
	crs := CRS{Definition: strings.TrimSpace(wkt)}
	if i := strings.Index(wkt, "[\""); i >= 0 {
		rest := wkt[i+2:]
		if j := strings.Index(rest, "\""); j >= 0 {
			crs.Name = rest[:j]
		}
	}
	// The outermost AUTHORITY node is the last one in the string.
	if i := strings.LastIndex(wkt, "AUTHORITY[\""); i >= 0 {
		var auth string
		var code int
		if _, err := fmt.Sscanf(strings.NewReplacer("\"", " ", ",", " ", "]", " ").Replace(wkt[i+len("AUTHORITY["):]), "%s %d", &auth, &code); err == nil {
			crs.Authority, crs.Code = auth, code
		}
	}
	return crs
}
