package province

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// jsonCollection is the GeoJSON representation of a dataset.
type jsonCollection struct {
	Type     string        `json:"type"`
	Name     string        `json:"name,omitempty"`
	CRS      *jsonCRS      `json:"crs,omitempty"`
	Features []jsonFeature `json:"features"`
}

type jsonCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type jsonFeature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   json.RawMessage        `json:"geometry"`
}

var crsURN = regexp.MustCompile(`(?i)^(?:urn:ogc:def:crs:)?([A-Za-z]+):(?:[0-9.]*:)?:?([0-9]+)$`)

// ParseGeoJSON parses a FeatureCollection of Polygon/MultiPolygon features.
func ParseGeoJSON(data []byte, opts ReadOptions) ([]Province, CRS, error) {
	opts = opts.withDefaults()

	var j jsonCollection
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, CRS{}, err
	}
	if j.Type != "FeatureCollection" {
		return nil, CRS{}, fmt.Errorf("geojson: expected FeatureCollection, got %q", j.Type)
	}

	var crs CRS
	if j.CRS != nil {
		crs = parseCRSName(j.CRS.Properties.Name)
	}

	provinces := make([]Province, 0, len(j.Features))
	for i, f := range j.Features {
		if len(f.Geometry) == 0 || bytes.Equal(f.Geometry, []byte("null")) {
			return nil, CRS{}, fmt.Errorf("geojson: feature %d has no geometry", i)
		}
		g, err := decodeGeometry(f.Geometry)
		if err != nil {
			return nil, CRS{}, fmt.Errorf("geojson: feature %d: %w", i, err)
		}

		attrs := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			attrs[k] = propertyString(v)
		}
		name := attrs[opts.NameField]
		provinces = append(provinces, Province{
			Name:       name,
			Acronym:    deriveAcronym(name, attrs[opts.AbbrField]),
			Geometry:   g,
			Attributes: attrs,
		})
	}
	return provinces, crs, nil
}

func parseCRSName(name string) CRS {
	crs := CRS{Name: name}
	if m := crsURN.FindStringSubmatch(name); m != nil {
		crs.Authority = m[1]
		crs.Code, _ = strconv.Atoi(m[2])
	}
	return crs
}

func propertyString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func decodeGeometry(raw json.RawMessage) (geom.Polygonal, error) {
	g, err := geojson.Decode(raw)
	if err != nil {
		return nil, err
	}
	p, ok := g.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}
	return p, nil
}

// ToGeoJSON encodes provinces as a FeatureCollection.
func ToGeoJSON(d *Dataset, pretty bool) ([]byte, error) {
	j := jsonCollection{
		Type:     "FeatureCollection",
		Name:     d.Layer(),
		Features: make([]jsonFeature, 0, d.Len()),
	}

	crs := d.CRS()
	if crs.Authority != "" && crs.Code != 0 {
		j.CRS = &jsonCRS{Type: "name"}
		j.CRS.Properties.Name = fmt.Sprintf("urn:ogc:def:crs:%s::%d", crs.Authority, crs.Code)
	} else if crs.Name != "" {
		j.CRS = &jsonCRS{Type: "name"}
		j.CRS.Properties.Name = crs.Name
	}

	for _, p := range d.Provinces() {
		props := make(map[string]interface{}, len(p.Attributes))
		keys := make([]string, 0, len(p.Attributes))
		for k := range p.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			props[k] = p.Attributes[k]
		}

		g, err := encodeGeometry(p.Geometry)
		if err != nil {
			return nil, err
		}
		j.Features = append(j.Features, jsonFeature{
			Type:       "Feature",
			Properties: props,
			Geometry:   g,
		})
	}

	if pretty {
		return json.MarshalIndent(j, "", "  ")
	}
	return json.Marshal(j)
}

func encodeGeometry(g geom.Polygonal) (json.RawMessage, error) {
	switch g.(type) {
	case geom.Polygon, geom.MultiPolygon:
	default:
		return nil, fmt.Errorf("geojson: unsupported geometry %T", g)
	}
	return geojson.Encode(g)
}
