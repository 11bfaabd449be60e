package province

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadOptions selects the attribute columns and layer to read.
type ReadOptions struct {
	NameField string // column holding the bilingual name, default "PRNAME"
	AbbrField string // column holding the census abbreviation, default "PREABBR"
	Layer     string // GeoPackage table; empty selects the first feature table
}

// DefaultReadOptions returns the census boundary file column names.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		NameField: "PRNAME",
		AbbrField: "PREABBR",
	}
}

func (o ReadOptions) withDefaults() ReadOptions {
	d := DefaultReadOptions()
	if o.NameField == "" {
		o.NameField = d.NameField
	}
	if o.AbbrField == "" {
		o.AbbrField = d.AbbrField
	}
	return o
}

// Read loads a dataset, choosing the decoder from the file extension.
func Read(path string, opts ReadOptions) (*Dataset, error) {
	opts = opts.withDefaults()

	var (
		provinces []Province
		crs       CRS
		layer     string
		err       error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		provinces, crs, err = ParseGeoJSON(data, opts)
	case ".shp":
		provinces, crs, err = readShapefile(path, opts)
	case ".gpkg":
		provinces, crs, layer, err = readGeoPackage(path, opts)
	default:
		return nil, fmt.Errorf("unknown dataset format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(provinces) == 0 {
		return nil, fmt.Errorf("read %s: no features", path)
	}

	ds := NewDataset(provinces, crs, path)
	if layer != "" {
		ds = ds.WithLayer(layer)
	}
	return ds, nil
}

// Write stores a dataset, choosing the encoder from the file extension.
// An existing file is replaced.
func Write(path string, d *Dataset) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		data, err := ToGeoJSON(d, true)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case ".gpkg":
		return writeGeoPackage(path, d)
	default:
		return fmt.Errorf("unknown output format: %s", filepath.Ext(path))
	}
}
