package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ha1tch/provfig/pkg/province"
	"github.com/ha1tch/provfig/pkg/simplify"
)

func newSimplifyCmd(a *app) *cobra.Command {
	var (
		tolerance   float64
		standardize bool
		abbrField   string
		layer       string
	)
	cmd := &cobra.Command{
		Use:   "simplify <input> <output>",
		Short: "Simplify boundary geometry and write GeoJSON or GeoPackage",
		Long: `Reduce the vertex count of every province while keeping rings simple.
The tolerance is in dataset units (metres for the census projection).
The output format follows the extension (.geojson or .gpkg); an existing
file is replaced.`,
		Example: `  provfig simplify lpr_000b21a_e.shp "Simplified provinces - 10 km.gpkg" --tolerance 10000`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			opts := province.DefaultReadOptions()
			opts.Layer = layer
			if abbrField != "" {
				opts.AbbrField = abbrField
			}
			ds, err := province.Read(in, opts)
			if err != nil {
				return err
			}
			a.log.Info("dataset_loaded", "path", in, "features", ds.Len(), "crs", ds.CRS().String())

			if standardize {
				var n int
				ds, n, err = simplify.StandardizeAbbreviations(ds, opts.AbbrField)
				if err != nil {
					return err
				}
				a.log.Info("abbreviations_standardized", "field", opts.AbbrField, "changed", n)
			}

			sds, st, err := simplify.Dataset(cmd.Context(), ds, tolerance)
			if err != nil {
				return fmt.Errorf("simplify %s: %w", in, err)
			}
			if dir := filepath.Dir(out); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}
			if err := province.Write(out, sds); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			a.log.Info("dataset_simplified",
				"path", out,
				"tolerance", tolerance,
				"features", st.Features,
				"vertices_before", st.VerticesBefore,
				"vertices_after", st.VerticesAfter,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d features, %d -> %d vertices (%.1f%% removed)\n",
				out, st.Features, st.VerticesBefore, st.VerticesAfter, 100*st.Reduction())
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64VarP(&tolerance, "tolerance", "t", 10000, "simplification tolerance in dataset units")
	f.BoolVar(&standardize, "standardize", false, "rewrite the abbreviation column to province codes")
	f.StringVar(&abbrField, "abbr-field", "", "abbreviation column (default PREABBR)")
	f.StringVar(&layer, "layer", "", "GeoPackage layer to read")
	return cmd
}
