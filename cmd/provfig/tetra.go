package main

import (
	"github.com/spf13/cobra"

	"github.com/ha1tch/provfig/pkg/tetra"
)

func newTetraCmd(a *app) *cobra.Command {
	opts := tetra.DefaultOptions()
	var (
		outputs []string
		noText  bool
	)
	cmd := &cobra.Command{
		Use:   "tetra",
		Short: "Draw the tetrahedron illustration",
		Example: `  provfig tetra
  provfig tetra -o tetra.svg --labels --axes --elev 30 --azim 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(outputs) == 0 {
				outputs = []string{
					a.outputPath("Figure 1 - Tetrahedron.pdf"),
					a.outputPath("Figure 1 - Tetrahedron.png"),
				}
			}
			if !cmd.Flags().Changed("dpi") && a.cfg.DPISet {
				opts.DPI = a.cfg.DPI
			}
			opts.ShowText = !noText
			for _, out := range outputs {
				if err := tetra.RenderFile(cmd.Context(), out, opts); err != nil {
					return err
				}
				a.log.Info("figure_saved", "figure", "tetrahedron", "path", out)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&outputs, "output", "o", nil, "output files (default the PDF and PNG in the figure directory)")
	f.Float64Var(&opts.Elev, "elev", opts.Elev, "view elevation in degrees")
	f.Float64Var(&opts.Azim, "azim", opts.Azim, "view azimuth in degrees")
	f.Float64Var(&opts.DPI, "dpi", opts.DPI, "raster resolution, overrides PROVFIG_DPI")
	f.Float64Var(&opts.FontSize, "font-size", opts.FontSize, "description font size in points")
	f.BoolVar(&opts.ShowLabels, "labels", opts.ShowLabels, "draw the vertex letters")
	f.BoolVar(&noText, "no-text", false, "omit the vertex descriptions")
	f.BoolVar(&opts.ShowAxes, "axes", opts.ShowAxes, "draw the axes box")
	return cmd
}
