package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/placement"
	"github.com/ha1tch/provfig/pkg/render"
)

type renderFlags struct {
	output       string
	formats      []string
	dpi          float64
	all          bool
	skipExisting bool
	report       bool
}

func newRenderCmd(a *app) *cobra.Command {
	var fl renderFlags
	cmd := &cobra.Command{
		Use:   "render [figure|file.yaml]...",
		Short: "Render figures to PDF, PNG or SVG",
		Long: `Render one or more figures. A figure is a built-in name (see
"provfig figures") or a YAML definition file. Output goes to the figure
directory as "<output>.<format>" unless -o names a file.`,
		Example: `  provfig render governance
  provfig render --all --format pdf,png
  provfig render my-figure.yaml -o out/figure.svg --report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fl.all {
				args = append(args, figure.Builtins()...)
			}
			if len(args) == 0 {
				return errors.New("no figure given; name one or pass --all")
			}
			if fl.output != "" && len(args) > 1 {
				return errors.New("-o needs exactly one figure")
			}
			return a.runRender(cmd, args, fl)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.output, "output", "o", "", "output file; the extension selects the format")
	f.StringSliceVar(&fl.formats, "format", []string{"pdf"}, "output formats when -o is not given")
	f.Float64Var(&fl.dpi, "dpi", 0, "raster resolution, overrides PROVFIG_DPI and the figure")
	f.BoolVar(&fl.all, "all", false, "render every built-in figure")
	f.BoolVar(&fl.skipExisting, "skip-existing", false, "leave existing output files alone")
	f.BoolVar(&fl.report, "report", false, "print the label coordinate table")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, refs []string, fl renderFlags) error {
	figs := make([]*figure.Figure, 0, len(refs))
	for _, ref := range refs {
		fig, err := a.loadFigure(ref)
		if err != nil {
			return err
		}
		switch {
		case fl.dpi > 0:
			fig.DPI = fl.dpi
		case a.cfg.DPISet:
			fig.DPI = a.cfg.DPI
		}
		figs = append(figs, fig)
	}

	ds, err := a.loadDataset()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	for _, fig := range figs {
		var paths []string
		if fl.output != "" {
			paths = []string{fl.output}
		} else {
			for _, ext := range fl.formats {
				paths = append(paths, a.outputPath(fig.OutputName()+"."+ext))
			}
		}

		var todo []string
		for _, p := range paths {
			if _, err := render.FormatFor(p); err != nil {
				return err
			}
			if fl.skipExisting {
				if _, err := os.Stat(p); err == nil {
					a.log.Info("figure_skipped", "figure", fig.Name, "path", p)
					continue
				}
			}
			todo = append(todo, p)
		}
		if len(todo) == 0 && !fl.report {
			continue
		}

		r, err := render.New(ds, fig, render.Options{Logger: a.log})
		if err != nil {
			return err
		}
		if fl.report {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", fig.Name)
			if err := placement.Report(cmd.OutOrStdout(), ds.CRS(), r.Placements()); err != nil {
				return err
			}
		}
		for _, p := range todo {
			if err := r.RenderFile(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func newLabelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "labels <figure|file.yaml>",
		Short: "Print resolved label coordinates without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fig, err := a.loadFigure(args[0])
			if err != nil {
				return err
			}
			ds, err := a.loadDataset()
			if err != nil {
				return err
			}
			placements := placement.NewResolver(ds, fig, placement.WithLogger(a.log)).ResolveAll()
			return placement.Report(cmd.OutOrStdout(), ds.CRS(), placements)
		},
	}
}
