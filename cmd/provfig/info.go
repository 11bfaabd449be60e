package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/province"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [dataset]",
		Short: "Show dataset information",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Data
			if len(args) == 1 {
				path = args[0]
			}
			ds, err := province.Read(path, province.DefaultReadOptions())
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), ds)
			return nil
		},
	}
}

func printInfo(w io.Writer, ds *province.Dataset) {
	b := ds.Bounds()
	xspan, yspan := ds.Spans()

	vertices := 0
	var unmapped []string
	for _, p := range ds.Provinces() {
		if p.Geometry != nil {
			vertices += province.VertexCount(p.Geometry)
		}
		if !p.Labelled() {
			unmapped = append(unmapped, p.Name)
		}
	}

	fmt.Fprintf(w, "Source:   %s\n", ds.Source())
	fmt.Fprintf(w, "Layer:    %s\n", ds.Layer())
	fmt.Fprintf(w, "CRS:      %s\n", ds.CRS())
	fmt.Fprintf(w, "Features: %d\n", ds.Len())
	fmt.Fprintf(w, "Vertices: %d\n", vertices)
	fmt.Fprintf(w, "Bounds:   (%.2f, %.2f) - (%.2f, %.2f)\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	fmt.Fprintf(w, "Spans:    %.2f x %.2f\n", xspan, yspan)
	fmt.Fprintf(w, "Acronyms: %s\n", strings.Join(ds.Acronyms(), " "))
	if len(unmapped) > 0 {
		fmt.Fprintf(w, "Unmapped: %s\n", strings.Join(unmapped, ", "))
	}
}

func newFiguresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "figures [name]",
		Short: "List built-in figures, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				fig, err := figure.Load(args[0])
				if err != nil {
					return err
				}
				data, err := figure.Marshal(fig)
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			for _, name := range figure.Builtins() {
				fig, err := figure.Builtin(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-24s %dx%d  %s\n", name, fig.Rows, fig.Cols, fig.Description)
			}
			return nil
		},
	}
}
