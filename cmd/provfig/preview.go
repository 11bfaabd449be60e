package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/provfig/pkg/placement"
	"github.com/ha1tch/provfig/pkg/preview"
)

func newPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <figure|file.yaml>",
		Short: "Show a figure in the terminal",
		Long: `Show the panels of a figure in the terminal with labels at their
resolved positions. Tab or the arrow keys switch panels; q or Esc quits.`,
		Args: cobra.ExactArgs(1),
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

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer screen.Fini()

			return preview.New(screen, ds, fig, placements).Run(cmd.Context())
		},
	}
}
