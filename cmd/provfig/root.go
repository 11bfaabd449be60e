package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ha1tch/provfig/internal/config"
	"github.com/ha1tch/provfig/internal/logger"
	"github.com/ha1tch/provfig/pkg/figure"
	"github.com/ha1tch/provfig/pkg/province"
)

// app is the state shared by all subcommands.
type app struct {
	cfg config.Config
	log *slog.Logger

	envFile   string
	logLevel  string
	logFormat string
	data      string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "provfig",
		Short: "provfig - Canadian province map figures",
		Long: `Render multi-panel choropleth figures of Canadian provinces and
territories from a boundary dataset and a declarative figure definition.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file with PROVFIG_* settings")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&a.data, "data", "", "boundary dataset (.gpkg, .shp, .geojson)")

	root.AddCommand(
		newRenderCmd(a),
		newLabelsCmd(a),
		newSimplifyCmd(a),
		newTetraCmd(a),
		newPreviewCmd(a),
		newInfoCmd(a),
		newFiguresCmd(a),
	)
	return root
}

// setup loads configuration and installs the logger. Flags win over the
// environment.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if a.data != "" {
		cfg.Data = a.data
	}
	a.cfg = cfg
	a.log = logger.Setup(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// loadFigure resolves and validates a figure before any data is read, so
// definition errors surface first.
func (a *app) loadFigure(ref string) (*figure.Figure, error) {
	fig, err := figure.Load(ref)
	if err != nil {
		return nil, err
	}
	if _, err := figure.Validate(fig); err != nil {
		return nil, fmt.Errorf("figure %q: %w", fig.Name, err)
	}
	return fig, nil
}

func (a *app) loadDataset() (*province.Dataset, error) {
	ds, err := province.Read(a.cfg.Data, province.DefaultReadOptions())
	if err != nil {
		return nil, err
	}
	a.log.Info("dataset_loaded",
		"path", ds.Source(),
		"features", ds.Len(),
		"labelled", len(ds.Labelled()),
		"crs", ds.CRS().String(),
	)
	return ds, nil
}

// outputPath places name under the configured figure directory unless it
// already names a directory.
func (a *app) outputPath(name string) string {
	if filepath.Base(name) != name {
		return name
	}
	return filepath.Join(a.cfg.FigureDir, name)
}
