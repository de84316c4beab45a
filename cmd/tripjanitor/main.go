package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wdm0006/tripjanitor/pkg/config"
	"github.com/wdm0006/tripjanitor/pkg/logging"
	"github.com/wdm0006/tripjanitor/pkg/pipeline"
)

var version = "0.1.0-dev"

// app is what every subcommand shares once the root flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	textfile   string

	cfg    config.Config
	logger *zap.Logger
	runner *pipeline.Runner
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "tripjanitor",
		Short:        "Clean and enrich TLC trip record files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.finish()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (.yaml, .toml or .json)")
	pf.StringVar(&a.logLevel, "log-level", "", "override log.level")
	pf.StringVar(&a.logFormat, "log-format", "", "override log.format (json|console)")
	pf.StringVar(&a.textfile, "metrics-textfile", "", "override metrics.textfile")

	root.AddCommand(
		newRunCmd(a),
		newCleanCmd(a),
		newEnrichCmd(a),
		newProfileCmd(a),
		newExportCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "tripjanitor", version)
			},
		},
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.textfile != "" {
		cfg.Metrics.Textfile = a.textfile
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.With(zap.String("command", cmd.Name()))
	a.runner = pipeline.New(cfg, pipeline.WithLogger(a.logger))
	return nil
}

func (a *app) finish() error {
	if a.runner == nil {
		return nil
	}
	defer func() { _ = a.logger.Sync() }()
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.runner.Metrics().WriteTextfile(path); err != nil {
			return fmt.Errorf("metrics textfile: %w", err)
		}
	}
	return nil
}

// printStatuses writes one line per file.
func printStatuses(cmd *cobra.Command, statuses ...pipeline.Status) {
	for _, st := range statuses {
		fmt.Fprintln(cmd.OutOrStdout(), st)
	}
}
