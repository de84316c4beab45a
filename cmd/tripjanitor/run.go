package main

import (
	"github.com/spf13/cobra"

	"github.com/wdm0006/tripjanitor/pkg/pipeline"
)

func newRunCmd(a *app) *cobra.Command {
	var req pipeline.Request
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean and enrich every service for a month range",
		Long: "Clean, then enrich, the raw file of every service for every month in\n" +
			"--from..--to. Per-file failures are reported and do not change the exit status.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := a.runner.Run(cmd.Context(), req)
			printStatuses(cmd, statuses...)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.From, "from", "", "first month, YYYY-MM")
	f.StringVar(&req.To, "to", "", "last month, YYYY-MM (inclusive)")
	f.StringSliceVar(&req.Services, "services", nil, "services to process (default: config services)")
	f.BoolVar(&req.Overwrite, "overwrite", false, "recompute existing outputs")
	f.BoolVar(&req.Enrich, "enrich", true, "join zone and weather reference data")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newCleanCmd(a *app) *cobra.Command {
	var in, out, service string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean one raw trip file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printStatuses(cmd, a.runner.Clean(cmd.Context(), in, out, service, overwrite))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in, "in", "", "raw trip file")
	f.StringVar(&out, "out", "", "cleaned output file")
	f.StringVar(&service, "service", "", "service of the input (yellow, green, fhvhv)")
	f.BoolVar(&overwrite, "overwrite", false, "replace an existing output")
	for _, name := range []string{"in", "out", "service"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEnrichCmd(a *app) *cobra.Command {
	var file, zones, weather string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Join a cleaned file with zone and weather reference data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if zones == "" {
				zones = a.cfg.Paths.ZoneLookup
			}
			if !cmd.Flags().Changed("weather") {
				weather = a.cfg.Paths.Weather
			}
			printStatuses(cmd, a.runner.Enrich(cmd.Context(), file, zones, weather, overwrite))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&file, "file", "", "cleaned file, rewritten in place")
	f.StringVar(&zones, "zones", "", "zone lookup table (default: paths.zone_lookup)")
	f.StringVar(&weather, "weather", "", "hourly weather table; empty skips the weather join (default: paths.weather)")
	f.BoolVar(&overwrite, "overwrite", false, "re-enrich an enriched file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
