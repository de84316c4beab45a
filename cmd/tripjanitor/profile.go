package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wdm0006/tripjanitor/pkg/io/tableio"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/profile"
)

func newProfileCmd(a *app) *cobra.Command {
	var topK int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "profile FILE...",
		Short: "Summarize the columns of one or more trip tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := profile.NewCollector(j.Schema{}, topK)
			for _, path := range args {
				f, err := tableio.Read(path)
				if err != nil {
					return err
				}
				a.logger.Debug("profiled", zap.String("file", path), zap.Int("rows", f.Rows()))
				c.ConsumeFrame(f)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(c.ReportJSON())
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), c.ReportText())
			return err
		},
	}
	cmd.Flags().IntVar(&topK, "top", 5, "most frequent values shown per string column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}
