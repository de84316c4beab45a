package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sjwhitworth/golearn/base"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	glad "github.com/wdm0006/tripjanitor/adapters/golearn"
	"github.com/wdm0006/tripjanitor/pkg/io/tableio"
)

func newExportCmd(a *app) *cobra.Command {
	var opt glad.Options
	var out string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write a cleaned or enriched table as golearn ARFF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tableio.Read(args[0])
			if err != nil {
				return err
			}
			inst, err := glad.ToDenseInstances(f, opt)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out != "" {
				fh, err := os.Create(out)
				if err != nil {
					return err
				}
				defer fh.Close()
				w = fh
			}
			relation := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if err := writeARFF(w, inst, relation); err != nil {
				return err
			}
			a.logger.Info("exported", zap.String("file", args[0]), zap.Int("rows", f.Rows()))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opt.Columns, "columns", nil, "columns to export, in order (default all)")
	cmd.Flags().StringVar(&opt.Class, "class", "", "column used as the class attribute")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default stdout)")
	return cmd
}

func writeARFF(w io.Writer, inst *base.DenseInstances, relation string) error {
	attrs := base.NonClassAttributes(inst)
	attrs = append(attrs, inst.AllClassAttributes()...)
	if err := base.SerializeInstancesToWriterDenseARFFWithAttributes(w, inst, attrs, relation); err != nil {
		return fmt.Errorf("arff: %w", err)
	}
	return nil
}
