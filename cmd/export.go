package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rxtally/dispense-cli/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored run to an xlsx report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "export: load run")
		}
		if run.Result == nil {
			return eris.Errorf("run %s has no result to export (status %s)", run.ID, run.Status)
		}

		out := exportOutput
		if out == "" {
			out = fmt.Sprintf("dispense-%s.xlsx", run.ID[:8])
		}

		if err := export.WriteXLSX(out, run.Request, run.Result); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output path (default dispense-<run>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
