package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rxtally/dispense-cli/internal/ndc"
)

var (
	packagesTarget  float64
	packagesDrug    string
	packagesCatalog string
	packagesTopN    int
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Rank package options for an already-known target quantity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if packagesTarget <= 0 {
			return eris.Errorf("--target must be positive, got %g", packagesTarget)
		}

		entries, err := resolveCatalog(ctx, packagesCatalog, packagesDrug)
		if err != nil {
			return err
		}

		// Parse descriptors for entries without a numeric size.
		skipped := 0
		prepared := entries[:0]
		for _, e := range entries {
			if e.PackageSize <= 0 {
				size, err := ndc.ParsePackageSize(e.Descriptor)
				if err != nil {
					skipped++
					continue
				}
				e.PackageSize = size
			}
			prepared = append(prepared, e)
		}

		topN := packagesTopN
		if topN <= 0 {
			topN = cfg.Selector.TopN
		}
		selections, err := ndc.Select(ctx, prepared, packagesTarget, topN)
		if err != nil {
			return err
		}

		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "skipped %d unparseable package(s)\n", skipped)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tNDC\tSIZE\tPACKAGES\tTOTAL\tOVERFILL")
		for i, sel := range selections {
			fmt.Fprintf(w, "%d\t%s\t%g\t%d\t%g\t%g\n",
				i+1, sel.Code, sel.PackageSize, sel.RepeatCount, sel.TotalQuantity, sel.Overfill)
		}
		return w.Flush()
	},
}

func init() {
	packagesCmd.Flags().Float64Var(&packagesTarget, "target", 0, "target quantity (required)")
	packagesCmd.Flags().StringVar(&packagesDrug, "drug", "", "drug name for NDC Directory lookup")
	packagesCmd.Flags().StringVar(&packagesCatalog, "catalog", "", "path to a JSON catalog file")
	packagesCmd.Flags().IntVar(&packagesTopN, "top", 0, "number of ranked options (default from config)")
	_ = packagesCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(packagesCmd)
}
