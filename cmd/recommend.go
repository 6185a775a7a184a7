package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rxtally/dispense-cli/internal/model"
	"github.com/rxtally/dispense-cli/internal/pipeline"
)

var (
	recommendSig     string
	recommendDays    int
	recommendDrug    string
	recommendCatalog string
	recommendTopN    int
	recommendSave    bool
	recommendJSON    bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend package options for a SIG and days supply",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if recommendDays < 1 || recommendDays > 365 {
			return eris.Errorf("--days must be between 1 and 365, got %d", recommendDays)
		}

		catalog, err := resolveCatalog(ctx, recommendCatalog, recommendDrug)
		if err != nil {
			return err
		}

		topN := recommendTopN
		if topN <= 0 {
			topN = cfg.Selector.TopN
		}
		req := model.Request{
			SigText:    recommendSig,
			DaysSupply: recommendDays,
			DrugName:   recommendDrug,
			Catalog:    catalog,
			TopN:       topN,
		}

		rec, runErr := pipeline.Recommend(ctx, req)

		if recommendSave {
			if err := saveRun(ctx, req, rec, runErr); err != nil {
				zap.L().Warn("recommend: failed to save run", zap.Error(err))
			}
		}
		if runErr != nil {
			return runErr
		}

		if recommendJSON {
			return json.NewEncoder(os.Stdout).Encode(rec)
		}
		printRecommendation(rec)
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringVar(&recommendSig, "sig", "", "free-text prescription instruction (required)")
	recommendCmd.Flags().IntVar(&recommendDays, "days", 30, "days supply (1-365)")
	recommendCmd.Flags().StringVar(&recommendDrug, "drug", "", "drug name for NDC Directory lookup")
	recommendCmd.Flags().StringVar(&recommendCatalog, "catalog", "", "path to a JSON catalog file (skips the directory lookup)")
	recommendCmd.Flags().IntVar(&recommendTopN, "top", 0, "number of ranked options (default from config)")
	recommendCmd.Flags().BoolVar(&recommendSave, "save", false, "persist the run to the store")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "emit JSON instead of a table")
	_ = recommendCmd.MarkFlagRequired("sig")
	rootCmd.AddCommand(recommendCmd)
}

func saveRun(ctx context.Context, req model.Request, rec *model.Recommendation, runErr error) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, req)
	if err != nil {
		return err
	}
	if runErr != nil {
		return st.FailRun(ctx, run.ID, runErr.Error())
	}
	if err := st.CompleteRun(ctx, run.ID, rec); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved run %s\n", run.ID)
	return nil
}

func printRecommendation(rec *model.Recommendation) {
	fmt.Printf("Parsed: %g %s, %d/day (confidence %.2f)\n",
		rec.Sig.DosageAmount, rec.Sig.Unit, rec.Sig.FrequencyPerDay, rec.Sig.Confidence)
	fmt.Printf("Required: %g %s for %d days\n",
		rec.Quantity.Total, rec.Quantity.Unit, rec.Quantity.Breakdown.DaysSupply)
	if rec.Quantity.CanisterCount > 0 {
		fmt.Printf("Canisters: %d\n", rec.Quantity.CanisterCount)
	}
	if rec.SkippedPackages > 0 {
		fmt.Printf("Skipped %d unparseable package(s) of %d\n", rec.SkippedPackages, rec.CatalogSize)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNDC\tSIZE\tPACKAGES\tTOTAL\tOVERFILL\tDESCRIPTOR")
	for i, sel := range rec.Selections {
		fmt.Fprintf(w, "%d\t%s\t%g\t%d\t%g\t%g\t%s\n",
			i+1, sel.Code, sel.PackageSize, sel.RepeatCount, sel.TotalQuantity, sel.Overfill, sel.Descriptor)
	}
	w.Flush()

	for _, warn := range rec.Warnings {
		fmt.Printf("[%s] %s: %s\n", warn.Severity, warn.Kind, warn.Message)
	}
}
