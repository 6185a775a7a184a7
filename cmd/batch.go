package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtally/dispense-cli/internal/model"
	"github.com/rxtally/dispense-cli/internal/pipeline"
)

var (
	batchInput   string
	batchOutput  string
	batchCatalog string
)

// batchRow is one CSV input line: sig, days_supply, and either a drug name
// (directory lookup) or nothing (shared --catalog file).
type batchRow struct {
	line int
	sig  string
	days int
	drug string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a CSV of SIG instructions",
	Long:  "Reads rows of sig,days_supply,drug from a CSV file and writes one recommendation per row.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rows, err := readBatchInput(batchInput)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			zap.L().Info("batch: no input rows")
			return nil
		}

		var shared []model.NdcInfo
		if batchCatalog != "" {
			shared, err = loadCatalogFile(batchCatalog)
			if err != nil {
				return err
			}
		}

		zap.L().Info("batch: processing",
			zap.Int("rows", len(rows)),
			zap.Int("concurrency", cfg.Batch.MaxConcurrent),
		)

		results := make([]batchResult, len(rows))
		var lookupMu sync.Mutex
		dir := newDirectoryClient()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrent)
		for i, row := range rows {
			i, row := i, row
			g.Go(func() error {
				catalog := shared
				if len(catalog) == 0 && row.drug != "" {
					// Serialize lookups: openFDA rate budget is shared anyway.
					lookupMu.Lock()
					c, err := dir.SearchByName(gctx, row.drug, 25)
					lookupMu.Unlock()
					if err != nil {
						results[i] = batchResult{row: row, err: err}
						return nil
					}
					catalog = c
				}

				rec, err := pipeline.Recommend(gctx, model.Request{
					SigText:    row.sig,
					DaysSupply: row.days,
					DrugName:   row.drug,
					Catalog:    catalog,
					TopN:       cfg.Selector.TopN,
				})
				results[i] = batchResult{row: row, rec: rec, err: err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch: process rows")
		}

		return writeBatchOutput(batchOutput, results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "input CSV path (required)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output CSV path (default stdout)")
	batchCmd.Flags().StringVar(&batchCatalog, "catalog", "", "shared JSON catalog file used for every row")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

type batchResult struct {
	row batchRow
	rec *model.Recommendation
	err error
}

// readBatchInput parses the CSV. A header row is detected by a non-numeric
// days_supply column and skipped.
func readBatchInput(path string) ([]batchRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}

	var rows []batchRow
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, eris.Errorf("batch: line %d has %d columns, want at least sig,days_supply", i+1, len(rec))
		}
		days, err := strconv.Atoi(rec[1])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, eris.Wrapf(err, "batch: line %d: bad days_supply %q", i+1, rec[1])
		}
		row := batchRow{line: i + 1, sig: rec[0], days: days}
		if len(rec) > 2 {
			row.drug = rec[2]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeBatchOutput(path string, results []batchResult) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "batch: create %s", path)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{"line", "sig", "days_supply", "drug", "status", "total", "unit", "ndc", "packages", "overfill", "error"}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "batch: write header")
	}

	failed := 0
	for _, res := range results {
		record := []string{
			strconv.Itoa(res.row.line),
			res.row.sig,
			strconv.Itoa(res.row.days),
			res.row.drug,
		}
		if res.err != nil {
			failed++
			record = append(record, "error", "", "", "", "", "", res.err.Error())
		} else {
			top := res.rec.Recommended()
			code, packages, overfill := "", "", ""
			if top != nil {
				code = top.Code
				packages = strconv.Itoa(top.RepeatCount)
				overfill = strconv.FormatFloat(top.Overfill, 'f', -1, 64)
			}
			record = append(record, "ok",
				strconv.FormatFloat(res.rec.Quantity.Total, 'f', -1, 64),
				res.rec.Quantity.Unit,
				code, packages, overfill, "")
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "batch: write row")
		}
	}

	fmt.Fprintf(os.Stderr, "processed %d rows, %d failed\n", len(results), failed)
	return nil
}
