// Package export writes recommendation reports to spreadsheet files for
// pharmacy review workflows.
package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/rxtally/dispense-cli/internal/model"
)

// WriteXLSX writes a recommendation to an .xlsx workbook with a summary
// sheet and a ranked-selections sheet.
func WriteXLSX(path string, req model.Request, rec *model.Recommendation) error {
	if rec == nil {
		return eris.New("export: recommendation is nil")
	}

	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addPair(summary, "Instruction", req.SigText)
	addPair(summary, "Drug", req.DrugName)
	addPair(summary, "Days supply", fmt.Sprintf("%d", req.DaysSupply))
	addPair(summary, "Dosage amount", fmt.Sprintf("%g", rec.Sig.DosageAmount))
	addPair(summary, "Frequency per day", fmt.Sprintf("%d", rec.Sig.FrequencyPerDay))
	addPair(summary, "Unit", rec.Sig.Unit)
	addPair(summary, "Parse confidence", fmt.Sprintf("%.2f", rec.Sig.Confidence))
	addPair(summary, "Required quantity", fmt.Sprintf("%g %s", rec.Quantity.Total, rec.Quantity.Unit))
	if rec.Quantity.CanisterCount > 0 {
		addPair(summary, "Canisters", fmt.Sprintf("%d", rec.Quantity.CanisterCount))
	}
	addPair(summary, "Skipped packages", fmt.Sprintf("%d", rec.SkippedPackages))
	for _, w := range rec.Warnings {
		addPair(summary, fmt.Sprintf("Warning (%s)", w.Kind), w.Message)
	}

	selections, err := f.AddSheet("Selections")
	if err != nil {
		return eris.Wrap(err, "export: add selections sheet")
	}
	header := selections.AddRow()
	for _, h := range []string{"Rank", "NDC", "Package size", "Packages", "Total quantity", "Overfill", "Descriptor", "Manufacturer"} {
		header.AddCell().Value = h
	}
	for i, sel := range rec.Selections {
		row := selections.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().Value = sel.Code
		row.AddCell().SetFloat(sel.PackageSize)
		row.AddCell().SetInt(sel.RepeatCount)
		row.AddCell().SetFloat(sel.TotalQuantity)
		row.AddCell().SetFloat(sel.Overfill)
		row.AddCell().Value = sel.Descriptor
		row.AddCell().Value = sel.Manufacturer
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addPair(sheet *xlsx.Sheet, key, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = key
	row.AddCell().Value = value
}
