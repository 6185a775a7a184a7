package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/rxtally/dispense-cli/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	req := model.Request{
		SigText:    "Take 1 tablet twice daily",
		DaysSupply: 30,
		DrugName:   "lisinopril",
	}
	rec := &model.Recommendation{
		Sig:      model.ParsedSig{DosageAmount: 1, FrequencyPerDay: 2, Unit: "tablet", Confidence: 0.95},
		Quantity: model.QuantityResult{Total: 60, Unit: "tablet"},
		Selections: []model.NdcSelection{
			{Code: "0001-0001-60", PackageSize: 60, RepeatCount: 1, TotalQuantity: 60, Descriptor: "60 TABLET in 1 BOTTLE", Manufacturer: "Example Pharma"},
			{Code: "0001-0001-30", PackageSize: 30, RepeatCount: 2, TotalQuantity: 60, Descriptor: "30 TABLET in 1 BOTTLE", Manufacturer: "Example Pharma"},
		},
		Warnings: []model.Warning{
			{Kind: model.WarningOverfill, Severity: model.SeverityWarning, Message: "over by 10"},
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(path, req, rec))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	summary := f.Sheet["Summary"]
	require.NotNil(t, summary)
	assert.Equal(t, "Instruction", summary.Rows[0].Cells[0].Value)
	assert.Equal(t, "Take 1 tablet twice daily", summary.Rows[0].Cells[1].Value)

	selections := f.Sheet["Selections"]
	require.NotNil(t, selections)
	// Header plus one row per selection.
	require.Len(t, selections.Rows, 3)
	assert.Equal(t, "NDC", selections.Rows[0].Cells[1].Value)
	assert.Equal(t, "0001-0001-60", selections.Rows[1].Cells[1].Value)
	assert.Equal(t, "0001-0001-30", selections.Rows[2].Cells[1].Value)
}

func TestWriteXLSX_NilRecommendation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.Error(t, WriteXLSX(path, model.Request{}, nil))
}
