package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBatchInput(t *testing.T) {
	path := writeTempCSV(t,
		"Take 1 tablet twice daily,30,lisinopril\n"+
			"Take 2 tablets daily,90,metformin\n")

	rows, err := readBatchInput(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].line)
	assert.Equal(t, "Take 1 tablet twice daily", rows[0].sig)
	assert.Equal(t, 30, rows[0].days)
	assert.Equal(t, "lisinopril", rows[0].drug)

	assert.Equal(t, 2, rows[1].line)
	assert.Equal(t, 90, rows[1].days)
}

func TestReadBatchInput_SkipsHeader(t *testing.T) {
	path := writeTempCSV(t,
		"sig,days_supply,drug\n"+
			"Take 1 tablet daily,30,lisinopril\n")

	rows, err := readBatchInput(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].line)
	assert.Equal(t, "Take 1 tablet daily", rows[0].sig)
}

func TestReadBatchInput_NoDrugColumn(t *testing.T) {
	path := writeTempCSV(t, "Take 1 tablet daily,30\n")

	rows, err := readBatchInput(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].drug)
}

func TestReadBatchInput_BadDaysSupply(t *testing.T) {
	path := writeTempCSV(t,
		"Take 1 tablet daily,30\n"+
			"Take 2 tablets daily,soon\n")

	_, err := readBatchInput(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days_supply")
}

func TestReadBatchInput_TooFewColumns(t *testing.T) {
	path := writeTempCSV(t, "just a sig\n")

	_, err := readBatchInput(path)
	require.Error(t, err)
}

func TestReadBatchInput_MissingFile(t *testing.T) {
	_, err := readBatchInput(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
