package ndc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtally/dispense-cli/internal/model"
)

func entry(code string, size float64) model.NdcInfo {
	return model.NdcInfo{Code: code, PackageSize: size, Active: true}
}

func TestSelect_ExactFill(t *testing.T) {
	entries := []model.NdcInfo{
		entry("0001-0001-30", 30),
		entry("0001-0001-90", 90),
		entry("0001-0001-72", 72),
	}

	selections, err := Select(context.Background(), entries, 120, 5)
	require.NoError(t, err)
	require.Len(t, selections, 3)

	// 4 x 30 = 120 and ceil(120/90) = 2 -> 180 both exist; 30s win on zero
	// overfill even though they need more packages.
	best := selections[0]
	assert.Equal(t, "0001-0001-30", best.Code)
	assert.Equal(t, 4, best.RepeatCount)
	assert.Equal(t, 120.0, best.TotalQuantity)
	assert.Equal(t, 0.0, best.Overfill)
}

func TestSelect_OverfillWhenNoExactFit(t *testing.T) {
	entries := []model.NdcInfo{entry("0002-1433-72", 72)}

	selections, err := Select(context.Background(), entries, 120, 5)
	require.NoError(t, err)
	require.Len(t, selections, 1)

	// ceil(120/72) = 2 packages -> 144 dispensed, 24 over.
	sel := selections[0]
	assert.Equal(t, 2, sel.RepeatCount)
	assert.Equal(t, 144.0, sel.TotalQuantity)
	assert.Equal(t, 24.0, sel.Overfill)
	assert.Equal(t, 0.0, sel.Underfill)
}

func TestSelect_NeverUnderSupplies(t *testing.T) {
	entries := []model.NdcInfo{
		entry("a", 7), entry("b", 28), entry("c", 30),
		entry("d", 90), entry("e", 100), entry("f", 11),
	}

	for _, target := range []float64{1, 29, 30, 47, 90.5, 181, 365} {
		selections, err := Select(context.Background(), entries, target, len(entries))
		require.NoError(t, err)
		for _, sel := range selections {
			assert.GreaterOrEqual(t, sel.TotalQuantity, target,
				"target %g code %s", target, sel.Code)
			assert.Equal(t, 0.0, sel.Underfill)
		}
	}
}

func TestSelect_RankingOrder(t *testing.T) {
	entries := []model.NdcInfo{
		entry("0003-0001-60", 60),  // 2 x 60 = 120, overfill 0
		entry("0003-0001-30", 30),  // 4 x 30 = 120, overfill 0
		entry("0003-0001-100", 100), // 2 x 100 = 200, overfill 80
		entry("0003-0001-90", 90),  // 2 x 90 = 180, overfill 60
	}

	selections, err := Select(context.Background(), entries, 120, 5)
	require.NoError(t, err)
	require.Len(t, selections, 4)

	// Zero-overfill options first; among those, fewer packages wins.
	assert.Equal(t, "0003-0001-60", selections[0].Code)
	assert.Equal(t, "0003-0001-30", selections[1].Code)
	assert.Equal(t, "0003-0001-90", selections[2].Code)
	assert.Equal(t, "0003-0001-100", selections[3].Code)
}

func TestSelect_TieBreakPrefersFewerPackages(t *testing.T) {
	// Equal overfill: the option needing fewer packages ranks first.
	entries := []model.NdcInfo{
		entry("small", 60),
		entry("large", 120),
	}

	selections, err := Select(context.Background(), entries, 120, 5)
	require.NoError(t, err)
	require.Len(t, selections, 2)

	// 1 x 120 beats 2 x 60 on repeat count.
	assert.Equal(t, "large", selections[0].Code)
	assert.Equal(t, 1, selections[0].RepeatCount)
}

func TestSelect_SkipsInactiveAndUnsized(t *testing.T) {
	entries := []model.NdcInfo{
		{Code: "inactive", PackageSize: 30, Active: false},
		{Code: "unsized", PackageSize: 0, Active: true},
		entry("good", 30),
	}

	selections, err := Select(context.Background(), entries, 60, 5)
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, "good", selections[0].Code)
}

func TestSelect_NoPackagesAvailable(t *testing.T) {
	_, err := Select(context.Background(), nil, 60, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNoPackagesAvailable))

	onlyInactive := []model.NdcInfo{{Code: "x", PackageSize: 30, Active: false}}
	_, err = Select(context.Background(), onlyInactive, 60, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNoPackagesAvailable))
}

func TestSelect_InvalidTarget(t *testing.T) {
	entries := []model.NdcInfo{entry("x", 30)}

	for _, target := range []float64{0, -10} {
		_, err := Select(context.Background(), entries, target, 5)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrInvalidArgument))
	}
}

func TestSelect_TruncatesToTopN(t *testing.T) {
	entries := make([]model.NdcInfo, 0, 20)
	for i := 0; i < 20; i++ {
		entries = append(entries, entry(fmt.Sprintf("%04d", i), float64(10+i)))
	}

	selections, err := Select(context.Background(), entries, 100, 3)
	require.NoError(t, err)
	assert.Len(t, selections, 3)
}

func TestSelect_ParallelMatchesSequential(t *testing.T) {
	// Catalogs at and above the fan-out threshold must rank identically to
	// the sequential path.
	big := make([]model.NdcInfo, 0, parallelThreshold*2)
	for i := 0; i < parallelThreshold*2; i++ {
		big = append(big, entry(fmt.Sprintf("%05d", i), float64(5+i%37)))
	}
	small := big[:parallelThreshold-1]

	target := 200.0
	fromBig, err := Select(context.Background(), big, target, len(big))
	require.NoError(t, err)
	fromSmall, err := Select(context.Background(), small, target, len(small))
	require.NoError(t, err)

	// The small slice is a prefix of the big one, so its ranking must be a
	// subsequence-consistent ordering: re-rank the overlap and compare.
	bigRank := make(map[string]int, len(fromBig))
	for i, sel := range fromBig {
		bigRank[sel.Code] = i
	}
	prev := -1
	for _, sel := range fromSmall {
		pos, ok := bigRank[sel.Code]
		require.True(t, ok, "code %s missing from parallel ranking", sel.Code)
		assert.Greater(t, pos, prev, "code %s out of order", sel.Code)
		prev = pos
	}
}

func TestEvaluate(t *testing.T) {
	sel := evaluate(entry("x", 30), 100)

	// ceil(100/30) = 4 packages -> 120 dispensed, 20 over.
	assert.Equal(t, 4, sel.RepeatCount)
	assert.Equal(t, 120.0, sel.TotalQuantity)
	assert.Equal(t, 20.0, sel.Overfill)

	// Fractional targets still round the count up.
	sel = evaluate(entry("y", 30), 90.5)
	assert.Equal(t, 4, sel.RepeatCount)
	assert.InDelta(t, 29.5, sel.Overfill, 1e-9)
}
