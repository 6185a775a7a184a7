package ndc

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rxtally/dispense-cli/internal/model"
)

// parallelThreshold is the catalog size above which candidate evaluation
// fans out across goroutines. Ranking always re-sorts with the full
// tie-break keys, so both paths produce identical output.
const parallelThreshold = 64

// Select ranks package options for a target quantity. Each active entry is
// evaluated independently with repeatCount = ceil(target/packageSize), so no
// option ever under-supplies. Ranking is a strict total order: overfill
// ascending, then repeatCount ascending (fewer packages to dispense), then
// packageSize descending, then code ascending as the final stable key. The
// list is truncated to topN entries; the first is the recommended selection.
func Select(ctx context.Context, entries []model.NdcInfo, target float64, topN int) ([]model.NdcSelection, error) {
	if target <= 0 {
		return nil, eris.Wrapf(model.ErrInvalidArgument, "ndc: target quantity must be positive, got %g", target)
	}
	if topN <= 0 {
		topN = 5
	}

	candidates := make([]model.NdcInfo, 0, len(entries))
	for _, e := range entries {
		if e.Active && e.PackageSize > 0 {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, eris.Wrap(model.ErrNoPackagesAvailable, "ndc: catalog has no active entries with a known package size")
	}

	selections := make([]model.NdcSelection, len(candidates))
	if len(candidates) >= parallelThreshold {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(8)
		for i, e := range candidates {
			i, e := i, e
			g.Go(func() error {
				selections[i] = evaluate(e, target)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "ndc: evaluate candidates")
		}
	} else {
		for i, e := range candidates {
			selections[i] = evaluate(e, target)
		}
	}

	sort.Slice(selections, func(i, j int) bool {
		a, b := selections[i], selections[j]
		if a.Overfill != b.Overfill {
			return a.Overfill < b.Overfill
		}
		if a.RepeatCount != b.RepeatCount {
			return a.RepeatCount < b.RepeatCount
		}
		if a.PackageSize != b.PackageSize {
			return a.PackageSize > b.PackageSize
		}
		return a.Code < b.Code
	})

	if len(selections) > topN {
		selections = selections[:topN]
	}

	zap.L().Debug("ndc: ranked package options",
		zap.Float64("target", target),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(selections)),
	)

	return selections, nil
}

// evaluate computes the ceiling-based fill for one catalog entry. Underfill
// is structurally 0 under this policy and kept only for interface stability.
func evaluate(e model.NdcInfo, target float64) model.NdcSelection {
	repeat := int(math.Ceil(target / e.PackageSize))
	if repeat < 1 {
		repeat = 1
	}
	total := float64(repeat) * e.PackageSize

	return model.NdcSelection{
		Code:          e.Code,
		PackageSize:   e.PackageSize,
		RepeatCount:   repeat,
		TotalQuantity: total,
		Overfill:      math.Max(0, total-target),
		Underfill:     math.Max(0, target-total),
		Descriptor:    e.Descriptor,
		Manufacturer:  e.Manufacturer,
	}
}
