// Package pipeline wires the dispensing stages together: interpret the
// instruction, compute the required quantity, parse catalog descriptors,
// rank package options, and attach advisories. The pipeline is pure
// computation over request-scoped inputs with no I/O or shared mutable
// state; identical inputs always produce an identical Recommendation.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rxtally/dispense-cli/internal/advisory"
	"github.com/rxtally/dispense-cli/internal/model"
	"github.com/rxtally/dispense-cli/internal/ndc"
	"github.com/rxtally/dispense-cli/internal/quantity"
	"github.com/rxtally/dispense-cli/internal/sig"
)

// DefaultTopN bounds the ranked selection list when the request does not
// specify one.
const DefaultTopN = 5

// Recommend executes the full pipeline for one request. Fatal failures
// (ErrNotParseable, ErrInvalidArgument, ErrNoPackagesAvailable) propagate as
// distinguishable wrapped sentinels; descriptor failures are swallowed
// per-entry with a skip counter on the result.
func Recommend(ctx context.Context, req model.Request) (*model.Recommendation, error) {
	log := zap.L().With(zap.String("drug", req.DrugName), zap.Int("days_supply", req.DaysSupply))

	parsed, err := sig.Interpret(req.SigText)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: interpret sig")
	}
	applyProductFacts(&parsed, req)

	qty, err := quantity.Calculate(parsed, req.DaysSupply)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: calculate quantity")
	}

	catalog, inactive, skipped := prepareCatalog(req.Catalog)

	topN := req.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	selections, err := ndc.Select(ctx, catalog, qty.Total, topN)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: select packages")
	}

	rec := &model.Recommendation{
		Sig:             parsed,
		Quantity:        qty,
		Selections:      selections,
		SkippedPackages: skipped,
		CatalogSize:     len(req.Catalog),
	}

	if top := rec.Recommended(); top != nil {
		info := findEntry(catalog, top.Code)
		rec.Warnings = append(rec.Warnings, advisory.ForSelection(*top, qty.Total, parsed, info)...)
	}
	if parsed.AsNeeded() {
		rec.Warnings = append(rec.Warnings, advisory.AsNeededNotice(qty))
	}
	for _, e := range inactive {
		rec.Warnings = append(rec.Warnings, advisory.InactiveNotice(e))
	}

	log.Info("pipeline: recommendation complete",
		zap.Float64("total", qty.Total),
		zap.String("unit", qty.Unit),
		zap.Int("selections", len(selections)),
		zap.Int("skipped_packages", skipped),
		zap.Int("warnings", len(rec.Warnings)),
	)

	return rec, nil
}

// applyProductFacts merges catalog-derived product facts into the parsed
// instruction when the text itself did not carry them. The drug record, not
// the SIG, usually knows the concentration or canister capacity.
func applyProductFacts(parsed *model.ParsedSig, req model.Request) {
	if parsed.Concentration == nil && req.Concentration != nil {
		parsed.Concentration = req.Concentration
		if parsed.DosageForm == "" || parsed.DosageForm == model.DosageFormOther {
			parsed.DosageForm = model.DosageFormLiquid
		}
	}
	if parsed.InhalerCapacity == 0 && req.InhalerCapacity > 0 {
		parsed.InhalerCapacity = req.InhalerCapacity
		if parsed.DosageForm == "" || parsed.DosageForm == model.DosageFormOther {
			parsed.DosageForm = model.DosageFormInhaler
		}
	}
	if parsed.InsulinStrength == 0 && req.InsulinStrength > 0 {
		parsed.InsulinStrength = req.InsulinStrength
	}
}

// prepareCatalog parses descriptors for entries that arrived without a
// numeric package size, splits off inactive entries, and counts per-entry
// parse failures. A bad descriptor never aborts the batch.
func prepareCatalog(entries []model.NdcInfo) (active, inactive []model.NdcInfo, skipped int) {
	for _, e := range entries {
		if e.PackageSize <= 0 {
			size, err := ndc.ParsePackageSize(e.Descriptor)
			if err != nil {
				skipped++
				zap.L().Debug("pipeline: skipping unparseable descriptor",
					zap.String("code", e.Code),
					zap.String("descriptor", e.Descriptor),
					zap.Error(err),
				)
				continue
			}
			e.PackageSize = size
		}
		if !e.Active {
			inactive = append(inactive, e)
			continue
		}
		active = append(active, e)
	}
	return active, inactive, skipped
}

func findEntry(entries []model.NdcInfo, code string) model.NdcInfo {
	for _, e := range entries {
		if e.Code == code {
			return e
		}
	}
	return model.NdcInfo{}
}
