// Package quantity converts a parsed instruction plus a days-supply horizon
// into the total quantity to dispense, applying dosage-form-specific unit
// semantics and safety-biased rounding.
package quantity

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rxtally/dispense-cli/internal/model"
)

// Days-supply bounds. Callers validate their own inputs, but the calculator
// refuses out-of-range values rather than produce a nonsense total.
const (
	MinDaysSupply = 1
	MaxDaysSupply = 365
)

// discreteUnits are countable things that cannot be split at dispensing
// time: totals in these units round up to the next whole number so the
// patient is never under-supplied.
var discreteUnits = map[string]bool{
	"tablet":      true,
	"capsule":     true,
	"pill":        true,
	"actuation":   true,
	"unit":        true,
	"patch":       true,
	"suppository": true,
	"spray":       true,
	"drop":        true,
}

// Calculate computes the total quantity required for daysSupply days of the
// parsed instruction.
//
// Base formula: dosageAmount x effectiveFrequency x daysSupply, where
// effectiveFrequency substitutes 1 for the literal PRN frequency of 0. The
// substitution is a clinical-safety assumption, so the breakdown carries
// both the effective frequency and an AsNeeded flag for the host to surface.
//
// Form overrides apply only when the relevant optional fields are present:
// liquids with a known concentration are converted to volume (the result
// unit becomes the concentration's volume unit); inhalers with a known
// capacity keep their total in actuations and gain a canister-count hint.
func Calculate(sig model.ParsedSig, daysSupply int) (model.QuantityResult, error) {
	if sig.DosageAmount <= 0 {
		return model.QuantityResult{}, eris.Wrapf(model.ErrInvalidArgument, "quantity: dosageAmount must be positive, got %g", sig.DosageAmount)
	}
	if sig.FrequencyPerDay < 0 {
		return model.QuantityResult{}, eris.Wrapf(model.ErrInvalidArgument, "quantity: frequencyPerDay must be >= 0, got %d", sig.FrequencyPerDay)
	}
	if daysSupply < MinDaysSupply || daysSupply > MaxDaysSupply {
		return model.QuantityResult{}, eris.Wrapf(model.ErrInvalidArgument, "quantity: daysSupply must be in [%d,%d], got %d", MinDaysSupply, MaxDaysSupply, daysSupply)
	}

	effFreq := sig.FrequencyPerDay
	asNeeded := effFreq == 0
	if asNeeded {
		effFreq = 1
	}

	unit := sig.Unit
	var total float64

	switch {
	case sig.DosageForm == model.DosageFormLiquid && sig.Concentration != nil:
		c := sig.Concentration
		if c.AmountPerDose <= 0 || c.VolumePerDose <= 0 {
			return model.QuantityResult{}, eris.Wrap(model.ErrInvalidArgument, "quantity: concentration amounts must be positive")
		}
		volumePerDose := sig.DosageAmount / c.AmountPerDose * c.VolumePerDose
		total = volumePerDose * float64(effFreq) * float64(daysSupply)
		unit = c.VolumeUnit
	default:
		total = sig.DosageAmount * float64(effFreq) * float64(daysSupply)
	}

	total = Round(total, unit)

	result := model.QuantityResult{
		Total: total,
		Unit:  unit,
		Breakdown: model.QuantityBreakdown{
			DosageAmount:       sig.DosageAmount,
			EffectiveFrequency: effFreq,
			DaysSupply:         daysSupply,
			AsNeeded:           asNeeded,
		},
	}

	// Capacity never changes the total; it only sizes the canister hint
	// used by selection and warnings downstream.
	if sig.DosageForm == model.DosageFormInhaler && sig.InhalerCapacity > 0 {
		result.CanisterCount = int(math.Ceil(total / float64(sig.InhalerCapacity)))
	}

	zap.L().Debug("quantity: computed total",
		zap.Float64("total", result.Total),
		zap.String("unit", result.Unit),
		zap.Int("effective_frequency", effFreq),
		zap.Bool("as_needed", asNeeded),
		zap.Int("days_supply", daysSupply),
	)

	return result, nil
}

// Round applies the dispensing rounding policy for a unit: discrete
// countable units round up to the next whole number (an already-integral
// total is unchanged), everything else rounds to 2 decimal places.
func Round(total float64, unit string) float64 {
	if discreteUnits[unit] {
		return math.Ceil(total)
	}
	return math.Round(total*100) / 100
}
