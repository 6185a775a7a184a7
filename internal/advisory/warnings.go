// Package advisory derives warning records from a completed selection.
// Everything here is advisory: the generator inspects already-computed
// numbers and never fails or alters them.
package advisory

import (
	"fmt"

	"github.com/rxtally/dispense-cli/internal/model"
	"github.com/rxtally/dispense-cli/internal/sig"
)

// overfillTolerance is the overfill a selection may carry without comment.
// Zero after rounding: any genuine surplus gets flagged.
const overfillTolerance = 1e-9

// ForSelection generates warnings for the chosen selection against the
// target quantity, the parsed instruction, and the matching catalog entry.
func ForSelection(sel model.NdcSelection, target float64, parsed model.ParsedSig, info model.NdcInfo) []model.Warning {
	var warnings []model.Warning

	if sel.Overfill > overfillTolerance {
		warnings = append(warnings, model.Warning{
			Kind:     model.WarningOverfill,
			Severity: model.SeverityWarning,
			Message: fmt.Sprintf("dispensing %g exceeds the required %g by %g (%d x %g per package)",
				sel.TotalQuantity, target, sel.Overfill, sel.RepeatCount, sel.PackageSize),
		})
	}

	if parsed.DosageForm != "" && info.DosageForm != "" && parsed.DosageForm != info.DosageForm {
		warnings = append(warnings, model.Warning{
			Kind:     model.WarningDosageFormMismatch,
			Severity: model.SeverityWarning,
			Message: fmt.Sprintf("instruction suggests %s but package %s is %s",
				parsed.DosageForm, info.Code, info.DosageForm),
		})
	}

	if parsed.Confidence < sig.ConfidenceWeak {
		warnings = append(warnings, model.Warning{
			Kind:     model.WarningLowConfidenceParse,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("instruction parsed with low confidence (%.2f); verify dosage and frequency", parsed.Confidence),
		})
	}

	return warnings
}

// AsNeededNotice is the advisory the pipeline attaches when PRN dosing was
// assumed to mean once daily for quantity arithmetic. The substitution is a
// policy decision the end user should see, not an error.
func AsNeededNotice(result model.QuantityResult) model.Warning {
	return model.Warning{
		Kind:     model.WarningAsNeeded,
		Severity: model.SeverityInfo,
		Message: fmt.Sprintf("instruction is as-needed (PRN); total of %g %s assumes %d dose(s) per day",
			result.Total, result.Unit, result.Breakdown.EffectiveFrequency),
	}
}

// InactiveNotice flags a catalog entry that was excluded from ranking
// because the catalog marks it inactive.
func InactiveNotice(info model.NdcInfo) model.Warning {
	return model.Warning{
		Kind:     model.WarningInactivePackage,
		Severity: model.SeverityInfo,
		Message:  fmt.Sprintf("package %s (%s) is inactive and was excluded", info.Code, info.Descriptor),
	}
}
