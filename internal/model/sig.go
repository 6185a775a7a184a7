// Package model defines the plain data records exchanged between the
// dispensing pipeline stages: parsed instructions, quantity results, catalog
// entries, package selections, and advisory warnings.
package model

// DosageForm classifies how a drug product is administered.
type DosageForm string

const (
	DosageFormTablet  DosageForm = "tablet"
	DosageFormCapsule DosageForm = "capsule"
	DosageFormLiquid  DosageForm = "liquid"
	DosageFormInsulin DosageForm = "insulin"
	DosageFormInhaler DosageForm = "inhaler"
	DosageFormOther   DosageForm = "other"
)

// Concentration describes the strength of a liquid product: AmountPerDose of
// active ingredient (in DoseUnit) per VolumePerDose of liquid (in VolumeUnit).
// Example: 250 mg per 5 mL.
type Concentration struct {
	AmountPerDose float64 `json:"amount_per_dose"`
	DoseUnit      string  `json:"dose_unit"`
	VolumePerDose float64 `json:"volume_per_dose"`
	VolumeUnit    string  `json:"volume_unit"`
}

// ParsedSig is the structured interpretation of a free-text prescription
// instruction. It is produced once per request by the sig interpreter and
// never mutated afterwards.
//
// FrequencyPerDay of 0 means "as needed" (PRN): the prescriber intentionally
// left the frequency unspecified. Downstream arithmetic substitutes 1 and
// surfaces the substitution in QuantityBreakdown.
type ParsedSig struct {
	DosageAmount    float64        `json:"dosage_amount"`
	FrequencyPerDay int            `json:"frequency_per_day"`
	Unit            string         `json:"unit"`
	Confidence      float64        `json:"confidence"`
	DosageForm      DosageForm     `json:"dosage_form,omitempty"`
	Concentration   *Concentration `json:"concentration,omitempty"`
	InhalerCapacity int            `json:"inhaler_capacity,omitempty"` // actuations per canister
	InsulinStrength int            `json:"insulin_strength,omitempty"` // units per mL
	MatchedRule     string         `json:"matched_rule,omitempty"`
}

// AsNeeded reports whether the instruction was PRN dosing.
func (s ParsedSig) AsNeeded() bool {
	return s.FrequencyPerDay == 0
}
