package model

// QuantityBreakdown exposes the inputs that produced a total quantity so a
// caller can audit the arithmetic. EffectiveFrequency differs from the
// parsed FrequencyPerDay exactly when the instruction was PRN, in which case
// AsNeeded is true and EffectiveFrequency is 1.
type QuantityBreakdown struct {
	DosageAmount       float64 `json:"dosage_amount"`
	EffectiveFrequency int     `json:"effective_frequency"`
	DaysSupply         int     `json:"days_supply"`
	AsNeeded           bool    `json:"as_needed"`
}

// QuantityResult is the total quantity required to cover a days-supply
// horizon. Unit may differ from ParsedSig.Unit: liquids with a known
// concentration are converted to the concentration's volume unit.
type QuantityResult struct {
	Total     float64           `json:"total"`
	Unit      string            `json:"unit"`
	Breakdown QuantityBreakdown `json:"breakdown"`

	// CanisterCount is a hint for inhalers with a known capacity:
	// ceil(total actuations / capacity). Zero for all other forms.
	CanisterCount int `json:"canister_count,omitempty"`
}
