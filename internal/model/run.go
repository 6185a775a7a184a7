package model

import "time"

// RunStatus represents the state of a persisted recommendation run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Request carries everything a single recommendation needs: the raw
// instruction, the days-supply horizon, and the candidate catalog supplied
// by the external drug/package lookup. Optional fields let the host inject
// product facts the instruction text cannot carry (liquid concentration,
// inhaler canister capacity, insulin strength).
type Request struct {
	SigText    string    `json:"sig_text"`
	DaysSupply int       `json:"days_supply"`
	DrugName   string    `json:"drug_name,omitempty"`
	Catalog    []NdcInfo `json:"catalog,omitempty"`
	TopN       int       `json:"top_n,omitempty"`

	Concentration   *Concentration `json:"concentration,omitempty"`
	InhalerCapacity int            `json:"inhaler_capacity,omitempty"`
	InsulinStrength int            `json:"insulin_strength,omitempty"`
}

// Recommendation is the full output of one pipeline invocation. Selections
// are ranked best-first; Selections[0] is the recommended option and the
// rest are alternatives.
type Recommendation struct {
	Sig             ParsedSig      `json:"sig"`
	Quantity        QuantityResult `json:"quantity"`
	Selections      []NdcSelection `json:"selections"`
	Warnings        []Warning      `json:"warnings,omitempty"`
	SkippedPackages int            `json:"skipped_packages"`
	CatalogSize     int            `json:"catalog_size"`
}

// Recommended returns the top-ranked selection, or nil when the catalog
// produced no candidates.
func (r *Recommendation) Recommended() *NdcSelection {
	if len(r.Selections) == 0 {
		return nil
	}
	return &r.Selections[0]
}

// Run is a persisted recommendation request plus its outcome.
type Run struct {
	ID        string          `json:"id"`
	Request   Request         `json:"request"`
	Status    RunStatus       `json:"status"`
	Result    *Recommendation `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
