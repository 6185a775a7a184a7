package model

// NdcInfo is one packaged-product entry from an external drug catalog.
// PackageSize is zero until the descriptor parser has run; Descriptor keeps
// the original catalog text. The core treats entries as request-scoped input
// and never persists them.
type NdcInfo struct {
	Code         string     `json:"code"`
	PackageSize  float64    `json:"package_size"`
	Descriptor   string     `json:"descriptor"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	DosageForm   DosageForm `json:"dosage_form,omitempty"`
	Active       bool       `json:"active"`
}

// NdcSelection is one ranked dispensing option: dispense RepeatCount packages
// of the given size. TotalQuantity is always >= the target under the ceiling
// policy, so Underfill stays 0; the field is kept for interface stability.
type NdcSelection struct {
	Code          string  `json:"code"`
	PackageSize   float64 `json:"package_size"`
	RepeatCount   int     `json:"repeat_count"`
	TotalQuantity float64 `json:"total_quantity"`
	Overfill      float64 `json:"overfill"`
	Underfill     float64 `json:"underfill"`
	Descriptor    string  `json:"descriptor,omitempty"`
	Manufacturer  string  `json:"manufacturer,omitempty"`
}
