package model

// WarningKind identifies the condition an advisory warning describes.
type WarningKind string

const (
	WarningOverfill           WarningKind = "overfill"
	WarningUnderfill          WarningKind = "underfill"
	WarningDosageFormMismatch WarningKind = "dosage_form_mismatch"
	WarningLowConfidenceParse WarningKind = "low_confidence_parse"
	WarningInactivePackage    WarningKind = "inactive_package"
	WarningAsNeeded           WarningKind = "as_needed_assumption"
)

// Severity grades a warning for presentation. Warnings are never fatal.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning is an advisory message attached to a recommendation.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}
