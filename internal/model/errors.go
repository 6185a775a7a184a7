package model

import "github.com/rotisserie/eris"

// Sentinel errors for the dispensing pipeline. Callers distinguish them with
// errors.Is so the presentation layer can give differentiated guidance
// (parse-format examples for ErrNotParseable, a "no active packages"
// explanation for ErrNoPackagesAvailable, and so on).
var (
	// ErrNotParseable means no interpreter rule matched the instruction text.
	ErrNotParseable = eris.New("sig not parseable")

	// ErrInvalidArgument means a required numeric field is missing, zero, or
	// out of range. The wrapping message names the offending field.
	ErrInvalidArgument = eris.New("invalid argument")

	// ErrNoPackagesAvailable means the catalog was empty, or empty after
	// filtering inactive and unparseable entries.
	ErrNoPackagesAvailable = eris.New("no packages available")

	// ErrDescriptorUnparseable is a per-entry, non-fatal failure: the caller
	// skips the entry, counts the skip, and continues.
	ErrDescriptorUnparseable = eris.New("package descriptor unparseable")
)
