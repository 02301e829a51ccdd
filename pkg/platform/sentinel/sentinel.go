package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors at the boundary.
//
// These represent factual states about stored records, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: unique constraint collision (e.g. duplicate pending registration)
// - ErrInvalidState: entity in wrong state for the requested transition
// - ErrSlotFull: project officer capacity exhausted
// - ErrNoUnits: flat-type inventory exhausted
// - ErrUnavailable: backing store unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrSlotFull     = errors.New("officer slots full")
	ErrNoUnits      = errors.New("no units available")
	ErrUnavailable  = errors.New("unavailable")
)
