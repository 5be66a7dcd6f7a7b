package models

import (
	"fmt"
	"strconv"
)

// PersistenceError is the closed set of storage-layer failures.
type PersistenceError uint8

const (
	PersistenceFetchFailed PersistenceError = iota
	PersistenceSaveFailed
	PersistenceDeleteFailed
	persistenceErrorCount
)

var persistenceDescriptions = [...]string{
	PersistenceFetchFailed:  "Failed to fetch models",
	PersistenceSaveFailed:   "Failed to save model",
	PersistenceDeleteFailed: "Failed to delete model",
}

var persistenceCodes = [...]string{
	PersistenceFetchFailed:  "PERSISTENCE_FETCH_FAILED",
	PersistenceSaveFailed:   "PERSISTENCE_SAVE_FAILED",
	PersistenceDeleteFailed: "PERSISTENCE_DELETE_FAILED",
}

// Both tables must have exactly one entry per case; this fails to compile otherwise.
var (
	_ [0]struct{} = [len(persistenceDescriptions) - int(persistenceErrorCount)]struct{}{}
	_ [0]struct{} = [len(persistenceCodes) - int(persistenceErrorCount)]struct{}{}
)

// PersistenceErrors lists every defined case.
func PersistenceErrors() []PersistenceError {
	out := make([]PersistenceError, 0, persistenceErrorCount)
	for e := PersistenceError(0); e < persistenceErrorCount; e++ {
		out = append(out, e)
	}
	return out
}

// Description satisfies [DescriptiveError].
func (e PersistenceError) Description() string {
	if e >= persistenceErrorCount {
		return "PersistenceError(" + strconv.Itoa(int(e)) + ")"
	}
	return persistenceDescriptions[e]
}

// Error satisfies [error].
func (e PersistenceError) Error() string {
	return e.Description()
}

// ErrorCode satisfies [RecoverableError].
func (e PersistenceError) ErrorCode() string {
	if e >= persistenceErrorCount {
		return "PERSISTENCE_UNKNOWN"
	}
	return persistenceCodes[e]
}

func (e PersistenceError) Context() map[string]string { return nil }

func (e PersistenceError) SuggestedAction() string {
	switch e {
	case PersistenceFetchFailed:
		return "check that the database is readable (coinwatch status) and retry"
	default:
		return "check that the database is writable and not locked by another process, then retry"
	}
}

// Wrap attaches the underlying cause. The result still satisfies errors.Is(err, e)
// and Describe(err) returns e's description.
func (e PersistenceError) Wrap(cause error) error {
	return wrapDescriptive(e, cause)
}

var (
	_ DescriptiveError = PersistenceFetchFailed
	_ RecoverableError = PersistenceFetchFailed
	_ fmt.Stringer     = PersistenceFetchFailed
)

// String satisfies [fmt.Stringer].
func (e PersistenceError) String() string {
	return e.ErrorCode()
}
