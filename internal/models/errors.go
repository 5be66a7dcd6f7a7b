package models

import "errors"

// DescriptiveError is implemented by every failure the application classifies.
// Description returns a non-empty, user-presentable sentence that presentation
// layers can show as-is.
type DescriptiveError interface {
	error
	Description() string
}

// RecoverableError is implemented by enriched errors that carry structured
// context and remediation hints. Both the store and output packages use this
// interface to avoid an import cycle.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// Describe returns the description of the first DescriptiveError in err's chain.
// Errors that were never classified fall back to their Error text so callers
// never render an empty message. Describe(nil) is "".
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var d DescriptiveError
	if errors.As(err, &d) {
		return d.Description()
	}
	return err.Error()
}

// describedError attaches an underlying cause to a classified failure.
// errors.Is matches both the failure case and the cause.
type describedError struct {
	failure DescriptiveError
	cause   error
}

func wrapDescriptive(failure DescriptiveError, cause error) error {
	if cause == nil {
		return failure
	}
	return &describedError{failure: failure, cause: cause}
}

func (e *describedError) Error() string {
	return e.failure.Error() + ": " + e.cause.Error()
}

func (e *describedError) Description() string { return e.failure.Description() }

func (e *describedError) Unwrap() []error { return []error{e.failure, e.cause} }

var _ DescriptiveError = (*describedError)(nil)

// Error is for errors in the business domain, mostly input validation.
// The string itself is the user-facing description.
type Error string

const (
	ErrorCoinIDRequired        = Error("Coin id is required")
	ErrorInvalidTargetPrice    = Error("Target price must be greater than zero")
	ErrorInvalidAlertDirection = Error("Alert direction must be above or below")
	ErrorVsCurrencyRequired    = Error("Quote currency is required")
	ErrorUsernameRequired      = Error("Username is required")
	ErrorNotSignedIn           = Error("No account is signed in")
)

// Error satisfies [error].
func (e Error) Error() string {
	return string(e)
}

// Description satisfies [DescriptiveError].
func (e Error) Description() string {
	return string(e)
}

var _ DescriptiveError = Error("")
