// Package errs defines the error kinds shared by the stores, the domain
// services and the HTTP layer. Callers compare with errors.Is; services wrap
// the sentinels with context using fmt.Errorf("...: %w", ...).
package errs

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrInvalidInput marks empty or malformed fields. The user corrects and retries.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a referenced id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering or changing to an email that is taken.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	// ErrInvalidCredentials is returned when the email/password pair does not verify.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPendingApproval is returned by login for students that are not approved.
	ErrPendingApproval = errors.New("your account is pending approval by an administrator")

	// ErrInvalidTransition is returned when the status policy forbids a status change.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrStoreUnavailable marks network/backend failures. Callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTimeout marks a store call that exceeded its deadline.
	ErrTimeout = errors.New("store operation timed out")

	// ErrInconsistent marks detected membership references to missing records.
	ErrInconsistent = errors.New("membership data is inconsistent")

	// ErrMalformedRecord marks a stored document that fails schema validation on decode.
	ErrMalformedRecord = errors.New("malformed record")
)

// FromStore translates a driver error into one of the kinds above.
// Errors that are already classified, and nil, are returned unchanged.
// Unknown errors are returned as-is so that the original message survives.
func FromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case isKind(err):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return wrap(ErrTimeout, err)
	case mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		return wrap(ErrStoreUnavailable, err)
	}
	return err
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

var kinds = []error{
	ErrInvalidInput, ErrNotFound, ErrDuplicateEmail, ErrInvalidCredentials,
	ErrPendingApproval, ErrInvalidTransition, ErrStoreUnavailable, ErrTimeout,
	ErrInconsistent, ErrMalformedRecord,
}

func isKind(err error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// kindError keeps both the kind and the driver error visible to errors.Is.
type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.cause.Error() }

func (e *kindError) Unwrap() []error { return []error{e.kind, e.cause} }

func wrap(kind, cause error) error {
	return &kindError{kind: kind, cause: cause}
}
