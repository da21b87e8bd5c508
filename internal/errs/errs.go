// Package errs defines the stable error kinds surfaced by the marketplace
// services. Handlers translate kinds into HTTP status codes; everything else
// wraps and propagates with %w.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable error category.
type Kind string

const (
	KindValidation             Kind = "validation_error"
	KindInvalidSerialFormat    Kind = "invalid_serial_format"
	KindDuplicateSerialNumber  Kind = "duplicate_serial_number"
	KindNotFound               Kind = "not_found"
	KindUnauthorized           Kind = "unauthorized"
	KindForbidden              Kind = "forbidden"
	KindConflict               Kind = "conflict"
	KindListingNotAvailable    Kind = "listing_not_available"
	KindSelfPurchase           Kind = "self_purchase"
	KindPaymentFailed          Kind = "payment_failed"
	KindInvalidStatus          Kind = "invalid_status"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindStoreUnavailable       Kind = "store_unavailable"
	KindInternal               Kind = "internal"
)

// Error couples a kind with a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around an underlying cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the HTTP status code the API surfaces.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidSerialFormat, KindInvalidStatus:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindSelfPurchase:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateSerialNumber, KindConflict, KindListingNotAvailable, KindInvalidStateTransition:
		return http.StatusConflict
	case KindPaymentFailed:
		return http.StatusPaymentRequired
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
