package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated   = errors.New("missing or invalid session")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentExists     = errors.New("an active payment already exists for this booking")
	ErrPaymentInFlight   = errors.New("a payment is already being initiated for this booking")
	ErrPaymentConflict   = errors.New("payment already finalized with a different status")
	ErrBookingNotPending = errors.New("booking is not pending")
)

// ValidationError reports bad caller input. It produces no side effects and
// maps to a 4xx response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// GatewayError reports a failure talking to the payment gateway: a non-2xx
// response, a malformed body, or a timeout. Message carries the gateway's own
// error text where available.
type GatewayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment gateway error: %s", e.Message)
	}
	return fmt.Sprintf("payment gateway error (status %d)", e.StatusCode)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ProviderError reports a failure talking to the inventory provider.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("inventory provider error: %s", e.Message)
	}
	return fmt.Sprintf("inventory provider error (status %d)", e.StatusCode)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// PersistenceError reports a store write that failed after validation passed.
// When the write follows an accepted gateway order it marks a reconciliation
// case and must be logged loudly by the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// ErrReconciliationNeeded marks a webhook whose payment row reached its
// terminal status but whose booking status update failed afterwards. The
// event must be acknowledged to stop gateway retries; the booking is fixed
// out of band.
var ErrReconciliationNeeded = errors.New("payment finalized but booking status update failed")
