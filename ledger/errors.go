/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All ledger-level error types in one place. Domain packages wrap these
  with additional context; the API layer maps them to HTTP statuses.

ERROR CATEGORIES:
  1. Reference errors - missing accounts/transfers
  2. Input errors - malformed currency, missing required attributes
  3. Consistency errors - should not occur under correct validation,
     handled defensively

USAGE:
    if errors.Is(err, ledger.ErrAccountNotFound) { ... }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransferNotFound is returned when a referenced transfer doesn't exist.
	// Destroying an already-missing transfer is NOT an error (idempotent
	// destroy); this sentinel is for read paths.
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrCurrencyRequired is returned when an operation needs a currency
	// and none was supplied.
	ErrCurrencyRequired = errors.New("currency is required")

	// ErrIdentifierRequired is returned when opening an account without a
	// stable identifier.
	ErrIdentifierRequired = errors.New("account identifier is required")

	// ErrAccountTypeRequired is returned when opening an account without a type.
	ErrAccountTypeRequired = errors.New("account type is required")

	// ErrInvalidAccountType is returned for unknown account types.
	ErrInvalidAccountType = errors.New("invalid account type")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// UnknownCurrencyError reports a currency code missing from the ISO registry.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency code %q", e.Code)
}

func (e *UnknownCurrencyError) Unwrap() error { return ErrCurrencyRequired }
