/*
errors.go - Error types for investment tracking

ERROR CATEGORIES:
  1. Reference errors - missing investments
  2. Input errors - bad type/subtype pairing, missing attributes
  3. Consistency errors - currency mismatches caught at write time,
     surfaced as validation-style errors rather than silently coerced
*/
package investment

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced investment doesn't exist.
	ErrNotFound = errors.New("investment not found")

	// ErrInvalidPairing is returned when the subtype doesn't belong to
	// the type.
	ErrInvalidPairing = errors.New("invalid investment type/subtype pairing")

	// ErrCurrencyMismatch is returned when a value's currency doesn't
	// match the investment's currency. Never coerced.
	ErrCurrencyMismatch = errors.New("currency does not match investment currency")

	// ErrAccountNotInvestment is returned when the backing account is not
	// an investment_account.
	ErrAccountNotInvestment = errors.New("backing account is not an investment account")
)

// CurrencyMismatchError reports which value violated currency consistency.
type CurrencyMismatchError struct {
	Field string // "initial_value", "current_value", "history", "operation"
	Want  string
	Got   string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s: currency %s does not match investment currency %s", e.Field, e.Got, e.Want)
}

func (e *CurrencyMismatchError) Unwrap() error { return ErrCurrencyMismatch }
