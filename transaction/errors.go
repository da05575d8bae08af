/*
errors.go - Error types for transaction reconciliation

ERROR TAXONOMY:
  1. Validation errors - field-scoped, user-correctable, caught before
     any ledger write (ValidationErrors)
  2. Not-found errors - missing transaction on update/delete
  3. Consistency errors - handled defensively inside the reconciler
     (idempotent destroy of already-missing transfers is a success,
     never an error)

PROPAGATION:
  Every reconciliation runs inside one database transaction; any error
  aborts and rolls back the whole unit. User-visible failure is always a
  structured, field-attributed error list.
*/
package transaction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the referenced transaction doesn't exist.
	ErrNotFound = errors.New("transaction not found")
)

// Validation failure codes.
const (
	CodeRequired           = "required"
	CodeForbidden          = "forbidden"
	CodeMustBePositive     = "must_be_positive"
	CodeInvalidType        = "invalid_type"
	CodeCurrencyMismatch   = "currency_mismatch"
	CodeRedundant          = "redundant"
	CodeCategoryNotFound   = "category_not_found"
	CodeInvestmentMismatch = "investment_mismatch"
)

// FieldError scopes a validation failure to one input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
}

// ValidationErrors is the field-attributed list surfaced to callers.
// A nil/empty list means the transaction passed validation.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether any failure is attributed to the field.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (v *ValidationErrors) add(field, code, message string) {
	*v = append(*v, FieldError{Field: field, Code: code, Message: message})
}

// IsValidation reports whether err is a field-scoped validation failure.
func IsValidation(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
