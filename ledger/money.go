/*
money.go - Monetary value type

PURPOSE:
  Money pairs an exact decimal amount with an ISO-4217 currency code.
  Every monetary field in the system uses this type - there is no
  floating point anywhere in the ledger.

DESIGN:
  - Value is a shopspring decimal in major units (e.g. 519.72 BRL).
  - Currency is an uppercase ISO code, validated against the go-money
    currency registry at construction time.
  - Arithmetic never mixes currencies silently: Add/Sub require the same
    code and callers check SameCurrency before combining values.
  - Division by zero yields a zero decimal instead of panicking. The
    reconciler relies on this for degenerate exchange-rate inputs.

SEE ALSO:
  - types.go: Account/Transfer/Balance which carry Money
  - transaction/validate.go: currency-match validation
*/
package ledger

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in a single currency.
type Money struct {
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
}

// NewMoney builds a Money from a decimal value and an ISO currency code.
// The code is uppercased; unknown codes are rejected.
func NewMoney(value decimal.Decimal, currency string) (Money, error) {
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: value, Currency: code}, nil
}

// MustMoney is NewMoney for trusted inputs (tests, constants).
func MustMoney(value string, currency string) Money {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(fmt.Sprintf("ledger: bad decimal %q: %v", value, err))
	}
	m, err := NewMoney(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NormalizeCurrency uppercases and validates an ISO currency code against
// the go-money registry.
func NormalizeCurrency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return "", ErrCurrencyRequired
	}
	if gomoney.GetCurrency(c) == nil {
		return "", &UnknownCurrencyError{Code: c}
	}
	return c, nil
}

// SameCurrency reports whether two values share a currency code.
// Codes are already normalized to uppercase at construction.
func (m Money) SameCurrency(n Money) bool { return m.Currency == n.Currency }

func (m Money) IsZero() bool     { return m.Value.IsZero() }
func (m Money) IsPositive() bool { return m.Value.IsPositive() }
func (m Money) IsNegative() bool { return m.Value.IsNegative() }

func (m Money) Neg() Money { return Money{Value: m.Value.Neg(), Currency: m.Currency} }

// Add combines two values of the same currency. Mixing currencies is a
// programming error and panics; callers validate upstream.
func (m Money) Add(n Money) Money {
	return Money{Value: m.Value.Add(n.Value), Currency: mustSameCurrency(m, n)}
}

func (m Money) Sub(n Money) Money {
	return Money{Value: m.Value.Sub(n.Value), Currency: mustSameCurrency(m, n)}
}

func (m Money) Equal(n Money) bool {
	return m.Currency == n.Currency && m.Value.Equal(n.Value)
}

// Zero returns the zero value in m's currency.
func (m Money) Zero() Money { return Money{Value: decimal.Zero, Currency: m.Currency} }

// String renders "519.72 BRL".
func (m Money) String() string {
	return m.Value.String() + " " + m.Currency
}

// SafeRate divides m by n, returning a zero rate when n is zero.
// Used for exchange-rate computation on best-effort recording of
// degenerate inputs.
func SafeRate(m, n decimal.Decimal) decimal.Decimal {
	if n.IsZero() {
		return decimal.Zero
	}
	return m.Div(n)
}

func mustSameCurrency(a, b Money) string {
	if a.Currency == "" {
		return b.Currency
	}
	if b.Currency == "" {
		return a.Currency
	}
	if a.Currency != b.Currency {
		panic(fmt.Sprintf("ledger: currency mismatch %s != %s", a.Currency, b.Currency))
	}
	return a.Currency
}
