/*
virtual.go - Synthetic account resolution

PURPOSE:
  Derives the stable identifiers for the system's synthetic accounts and
  performs the idempotent get-or-create against the Account Registry.

IDENTIFIER SCHEME:
  expense:<CUR>:<category_id>   expense-category account
  income:<CUR>:<category_id>    income-category account
  trading:<CUR>                 per-currency trading account

  The identifier doubles as the idempotency key: two concurrent
  reconciliations resolving the same category land on the same row.

TRADING ACCOUNTS:
  Trading accounts exist only to bridge multi-currency transfers. A
  BRL->USD transfer becomes two single-currency legs through
  trading:BRL and trading:USD.
*/
package ledger

import (
	"context"
	"fmt"
)

// CategoryKind selects the synthetic account family for a category.
type CategoryKind string

const (
	KindExpense CategoryKind = "expense"
	KindIncome  CategoryKind = "income"
)

// CategoryAccountIdentifier derives the stable identifier for a category's
// synthetic account in a currency.
func CategoryAccountIdentifier(kind CategoryKind, currency, categoryID string) string {
	return fmt.Sprintf("%s:%s:%s", kind, currency, categoryID)
}

// TradingAccountIdentifier derives the stable identifier for a currency's
// trading account.
func TradingAccountIdentifier(currency string) string {
	return "trading:" + currency
}

// GetOrCreateCategoryAccount resolves the synthetic account for a budget or
// life-area category, creating it on first reference.
func GetOrCreateCategoryAccount(ctx context.Context, s AccountStore, categoryID string, kind CategoryKind, currency string) (*Account, error) {
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	accountType := AccountExpenseCategory
	if kind == KindIncome {
		accountType = AccountIncomeCategory
	}
	identifier := CategoryAccountIdentifier(kind, code, categoryID)
	return OpenOrGet(ctx, s, identifier, code, accountType)
}

// GetOrCreateTradingAccount resolves the per-currency trading account,
// creating it on first reference.
func GetOrCreateTradingAccount(ctx context.Context, s AccountStore, currency string) (*Account, error) {
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	return OpenOrGet(ctx, s, TradingAccountIdentifier(code), code, AccountTrading)
}
