/*
Package ledger implements the double-entry core: accounts, transfers and
materialized balances.

PURPOSE:
  This package is the single source of truth for every movement of money.
  The user-facing Transaction type (package transaction) is reconciled
  down to one or more immutable Transfers recorded here; balances are
  materialized per (account, transfer) so balance-as-of queries are
  lookups, not replays.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: a ledger participant (bank, cash, investment, or a lazily
    created synthetic category/trading account)
  - Transfer: an atomic, balanced movement between exactly two accounts
  - Balance: the materialized running balance of one account after one
    transfer

DESIGN PRINCIPLES:
  1. Immutability: Transfers are never edited; corrections replace them
  2. Precision: decimal.Decimal everywhere, no floating point
  3. Idempotency: synthetic accounts key on a deterministic identifier
  4. Locality: balance reads are O(1) snapshot lookups

SEE ALSO:
  - registry.go: idempotent open-or-get of accounts
  - virtual.go: synthetic identifier derivation
  - transfers.go: record/destroy with balance materialization
  - store.go: persistence interfaces
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AccountID string
type TransferID string

// NewAccountID returns a random account id.
func NewAccountID() AccountID { return AccountID(uuid.NewString()) }

// NewTransferID returns a time-sortable transfer id (UUIDv7). The canonical
// string form sorts lexicographically in creation order, which the balance
// adjust path depends on.
func NewTransferID() TransferID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the entropy source does; fall back to v4
		// rather than aborting a ledger write.
		return TransferID(uuid.NewString())
	}
	return TransferID(id.String())
}

// =============================================================================
// ACCOUNT - Ledger participant
// =============================================================================

type AccountType string

const (
	AccountBank            AccountType = "bank_account"
	AccountMoney           AccountType = "money_account"
	AccountInvestment      AccountType = "investment_account"
	AccountExpenseCategory AccountType = "expense_category"
	AccountIncomeCategory  AccountType = "income_category"
	AccountTrading         AccountType = "trading_account"
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountBank, AccountMoney, AccountInvestment,
		AccountExpenseCategory, AccountIncomeCategory, AccountTrading:
		return true
	}
	return false
}

// Synthetic reports whether the account type is created lazily by the
// resolver rather than by the user.
func (t AccountType) Synthetic() bool {
	return t == AccountExpenseCategory || t == AccountIncomeCategory || t == AccountTrading
}

// Account is a ledger participant. Identifier is globally unique and, for
// synthetic accounts, deterministically derived. Currency is immutable
// after creation.
type Account struct {
	ID         AccountID
	Identifier string
	Currency   string
	Type       AccountType
	CreatedAt  time.Time
}

// =============================================================================
// TRANSFER - Atomic balanced movement
// =============================================================================

// Transfer is an immutable movement of Amount from one account to another.
// Both accounts are presumed to share the amount's currency; that is
// enforced upstream by validation, not here.
type Transfer struct {
	ID            TransferID
	FromAccountID AccountID
	ToAccountID   AccountID
	Amount        Money
	Timestamp     time.Time
	CreatedAt     time.Time
}

// =============================================================================
// BALANCE - Materialized snapshot
// =============================================================================

// Balance is the running balance of one account immediately after one
// transfer. Unique per (AccountID, TransferID); upserted, never duplicated.
type Balance struct {
	AccountID  AccountID
	TransferID TransferID
	Balance    Money
}
