/*
Package transaction reconciles user-facing transactions onto the ledger.

PURPOSE:
  A Transaction is what the user enters: a debit, a credit, or a
  transfer. The ledger's source of truth is the Transfer; this package
  keeps the two representations consistent across create, update and
  delete. One transaction maps to one transfer, except multi-currency
  transfers which decompose into two single-currency legs through
  per-currency trading accounts.

KEY CONCEPTS IN THIS FILE (types.go):
  - Type: debit | credit | transfer
  - Transaction: the user-facing record, carrying references to the
    transfer(s) that back it
  - multi-currency classification: a transfer with a source amount in a
    different currency than the target amount

DESIGN PRINCIPLES:
  1. Transfers are replaced, never edited: updates record new transfers
     first, then destroy the old ones, inside one database transaction
  2. Validation gates everything: no ledger write happens for an invalid
     transaction
  3. Derived effects (investment operations) are replaced wholesale on
     correction, never accumulated

SEE ALSO:
  - validate.go: the pre-flight checks
  - reconciler.go: the create/update/delete pipeline
  - tags.go: soft-deleted labels on transactions
*/
package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JuliaMathias/moolah-sub000/category"
	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ID string

func NewID() ID { return ID(uuid.NewString()) }

// =============================================================================
// TRANSACTION
// =============================================================================

type Type string

const (
	TypeDebit    Type = "debit"
	TypeCredit   Type = "credit"
	TypeTransfer Type = "transfer"
)

func ValidType(t Type) bool {
	return t == TypeDebit || t == TypeCredit || t == TypeTransfer
}

// Transaction is the user-facing record of financial intent. TransferID
// (and SourceTransferID for multi-currency transfers) point at the ledger
// transfers backing it; the reconciler owns those fields.
type Transaction struct {
	ID   ID
	Type Type

	Amount       ledger.Money
	SourceAmount *ledger.Money // only valid for multi-currency transfers

	AccountID          ledger.AccountID
	TargetAccountID    *ledger.AccountID
	TargetInvestmentID *investment.ID
	BudgetCategoryID   *category.ID
	LifeAreaCategoryID *category.ID

	Date time.Time

	// Set by the reconciler.
	ExchangeRate     decimal.Decimal
	TransferID       ledger.TransferID
	SourceTransferID *ledger.TransferID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MultiCurrency reports whether the transaction is a transfer whose source
// amount is denominated in a different currency than the target amount.
func (t Transaction) MultiCurrency() bool {
	return t.Type == TypeTransfer &&
		t.SourceAmount != nil &&
		t.SourceAmount.Currency != t.Amount.Currency
}

// ledgerFields compares the attributes whose change requires replacing the
// backing transfer(s).
func ledgerFieldsChanged(old, new Transaction) bool {
	if old.Type != new.Type ||
		!old.Amount.Equal(new.Amount) ||
		old.AccountID != new.AccountID ||
		!old.Date.Equal(new.Date) {
		return true
	}
	if !moneyPtrEqual(old.SourceAmount, new.SourceAmount) {
		return true
	}
	if !ptrEqual(old.TargetAccountID, new.TargetAccountID) ||
		!ptrEqual(old.TargetInvestmentID, new.TargetInvestmentID) ||
		!ptrEqual(old.BudgetCategoryID, new.BudgetCategoryID) ||
		!ptrEqual(old.LifeAreaCategoryID, new.LifeAreaCategoryID) {
		return true
	}
	return false
}

// investmentFieldsChanged compares the attributes whose change requires
// re-synthesizing the transaction's investment operation.
func investmentFieldsChanged(old, new Transaction) bool {
	return old.Type != new.Type ||
		!old.Amount.Equal(new.Amount) ||
		!moneyPtrEqual(old.SourceAmount, new.SourceAmount) ||
		old.AccountID != new.AccountID ||
		!ptrEqual(old.TargetAccountID, new.TargetAccountID) ||
		!ptrEqual(old.TargetInvestmentID, new.TargetInvestmentID)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func moneyPtrEqual(a, b *ledger.Money) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
