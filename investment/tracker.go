/*
tracker.go - History and operation synthesis

PURPOSE:
  Derives InvestmentHistory snapshots and InvestmentOperations from
  investment mutations. The rules:

  ON CREATE:
    purchase_date set   -> history at purchase_date with initial_value,
                           plus a second row at today with current_value
                           unless purchase_date is today AND the two
                           values are equal
    purchase_date unset -> single history row at today with current_value

  ON VALUE UPDATE (delta = new - old):
    default mode      -> deposit(|delta|) if delta > 0
                         withdraw(|delta|) if delta < 0
                         update(0) if delta == 0
    market-update mode -> always update(signed delta); a revaluation
                          implies no cash flow

  TRANSFER-DRIVEN (called by the reconciler):
    delete any previous operation for the transaction, then insert
    exactly one fresh operation. The partial unique index backs this up.

CURRENCY:
  Every history/operation value must match the investment's currency.
  Violations are rejected at write time, not coerced.
*/
package investment

import (
	"context"
	"time"

	"github.com/JuliaMathias/moolah-sub000/ledger"
)

// Create validates and persists a new investment together with its initial
// history snapshots. The backing account must exist, be an
// investment_account, and share the investment's currency.
func Create(ctx context.Context, s Store, accounts ledger.AccountStore, inv Investment, today time.Time) (*Investment, error) {
	if !ValidPairing(inv.Type, inv.Subtype) {
		return nil, ErrInvalidPairing
	}
	account, err := accounts.GetAccount(ctx, inv.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ledger.ErrAccountNotFound
	}
	if account.Type != ledger.AccountInvestment {
		return nil, ErrAccountNotInvestment
	}
	if inv.InitialValue.Currency != account.Currency {
		return nil, &CurrencyMismatchError{Field: "initial_value", Want: account.Currency, Got: inv.InitialValue.Currency}
	}
	if inv.CurrentValue.Currency != account.Currency {
		return nil, &CurrencyMismatchError{Field: "current_value", Want: account.Currency, Got: inv.CurrentValue.Currency}
	}

	if inv.ID == "" {
		inv.ID = NewID()
	}
	if err := s.InsertInvestment(ctx, inv); err != nil {
		return nil, err
	}

	if inv.PurchaseDate != nil {
		if err := s.InsertHistory(ctx, History{
			ID:           newHistoryID(),
			InvestmentID: inv.ID,
			RecordedOn:   *inv.PurchaseDate,
			Value:        inv.InitialValue,
		}); err != nil {
			return nil, err
		}
		// A same-day purchase at an unchanged value would just duplicate
		// the snapshot.
		if !(SameDay(*inv.PurchaseDate, today) && inv.InitialValue.Equal(inv.CurrentValue)) {
			if err := s.InsertHistory(ctx, History{
				ID:           newHistoryID(),
				InvestmentID: inv.ID,
				RecordedOn:   today,
				Value:        inv.CurrentValue,
			}); err != nil {
				return nil, err
			}
		}
	} else {
		if err := s.InsertHistory(ctx, History{
			ID:           newHistoryID(),
			InvestmentID: inv.ID,
			RecordedOn:   today,
			Value:        inv.CurrentValue,
		}); err != nil {
			return nil, err
		}
	}

	return &inv, nil
}

// UpdateValue records a new current value: one history snapshot at today
// plus one classified operation. With market set, the operation is always
// an update carrying the signed delta.
func UpdateValue(ctx context.Context, s Store, id ID, newValue ledger.Money, market bool, today time.Time) (*Investment, error) {
	inv, err := s.GetInvestment(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	if newValue.Currency != inv.CurrentValue.Currency {
		return nil, &CurrencyMismatchError{Field: "current_value", Want: inv.CurrentValue.Currency, Got: newValue.Currency}
	}

	delta := newValue.Sub(inv.CurrentValue)

	inv.CurrentValue = newValue
	if err := s.UpdateInvestment(ctx, *inv); err != nil {
		return nil, err
	}
	if err := s.InsertHistory(ctx, History{
		ID:           newHistoryID(),
		InvestmentID: inv.ID,
		RecordedOn:   today,
		Value:        newValue,
	}); err != nil {
		return nil, err
	}

	op := classifyDelta(delta, market)
	op.InvestmentID = inv.ID
	if err := s.InsertOperation(ctx, op); err != nil {
		return nil, err
	}
	return inv, nil
}

// classifyDelta builds the operation for a value delta.
func classifyDelta(delta ledger.Money, market bool) Operation {
	op := Operation{ID: newOperationID()}
	if market {
		op.Type = OpUpdate
		op.Value = delta
		return op
	}
	switch {
	case delta.IsPositive():
		op.Type = OpDeposit
		op.Value = delta
	case delta.IsNegative():
		op.Type = OpWithdraw
		op.Value = delta.Neg()
	default:
		op.Type = OpUpdate
		op.Value = delta.Zero()
	}
	return op
}

// SyncTransactionOperation replaces the operation linked to a transaction
// with a fresh one. Called by the reconciler after every successful
// reconciliation touching an investment account; the delete-then-insert
// keeps the at-most-one-per-transaction invariant through corrections.
func SyncTransactionOperation(ctx context.Context, s Store, id ID, transactionID string, opType OperationType, value ledger.Money) error {
	inv, err := s.GetInvestment(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if value.Currency != inv.CurrentValue.Currency {
		return &CurrencyMismatchError{Field: "operation", Want: inv.CurrentValue.Currency, Got: value.Currency}
	}
	if err := s.DeleteOperationByTransaction(ctx, transactionID); err != nil {
		return err
	}
	return s.InsertOperation(ctx, Operation{
		ID:            newOperationID(),
		InvestmentID:  id,
		TransactionID: transactionID,
		Type:          opType,
		Value:         value,
	})
}
