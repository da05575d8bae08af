/*
reconciler.go - Transaction <-> Transfer reconciliation

PURPOSE:
  Keeps a user-entered Transaction consistently mirrored by the ledger
  Transfer(s) that back it. The pipeline per operation is explicit and
  ordered: validate -> resolve accounts -> write transfers -> persist
  transaction -> sync investment operation. Every step runs inside one
  database transaction; any failure rolls the whole unit back.

TRANSFER SYNTHESIS BY TYPE:
  debit     account --(amount)--> expense:<CUR>:<budget_category>
  credit    income:<CUR>:<life_area_category> --(amount)--> account
  transfer  account --(amount)--> target            (same currency)
  transfer  account --(source_amount)--> trading:<SRC>
            trading:<TGT> --(amount)--> target      (multi-currency)
            exchange_rate = source_amount / amount (zero divisor -> 0)

UPDATE ORDERING:
  A no-op update never touches the ledger. A real change records the new
  transfer(s), points the transaction at them, and only then destroys the
  old ones - still inside the same database transaction, so a mid-flight
  failure can never leave the transaction referencing a transfer that
  doesn't exist. Destroying an already-missing old transfer is a success.

INVESTMENT SYNC:
  A transfer touching an investment account carries a mandatory
  target_investment_id (validated upstream). After reconciliation the
  transaction's previous InvestmentOperation, if any, is deleted and
  exactly one fresh one inserted: deposit when the investment account is
  the target, withdraw when it is the source.
*/
package transaction

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
)

// Create validates the transaction, synthesizes its transfer(s) and
// persists everything atomically.
func Create(ctx context.Context, b Backend, t Transaction) (*Transaction, error) {
	if t.ID == "" {
		t.ID = NewID()
	}
	err := b.InTx(ctx, func(tx Backend) error {
		if verrs, err := Validate(ctx, tx, t); err != nil {
			return err
		} else if verrs != nil {
			return verrs
		}
		if err := recordTransfers(ctx, tx, &t); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return syncInvestment(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update reconciles an edited transaction. When no ledger-relevant field
// changed, the ledger is left untouched.
func Update(ctx context.Context, b Backend, updated Transaction) (*Transaction, error) {
	var result *Transaction
	err := b.InTx(ctx, func(tx Backend) error {
		old, err := tx.GetTransaction(ctx, updated.ID)
		if err != nil {
			return err
		}
		if old == nil {
			return ErrNotFound
		}

		// Transfer references are owned by the reconciler, never by input.
		updated.TransferID = old.TransferID
		updated.SourceTransferID = old.SourceTransferID
		updated.ExchangeRate = old.ExchangeRate
		updated.CreatedAt = old.CreatedAt

		if !ledgerFieldsChanged(*old, updated) {
			result = old
			return nil
		}

		if verrs, err := Validate(ctx, tx, updated); err != nil {
			return err
		} else if verrs != nil {
			return verrs
		}

		oldTransfer := old.TransferID
		oldSource := old.SourceTransferID

		if err := recordTransfers(ctx, tx, &updated); err != nil {
			return err
		}
		if err := tx.UpdateTransaction(ctx, updated); err != nil {
			return err
		}

		// Old transfers go strictly after the new ones are durable and
		// referenced.
		if err := ledger.Destroy(ctx, tx, oldTransfer); err != nil {
			return err
		}
		if oldSource != nil {
			if err := ledger.Destroy(ctx, tx, *oldSource); err != nil {
				return err
			}
		}

		if investmentFieldsChanged(*old, updated) {
			// Covers the case where the edit moved the transfer off the
			// investment account entirely.
			if err := tx.DeleteOperationByTransaction(ctx, string(updated.ID)); err != nil {
				return err
			}
			if err := syncInvestment(ctx, tx, updated); err != nil {
				return err
			}
		}

		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the transaction and, symmetrically with create, destroys
// its transfer(s) and investment operation.
func Delete(ctx context.Context, b Backend, id ID) error {
	return b.InTx(ctx, func(tx Backend) error {
		t, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return ErrNotFound
		}
		if err := ledger.Destroy(ctx, tx, t.TransferID); err != nil {
			return err
		}
		if t.SourceTransferID != nil {
			if err := ledger.Destroy(ctx, tx, *t.SourceTransferID); err != nil {
				return err
			}
		}
		if err := tx.DeleteOperationByTransaction(ctx, string(id)); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, id)
	})
}

// recordTransfers synthesizes and records the transfer(s) for t, setting
// the reference fields on t.
func recordTransfers(ctx context.Context, tx Backend, t *Transaction) error {
	t.SourceTransferID = nil
	t.ExchangeRate = decimal.Zero

	switch t.Type {
	case TypeDebit:
		expense, err := ledger.GetOrCreateCategoryAccount(ctx, tx, string(*t.BudgetCategoryID), ledger.KindExpense, t.Amount.Currency)
		if err != nil {
			return err
		}
		tr, err := ledger.Record(ctx, tx, t.AccountID, expense.ID, t.Amount, t.Date)
		if err != nil {
			return err
		}
		t.TransferID = tr.ID

	case TypeCredit:
		income, err := ledger.GetOrCreateCategoryAccount(ctx, tx, string(*t.LifeAreaCategoryID), ledger.KindIncome, t.Amount.Currency)
		if err != nil {
			return err
		}
		tr, err := ledger.Record(ctx, tx, income.ID, t.AccountID, t.Amount, t.Date)
		if err != nil {
			return err
		}
		t.TransferID = tr.ID

	case TypeTransfer:
		if t.MultiCurrency() {
			return recordMultiCurrency(ctx, tx, t)
		}
		tr, err := ledger.Record(ctx, tx, t.AccountID, *t.TargetAccountID, t.Amount, t.Date)
		if err != nil {
			return err
		}
		t.TransferID = tr.ID
	}
	return nil
}

// recordMultiCurrency decomposes a cross-currency transfer into two
// single-currency legs bridged through the per-currency trading accounts.
func recordMultiCurrency(ctx context.Context, tx Backend, t *Transaction) error {
	sourceTrading, err := ledger.GetOrCreateTradingAccount(ctx, tx, t.SourceAmount.Currency)
	if err != nil {
		return err
	}
	targetTrading, err := ledger.GetOrCreateTradingAccount(ctx, tx, t.Amount.Currency)
	if err != nil {
		return err
	}

	sourceLeg, err := ledger.Record(ctx, tx, t.AccountID, sourceTrading.ID, *t.SourceAmount, t.Date)
	if err != nil {
		return err
	}
	targetLeg, err := ledger.Record(ctx, tx, targetTrading.ID, *t.TargetAccountID, t.Amount, t.Date)
	if err != nil {
		return err
	}

	sourceID := sourceLeg.ID
	t.SourceTransferID = &sourceID
	t.TransferID = targetLeg.ID
	t.ExchangeRate = ledger.SafeRate(t.SourceAmount.Value, t.Amount.Value)
	return nil
}

// syncInvestment replaces the transaction's investment operation when the
// transfer touches an investment account. Direction decides the type:
// deposit into the investment account, withdraw out of it.
func syncInvestment(ctx context.Context, tx Backend, t Transaction) error {
	if t.Type != TypeTransfer || t.TargetInvestmentID == nil {
		return nil
	}
	involved, err := involvedInvestmentAccount(ctx, tx, t)
	if err != nil {
		return err
	}
	if involved == nil {
		return nil
	}

	opType := investment.OpWithdraw
	value := t.Amount
	if t.TargetAccountID != nil && involved.ID == *t.TargetAccountID {
		opType = investment.OpDeposit
	} else if t.SourceAmount != nil {
		value = *t.SourceAmount
	}

	return investment.SyncTransactionOperation(ctx, tx, *t.TargetInvestmentID, string(t.ID), opType, value)
}
