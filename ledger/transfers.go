/*
transfers.go - Transfer recording and destruction with balance materialization

PURPOSE:
  The two compound ledger operations. Record inserts a transfer and
  synchronously materializes the resulting balance for both accounts;
  Destroy removes a transfer and compensates every snapshot recorded
  after it so the materialized history stays exact.

ATOMICITY:
  Both operations mutate multiple rows (transfer + two balance sides).
  Callers MUST run them inside one database transaction (store InTx).
  A transfer without its balances, or vice versa, is a correctness bug,
  not a degraded state.

WHY DESTROY COMPENSATES:
  The reconciler replaces transfers by recording the new one first and
  destroying the old one second, inside the same database transaction.
  Because Destroy shifts all later snapshots by the reverse delta, the
  replace flow leaves balances exact in every interleaving, and
  destroying a mid-history transfer stays consistent too.

SEE ALSO:
  - store.go: the primitives these operations compose
  - transaction/reconciler.go: the only caller of Destroy
*/
package ledger

import (
	"context"
	"time"
)

// Record inserts a balanced transfer from one account to another and
// materializes the resulting balance snapshot for both sides.
func Record(ctx context.Context, s Store, from, to AccountID, amount Money, timestamp time.Time) (*Transfer, error) {
	t := Transfer{
		ID:            NewTransferID(),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Timestamp:     timestamp,
	}
	if err := s.InsertTransfer(ctx, t); err != nil {
		return nil, err
	}
	if err := materialize(ctx, s, from, t.ID, amount.Neg()); err != nil {
		return nil, err
	}
	if err := materialize(ctx, s, to, t.ID, amount); err != nil {
		return nil, err
	}
	return &t, nil
}

// materialize reads the account's latest snapshot and writes the new one
// after applying delta. The store transaction plus the sqlite store's write
// lock serialize the read-modify-write against concurrent transfers on the
// same account.
func materialize(ctx context.Context, s Store, account AccountID, transfer TransferID, delta Money) error {
	prev, err := s.LatestBalance(ctx, account)
	if err != nil {
		return err
	}
	next := delta
	if prev != nil {
		next = prev.Balance.Add(delta)
	}
	return s.UpsertBalance(ctx, Balance{
		AccountID:  account,
		TransferID: transfer,
		Balance:    next,
	})
}

// Destroy removes a transfer, deletes its balance snapshots, and shifts
// every later snapshot on both accounts by the reverse delta. Destroying a
// transfer that no longer exists is treated as success.
func Destroy(ctx context.Context, s Store, id TransferID) error {
	t, err := s.GetTransfer(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return nil // already cleaned up
	}
	if err := s.DeleteBalancesByTransfer(ctx, id); err != nil {
		return err
	}
	if err := s.DeleteTransfer(ctx, id); err != nil {
		return err
	}
	if err := s.AdjustBalancesAfter(ctx, t.FromAccountID, id, t.Amount); err != nil {
		return err
	}
	return s.AdjustBalancesAfter(ctx, t.ToAccountID, id, t.Amount.Neg())
}

// BalanceAsOf returns the account's balance at the given instant. With no
// snapshot at or before that point it returns zero in the account currency.
func BalanceAsOf(ctx context.Context, s Store, account *Account, at time.Time) (Money, error) {
	b, err := s.BalanceAsOf(ctx, account.ID, at)
	if err != nil {
		return Money{}, err
	}
	if b == nil {
		return Money{Currency: account.Currency}, nil
	}
	return b.Balance, nil
}
