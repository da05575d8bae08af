/*
store.go - Persistence interfaces for the ledger core

PURPOSE:
  Defines the contract between ledger logic and the database. The
  concrete implementation lives in store/sqlite; an alternative engine
  only has to honor the same uniqueness and atomicity guarantees.

CONTRACT:
  - Accounts: insert-on-conflict-ignore keyed on the identifier unique
    index. Concurrent OpenOrGet calls converge on one row.
  - Transfers: inserted and deleted only through the ledger operations in
    transfers.go, never directly by callers.
  - Balances: unique per (account_id, transfer_id), upserted.
  - Every compound ledger operation runs inside one database transaction;
    the store's InTx provides that scope.

SEE ALSO:
  - store/sqlite/sqlite.go: concrete implementation
  - transfers.go: compound operations built on these primitives
*/
package ledger

import (
	"context"
	"time"
)

// AccountStore persists accounts. No update or delete exists: accounts are
// immutable once created.
type AccountStore interface {
	// InsertAccountIfAbsent inserts the account unless one with the same
	// identifier already exists. Either way it succeeds; the caller reads
	// back the surviving row.
	InsertAccountIfAbsent(ctx context.Context, a Account) error

	// GetAccountByIdentifier returns the account with the given stable
	// identifier, or nil when it doesn't exist.
	GetAccountByIdentifier(ctx context.Context, identifier string) (*Account, error)

	// GetAccount returns the account by primary id, or nil when it
	// doesn't exist.
	GetAccount(ctx context.Context, id AccountID) (*Account, error)

	// ListAccounts returns all accounts ordered by identifier.
	ListAccounts(ctx context.Context) ([]Account, error)
}

// TransferStore persists transfers.
type TransferStore interface {
	InsertTransfer(ctx context.Context, t Transfer) error

	// GetTransfer returns the transfer, or nil when it doesn't exist.
	// Destroy depends on the nil result for idempotency.
	GetTransfer(ctx context.Context, id TransferID) (*Transfer, error)

	// DeleteTransfer removes the transfer row. Deleting a missing transfer
	// is a no-op, not an error.
	DeleteTransfer(ctx context.Context, id TransferID) error

	// ListTransfersByAccount returns transfers touching the account,
	// ordered by id (creation order).
	ListTransfersByAccount(ctx context.Context, id AccountID) ([]Transfer, error)
}

// BalanceStore persists materialized balance snapshots.
type BalanceStore interface {
	// UpsertBalance writes the snapshot, overwriting any existing row for
	// the same (account_id, transfer_id).
	UpsertBalance(ctx context.Context, b Balance) error

	// LatestBalance returns the most recent snapshot for the account, or
	// nil when the account has no snapshots yet (bootstrap case).
	LatestBalance(ctx context.Context, id AccountID) (*Balance, error)

	// BalanceAsOf returns the most recent snapshot at or before the given
	// instant, or nil when none exists.
	BalanceAsOf(ctx context.Context, id AccountID, at time.Time) (*Balance, error)

	// AdjustBalancesAfter adds delta to every snapshot of the account whose
	// transfer_id orders strictly after the given transfer id.
	AdjustBalancesAfter(ctx context.Context, id AccountID, after TransferID, delta Money) error

	// DeleteBalancesByTransfer removes the snapshots recorded for a transfer.
	DeleteBalancesByTransfer(ctx context.Context, id TransferID) error
}

// Store is the full ledger persistence surface.
type Store interface {
	AccountStore
	TransferStore
	BalanceStore
}
