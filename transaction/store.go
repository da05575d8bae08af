/*
store.go - Persistence interfaces for transactions and the reconciler backend

PURPOSE:
  Store covers transaction rows and the tag join. Backend is the full
  persistence surface one reconciliation needs: the ledger stores, the
  investment store, the category store and the transaction store, plus
  InTx to run a function against all of them inside one database
  transaction.

ATOMICITY:
  InTx is where reconciliation's single atomic unit of work lives. The
  sqlite implementation hands the callback a Backend bound to one
  sql.Tx; any error rolls everything back.
*/
package transaction

import (
	"context"

	"github.com/JuliaMathias/moolah-sub000/category"
	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
)

// Store persists transactions and tags.
type Store interface {
	InsertTransaction(ctx context.Context, t Transaction) error
	UpdateTransaction(ctx context.Context, t Transaction) error

	// GetTransaction returns the transaction, or nil when it doesn't exist.
	GetTransaction(ctx context.Context, id ID) (*Transaction, error)

	ListTransactions(ctx context.Context) ([]Transaction, error)
	DeleteTransaction(ctx context.Context, id ID) error

	TagStore
}

// TagStore persists tags and the transaction<->tag join.
type TagStore interface {
	// InsertTag inserts the tag unless one with the same name
	// (case-insensitive) already exists; either way it succeeds and the
	// caller reads back the surviving row.
	InsertTag(ctx context.Context, t Tag) error

	// GetTagByName matches case-insensitively. Returns nil when missing.
	GetTagByName(ctx context.Context, name string) (*Tag, error)

	GetTag(ctx context.Context, id TagID) (*Tag, error)

	// ListTags excludes archived tags unless includeArchived is set. The
	// filter is explicit in the query, never a default scope.
	ListTags(ctx context.Context, includeArchived bool) ([]Tag, error)

	ArchiveTag(ctx context.Context, id TagID) error

	// AttachTag links a tag to a transaction. Duplicate links are a no-op
	// (unique (transaction_id, tag_id)).
	AttachTag(ctx context.Context, transactionID ID, tagID TagID) error

	DetachTag(ctx context.Context, transactionID ID, tagID TagID) error

	ListTransactionTags(ctx context.Context, transactionID ID) ([]Tag, error)
}

// Backend is everything one reconciliation touches.
type Backend interface {
	ledger.Store
	investment.Store
	category.Store
	Store

	// InTx runs fn against a Backend bound to a single database
	// transaction. fn returning an error rolls back every write.
	InTx(ctx context.Context, fn func(Backend) error) error
}
