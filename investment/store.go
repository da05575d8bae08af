/*
store.go - Persistence interfaces for investments

CONTRACT:
  - Investments are never physically deleted; redemption_date expires
    them out of default reads.
  - Operations carry a partial unique index on transaction_id (where set):
    at most one operation per transaction, enforced by the database.
  - DeleteOperationByTransaction is the only operation delete; it exists
    so the reconciler can replace a transaction's operation without ever
    duplicating or losing events on correction.
*/
package investment

import "context"

// Store persists investments and their derived records.
type Store interface {
	InsertInvestment(ctx context.Context, inv Investment) error

	// UpdateInvestment overwrites the mutable attributes (current value,
	// redemption date, name). Account and currency are immutable.
	UpdateInvestment(ctx context.Context, inv Investment) error

	// GetInvestment returns the investment, or nil when it doesn't exist.
	GetInvestment(ctx context.Context, id ID) (*Investment, error)

	// ListInvestments returns investments; unless includeRedeemed is set,
	// positions with a past redemption_date are excluded.
	ListInvestments(ctx context.Context, includeRedeemed bool) ([]Investment, error)

	InsertHistory(ctx context.Context, h History) error
	ListHistory(ctx context.Context, id ID) ([]History, error)

	InsertOperation(ctx context.Context, op Operation) error

	// DeleteOperationByTransaction removes the operation linked to the
	// transaction, if any. Missing is a no-op.
	DeleteOperationByTransaction(ctx context.Context, transactionID string) error

	ListOperations(ctx context.Context, id ID) ([]Operation, error)
}
