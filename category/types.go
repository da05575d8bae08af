/*
Package category holds budget and life-area categories.

PURPOSE:
  Categories are collaborators of the ledger core: the reconciler only
  needs their identifiers to derive synthetic category accounts, and the
  validation layer needs existence checks. Their own constraints are
  simple: life-area categories form a self-referencing tree bounded at
  depth 2, with cycle detection and a no-children-on-delete guard.

SEE ALSO:
  - tree.go: iterative ancestor walk
  - transaction/validate.go: category requirements per transaction type
*/
package category

import (
	"time"

	"github.com/google/uuid"
)

type ID string

func NewID() ID { return ID(uuid.NewString()) }

// BudgetCategory labels debit transactions for budgeting. The ledger only
// cares about its id (expense account derivation).
type BudgetCategory struct {
	ID        ID
	Name      string
	CreatedAt time.Time
}

// LifeAreaCategory labels debits and credits by life area. Forms a tree of
// maximum depth 2.
type LifeAreaCategory struct {
	ID        ID
	Name      string
	ParentID  *ID
	CreatedAt time.Time
}
