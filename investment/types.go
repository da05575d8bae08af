/*
Package investment tracks positions tied to investment accounts.

PURPOSE:
  An Investment wraps one investment_account and tracks its value over
  time. Two derived records flow from it:
  - InvestmentHistory: dated value snapshots (multiple per day allowed)
  - InvestmentOperation: classified deltas (deposit/withdraw/update),
    produced both by direct revaluation and by transfers into/out of the
    backing account (via the transaction reconciler)

KEY CONCEPTS IN THIS FILE (types.go):
  - Type/Subtype: constrained pairing describing the instrument
  - Investment: the position itself, soft-expired via redemption_date
  - History/Operation: the derived records

SEE ALSO:
  - tracker.go: history and operation synthesis rules
  - store.go: persistence interfaces
  - transaction/reconciler.go: transfer-driven operation synthesis
*/
package investment

import (
	"time"

	"github.com/google/uuid"

	"github.com/JuliaMathias/moolah-sub000/ledger"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ID string
type HistoryID string
type OperationID string

func NewID() ID                   { return ID(uuid.NewString()) }
func newHistoryID() HistoryID     { return HistoryID(uuid.NewString()) }
func newOperationID() OperationID { return OperationID(uuid.NewString()) }

// =============================================================================
// TYPE / SUBTYPE - Constrained pairing
// =============================================================================

type Type string
type Subtype string

const (
	TypeFixedIncome    Type = "fixed_income"
	TypeVariableIncome Type = "variable_income"
	TypeFund           Type = "fund"
)

const (
	SubtypeCDB      Subtype = "cdb"
	SubtypeLCI      Subtype = "lci"
	SubtypeLCA      Subtype = "lca"
	SubtypeTreasury Subtype = "treasury"
	SubtypeSavings  Subtype = "savings"

	SubtypeStock  Subtype = "stock"
	SubtypeETF    Subtype = "etf"
	SubtypeREIT   Subtype = "reit"
	SubtypeCrypto Subtype = "crypto"

	SubtypePension     Subtype = "pension"
	SubtypeMultimarket Subtype = "multimarket"
)

var subtypesByType = map[Type][]Subtype{
	TypeFixedIncome:    {SubtypeCDB, SubtypeLCI, SubtypeLCA, SubtypeTreasury, SubtypeSavings},
	TypeVariableIncome: {SubtypeStock, SubtypeETF, SubtypeREIT, SubtypeCrypto},
	TypeFund:           {SubtypePension, SubtypeMultimarket},
}

// ValidPairing reports whether the subtype belongs to the type.
func ValidPairing(t Type, s Subtype) bool {
	for _, candidate := range subtypesByType[t] {
		if candidate == s {
			return true
		}
	}
	return false
}

// =============================================================================
// INVESTMENT
// =============================================================================

// Investment is a position backed by one investment account. InitialValue
// and CurrentValue must share the backing account's currency. A past
// RedemptionDate soft-expires the position: default reads exclude it, no
// physical deletion happens.
type Investment struct {
	ID             ID
	AccountID      ledger.AccountID
	Name           string
	Type           Type
	Subtype        Subtype
	InitialValue   ledger.Money
	CurrentValue   ledger.Money
	PurchaseDate   *time.Time
	RedemptionDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Redeemed reports whether the position is expired as of the given day.
// A redemption date falling on that day still counts as active, matching
// the listing filter.
func (i Investment) Redeemed(on time.Time) bool {
	if i.RedemptionDate == nil {
		return false
	}
	y, m, d := on.Date()
	return i.RedemptionDate.Before(time.Date(y, m, d, 0, 0, 0, 0, on.Location()))
}

// =============================================================================
// HISTORY - Dated value snapshot
// =============================================================================

type History struct {
	ID           HistoryID
	InvestmentID ID
	RecordedOn   time.Time // date component only
	Value        ledger.Money
	CreatedAt    time.Time
}

// =============================================================================
// OPERATION - Classified delta
// =============================================================================

type OperationType string

const (
	OpDeposit  OperationType = "deposit"
	OpWithdraw OperationType = "withdraw"
	OpUpdate   OperationType = "update"
)

// Operation is a classified value delta. TransactionID links operations
// synthesized from user transactions; at most one operation exists per
// transaction (partial unique index).
type Operation struct {
	ID            OperationID
	InvestmentID  ID
	TransactionID string // empty for revaluation-driven operations
	Type          OperationType
	Value         ledger.Money
	CreatedAt     time.Time
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
