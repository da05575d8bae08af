package investment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
	"github.com/JuliaMathias/moolah-sub000/store/sqlite"
	"github.com/JuliaMathias/moolah-sub000/transaction"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func investmentAccount(t *testing.T, s *sqlite.Store, identifier string) *ledger.Account {
	t.Helper()
	a, err := ledger.OpenOrGet(context.Background(), s, identifier, "BRL", ledger.AccountInvestment)
	require.NoError(t, err)
	return a
}

func brl(value string) ledger.Money { return ledger.MustMoney(value, "BRL") }

func date(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func cdb(account ledger.AccountID, initial, current ledger.Money) investment.Investment {
	return investment.Investment{
		AccountID:    account,
		Name:         "CDB 110% CDI",
		Type:         investment.TypeFixedIncome,
		Subtype:      investment.SubtypeCDB,
		InitialValue: initial,
		CurrentValue: current,
	}
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCreate_RejectsInvalidPairing(t *testing.T) {
	store := newStore(t)
	account := investmentAccount(t, store, "inv:1")

	inv := cdb(account.ID, brl("100"), brl("100"))
	inv.Subtype = investment.SubtypeStock // stock is variable income, not fixed

	_, err := investment.Create(context.Background(), store, store, inv, date(10))
	assert.ErrorIs(t, err, investment.ErrInvalidPairing)
}

func TestCreate_RejectsNonInvestmentAccount(t *testing.T) {
	store := newStore(t)
	bank, err := ledger.OpenOrGet(context.Background(), store, "bank:1", "BRL", ledger.AccountBank)
	require.NoError(t, err)

	_, err = investment.Create(context.Background(), store, store, cdb(bank.ID, brl("100"), brl("100")), date(10))
	assert.ErrorIs(t, err, investment.ErrAccountNotInvestment)
}

func TestCreate_RejectsCurrencyMismatch(t *testing.T) {
	store := newStore(t)
	account := investmentAccount(t, store, "inv:1")

	inv := cdb(account.ID, ledger.MustMoney("100", "USD"), brl("100"))
	_, err := investment.Create(context.Background(), store, store, inv, date(10))
	assert.ErrorIs(t, err, investment.ErrCurrencyMismatch)

	var mismatch *investment.CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "initial_value", mismatch.Field)
}

func TestCreate_HistorySynthesis_PastPurchase(t *testing.T) {
	// GIVEN: A purchase 10 days ago at 1000, now worth 1050
	// WHEN: Creating the investment
	// THEN: Two history rows: purchase date at 1000, today at 1050

	store := newStore(t)
	ctx := context.Background()
	account := investmentAccount(t, store, "inv:1")

	inv := cdb(account.ID, brl("1000"), brl("1050"))
	purchase := date(1)
	inv.PurchaseDate = &purchase

	created, err := investment.Create(ctx, store, store, inv, date(11))
	require.NoError(t, err)

	histories, err := store.ListHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.Equal(t, "2025-06-01", histories[0].RecordedOn.Format("2006-01-02"))
	assert.True(t, histories[0].Value.Equal(brl("1000")))
	assert.Equal(t, "2025-06-11", histories[1].RecordedOn.Format("2006-01-02"))
	assert.True(t, histories[1].Value.Equal(brl("1050")))
}

func TestCreate_HistorySynthesis_SameDayEqualValues(t *testing.T) {
	// A same-day purchase at an unchanged value yields one row, not a
	// duplicated snapshot.

	store := newStore(t)
	ctx := context.Background()
	account := investmentAccount(t, store, "inv:1")

	inv := cdb(account.ID, brl("1000"), brl("1000"))
	today := date(11)
	inv.PurchaseDate = &today

	created, err := investment.Create(ctx, store, store, inv, today)
	require.NoError(t, err)

	histories, err := store.ListHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.True(t, histories[0].Value.Equal(brl("1000")))
}

func TestCreate_HistorySynthesis_NoPurchaseDate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	account := investmentAccount(t, store, "inv:1")

	created, err := investment.Create(ctx, store, store, cdb(account.ID, brl("1000"), brl("1050")), date(11))
	require.NoError(t, err)

	histories, err := store.ListHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, "2025-06-11", histories[0].RecordedOn.Format("2006-01-02"))
	assert.True(t, histories[0].Value.Equal(brl("1050")))
}

// =============================================================================
// VALUE UPDATE TESTS
// =============================================================================

func createCDB(t *testing.T, store *sqlite.Store, value string) *investment.Investment {
	t.Helper()
	account := investmentAccount(t, store, "inv:"+value)
	created, err := investment.Create(context.Background(), store, store, cdb(account.ID, brl(value), brl(value)), date(1))
	require.NoError(t, err)
	return created
}

func TestUpdateValue_ClassifiesDeposit(t *testing.T) {
	// GIVEN: An investment at 1000
	// WHEN: Updating to 1075 without the market flag
	// THEN: A deposit of 75 is recorded, plus a history row at the new value

	store := newStore(t)
	ctx := context.Background()
	inv := createCDB(t, store, "1000")

	updated, err := investment.UpdateValue(ctx, store, inv.ID, brl("1075"), false, date(12))
	require.NoError(t, err)
	assert.True(t, updated.CurrentValue.Equal(brl("1075")))

	ops, err := store.ListOperations(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpDeposit, ops[0].Type)
	assert.True(t, ops[0].Value.Equal(brl("75")))
	assert.Empty(t, ops[0].TransactionID)

	histories, err := store.ListHistory(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, histories[len(histories)-1].Value.Equal(brl("1075")))
}

func TestUpdateValue_ClassifiesWithdraw(t *testing.T) {
	// A decrease of 75 becomes a withdraw of 75 (absolute value).

	store := newStore(t)
	inv := createCDB(t, store, "1000")

	_, err := investment.UpdateValue(context.Background(), store, inv.ID, brl("925"), false, date(12))
	require.NoError(t, err)

	ops, err := store.ListOperations(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpWithdraw, ops[0].Type)
	assert.True(t, ops[0].Value.Equal(brl("75")))
}

func TestUpdateValue_ZeroDeltaIsUpdate(t *testing.T) {
	store := newStore(t)
	inv := createCDB(t, store, "1000")

	_, err := investment.UpdateValue(context.Background(), store, inv.ID, brl("1000"), false, date(12))
	require.NoError(t, err)

	ops, err := store.ListOperations(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpUpdate, ops[0].Type)
	assert.True(t, ops[0].Value.IsZero())
}

func TestUpdateValue_MarketModeKeepsSignedDelta(t *testing.T) {
	// GIVEN: A market revaluation downward
	// WHEN: Updating with the market flag
	// THEN: The operation is an update carrying the signed delta, never a
	//       withdraw - a revaluation implies no cash flow

	store := newStore(t)
	inv := createCDB(t, store, "1000")

	_, err := investment.UpdateValue(context.Background(), store, inv.ID, brl("925"), true, date(12))
	require.NoError(t, err)

	ops, err := store.ListOperations(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpUpdate, ops[0].Type)
	assert.True(t, ops[0].Value.Equal(brl("-75")))
}

func TestUpdateValue_RejectsCurrencyMismatch(t *testing.T) {
	store := newStore(t)
	inv := createCDB(t, store, "1000")

	_, err := investment.UpdateValue(context.Background(), store, inv.ID, ledger.MustMoney("1100", "USD"), false, date(12))
	assert.ErrorIs(t, err, investment.ErrCurrencyMismatch)
}

func TestUpdateValue_NotFound(t *testing.T) {
	store := newStore(t)

	_, err := investment.UpdateValue(context.Background(), store, investment.NewID(), brl("1"), false, date(12))
	assert.ErrorIs(t, err, investment.ErrNotFound)
}

// =============================================================================
// TRANSACTION-DRIVEN OPERATION TESTS
// =============================================================================

func TestSyncTransactionOperation_AtMostOnePerTransaction(t *testing.T) {
	// GIVEN: An operation already linked to a transaction
	// WHEN: Syncing the same transaction again with new attributes
	// THEN: The old operation is replaced; exactly one remains

	store := newStore(t)
	ctx := context.Background()
	inv := createCDB(t, store, "1000")

	require.NoError(t, investment.SyncTransactionOperation(ctx, store, inv.ID, "txn-1", investment.OpDeposit, brl("200")))
	require.NoError(t, investment.SyncTransactionOperation(ctx, store, inv.ID, "txn-1", investment.OpWithdraw, brl("50")))

	ops, err := store.ListOperations(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpWithdraw, ops[0].Type)
	assert.True(t, ops[0].Value.Equal(brl("50")))
	assert.Equal(t, "txn-1", ops[0].TransactionID)
}

func TestSyncTransactionOperation_DistinctTransactionsCoexist(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	inv := createCDB(t, store, "1000")

	require.NoError(t, investment.SyncTransactionOperation(ctx, store, inv.ID, "txn-1", investment.OpDeposit, brl("200")))
	require.NoError(t, investment.SyncTransactionOperation(ctx, store, inv.ID, "txn-2", investment.OpDeposit, brl("300")))

	ops, err := store.ListOperations(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

// =============================================================================
// REDEMPTION FILTER TESTS
// =============================================================================

func TestListInvestments_ExcludesRedeemedByDefault(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	live := createCDB(t, store, "1000")

	redeemedAccount := investmentAccount(t, store, "inv:redeemed")
	redeemed := cdb(redeemedAccount.ID, brl("500"), brl("500"))
	past := time.Now().UTC().AddDate(0, 0, -30)
	created, err := investment.Create(ctx, store, store, redeemed, date(1))
	require.NoError(t, err)
	created.RedemptionDate = &past
	require.NoError(t, store.UpdateInvestment(ctx, *created))

	visible, err := store.ListInvestments(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, live.ID, visible[0].ID)

	all, err := store.ListInvestments(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// TRANSACTIONAL COMPOSITION TESTS
// =============================================================================

func TestCreate_EnclosingUnitRollsBackEverything(t *testing.T) {
	// GIVEN: A create running inside a larger unit that fails afterwards
	// WHEN: The unit returns an error
	// THEN: Neither the investment nor its history survives

	store := newStore(t)
	ctx := context.Background()
	account := investmentAccount(t, store, "inv:1")

	boom := errors.New("boom")
	var id investment.ID
	err := store.InTx(ctx, func(tx transaction.Backend) error {
		created, err := investment.Create(ctx, tx, tx, cdb(account.ID, brl("1000"), brl("1000")), date(10))
		if err != nil {
			return err
		}
		id = created.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetInvestment(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	history, err := store.ListHistory(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestUpdateValue_EnclosingUnitRollsBackEverything(t *testing.T) {
	// GIVEN: A revaluation running inside a larger unit that fails
	//        afterwards
	// WHEN: The unit returns an error
	// THEN: The old value stands and no history or operation was kept

	store := newStore(t)
	ctx := context.Background()
	inv := createCDB(t, store, "1000")

	boom := errors.New("boom")
	err := store.InTx(ctx, func(tx transaction.Backend) error {
		if _, err := investment.UpdateValue(ctx, tx, inv.ID, brl("1100"), false, date(11)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetInvestment(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CurrentValue.Equal(brl("1000")))

	history, err := store.ListHistory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1) // only the opening snapshot

	ops, err := store.ListOperations(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

// =============================================================================
// REDEMPTION TESTS
// =============================================================================

func TestRedeemed_DayBoundary(t *testing.T) {
	// A redemption date on the asked-about day still counts as active,
	// matching the listing filter.

	inv := investment.Investment{}
	assert.False(t, inv.Redeemed(date(10)))

	redemption := date(10)
	inv.RedemptionDate = &redemption
	assert.False(t, inv.Redeemed(date(10)))
	assert.True(t, inv.Redeemed(date(11)))
}
