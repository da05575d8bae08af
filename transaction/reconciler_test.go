package transaction_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
	"github.com/JuliaMathias/moolah-sub000/store/sqlite"
	"github.com/JuliaMathias/moolah-sub000/transaction"
)

func accountBalance(t *testing.T, s *sqlite.Store, id ledger.AccountID) ledger.Money {
	t.Helper()
	b, err := s.LatestBalance(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.Balance
}

func accountByIdentifier(t *testing.T, s *sqlite.Store, identifier string) *ledger.Account {
	t.Helper()
	a, err := s.GetAccountByIdentifier(context.Background(), identifier)
	require.NoError(t, err)
	require.NotNil(t, a, "expected account %q to exist", identifier)
	return a
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestCreate_Debit(t *testing.T) {
	// GIVEN: A valid debit of 42.10 BRL
	// WHEN: Creating it
	// THEN: One transfer moves the amount from the bank account into the
	//       category's expense account, and both balances materialize

	f := newFixture(t)
	ctx := context.Background()

	created, err := transaction.Create(ctx, f.store, f.debit(brl("42.10")))
	require.NoError(t, err)
	require.NotEmpty(t, created.TransferID)
	assert.Nil(t, created.SourceTransferID)
	assert.True(t, created.ExchangeRate.IsZero())

	expense := accountByIdentifier(t, f.store, "expense:BRL:"+string(f.budget.ID))
	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("-42.10")))
	assert.True(t, accountBalance(t, f.store, expense.ID).Equal(brl("42.10")))

	tr, err := f.store.GetTransfer(ctx, created.TransferID)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, f.bankBRL.ID, tr.FromAccountID)
	assert.Equal(t, expense.ID, tr.ToAccountID)
}

func TestCreate_Credit(t *testing.T) {
	// Credits flow from the life area's income account into the user
	// account.

	f := newFixture(t)
	ctx := context.Background()

	created, err := transaction.Create(ctx, f.store, f.credit(brl("1500")))
	require.NoError(t, err)

	income := accountByIdentifier(t, f.store, "income:BRL:"+string(f.lifeArea.ID))
	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("1500")))
	assert.True(t, accountBalance(t, f.store, income.ID).Equal(brl("-1500")))

	tr, err := f.store.GetTransfer(ctx, created.TransferID)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, income.ID, tr.FromAccountID)
	assert.Equal(t, f.bankBRL.ID, tr.ToAccountID)
}

func TestCreate_SameCurrencyTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second, err := ledger.OpenOrGet(ctx, f.store, "bank:brl2", "BRL", ledger.AccountBank)
	require.NoError(t, err)

	created, err := transaction.Create(ctx, f.store, f.transfer(f.bankBRL.ID, second.ID, brl("300")))
	require.NoError(t, err)
	assert.Nil(t, created.SourceTransferID)

	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("-300")))
	assert.True(t, accountBalance(t, f.store, second.ID).Equal(brl("300")))
}

func TestCreate_MultiCurrencyTransfer(t *testing.T) {
	// GIVEN: Sending 519.72 BRL from a BRL account to receive 100 USD in
	//        a USD account
	// WHEN: Creating the transfer
	// THEN: Two legs bridge through the trading accounts, the rate is
	//       5.1972, and the trading accounts hold 519.72 BRL and -100 USD

	f := newFixture(t)
	ctx := context.Background()

	txn := f.transfer(f.bankBRL.ID, f.bankUSD.ID, usd("100"))
	source := brl("519.72")
	txn.SourceAmount = &source

	created, err := transaction.Create(ctx, f.store, txn)
	require.NoError(t, err)
	require.NotNil(t, created.SourceTransferID)
	assert.NotEqual(t, created.TransferID, *created.SourceTransferID)
	assert.True(t, created.ExchangeRate.Equal(decimal.RequireFromString("5.1972")),
		"got rate %s", created.ExchangeRate)

	tradingBRL := accountByIdentifier(t, f.store, "trading:BRL")
	tradingUSD := accountByIdentifier(t, f.store, "trading:USD")

	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("-519.72")))
	assert.True(t, accountBalance(t, f.store, tradingBRL.ID).Equal(brl("519.72")))
	assert.True(t, accountBalance(t, f.store, tradingUSD.ID).Equal(usd("-100")))
	assert.True(t, accountBalance(t, f.store, f.bankUSD.ID).Equal(usd("100")))
}

func TestCreate_ZeroSourceAmountTransfer(t *testing.T) {
	// GIVEN: Receiving 100 USD for a source amount of 0 BRL
	// WHEN: Creating the transfer
	// THEN: Both legs record without error and the rate is zero rather
	//       than a division failure

	f := newFixture(t)
	ctx := context.Background()

	txn := f.transfer(f.bankBRL.ID, f.bankUSD.ID, usd("100"))
	source := brl("0")
	txn.SourceAmount = &source

	created, err := transaction.Create(ctx, f.store, txn)
	require.NoError(t, err)
	require.NotNil(t, created.SourceTransferID)
	assert.True(t, created.ExchangeRate.IsZero())

	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("0")))
	assert.True(t, accountBalance(t, f.store, f.bankUSD.ID).Equal(usd("100")))
}

func TestCreate_ValidationBlocksAllWrites(t *testing.T) {
	// A failed validation leaves no transaction, no transfer, no balance.

	f := newFixture(t)
	ctx := context.Background()

	bad := f.debit(brl("10"))
	bad.BudgetCategoryID = nil

	_, err := transaction.Create(ctx, f.store, bad)
	require.Error(t, err)
	assert.True(t, transaction.IsValidation(err))

	txns, err := f.store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txns)

	b, err := f.store.LatestBalance(ctx, f.bankBRL.ID)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestCreate_InvestmentDepositSyncsOperation(t *testing.T) {
	// GIVEN: A transfer from the bank into the investment account
	// WHEN: Creating it
	// THEN: Exactly one deposit operation is linked to the transaction

	f := newFixture(t)
	ctx := context.Background()

	txn := f.transfer(f.bankBRL.ID, f.invAcct.ID, brl("250"))
	txn.TargetInvestmentID = &f.inv.ID

	created, err := transaction.Create(ctx, f.store, txn)
	require.NoError(t, err)

	ops, err := f.store.ListOperations(ctx, f.inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpDeposit, ops[0].Type)
	assert.True(t, ops[0].Value.Equal(brl("250")))
	assert.Equal(t, string(created.ID), ops[0].TransactionID)
}

func TestCreate_InvestmentWithdrawSyncsOperation(t *testing.T) {
	// Transfers out of the investment account classify as withdraw.

	f := newFixture(t)
	ctx := context.Background()

	txn := f.transfer(f.invAcct.ID, f.bankBRL.ID, brl("75"))
	txn.TargetInvestmentID = &f.inv.ID

	_, err := transaction.Create(ctx, f.store, txn)
	require.NoError(t, err)

	ops, err := f.store.ListOperations(ctx, f.inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpWithdraw, ops[0].Type)
	assert.True(t, ops[0].Value.Equal(brl("75")))
}

// =============================================================================
// UPDATE TESTS
// =============================================================================

func TestUpdate_ReplacesTransferRoundTrip(t *testing.T) {
	// GIVEN: A debit of 100 on an account whose balance is B
	// WHEN: Updating the amount to 60
	// THEN: The old transfer is gone, a new one exists, and the balance
	//       reads exactly as if the debit had always been 60

	f := newFixture(t)
	ctx := context.Background()

	created, err := transaction.Create(ctx, f.store, f.debit(brl("100")))
	require.NoError(t, err)
	oldTransfer := created.TransferID

	edited := *created
	edited.Amount = brl("60")

	updated, err := transaction.Update(ctx, f.store, edited)
	require.NoError(t, err)
	assert.NotEqual(t, oldTransfer, updated.TransferID)

	gone, err := f.store.GetTransfer(ctx, oldTransfer)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("-60")))

	expense := accountByIdentifier(t, f.store, "expense:BRL:"+string(f.budget.ID))
	assert.True(t, accountBalance(t, f.store, expense.ID).Equal(brl("60")))
}

func TestUpdate_NoLedgerFieldChangeLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := transaction.Create(ctx, f.store, f.debit(brl("100")))
	require.NoError(t, err)

	// Same amount, account and categories; nothing ledger-relevant moved.
	updated, err := transaction.Update(ctx, f.store, *created)
	require.NoError(t, err)
	assert.Equal(t, created.TransferID, updated.TransferID)

	tr, err := f.store.GetTransfer(ctx, created.TransferID)
	require.NoError(t, err)
	assert.NotNil(t, tr)
}

func TestUpdate_MultiCurrencyReplacesBothLegs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txn := f.transfer(f.bankBRL.ID, f.bankUSD.ID, usd("100"))
	source := brl("519.72")
	txn.SourceAmount = &source

	created, err := transaction.Create(ctx, f.store, txn)
	require.NoError(t, err)
	oldTarget := created.TransferID
	oldSource := *created.SourceTransferID

	edited := *created
	edited.Amount = usd("200")
	newSource := brl("1050")
	edited.SourceAmount = &newSource

	updated, err := transaction.Update(ctx, f.store, edited)
	require.NoError(t, err)
	assert.True(t, updated.ExchangeRate.Equal(decimal.RequireFromString("5.25")),
		"got rate %s", updated.ExchangeRate)

	for _, id := range []ledger.TransferID{oldTarget, oldSource} {
		tr, err := f.store.GetTransfer(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, tr, "old leg should be destroyed")
	}

	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("-1050")))
	assert.True(t, accountBalance(t, f.store, f.bankUSD.ID).Equal(usd("200")))
}

func TestUpdate_ResyncsInvestmentOperation(t *testing.T) {
	// GIVEN: An investment deposit of 250
	// WHEN: Updating the amount to 300
	// THEN: Still exactly one operation, now carrying 300

	f := newFixture(t)
	ctx := context.Background()

	txn := f.transfer(f.bankBRL.ID, f.invAcct.ID, brl("250"))
	txn.TargetInvestmentID = &f.inv.ID

	created, err := transaction.Create(ctx, f.store, txn)
	require.NoError(t, err)

	edited := *created
	edited.Amount = brl("300")

	_, err = transaction.Update(ctx, f.store, edited)
	require.NoError(t, err)

	ops, err := f.store.ListOperations(ctx, f.inv.ID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, investment.OpDeposit, ops[0].Type)
	assert.True(t, ops[0].Value.Equal(brl("300")))
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := transaction.Update(context.Background(), f.store, f.debit(brl("10")))
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDelete_ReversesEverything(t *testing.T) {
	// GIVEN: A created debit
	// WHEN: Deleting it
	// THEN: The transaction, its transfer, and its balances are all gone,
	//       and the account balance reads as before the debit

	f := newFixture(t)
	ctx := context.Background()

	keep, err := transaction.Create(ctx, f.store, f.debit(brl("40")))
	require.NoError(t, err)
	doomed, err := transaction.Create(ctx, f.store, f.debit(brl("100")))
	require.NoError(t, err)

	require.NoError(t, transaction.Delete(ctx, f.store, doomed.ID))

	gone, err := f.store.GetTransaction(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	tr, err := f.store.GetTransfer(ctx, doomed.TransferID)
	require.NoError(t, err)
	assert.Nil(t, tr)

	assert.True(t, accountBalance(t, f.store, f.bankBRL.ID).Equal(brl("-40")))

	kept, err := f.store.GetTransaction(ctx, keep.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestDelete_RemovesInvestmentOperation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	txn := f.transfer(f.bankBRL.ID, f.invAcct.ID, brl("250"))
	txn.TargetInvestmentID = &f.inv.ID

	created, err := transaction.Create(ctx, f.store, txn)
	require.NoError(t, err)

	require.NoError(t, transaction.Delete(ctx, f.store, created.ID))

	ops, err := f.store.ListOperations(ctx, f.inv.ID)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t)

	err := transaction.Delete(context.Background(), f.store, transaction.NewID())
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

// =============================================================================
// TAG TESTS
// =============================================================================

func TestFindOrCreateTag_CaseInsensitive(t *testing.T) {
	// "Groceries" and "groceries" are the same tag.

	f := newFixture(t)
	ctx := context.Background()

	first, err := transaction.FindOrCreateTag(ctx, f.store, "Groceries")
	require.NoError(t, err)
	second, err := transaction.FindOrCreateTag(ctx, f.store, "groceries")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "groceries", first.Slug)
}

func TestTags_ArchiveFiltering(t *testing.T) {
	// GIVEN: A tag attached to a transaction
	// WHEN: Archiving it
	// THEN: It vanishes from default listings but the link survives for
	//       include_archived reads

	f := newFixture(t)
	ctx := context.Background()

	created, err := transaction.Create(ctx, f.store, f.debit(brl("10")))
	require.NoError(t, err)

	tag, err := transaction.FindOrCreateTag(ctx, f.store, "vacation")
	require.NoError(t, err)
	require.NoError(t, f.store.AttachTag(ctx, created.ID, tag.ID))
	// Duplicate attach is a no-op, not an error.
	require.NoError(t, f.store.AttachTag(ctx, created.ID, tag.ID))

	attached, err := f.store.ListTransactionTags(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, attached, 1)

	require.NoError(t, f.store.ArchiveTag(ctx, tag.ID))

	visible, err := f.store.ListTags(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := f.store.ListTags(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived())

	attached, err = f.store.ListTransactionTags(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, attached, "archived tags drop out of transaction listings")
}
