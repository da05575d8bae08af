package transaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuliaMathias/moolah-sub000/category"
	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
	"github.com/JuliaMathias/moolah-sub000/store/sqlite"
	"github.com/JuliaMathias/moolah-sub000/transaction"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

// fixture wires a store with the accounts and categories most tests need.
type fixture struct {
	store    *sqlite.Store
	bankBRL  *ledger.Account
	bankUSD  *ledger.Account
	invAcct  *ledger.Account
	inv      *investment.Investment
	budget   category.BudgetCategory
	lifeArea category.LifeAreaCategory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{store: store}

	f.bankBRL, err = ledger.OpenOrGet(ctx, store, "bank:brl", "BRL", ledger.AccountBank)
	require.NoError(t, err)
	f.bankUSD, err = ledger.OpenOrGet(ctx, store, "bank:usd", "USD", ledger.AccountBank)
	require.NoError(t, err)
	f.invAcct, err = ledger.OpenOrGet(ctx, store, "inv:brl", "BRL", ledger.AccountInvestment)
	require.NoError(t, err)

	f.inv, err = investment.Create(ctx, store, store, investment.Investment{
		AccountID:    f.invAcct.ID,
		Name:         "Tesouro Selic",
		Type:         investment.TypeFixedIncome,
		Subtype:      investment.SubtypeTreasury,
		InitialValue: brl("1000"),
		CurrentValue: brl("1000"),
	}, time.Now().UTC())
	require.NoError(t, err)

	f.budget = category.BudgetCategory{ID: category.NewID(), Name: "Groceries"}
	require.NoError(t, store.InsertBudgetCategory(ctx, f.budget))
	f.lifeArea = category.LifeAreaCategory{ID: category.NewID(), Name: "Home"}
	require.NoError(t, store.InsertLifeAreaCategory(ctx, f.lifeArea))

	return f
}

func brl(value string) ledger.Money { return ledger.MustMoney(value, "BRL") }
func usd(value string) ledger.Money { return ledger.MustMoney(value, "USD") }

func txnDate() time.Time {
	return time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) debit(amount ledger.Money) transaction.Transaction {
	return transaction.Transaction{
		ID:                 transaction.NewID(),
		Type:               transaction.TypeDebit,
		Amount:             amount,
		AccountID:          f.bankBRL.ID,
		BudgetCategoryID:   &f.budget.ID,
		LifeAreaCategoryID: &f.lifeArea.ID,
		Date:               txnDate(),
	}
}

func (f *fixture) credit(amount ledger.Money) transaction.Transaction {
	return transaction.Transaction{
		ID:                 transaction.NewID(),
		Type:               transaction.TypeCredit,
		Amount:             amount,
		AccountID:          f.bankBRL.ID,
		LifeAreaCategoryID: &f.lifeArea.ID,
		Date:               txnDate(),
	}
}

func (f *fixture) transfer(from, to ledger.AccountID, amount ledger.Money) transaction.Transaction {
	return transaction.Transaction{
		ID:              transaction.NewID(),
		Type:            transaction.TypeTransfer,
		Amount:          amount,
		AccountID:       from,
		TargetAccountID: &to,
		Date:            txnDate(),
	}
}

func validate(t *testing.T, f *fixture, txn transaction.Transaction) transaction.ValidationErrors {
	t.Helper()
	verrs, err := transaction.Validate(context.Background(), f.store, txn)
	require.NoError(t, err)
	return verrs
}

// =============================================================================
// STRUCTURAL VALIDATION TESTS
// =============================================================================

func TestValidate_UnknownType(t *testing.T) {
	f := newFixture(t)
	txn := f.debit(brl("10"))
	txn.Type = "wire"

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("transaction_type"))
}

func TestValidate_AmountMustBePositive(t *testing.T) {
	f := newFixture(t)

	verrs := validate(t, f, f.debit(brl("0")))
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("amount"))

	verrs = validate(t, f, f.debit(brl("-5")))
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("amount"))
}

func TestValidate_DebitRequiresBothCategories(t *testing.T) {
	// GIVEN: A debit with a nil budget category
	// WHEN: Validating
	// THEN: Rejected before any ledger write could happen

	f := newFixture(t)

	txn := f.debit(brl("10"))
	txn.BudgetCategoryID = nil
	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("budget_category_id"))

	txn = f.debit(brl("10"))
	txn.LifeAreaCategoryID = nil
	verrs = validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("life_area_category_id"))
}

func TestValidate_CreditForbidsBudgetCategory(t *testing.T) {
	f := newFixture(t)

	txn := f.credit(brl("10"))
	txn.BudgetCategoryID = &f.budget.ID

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("budget_category_id"))
}

func TestValidate_TransferForbidsCategories(t *testing.T) {
	f := newFixture(t)

	txn := f.transfer(f.bankBRL.ID, f.bankUSD.ID, usd("10"))
	txn.BudgetCategoryID = &f.budget.ID
	txn.LifeAreaCategoryID = &f.lifeArea.ID

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("budget_category_id"))
	assert.True(t, verrs.Has("life_area_category_id"))
}

func TestValidate_TransferRequiresTarget(t *testing.T) {
	f := newFixture(t)

	txn := f.transfer(f.bankBRL.ID, f.bankUSD.ID, brl("10"))
	txn.TargetAccountID = nil

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("target_account_id"))
}

func TestValidate_SameCurrencySourceAmountIsRedundant(t *testing.T) {
	// An explicit source_amount in the same currency as amount carries no
	// information and is rejected rather than silently accepted.

	f := newFixture(t)

	second, err := ledger.OpenOrGet(context.Background(), f.store, "bank:brl2", "BRL", ledger.AccountBank)
	require.NoError(t, err)

	txn := f.transfer(f.bankBRL.ID, second.ID, brl("10"))
	source := brl("10")
	txn.SourceAmount = &source

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("source_amount"))
}

func TestValidate_CategoryMustExist(t *testing.T) {
	f := newFixture(t)

	missing := category.NewID()
	txn := f.debit(brl("10"))
	txn.BudgetCategoryID = &missing

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("budget_category_id"))
}

// =============================================================================
// CURRENCY VALIDATION TESTS
// =============================================================================

func TestValidate_DebitCurrencyMustMatchAccount(t *testing.T) {
	f := newFixture(t)

	verrs := validate(t, f, f.debit(usd("10")))
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("amount"))
}

func TestValidate_MultiCurrencyFieldAttribution(t *testing.T) {
	// GIVEN: A BRL->USD transfer with both monetary fields in the wrong
	//        currency
	// WHEN: Validating
	// THEN: source_amount is checked against the source account and amount
	//       against the target account - each error lands on its own field

	f := newFixture(t)

	txn := f.transfer(f.bankBRL.ID, f.bankUSD.ID, brl("100"))
	source := usd("519.72")
	txn.SourceAmount = &source

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("source_amount"))
	assert.True(t, verrs.Has("amount"))
}

func TestValidate_DefersWhenAccountMissing(t *testing.T) {
	// GIVEN: A debit referencing an account id that does not exist
	// WHEN: Validating
	// THEN: No currency error is reported; the foreign key raises the
	//       authoritative existence error at write time

	f := newFixture(t)

	txn := f.debit(brl("10"))
	txn.AccountID = ledger.NewAccountID()

	verrs := validate(t, f, txn)
	assert.Nil(t, verrs)
}

// =============================================================================
// INVESTMENT TARGET TESTS
// =============================================================================

func TestValidate_InvestmentTransferRequiresInvestmentID(t *testing.T) {
	f := newFixture(t)

	txn := f.transfer(f.bankBRL.ID, f.invAcct.ID, brl("100"))
	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("target_investment_id"))
}

func TestValidate_InvestmentIDForbiddenWithoutInvestmentAccount(t *testing.T) {
	f := newFixture(t)

	second, err := ledger.OpenOrGet(context.Background(), f.store, "bank:brl2", "BRL", ledger.AccountBank)
	require.NoError(t, err)

	txn := f.transfer(f.bankBRL.ID, second.ID, brl("100"))
	txn.TargetInvestmentID = &f.inv.ID

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("target_investment_id"))
}

func TestValidate_InvestmentMustBackTheInvolvedAccount(t *testing.T) {
	// GIVEN: A transfer into investment account A naming the investment
	//        backed by account B
	// WHEN: Validating
	// THEN: Rejected as an investment mismatch

	f := newFixture(t)
	ctx := context.Background()

	otherAcct, err := ledger.OpenOrGet(ctx, f.store, "inv:other", "BRL", ledger.AccountInvestment)
	require.NoError(t, err)
	other, err := investment.Create(ctx, f.store, f.store, investment.Investment{
		AccountID:    otherAcct.ID,
		Name:         "CDB",
		Type:         investment.TypeFixedIncome,
		Subtype:      investment.SubtypeCDB,
		InitialValue: brl("1"),
		CurrentValue: brl("1"),
	}, time.Now().UTC())
	require.NoError(t, err)

	txn := f.transfer(f.bankBRL.ID, f.invAcct.ID, brl("100"))
	txn.TargetInvestmentID = &other.ID

	verrs := validate(t, f, txn)
	require.NotNil(t, verrs)
	assert.True(t, verrs.Has("target_investment_id"))
}

func TestValidate_ValidTransactionsPass(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, validate(t, f, f.debit(brl("10"))))
	assert.Nil(t, validate(t, f, f.credit(brl("10"))))

	txn := f.transfer(f.bankBRL.ID, f.bankUSD.ID, usd("100"))
	source := brl("519.72")
	txn.SourceAmount = &source
	assert.Nil(t, validate(t, f, txn))

	withInv := f.transfer(f.bankBRL.ID, f.invAcct.ID, brl("100"))
	withInv.TargetInvestmentID = &f.inv.ID
	assert.Nil(t, validate(t, f, withInv))
}
