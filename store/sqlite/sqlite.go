/*
Package sqlite provides the SQLite-backed implementation of every storage
interface in the system.

PURPOSE:
  One store implements ledger.Store, investment.Store, category.Store and
  transaction.Store, plus the InTx composition that gives the reconciler
  its single atomic unit of work. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  ledger.Store:        accounts, transfers, materialized balances
  investment.Store:    investments, histories, operations
  category.Store:      budget and life-area categories
  transaction.Store:   transactions, tags, tag joins
  transaction.Backend: all of the above inside one sql.Tx via InTx

KEY CONSTRAINTS (the invariants live in the schema):
  accounts.identifier UNIQUE             concurrent open-or-get calls for
                                         synthetic accounts converge on one row
  balances (account_id, transfer_id) PK  snapshots upserted, never duplicated
  investment_operations.transaction_id   partial unique index: at most one
                                         operation per transaction
  tags.name COLLATE NOCASE UNIQUE        case-insensitive tag identity
  transaction_tags (transaction, tag) PK no duplicate links

CONCURRENCY:
  A store-level mutex serializes InTx units; direct single-statement
  writes rely on SQLite's own locking with a busy timeout. WAL mode keeps
  readers unblocked.

DECIMAL HANDLING:
  Monetary values are persisted as decimal strings and re-parsed with
  shopspring/decimal. Balance adjustment arithmetic happens in Go on
  decimals, never in SQL on floats.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go, investment/store.go, category/store.go,
    transaction/store.go: interface definitions
  - transaction/reconciler.go: the main InTx caller
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/JuliaMathias/moolah-sub000/category"
	"github.com/JuliaMathias/moolah-sub000/investment"
	"github.com/JuliaMathias/moolah-sub000/ledger"
	"github.com/JuliaMathias/moolah-sub000/transaction"
)

// dbtx is the subset of *sql.DB and *sql.Tx the queries need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn implements every store interface against a dbtx. The Store embeds a
// conn bound to the root *sql.DB; InTx rebinds one to a *sql.Tx.
type conn struct {
	q dbtx
}

// Store implements all storage interfaces using SQLite.
type Store struct {
	conn
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: keeps ":memory:" a single database and sidesteps
	// SQLITE_BUSY between pooled writers.
	db.SetMaxOpenConns(1)

	store := &Store{conn: conn{q: db}, db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Accounts (ledger participants; synthetic accounts keyed by identifier)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		identifier TEXT NOT NULL UNIQUE,
		currency TEXT NOT NULL,
		account_type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Transfers (immutable balanced movements between two accounts)
	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		from_account_id TEXT NOT NULL REFERENCES accounts(id),
		to_account_id TEXT NOT NULL REFERENCES accounts(id),
		amount_value TEXT NOT NULL,
		amount_currency TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_from ON transfers(from_account_id);
	CREATE INDEX IF NOT EXISTS idx_transfers_to ON transfers(to_account_id);
	CREATE INDEX IF NOT EXISTS idx_transfers_timestamp ON transfers(timestamp);

	-- Balances (materialized running balance per account per transfer)
	CREATE TABLE IF NOT EXISTS balances (
		account_id TEXT NOT NULL REFERENCES accounts(id),
		transfer_id TEXT NOT NULL,
		balance_value TEXT NOT NULL,
		balance_currency TEXT NOT NULL,
		PRIMARY KEY (account_id, transfer_id)
	);

	-- Hot path: latest snapshot per account (transfer ids sort by creation)
	CREATE INDEX IF NOT EXISTS idx_balances_account_transfer
		ON balances(account_id, transfer_id DESC);

	-- Budget categories
	CREATE TABLE IF NOT EXISTS budget_categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Life-area categories (self-referencing tree, max depth 2)
	CREATE TABLE IF NOT EXISTS life_area_categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT REFERENCES life_area_categories(id),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_life_area_parent
		ON life_area_categories(parent_id) WHERE parent_id IS NOT NULL;

	-- Investments (retired via redemption_date, never deleted)
	CREATE TABLE IF NOT EXISTS investments (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		name TEXT NOT NULL,
		investment_type TEXT NOT NULL,
		investment_subtype TEXT NOT NULL,
		initial_value TEXT NOT NULL,
		initial_currency TEXT NOT NULL,
		current_value TEXT NOT NULL,
		current_currency TEXT NOT NULL,
		purchase_date TEXT,
		redemption_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_investments_account ON investments(account_id);

	-- Investment value history (multiple snapshots per day allowed)
	CREATE TABLE IF NOT EXISTS investment_histories (
		id TEXT PRIMARY KEY,
		investment_id TEXT NOT NULL REFERENCES investments(id),
		recorded_on TEXT NOT NULL,
		value TEXT NOT NULL,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_histories_investment
		ON investment_histories(investment_id, recorded_on);

	-- Investment operations (classified value deltas)
	CREATE TABLE IF NOT EXISTS investment_operations (
		id TEXT PRIMARY KEY,
		investment_id TEXT NOT NULL REFERENCES investments(id),
		transaction_id TEXT,
		op_type TEXT NOT NULL,
		value TEXT NOT NULL,
		currency TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one operation per transaction, even across
	-- repeated corrections of the same transaction
	CREATE UNIQUE INDEX IF NOT EXISTS idx_operations_transaction
		ON investment_operations(transaction_id) WHERE transaction_id IS NOT NULL;

	CREATE INDEX IF NOT EXISTS idx_operations_investment
		ON investment_operations(investment_id);

	-- Transactions (user-facing records, referencing their transfers)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		transaction_type TEXT NOT NULL,
		amount_value TEXT NOT NULL,
		amount_currency TEXT NOT NULL,
		source_amount_value TEXT,
		source_amount_currency TEXT,
		account_id TEXT NOT NULL REFERENCES accounts(id),
		target_account_id TEXT REFERENCES accounts(id),
		target_investment_id TEXT REFERENCES investments(id),
		budget_category_id TEXT REFERENCES budget_categories(id),
		life_area_category_id TEXT REFERENCES life_area_categories(id),
		date TEXT NOT NULL,
		exchange_rate TEXT NOT NULL,
		transfer_id TEXT NOT NULL,
		source_transfer_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	CREATE INDEX IF NOT EXISTS idx_transactions_transfer ON transactions(transfer_id);

	-- Tags (archived rather than deleted, case-insensitively unique)
	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL COLLATE NOCASE,
		slug TEXT NOT NULL,
		archived_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_name ON tags(name COLLATE NOCASE);

	-- Transaction <-> tag join
	CREATE TABLE IF NOT EXISTS transaction_tags (
		transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
		tag_id TEXT NOT NULL REFERENCES tags(id),
		PRIMARY KEY (transaction_id, tag_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// InTx runs fn against a Backend bound to a single database transaction.
// Units are serialized by the store mutex; any error rolls back every write.
func (s *Store) InTx(ctx context.Context, fn func(transaction.Backend) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txBackend{conn{q: sqlTx}}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txBackend is a Backend bound to an open sql.Tx. Nested InTx calls join
// the same transaction.
type txBackend struct {
	conn
}

func (t *txBackend) InTx(ctx context.Context, fn func(transaction.Backend) error) error {
	return fn(t)
}

// =============================================================================
// ACCOUNT STORE (ledger.AccountStore interface)
// =============================================================================

// InsertAccountIfAbsent inserts the account unless one with the same
// identifier already exists.
func (c *conn) InsertAccountIfAbsent(ctx context.Context, a ledger.Account) error {
	query := `
		INSERT INTO accounts (id, identifier, currency, account_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO NOTHING
	`
	_, err := c.q.ExecContext(ctx, query,
		a.ID, a.Identifier, a.Currency, a.Type,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (c *conn) GetAccountByIdentifier(ctx context.Context, identifier string) (*ledger.Account, error) {
	return scanAccount(c.q.QueryRowContext(ctx,
		"SELECT id, identifier, currency, account_type, created_at FROM accounts WHERE identifier = ?",
		identifier,
	))
}

func (c *conn) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	return scanAccount(c.q.QueryRowContext(ctx,
		"SELECT id, identifier, currency, account_type, created_at FROM accounts WHERE id = ?",
		id,
	))
}

func scanAccount(row *sql.Row) (*ledger.Account, error) {
	var a ledger.Account
	var createdAt string
	err := row.Scan(&a.ID, &a.Identifier, &a.Currency, &a.Type, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func (c *conn) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT id, identifier, currency, account_type, created_at FROM accounts ORDER BY identifier",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Identifier, &a.Currency, &a.Type, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// =============================================================================
// TRANSFER STORE (ledger.TransferStore interface)
// =============================================================================

func (c *conn) InsertTransfer(ctx context.Context, t ledger.Transfer) error {
	query := `
		INSERT INTO transfers
		(id, from_account_id, to_account_id, amount_value, amount_currency, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.q.ExecContext(ctx, query,
		t.ID, t.FromAccountID, t.ToAccountID,
		t.Amount.Value.String(), t.Amount.Currency,
		t.Timestamp.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

func (c *conn) GetTransfer(ctx context.Context, id ledger.TransferID) (*ledger.Transfer, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, from_account_id, to_account_id, amount_value, amount_currency, timestamp, created_at
		FROM transfers WHERE id = ?`, id)

	var t ledger.Transfer
	var value, currency, timestamp, createdAt string
	err := row.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &value, &currency, &timestamp, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transfer: %w", err)
	}
	t.Amount = parseMoney(value, currency)
	t.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
}

func (c *conn) DeleteTransfer(ctx context.Context, id ledger.TransferID) error {
	_, err := c.q.ExecContext(ctx, "DELETE FROM transfers WHERE id = ?", id)
	return err
}

func (c *conn) ListTransfersByAccount(ctx context.Context, id ledger.AccountID) ([]ledger.Transfer, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, from_account_id, to_account_id, amount_value, amount_currency, timestamp, created_at
		FROM transfers
		WHERE from_account_id = ? OR to_account_id = ?
		ORDER BY id ASC`, id, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []ledger.Transfer
	for rows.Next() {
		var t ledger.Transfer
		var value, currency, timestamp, createdAt string
		if err := rows.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &value, &currency, &timestamp, &createdAt); err != nil {
			return nil, err
		}
		t.Amount = parseMoney(value, currency)
		t.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// =============================================================================
// BALANCE STORE (ledger.BalanceStore interface)
// =============================================================================

func (c *conn) UpsertBalance(ctx context.Context, b ledger.Balance) error {
	query := `
		INSERT INTO balances (account_id, transfer_id, balance_value, balance_currency)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, transfer_id) DO UPDATE SET
			balance_value = excluded.balance_value,
			balance_currency = excluded.balance_currency
	`
	_, err := c.q.ExecContext(ctx, query,
		b.AccountID, b.TransferID, b.Balance.Value.String(), b.Balance.Currency,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance: %w", err)
	}
	return nil
}

func (c *conn) LatestBalance(ctx context.Context, id ledger.AccountID) (*ledger.Balance, error) {
	return scanBalanceRow(c.q.QueryRowContext(ctx, `
		SELECT account_id, transfer_id, balance_value, balance_currency
		FROM balances
		WHERE account_id = ?
		ORDER BY transfer_id DESC
		LIMIT 1`, id))
}

func (c *conn) BalanceAsOf(ctx context.Context, id ledger.AccountID, at time.Time) (*ledger.Balance, error) {
	return scanBalanceRow(c.q.QueryRowContext(ctx, `
		SELECT b.account_id, b.transfer_id, b.balance_value, b.balance_currency
		FROM balances b
		JOIN transfers t ON t.id = b.transfer_id
		WHERE b.account_id = ? AND t.timestamp <= ?
		ORDER BY t.timestamp DESC, b.transfer_id DESC
		LIMIT 1`, id, at.UTC().Format(time.RFC3339)))
}

func scanBalanceRow(row *sql.Row) (*ledger.Balance, error) {
	var b ledger.Balance
	var value, currency string
	err := row.Scan(&b.AccountID, &b.TransferID, &value, &currency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan balance: %w", err)
	}
	b.Balance = parseMoney(value, currency)
	return &b, nil
}

// AdjustBalancesAfter shifts every snapshot recorded after the given
// transfer by delta. The arithmetic runs in Go on decimals; the stored
// decimal strings are opaque to SQL.
func (c *conn) AdjustBalancesAfter(ctx context.Context, id ledger.AccountID, after ledger.TransferID, delta ledger.Money) error {
	rows, err := c.q.QueryContext(ctx, `
		SELECT transfer_id, balance_value
		FROM balances
		WHERE account_id = ? AND transfer_id > ?`, id, after)
	if err != nil {
		return err
	}

	type shift struct {
		transferID string
		next       decimal.Decimal
	}
	var shifts []shift
	for rows.Next() {
		var transferID, value string
		if err := rows.Scan(&transferID, &value); err != nil {
			rows.Close()
			return err
		}
		current, err := decimal.NewFromString(value)
		if err != nil {
			rows.Close()
			return fmt.Errorf("corrupt balance value %q: %w", value, err)
		}
		shifts = append(shifts, shift{transferID: transferID, next: current.Add(delta.Value)})
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, sh := range shifts {
		_, err := c.q.ExecContext(ctx,
			"UPDATE balances SET balance_value = ? WHERE account_id = ? AND transfer_id = ?",
			sh.next.String(), id, sh.transferID,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *conn) DeleteBalancesByTransfer(ctx context.Context, id ledger.TransferID) error {
	_, err := c.q.ExecContext(ctx, "DELETE FROM balances WHERE transfer_id = ?", id)
	return err
}

// =============================================================================
// CATEGORY STORE (category.Store interface)
// =============================================================================

func (c *conn) InsertBudgetCategory(ctx context.Context, cat category.BudgetCategory) error {
	_, err := c.q.ExecContext(ctx,
		"INSERT INTO budget_categories (id, name, created_at) VALUES (?, ?, ?)",
		cat.ID, cat.Name, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) GetBudgetCategory(ctx context.Context, id category.ID) (*category.BudgetCategory, error) {
	var cat category.BudgetCategory
	var createdAt string
	err := c.q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM budget_categories WHERE id = ?", id,
	).Scan(&cat.ID, &cat.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &cat, nil
}

func (c *conn) ListBudgetCategories(ctx context.Context) ([]category.BudgetCategory, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT id, name, created_at FROM budget_categories ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []category.BudgetCategory
	for rows.Next() {
		var cat category.BudgetCategory
		var createdAt string
		if err := rows.Scan(&cat.ID, &cat.Name, &createdAt); err != nil {
			return nil, err
		}
		cat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

func (c *conn) DeleteBudgetCategory(ctx context.Context, id category.ID) error {
	_, err := c.q.ExecContext(ctx, "DELETE FROM budget_categories WHERE id = ?", id)
	return err
}

func (c *conn) InsertLifeAreaCategory(ctx context.Context, cat category.LifeAreaCategory) error {
	_, err := c.q.ExecContext(ctx,
		"INSERT INTO life_area_categories (id, name, parent_id, created_at) VALUES (?, ?, ?, ?)",
		cat.ID, cat.Name, idPtr(cat.ParentID), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) UpdateLifeAreaCategory(ctx context.Context, cat category.LifeAreaCategory) error {
	_, err := c.q.ExecContext(ctx,
		"UPDATE life_area_categories SET name = ?, parent_id = ? WHERE id = ?",
		cat.Name, idPtr(cat.ParentID), cat.ID,
	)
	return err
}

func (c *conn) GetLifeAreaCategory(ctx context.Context, id category.ID) (*category.LifeAreaCategory, error) {
	row := c.q.QueryRowContext(ctx,
		"SELECT id, name, parent_id, created_at FROM life_area_categories WHERE id = ?", id,
	)
	var cat category.LifeAreaCategory
	var parentID sql.NullString
	var createdAt string
	err := row.Scan(&cat.ID, &cat.Name, &parentID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		p := category.ID(parentID.String)
		cat.ParentID = &p
	}
	cat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &cat, nil
}

func (c *conn) ListLifeAreaCategories(ctx context.Context) ([]category.LifeAreaCategory, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT id, name, parent_id, created_at FROM life_area_categories ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []category.LifeAreaCategory
	for rows.Next() {
		var cat category.LifeAreaCategory
		var parentID sql.NullString
		var createdAt string
		if err := rows.Scan(&cat.ID, &cat.Name, &parentID, &createdAt); err != nil {
			return nil, err
		}
		if parentID.Valid {
			p := category.ID(parentID.String)
			cat.ParentID = &p
		}
		cat.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

func (c *conn) DeleteLifeAreaCategory(ctx context.Context, id category.ID) error {
	_, err := c.q.ExecContext(ctx, "DELETE FROM life_area_categories WHERE id = ?", id)
	return err
}

func (c *conn) CountLifeAreaChildren(ctx context.Context, id category.ID) (int, error) {
	var n int
	err := c.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM life_area_categories WHERE parent_id = ?", id,
	).Scan(&n)
	return n, err
}

// =============================================================================
// INVESTMENT STORE (investment.Store interface)
// =============================================================================

func (c *conn) InsertInvestment(ctx context.Context, inv investment.Investment) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO investments
		(id, account_id, name, investment_type, investment_subtype,
		 initial_value, initial_currency, current_value, current_currency,
		 purchase_date, redemption_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.q.ExecContext(ctx, query,
		inv.ID, inv.AccountID, inv.Name, inv.Type, inv.Subtype,
		inv.InitialValue.Value.String(), inv.InitialValue.Currency,
		inv.CurrentValue.Value.String(), inv.CurrentValue.Currency,
		datePtr(inv.PurchaseDate), datePtr(inv.RedemptionDate),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert investment: %w", err)
	}
	return nil
}

func (c *conn) UpdateInvestment(ctx context.Context, inv investment.Investment) error {
	query := `
		UPDATE investments SET
			name = ?,
			current_value = ?,
			current_currency = ?,
			redemption_date = ?,
			updated_at = ?
		WHERE id = ?
	`
	_, err := c.q.ExecContext(ctx, query,
		inv.Name,
		inv.CurrentValue.Value.String(), inv.CurrentValue.Currency,
		datePtr(inv.RedemptionDate),
		time.Now().UTC().Format(time.RFC3339),
		inv.ID,
	)
	return err
}

const investmentColumns = `
	id, account_id, name, investment_type, investment_subtype,
	initial_value, initial_currency, current_value, current_currency,
	purchase_date, redemption_date, created_at, updated_at`

func (c *conn) GetInvestment(ctx context.Context, id investment.ID) (*investment.Investment, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT "+investmentColumns+" FROM investments WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return firstInvestment(rows)
}

func firstInvestment(rows *sql.Rows) (*investment.Investment, error) {
	invs, err := scanInvestments(rows)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, nil
	}
	return &invs[0], nil
}

// ListInvestments excludes redeemed positions unless asked; the filter is
// explicit in the query, not a hidden scope.
func (c *conn) ListInvestments(ctx context.Context, includeRedeemed bool) ([]investment.Investment, error) {
	query := "SELECT " + investmentColumns + " FROM investments"
	var args []any
	if !includeRedeemed {
		query += " WHERE redemption_date IS NULL OR redemption_date >= ?"
		args = append(args, time.Now().UTC().Format("2006-01-02"))
	}
	query += " ORDER BY name"

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInvestments(rows)
}

func scanInvestments(rows *sql.Rows) ([]investment.Investment, error) {
	var invs []investment.Investment
	for rows.Next() {
		var inv investment.Investment
		var initialValue, initialCurrency, currentValue, currentCurrency string
		var purchaseDate, redemptionDate sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(
			&inv.ID, &inv.AccountID, &inv.Name, &inv.Type, &inv.Subtype,
			&initialValue, &initialCurrency, &currentValue, &currentCurrency,
			&purchaseDate, &redemptionDate, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		inv.InitialValue = parseMoney(initialValue, initialCurrency)
		inv.CurrentValue = parseMoney(currentValue, currentCurrency)
		inv.PurchaseDate = parseDatePtr(purchaseDate)
		inv.RedemptionDate = parseDatePtr(redemptionDate)
		inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		inv.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (c *conn) InsertHistory(ctx context.Context, h investment.History) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO investment_histories (id, investment_id, recorded_on, value, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.ID, h.InvestmentID,
		h.RecordedOn.UTC().Format("2006-01-02"),
		h.Value.Value.String(), h.Value.Currency,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) ListHistory(ctx context.Context, id investment.ID) ([]investment.History, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, investment_id, recorded_on, value, currency, created_at
		FROM investment_histories
		WHERE investment_id = ?
		ORDER BY recorded_on ASC, created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []investment.History
	for rows.Next() {
		var h investment.History
		var recordedOn, value, currency, createdAt string
		if err := rows.Scan(&h.ID, &h.InvestmentID, &recordedOn, &value, &currency, &createdAt); err != nil {
			return nil, err
		}
		h.RecordedOn, _ = time.Parse("2006-01-02", recordedOn)
		h.Value = parseMoney(value, currency)
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

func (c *conn) InsertOperation(ctx context.Context, op investment.Operation) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO investment_operations (id, investment_id, transaction_id, op_type, value, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.InvestmentID, nullString(op.TransactionID),
		op.Type, op.Value.Value.String(), op.Value.Currency,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert investment operation: %w", err)
	}
	return nil
}

func (c *conn) DeleteOperationByTransaction(ctx context.Context, transactionID string) error {
	_, err := c.q.ExecContext(ctx,
		"DELETE FROM investment_operations WHERE transaction_id = ?", transactionID)
	return err
}

func (c *conn) ListOperations(ctx context.Context, id investment.ID) ([]investment.Operation, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, investment_id, transaction_id, op_type, value, currency, created_at
		FROM investment_operations
		WHERE investment_id = ?
		ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []investment.Operation
	for rows.Next() {
		var op investment.Operation
		var transactionID sql.NullString
		var value, currency, createdAt string
		if err := rows.Scan(&op.ID, &op.InvestmentID, &transactionID, &op.Type, &value, &currency, &createdAt); err != nil {
			return nil, err
		}
		op.TransactionID = transactionID.String
		op.Value = parseMoney(value, currency)
		op.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// =============================================================================
// TRANSACTION STORE (transaction.Store interface)
// =============================================================================

func (c *conn) InsertTransaction(ctx context.Context, t transaction.Transaction) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO transactions
		(id, transaction_type, amount_value, amount_currency,
		 source_amount_value, source_amount_currency,
		 account_id, target_account_id, target_investment_id,
		 budget_category_id, life_area_category_id,
		 date, exchange_rate, transfer_id, source_transfer_id,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.q.ExecContext(ctx, query, transactionArgs(t, now, now)...)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (c *conn) UpdateTransaction(ctx context.Context, t transaction.Transaction) error {
	query := `
		UPDATE transactions SET
			transaction_type = ?,
			amount_value = ?, amount_currency = ?,
			source_amount_value = ?, source_amount_currency = ?,
			account_id = ?, target_account_id = ?, target_investment_id = ?,
			budget_category_id = ?, life_area_category_id = ?,
			date = ?, exchange_rate = ?, transfer_id = ?, source_transfer_id = ?,
			updated_at = ?
		WHERE id = ?
	`
	var sourceValue, sourceCurrency any
	if t.SourceAmount != nil {
		sourceValue = t.SourceAmount.Value.String()
		sourceCurrency = t.SourceAmount.Currency
	}
	_, err := c.q.ExecContext(ctx, query,
		t.Type,
		t.Amount.Value.String(), t.Amount.Currency,
		sourceValue, sourceCurrency,
		t.AccountID, idPtr(t.TargetAccountID), idPtr(t.TargetInvestmentID),
		idPtr(t.BudgetCategoryID), idPtr(t.LifeAreaCategoryID),
		t.Date.UTC().Format(time.RFC3339), t.ExchangeRate.String(),
		t.TransferID, idPtr(t.SourceTransferID),
		time.Now().UTC().Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func transactionArgs(t transaction.Transaction, createdAt, updatedAt string) []any {
	var sourceValue, sourceCurrency any
	if t.SourceAmount != nil {
		sourceValue = t.SourceAmount.Value.String()
		sourceCurrency = t.SourceAmount.Currency
	}
	return []any{
		t.ID, t.Type,
		t.Amount.Value.String(), t.Amount.Currency,
		sourceValue, sourceCurrency,
		t.AccountID, idPtr(t.TargetAccountID), idPtr(t.TargetInvestmentID),
		idPtr(t.BudgetCategoryID), idPtr(t.LifeAreaCategoryID),
		t.Date.UTC().Format(time.RFC3339), t.ExchangeRate.String(),
		t.TransferID, idPtr(t.SourceTransferID),
		createdAt, updatedAt,
	}
}

const transactionColumns = `
	id, transaction_type, amount_value, amount_currency,
	source_amount_value, source_amount_currency,
	account_id, target_account_id, target_investment_id,
	budget_category_id, life_area_category_id,
	date, exchange_rate, transfer_id, source_transfer_id,
	created_at, updated_at`

func (c *conn) GetTransaction(ctx context.Context, id transaction.ID) (*transaction.Transaction, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}
	return &txns[0], nil
}

func (c *conn) ListTransactions(ctx context.Context) ([]transaction.Transaction, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY date DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]transaction.Transaction, error) {
	var txns []transaction.Transaction
	for rows.Next() {
		var t transaction.Transaction
		var amountValue, amountCurrency string
		var sourceValue, sourceCurrency sql.NullString
		var targetAccount, targetInvestment, budgetCategory, lifeAreaCategory sql.NullString
		var date, exchangeRate string
		var sourceTransfer sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(
			&t.ID, &t.Type, &amountValue, &amountCurrency,
			&sourceValue, &sourceCurrency,
			&t.AccountID, &targetAccount, &targetInvestment,
			&budgetCategory, &lifeAreaCategory,
			&date, &exchangeRate, &t.TransferID, &sourceTransfer,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		t.Amount = parseMoney(amountValue, amountCurrency)
		if sourceValue.Valid && sourceCurrency.Valid {
			m := parseMoney(sourceValue.String, sourceCurrency.String)
			t.SourceAmount = &m
		}
		if targetAccount.Valid {
			id := ledger.AccountID(targetAccount.String)
			t.TargetAccountID = &id
		}
		if targetInvestment.Valid {
			id := investment.ID(targetInvestment.String)
			t.TargetInvestmentID = &id
		}
		if budgetCategory.Valid {
			id := category.ID(budgetCategory.String)
			t.BudgetCategoryID = &id
		}
		if lifeAreaCategory.Valid {
			id := category.ID(lifeAreaCategory.String)
			t.LifeAreaCategoryID = &id
		}
		if sourceTransfer.Valid {
			id := ledger.TransferID(sourceTransfer.String)
			t.SourceTransferID = &id
		}
		t.Date, _ = time.Parse(time.RFC3339, date)
		t.ExchangeRate = mustDecimal(exchangeRate)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (c *conn) DeleteTransaction(ctx context.Context, id transaction.ID) error {
	_, err := c.q.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	return err
}

// =============================================================================
// TAG STORE (transaction.TagStore interface)
// =============================================================================

// InsertTag is insert-or-ignore on the case-insensitive name index, so
// concurrent find-or-create calls converge on one row.
func (c *conn) InsertTag(ctx context.Context, t transaction.Tag) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO tags (id, name, slug, archived_at, created_at)
		VALUES (?, ?, ?, NULL, ?)
		ON CONFLICT(name) DO NOTHING`,
		t.ID, t.Name, t.Slug, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (c *conn) GetTagByName(ctx context.Context, name string) (*transaction.Tag, error) {
	return scanTagRow(c.q.QueryRowContext(ctx,
		"SELECT id, name, slug, archived_at, created_at FROM tags WHERE name = ? COLLATE NOCASE",
		name,
	))
}

func (c *conn) GetTag(ctx context.Context, id transaction.TagID) (*transaction.Tag, error) {
	return scanTagRow(c.q.QueryRowContext(ctx,
		"SELECT id, name, slug, archived_at, created_at FROM tags WHERE id = ?", id,
	))
}

func scanTagRow(row *sql.Row) (*transaction.Tag, error) {
	var t transaction.Tag
	var archivedAt sql.NullString
	var createdAt string
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &archivedAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		at, _ := time.Parse(time.RFC3339, archivedAt.String)
		t.ArchivedAt = &at
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
}

func (c *conn) ListTags(ctx context.Context, includeArchived bool) ([]transaction.Tag, error) {
	query := "SELECT id, name, slug, archived_at, created_at FROM tags"
	if !includeArchived {
		query += " WHERE archived_at IS NULL"
	}
	query += " ORDER BY name"

	rows, err := c.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func (c *conn) ArchiveTag(ctx context.Context, id transaction.TagID) error {
	_, err := c.q.ExecContext(ctx,
		"UPDATE tags SET archived_at = ? WHERE id = ? AND archived_at IS NULL",
		time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

func (c *conn) AttachTag(ctx context.Context, transactionID transaction.ID, tagID transaction.TagID) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO transaction_tags (transaction_id, tag_id)
		VALUES (?, ?)
		ON CONFLICT(transaction_id, tag_id) DO NOTHING`,
		transactionID, tagID,
	)
	return err
}

func (c *conn) DetachTag(ctx context.Context, transactionID transaction.ID, tagID transaction.TagID) error {
	_, err := c.q.ExecContext(ctx,
		"DELETE FROM transaction_tags WHERE transaction_id = ? AND tag_id = ?",
		transactionID, tagID,
	)
	return err
}

func (c *conn) ListTransactionTags(ctx context.Context, transactionID transaction.ID) ([]transaction.Tag, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.archived_at, t.created_at
		FROM tags t
		JOIN transaction_tags tt ON tt.tag_id = t.id
		WHERE tt.transaction_id = ? AND t.archived_at IS NULL
		ORDER BY t.name`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func scanTags(rows *sql.Rows) ([]transaction.Tag, error) {
	var tags []transaction.Tag
	for rows.Next() {
		var t transaction.Tag
		var archivedAt sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &archivedAt, &createdAt); err != nil {
			return nil, err
		}
		if archivedAt.Valid {
			at, _ := time.Parse(time.RFC3339, archivedAt.String)
			t.ArchivedAt = &at
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func parseMoney(value, currency string) ledger.Money {
	return ledger.Money{Value: mustDecimal(value), Currency: currency}
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// idPtr renders a typed string pointer as a nullable column value.
func idPtr[T ~string](id *T) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func datePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}

func parseDatePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s.String)
	if err != nil {
		return nil
	}
	return &t
}
