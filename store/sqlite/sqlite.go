/*
Package sqlite provides the SQLite-backed implementation of the ledger
persistence port.

PURPOSE:
  Implements ledger.Store and ledger.TxStore over database/sql with the
  mattn/go-sqlite3 driver. The same patterns apply to PostgreSQL; only
  minor dialect differences.

KEY TABLES:
  accounts:    cached balance + saving goal per account
  entry_types: categories; kind implies entry sign
  entries:     immutable money movements (no UPDATE path exists)
  debts:       peer lending/borrowing with monotonic totals

STORAGE-BOUNDARY INVARIANTS:
  - accounts and entry_types are unique per (owner_id, lower(trim(name)));
    a violated insert surfaces ledger.ErrDuplicateName
  - deleting an account cascades to its entries (foreign key)
  - amounts are TEXT-encoded decimals; sums are computed in Go with
    shopspring/decimal so no float drift ever reaches a balance

CONCURRENCY:
  WithTx holds an exclusive mutex for the whole transaction, so
  concurrent submissions serialize (see ledger.TxStore). Plain reads go
  straight to database/sql, which is safe for concurrent use.

WAL MODE:
  The database is opened with WAL and foreign keys on, matching the
  usual single-writer/multi-reader personal-server deployment.

USAGE:
  st, err := sqlite.New("./pocketbook.db")   // ":memory:" for tests
  defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/quillfin/pocketbook/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
	conn
}

// New opens (and migrates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, conn: conn{db: db}}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		balance TEXT NOT NULL,
		saving_goal TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Uniqueness of (owner, normalized name) lives here, at the storage
	-- boundary, not in the core.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_owner_name
		ON accounts(owner_id, lower(trim(name)));

	CREATE TABLE IF NOT EXISTS entry_types (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		budget_goal TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_entry_types_owner_kind_name
		ON entry_types(owner_id, kind, lower(trim(name)));
	CREATE INDEX IF NOT EXISTS idx_entry_types_owner_kind
		ON entry_types(owner_id, kind);

	CREATE TABLE IF NOT EXISTS debts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		contact_name TEXT NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL,
		total_committed TEXT NOT NULL,
		total_reconciled TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_debts_owner
		ON debts(owner_id);

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		entry_type_id TEXT NOT NULL REFERENCES entry_types(id),
		amount TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		description TEXT NOT NULL,
		note TEXT,
		debt_id TEXT REFERENCES debts(id),
		created_at TEXT NOT NULL
	);

	-- Balance recomputation (hot path) and per-account listings.
	CREATE INDEX IF NOT EXISTS idx_entries_owner_account
		ON entries(owner_id, account_id, entry_date);
	CREATE INDEX IF NOT EXISTS idx_entries_debt
		ON entries(debt_id) WHERE debt_id IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// WithTx executes fn within a database transaction, holding the write
// lock so concurrent submissions serialize.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&conn{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// CONN - Store methods over either *sql.DB or *sql.Tx
// =============================================================================

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	db dbtx
}

// ---------------------------------------------------------------------------
// Accounts

const accountColumns = "id, owner_id, name, balance, saving_goal, created_at"

func (c *conn) FindAccountByName(ctx context.Context, owner ledger.OwnerID, name string) (*ledger.Account, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE owner_id = ? AND lower(trim(name)) = ?",
		owner, ledger.NormalizeName(name))
	return scanAccount(row)
}

func (c *conn) FindAccountByID(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE owner_id = ? AND id = ?",
		owner, id)
	return scanAccount(row)
}

func (c *conn) InsertAccount(ctx context.Context, a *ledger.Account) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO accounts ("+accountColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.OwnerID, a.Name, a.Balance.String(), a.SavingGoal.String(),
		a.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (c *conn) UpdateAccount(ctx context.Context, a *ledger.Account) error {
	res, err := c.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, balance = ?, saving_goal = ? WHERE owner_id = ? AND id = ?",
		a.Name, a.Balance.String(), a.SavingGoal.String(), a.OwnerID, a.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateName
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireRow(res)
}

func (c *conn) ListAccounts(ctx context.Context, owner ledger.OwnerID) ([]ledger.Account, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE owner_id = ? ORDER BY name ASC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// ---------------------------------------------------------------------------
// Entry types

const entryTypeColumns = "id, owner_id, name, kind, budget_goal, created_at"

func (c *conn) FindEntryType(ctx context.Context, owner ledger.OwnerID, kind ledger.Kind, name string) (*ledger.EntryType, error) {
	var row *sql.Row
	if name == "" {
		row = c.db.QueryRowContext(ctx,
			"SELECT "+entryTypeColumns+" FROM entry_types WHERE owner_id = ? AND kind = ? ORDER BY created_at ASC LIMIT 1",
			owner, kind)
	} else {
		row = c.db.QueryRowContext(ctx,
			"SELECT "+entryTypeColumns+" FROM entry_types WHERE owner_id = ? AND kind = ? AND lower(trim(name)) = ?",
			owner, kind, ledger.NormalizeName(name))
	}
	return scanEntryType(row)
}

func (c *conn) InsertEntryType(ctx context.Context, t *ledger.EntryType) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO entry_types ("+entryTypeColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, t.OwnerID, t.Name, t.Kind, t.BudgetGoal.String(),
		t.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert entry type: %w", err)
	}
	return nil
}

func (c *conn) ListEntryTypes(ctx context.Context, owner ledger.OwnerID) ([]ledger.EntryType, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+entryTypeColumns+" FROM entry_types WHERE owner_id = ? ORDER BY name ASC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query entry types: %w", err)
	}
	defer rows.Close()

	var types []ledger.EntryType
	for rows.Next() {
		t, err := scanEntryType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, *t)
	}
	return types, rows.Err()
}

// ---------------------------------------------------------------------------
// Entries

const entryColumns = "id, owner_id, account_id, entry_type_id, amount, entry_date, description, note, debt_id, created_at"

func (c *conn) InsertEntry(ctx context.Context, e *ledger.Entry) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO entries ("+entryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.OwnerID, e.AccountID, e.EntryTypeID, e.Amount.String(),
		e.Date.UTC().Format(time.RFC3339), e.Description,
		nullString(e.Note), nullString(string(e.DebtID)),
		e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (c *conn) EntriesByAccount(ctx context.Context, owner ledger.OwnerID, account ledger.AccountID) ([]ledger.Entry, error) {
	return c.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE owner_id = ? AND account_id = ? ORDER BY entry_date ASC, created_at ASC",
		owner, account)
}

func (c *conn) EntriesByOwner(ctx context.Context, owner ledger.OwnerID) ([]ledger.Entry, error) {
	return c.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE owner_id = ? ORDER BY entry_date ASC, created_at ASC",
		owner)
}

// SumSignedAmounts loads (amount, kind) pairs and sums in Go: amounts are
// TEXT-encoded decimals and SQLite would sum them as floats.
func (c *conn) SumSignedAmounts(ctx context.Context, owner ledger.OwnerID, account ledger.AccountID) (decimal.Decimal, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT e.amount, t.kind
		FROM entries e
		JOIN entry_types t ON t.id = e.entry_type_id
		WHERE e.owner_id = ? AND e.account_id = ?`,
		owner, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum entries: %w", err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount string
		var kind ledger.Kind
		if err := rows.Scan(&amount, &kind); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan entry amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		sum = sum.Add(d.Mul(kind.Sign()))
	}
	return sum, rows.Err()
}

func (c *conn) queryEntries(ctx context.Context, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ---------------------------------------------------------------------------
// Debts

const debtColumns = "id, owner_id, contact_name, direction, status, total_committed, total_reconciled, note, created_at, updated_at"

func (c *conn) FindDebtByID(ctx context.Context, owner ledger.OwnerID, id ledger.DebtID) (*ledger.Debt, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE owner_id = ? AND id = ?", owner, id)
	return scanDebt(row)
}

func (c *conn) InsertDebt(ctx context.Context, d *ledger.Debt) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO debts ("+debtColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		d.ID, d.OwnerID, d.ContactName, d.Direction, d.Status,
		d.TotalCommitted.String(), d.TotalReconciled.String(), nullString(d.Note),
		d.CreatedAt.UTC().Format(time.RFC3339), d.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	return nil
}

func (c *conn) UpdateDebt(ctx context.Context, d *ledger.Debt) error {
	res, err := c.db.ExecContext(ctx, `
		UPDATE debts
		SET contact_name = ?, status = ?, total_committed = ?, total_reconciled = ?, note = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?`,
		d.ContactName, d.Status, d.TotalCommitted.String(), d.TotalReconciled.String(),
		nullString(d.Note), d.UpdatedAt.UTC().Format(time.RFC3339), d.OwnerID, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	return requireRow(res)
}

func (c *conn) ListDebts(ctx context.Context, owner ledger.OwnerID) ([]ledger.Debt, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE owner_id = ? ORDER BY created_at ASC", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query debts: %w", err)
	}
	defer rows.Close()

	var debts []ledger.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, *d)
	}
	return debts, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type scannable interface {
	Scan(dest ...any) error
}

func scanAccount(row scannable) (*ledger.Account, error) {
	var (
		a          ledger.Account
		balance    string
		savingGoal string
		createdAt  string
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &balance, &savingGoal, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("corrupt balance %q: %w", balance, err)
	}
	if a.SavingGoal, err = decimal.NewFromString(savingGoal); err != nil {
		return nil, fmt.Errorf("corrupt saving goal %q: %w", savingGoal, err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func scanEntryType(row scannable) (*ledger.EntryType, error) {
	var (
		t          ledger.EntryType
		budgetGoal string
		createdAt  string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Kind, &budgetGoal, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan entry type: %w", err)
	}
	if t.BudgetGoal, err = decimal.NewFromString(budgetGoal); err != nil {
		return nil, fmt.Errorf("corrupt budget goal %q: %w", budgetGoal, err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
}

func scanEntry(row scannable) (ledger.Entry, error) {
	var (
		e         ledger.Entry
		amount    string
		entryDate string
		note      sql.NullString
		debtID    sql.NullString
		createdAt string
	)
	err := row.Scan(&e.ID, &e.OwnerID, &e.AccountID, &e.EntryTypeID, &amount,
		&entryDate, &e.Description, &note, &debtID, &createdAt)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return e, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	e.Date, _ = time.Parse(time.RFC3339, entryDate)
	e.Note = note.String
	e.DebtID = ledger.DebtID(debtID.String)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

func scanDebt(row scannable) (*ledger.Debt, error) {
	var (
		d          ledger.Debt
		committed  string
		reconciled string
		note       sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(&d.ID, &d.OwnerID, &d.ContactName, &d.Direction, &d.Status,
		&committed, &reconciled, &note, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan debt: %w", err)
	}
	if d.TotalCommitted, err = decimal.NewFromString(committed); err != nil {
		return nil, fmt.Errorf("corrupt total committed %q: %w", committed, err)
	}
	if d.TotalReconciled, err = decimal.NewFromString(reconciled); err != nil {
		return nil, fmt.Errorf("corrupt total reconciled %q: %w", reconciled, err)
	}
	d.Note = note.String
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &d, nil
}

// =============================================================================
// SQL HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
