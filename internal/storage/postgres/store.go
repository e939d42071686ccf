package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" driver

	interfaces "github.com/sheikh-saqib/bank-admin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Schema creates the three record tables. Transactions carry a serial seq
// column so listing preserves insertion order.
const Schema = `
CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq        BIGSERIAL
);
CREATE TABLE IF NOT EXISTS accounts (
	id           TEXT PRIMARY KEY,
	customer_id  TEXT NOT NULL REFERENCES customers(id),
	account_type TEXT NOT NULL,
	balance      NUMERIC NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT 'active',
	frozen_at    TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq          BIGSERIAL
);
CREATE TABLE IF NOT EXISTS transactions (
	id               TEXT PRIMARY KEY,
	account_id       TEXT NOT NULL REFERENCES accounts(id),
	customer_id      TEXT NOT NULL,
	transaction_type TEXT NOT NULL,
	amount           NUMERIC NOT NULL CHECK (amount >= 0),
	description      TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	seq              BIGSERIAL
);`

// PostgresRecordStore is a RecordStore backed by lib/pq. Every write is
// executed immediately, so Persist has nothing left to flush.
type PostgresRecordStore struct {
	db *sql.DB
}

func NewPostgresRecordStore(db *sql.DB) *PostgresRecordStore {
	return &PostgresRecordStore{
		db: db,
	}
}

// Open connects with a lib/pq DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (p *PostgresRecordStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, Schema)
	return err
}

const customerColumns = `id, first_name, last_name, email, phone, address, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (models.Customer, error) {
	var c models.Customer
	var status string
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &status, &c.CreatedAt); err != nil {
		return models.Customer{}, err
	}
	c.Status = models.CustomerStatus(status)
	return c, nil
}

const accountColumns = `id, customer_id, account_type, balance, status, frozen_at, created_at`

func scanAccount(row rowScanner) (models.Account, error) {
	var a models.Account
	var status string
	var frozenAt sql.NullTime
	if err := row.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Balance, &status, &frozenAt, &a.CreatedAt); err != nil {
		return models.Account{}, err
	}
	a.Status = models.AccountStatus(status)
	if frozenAt.Valid {
		t := frozenAt.Time
		a.FrozenAt = &t
	}
	return a, nil
}

func (p *PostgresRecordStore) GetCustomer(ctx context.Context, id string) (models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, fmt.Errorf("%s: %w", id, models.ErrCustomerNotFound)
	}
	return c, err
}

func (p *PostgresRecordStore) GetAccount(ctx context.Context, id string) (models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, fmt.Errorf("%s: %w", id, models.ErrAccountNotFound)
	}
	return a, err
}

func (p *PostgresRecordStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]models.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (p *PostgresRecordStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (p *PostgresRecordStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	const query = `SELECT id, account_id, customer_id, transaction_type, amount, description, created_at
	FROM transactions ORDER BY seq`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var tx models.Transaction
		var txType string
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.CustomerID, &txType, &tx.Amount, &tx.Description, &tx.Timestamp); err != nil {
			return nil, err
		}
		tx.Type = models.TransactionType(txType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (p *PostgresRecordStore) SetAccountStatus(ctx context.Context, id string, status models.AccountStatus, frozenAt *time.Time) error {
	const query = `UPDATE accounts SET status = $2, frozen_at = $3 WHERE id = $1`

	var ts sql.NullTime
	if frozenAt != nil {
		ts = sql.NullTime{Time: *frozenAt, Valid: true}
	}
	res, err := p.db.ExecContext(ctx, query, id, string(status), ts)
	if err != nil {
		return err
	}
	return expectOneRow(res, id, models.ErrAccountNotFound)
}

func (p *PostgresRecordStore) SetCustomerStatus(ctx context.Context, id string, status models.CustomerStatus) error {
	const query = `UPDATE customers SET status = $2 WHERE id = $1`

	res, err := p.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	return expectOneRow(res, id, models.ErrCustomerNotFound)
}

const insertTransactionQuery = `INSERT INTO transactions (id, account_id, customer_id, transaction_type, amount, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (p *PostgresRecordStore) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	_, err := p.db.ExecContext(ctx, insertTransactionQuery, tx.ID, tx.AccountID, tx.CustomerID, string(tx.Type), tx.Amount, tx.Description, tx.Timestamp)
	return err
}

// ApplyAdjustment inserts tx and updates the account balance in one
// database transaction.
func (p *PostgresRecordStore) ApplyAdjustment(ctx context.Context, tx models.Transaction, newBalance decimal.Decimal) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	_, err = dbTx.ExecContext(ctx, insertTransactionQuery,
		tx.ID, tx.AccountID, tx.CustomerID, string(tx.Type), tx.Amount, tx.Description, tx.Timestamp)
	if err != nil {
		return err
	}

	res, err := dbTx.ExecContext(ctx, `UPDATE accounts SET balance = $2 WHERE id = $1`, tx.AccountID, newBalance)
	if err != nil {
		return err
	}
	if err = expectOneRow(res, tx.AccountID, models.ErrAccountNotFound); err != nil {
		return err
	}
	return dbTx.Commit()
}

// Persist is a no-op: every write above is already committed.
func (p *PostgresRecordStore) Persist(ctx context.Context) error {
	return nil
}

func expectOneRow(res sql.Result, id string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, notFound)
	}
	return nil
}

var _ interfaces.RecordStore = (*PostgresRecordStore)(nil)
