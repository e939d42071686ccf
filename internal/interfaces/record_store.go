package interfaces

import (
	"context"
	"time"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// RecordStore owns customers, accounts and transactions. The admin core
// reads and mutates records only through it and calls Persist after every
// successful mutation.
//
// Get methods return an error matching models.ErrNotFound for unknown ids.
// List methods return records in insertion order.
type RecordStore interface {
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
	GetAccount(ctx context.Context, id string) (models.Account, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	SetAccountStatus(ctx context.Context, id string, status models.AccountStatus, frozenAt *time.Time) error
	SetCustomerStatus(ctx context.Context, id string, status models.CustomerStatus) error
	AppendTransaction(ctx context.Context, tx models.Transaction) error
	// ApplyAdjustment appends tx and sets its account's balance as one unit:
	// either both writes land or neither does.
	ApplyAdjustment(ctx context.Context, tx models.Transaction, newBalance decimal.Decimal) error
	Persist(ctx context.Context) error
}
