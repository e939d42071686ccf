package ledger

import (
	"context"
	"fmt"

	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
)

// Freeze moves an active account to frozen and stamps frozen_at.
func (l *Ledger) Freeze(ctx context.Context, accountID string) (models.Account, error) {
	mu := l.getAccountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	if account.IsFrozen() {
		return models.Account{}, fmt.Errorf("%s: %w", accountID, models.ErrAlreadyFrozen)
	}

	frozenAt := l.now()
	if err := l.store.SetAccountStatus(ctx, accountID, models.AccountStatusFrozen, &frozenAt); err != nil {
		return models.Account{}, err
	}
	if err := l.store.Persist(ctx); err != nil {
		return models.Account{}, fmt.Errorf("persist: %w", err)
	}

	account.Status = models.AccountStatusFrozen
	account.FrozenAt = &frozenAt
	return account, nil
}

// Unfreeze moves a frozen account back to active and clears frozen_at.
func (l *Ledger) Unfreeze(ctx context.Context, accountID string) (models.Account, error) {
	mu := l.getAccountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	if !account.IsFrozen() {
		return models.Account{}, fmt.Errorf("%s: %w", accountID, models.ErrNotFrozen)
	}

	if err := l.store.SetAccountStatus(ctx, accountID, models.AccountStatusActive, nil); err != nil {
		return models.Account{}, err
	}
	if err := l.store.Persist(ctx); err != nil {
		return models.Account{}, fmt.Errorf("persist: %w", err)
	}

	account.Status = models.AccountStatusActive
	account.FrozenAt = nil
	return account, nil
}

// SetCustomerStatus changes a customer's status to any of active,
// suspended or closed.
func (l *Ledger) SetCustomerStatus(ctx context.Context, customerID string, raw string) (models.Customer, error) {
	customer, err := l.store.GetCustomer(ctx, customerID)
	if err != nil {
		return models.Customer{}, err
	}
	status, err := models.ParseCustomerStatus(raw)
	if err != nil {
		return models.Customer{}, err
	}

	if err := l.store.SetCustomerStatus(ctx, customerID, status); err != nil {
		return models.Customer{}, err
	}
	if err := l.store.Persist(ctx); err != nil {
		return models.Customer{}, fmt.Errorf("persist: %w", err)
	}

	customer.Status = status
	return customer, nil
}
