package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
)

// Account is a customer account. FrozenAt is set exactly when Status is frozen.
type Account struct {
	ID         string          `json:"account_id"`
	CustomerID string          `json:"customer_id"`
	Type       string          `json:"account_type"`
	Balance    decimal.Decimal `json:"balance"`
	Status     AccountStatus   `json:"status"`
	FrozenAt   *time.Time      `json:"frozen_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (a Account) IsFrozen() bool {
	return a.Status == AccountStatusFrozen
}

// Clone returns a copy that shares no pointers with a.
func (a Account) Clone() Account {
	if a.FrozenAt != nil {
		t := *a.FrozenAt
		a.FrozenAt = &t
	}
	return a
}
