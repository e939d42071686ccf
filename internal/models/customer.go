package models

import (
	"strings"
	"time"
)

type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusSuspended CustomerStatus = "suspended"
	CustomerStatusClosed    CustomerStatus = "closed"
)

// CustomerStatuses lists the valid targets of a customer status change.
var CustomerStatuses = []CustomerStatus{CustomerStatusActive, CustomerStatusSuspended, CustomerStatusClosed}

func (s CustomerStatus) Valid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusSuspended, CustomerStatusClosed:
		return true
	}
	return false
}

// ParseCustomerStatus accepts one of active, suspended or closed.
func ParseCustomerStatus(raw string) (CustomerStatus, error) {
	s := CustomerStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		names := make([]string, len(CustomerStatuses))
		for i, v := range CustomerStatuses {
			names[i] = string(v)
		}
		return "", Validationf("invalid status %q, choose from: %s", raw, strings.Join(names, ", "))
	}
	return s, nil
}

// Customer is a bank customer as held by the record store.
type Customer struct {
	ID        string         `json:"customer_id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	Status    CustomerStatus `json:"status,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// EffectiveStatus treats a record without a status as active.
func (c Customer) EffectiveStatus() CustomerStatus {
	if c.Status == "" {
		return CustomerStatusActive
	}
	return c.Status
}
