package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ActionLogin           = "admin.login"
	ActionLogout          = "admin.logout"
	ActionAccountFrozen   = "account.frozen"
	ActionAccountUnfrozen = "account.unfrozen"
	ActionBalanceAdjusted = "account.balance_adjusted"
	ActionCustomerStatus  = "customer.status_changed"
	ActionAdminAdded      = "admin.added"
	ActionAdminRemoved    = "admin.removed"
	ActionReportGenerated = "report.generated"
	ActionAudit           = "audit.note"
)

// AdminAction is the audit record emitted for every administrative action.
type AdminAction struct {
	EventID    string           `json:"event_id"`
	Action     string           `json:"action"`
	Admin      string           `json:"admin"`
	AccountID  string           `json:"account_id,omitempty"`
	CustomerID string           `json:"customer_id,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Details    string           `json:"details,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
