// Package admin is the back-office surface: every operation authorizes the
// caller's session, runs through the ledger, query or report packages, and
// returns a typed result. On failure an operation logs a diagnostic, changes
// nothing and returns its neutral value (empty slice, nil, zero struct)
// together with an error from the models package.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/bank-admin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/ledger"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/logger"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/models/events"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/query"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/report"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/session"
	"github.com/shopspring/decimal"
)

const (
	DefaultAuditTopic       = "admin_audit"
	DefaultTransactionLimit = 100
)

type Service struct {
	store     interfaces.RecordStore
	ledger    *ledger.Ledger
	guard     *session.Guard
	publisher interfaces.EventPublisher

	auditTopic   string
	defaultLimit int
	now          func() time.Time
}

type Option func(*Service)

func WithAuditTopic(topic string) Option {
	return func(s *Service) { s.auditTopic = topic }
}

// WithTransactionLimit sets how many transactions ListTransactions returns
// when the caller passes 0.
func WithTransactionLimit(n int) Option {
	return func(s *Service) { s.defaultLimit = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store interfaces.RecordStore, l *ledger.Ledger, guard *session.Guard, publisher interfaces.EventPublisher, opts ...Option) *Service {
	s := &Service{
		store:        store,
		ledger:       l,
		guard:        guard,
		publisher:    publisher,
		auditTopic:   DefaultAuditTopic,
		defaultLimit: DefaultTransactionLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// authorize resolves the acting admin or fails with ErrAuthRequired.
func (s *Service) authorize(token, op string) (string, error) {
	admin, err := s.guard.Authorize(token)
	if err != nil {
		logger.Info("admin authentication required", logger.Fields{"operation": op})
		return "", err
	}
	return admin, nil
}

// fail logs the diagnostic for a failed operation and passes err through.
func fail(op string, err error, fields logger.Fields) error {
	if fields == nil {
		fields = logger.Fields{}
	}
	fields["operation"] = op
	logger.Error("admin operation failed", err, fields)
	return err
}

// audit publishes an admin action. Publishing problems are logged and
// never fail the operation that triggered them.
func (s *Service) audit(ctx context.Context, ev events.AdminAction) {
	ev.EventID = uuid.New().String()
	ev.OccurredAt = s.now()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.auditTopic, ev); err != nil {
		logger.Error("audit publish failed", err, logger.Fields{
			"action": ev.Action,
			"admin":  ev.Admin,
		})
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (session.Session, error) {
	sess, err := s.guard.Login(email, password)
	if err != nil {
		logger.Info("invalid admin credentials", logger.Fields{"email": email})
		return session.Session{}, err
	}
	logger.Info("administrator logged in", logger.Fields{"email": email})
	s.audit(ctx, events.AdminAction{Action: events.ActionLogin, Admin: email})
	return sess, nil
}

// Logout ends the session. Logging out without a live session reports
// ErrNoActiveSession, which callers may treat as informational.
func (s *Service) Logout(ctx context.Context, token string) error {
	email, err := s.guard.Logout(token)
	if err != nil {
		logger.Info("no administrator is currently logged in", nil)
		return err
	}
	logger.Info("administrator logged out", logger.Fields{"email": email})
	s.audit(ctx, events.AdminAction{Action: events.ActionLogout, Admin: email})
	return nil
}

func (s *Service) ListCustomers(ctx context.Context, token string) ([]models.Customer, error) {
	if _, err := s.authorize(token, "list_customers"); err != nil {
		return []models.Customer{}, err
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return []models.Customer{}, fail("list_customers", err, nil)
	}
	return customers, nil
}

func (s *Service) GetCustomerDetails(ctx context.Context, token, customerID string) (*models.CustomerDetails, error) {
	if _, err := s.authorize(token, "get_customer_details"); err != nil {
		return nil, err
	}
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fail("get_customer_details", err, logger.Fields{"customerId": customerID})
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fail("get_customer_details", err, logger.Fields{"customerId": customerID})
	}
	return &models.CustomerDetails{
		Customer: customer,
		Accounts: query.AccountsOf(accounts, customerID),
	}, nil
}

func (s *Service) SearchCustomers(ctx context.Context, token, term string) ([]models.Customer, error) {
	if _, err := s.authorize(token, "search_customers"); err != nil {
		return []models.Customer{}, err
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return []models.Customer{}, fail("search_customers", err, nil)
	}
	return query.SearchCustomers(customers, term), nil
}

func (s *Service) ListAccounts(ctx context.Context, token string) ([]models.AccountView, error) {
	if _, err := s.authorize(token, "list_accounts"); err != nil {
		return []models.AccountView{}, err
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return []models.AccountView{}, fail("list_accounts", err, nil)
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return []models.AccountView{}, fail("list_accounts", err, nil)
	}
	return query.AccountViews(accounts, customers), nil
}

func (s *Service) GetAccountDetails(ctx context.Context, token, accountID string) (*models.AccountDetails, error) {
	if _, err := s.authorize(token, "get_account_details"); err != nil {
		return nil, err
	}
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fail("get_account_details", err, logger.Fields{"accountId": accountID})
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fail("get_account_details", err, logger.Fields{"accountId": accountID})
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fail("get_account_details", err, logger.Fields{"accountId": accountID})
	}

	own := query.FilterTransactions(txs, query.TransactionFilter{AccountID: accountID})
	query.SortNewestFirst(own)
	return &models.AccountDetails{
		AccountView:  query.AccountViews([]models.Account{account}, customers)[0],
		Transactions: own,
	}, nil
}

func (s *Service) FreezeAccount(ctx context.Context, token, accountID string) (*models.Account, error) {
	admin, err := s.authorize(token, "freeze_account")
	if err != nil {
		return nil, err
	}
	account, err := s.ledger.Freeze(ctx, accountID)
	if err != nil {
		return nil, fail("freeze_account", err, logger.Fields{"accountId": accountID})
	}
	logger.Info("account frozen", logger.Fields{"accountId": accountID, "admin": admin})
	s.audit(ctx, events.AdminAction{
		Action:     events.ActionAccountFrozen,
		Admin:      admin,
		AccountID:  accountID,
		CustomerID: account.CustomerID,
	})
	return &account, nil
}

func (s *Service) UnfreezeAccount(ctx context.Context, token, accountID string) (*models.Account, error) {
	admin, err := s.authorize(token, "unfreeze_account")
	if err != nil {
		return nil, err
	}
	account, err := s.ledger.Unfreeze(ctx, accountID)
	if err != nil {
		return nil, fail("unfreeze_account", err, logger.Fields{"accountId": accountID})
	}
	logger.Info("account unfrozen", logger.Fields{"accountId": accountID, "admin": admin})
	s.audit(ctx, events.AdminAction{
		Action:     events.ActionAccountUnfrozen,
		Admin:      admin,
		AccountID:  accountID,
		CustomerID: account.CustomerID,
	})
	return &account, nil
}

func (s *Service) SetCustomerStatus(ctx context.Context, token, customerID, status string) (*models.Customer, error) {
	admin, err := s.authorize(token, "set_customer_status")
	if err != nil {
		return nil, err
	}
	customer, err := s.ledger.SetCustomerStatus(ctx, customerID, status)
	if err != nil {
		return nil, fail("set_customer_status", err, logger.Fields{"customerId": customerID, "status": status})
	}
	logger.Info("customer status updated", logger.Fields{"customerId": customerID, "status": customer.Status, "admin": admin})
	s.audit(ctx, events.AdminAction{
		Action:     events.ActionCustomerStatus,
		Admin:      admin,
		CustomerID: customerID,
		Details:    string(customer.Status),
	})
	return &customer, nil
}

// AdjustBalance applies delta to the account and records the matching admin
// adjustment transaction. The reason is required.
func (s *Service) AdjustBalance(ctx context.Context, token, accountID string, delta decimal.Decimal, reason string) (*models.Adjustment, error) {
	admin, err := s.authorize(token, "adjust_balance")
	if err != nil {
		return nil, err
	}
	adj, err := s.ledger.Adjust(ctx, accountID, delta, reason, admin)
	if err != nil {
		return nil, fail("adjust_balance", err, logger.Fields{"accountId": accountID, "delta": delta.String()})
	}
	logger.Info("balance adjusted", logger.Fields{
		"accountId":       accountID,
		"previousBalance": adj.PreviousBalance.StringFixed(2),
		"newBalance":      adj.NewBalance.StringFixed(2),
		"transactionId":   adj.Transaction.ID,
		"admin":           admin,
	})
	s.audit(ctx, events.AdminAction{
		Action:     events.ActionBalanceAdjusted,
		Admin:      admin,
		AccountID:  accountID,
		CustomerID: adj.Transaction.CustomerID,
		Amount:     &delta,
		Details:    adj.Transaction.Description,
	})
	return &adj, nil
}

// ReconcileAccount reports whether the account balance matches its ledger.
func (s *Service) ReconcileAccount(ctx context.Context, token, accountID string) (*models.Reconciliation, error) {
	if _, err := s.authorize(token, "reconcile_account"); err != nil {
		return nil, err
	}
	rec, err := s.ledger.Reconcile(ctx, accountID)
	if err != nil {
		return nil, fail("reconcile_account", err, logger.Fields{"accountId": accountID})
	}
	if !rec.Balanced() {
		logger.Warn("account balance differs from ledger", logger.Fields{
			"accountId":  accountID,
			"difference": rec.Difference.String(),
		})
	}
	return &rec, nil
}

// ListTransactions returns every transaction newest first, enriched, capped
// at limit. A zero limit means the configured default (WithTransactionLimit),
// not "no limit"; pass a negative limit to get every transaction.
func (s *Service) ListTransactions(ctx context.Context, token string, limit int) ([]models.EnrichedTransaction, error) {
	if _, err := s.authorize(token, "list_transactions"); err != nil {
		return []models.EnrichedTransaction{}, err
	}
	if limit == 0 {
		limit = s.defaultLimit
	}
	return s.searchTransactions(ctx, "list_transactions", query.TransactionFilter{}, limit)
}

// SearchTransactions returns the transactions matching every set field of
// filter, newest first and enriched.
func (s *Service) SearchTransactions(ctx context.Context, token string, filter query.TransactionFilter) ([]models.EnrichedTransaction, error) {
	if _, err := s.authorize(token, "search_transactions"); err != nil {
		return []models.EnrichedTransaction{}, err
	}
	return s.searchTransactions(ctx, "search_transactions", filter, -1)
}

func (s *Service) searchTransactions(ctx context.Context, op string, filter query.TransactionFilter, limit int) ([]models.EnrichedTransaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return []models.EnrichedTransaction{}, fail(op, err, nil)
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return []models.EnrichedTransaction{}, fail(op, err, nil)
	}
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return []models.EnrichedTransaction{}, fail(op, err, nil)
	}

	matched := query.FilterTransactions(txs, filter)
	query.SortNewestFirst(matched)
	return query.Enrich(query.Limit(matched, limit), accounts, customers), nil
}

func (s *Service) GenerateReport(ctx context.Context, token, reportType string) (*models.Report, error) {
	admin, err := s.authorize(token, "generate_report")
	if err != nil {
		return nil, err
	}
	if _, err := report.ParseType(reportType); err != nil {
		return nil, fail("generate_report", err, logger.Fields{"reportType": reportType})
	}

	var in report.Input
	if in.Customers, err = s.store.ListCustomers(ctx); err != nil {
		return nil, fail("generate_report", err, nil)
	}
	if in.Accounts, err = s.store.ListAccounts(ctx); err != nil {
		return nil, fail("generate_report", err, nil)
	}
	if in.Transactions, err = s.store.ListTransactions(ctx); err != nil {
		return nil, fail("generate_report", err, nil)
	}

	r, err := report.Generate(reportType, in, s.now(), admin)
	if err != nil {
		return nil, fail("generate_report", err, logger.Fields{"reportType": reportType})
	}
	s.audit(ctx, events.AdminAction{Action: events.ActionReportGenerated, Admin: admin, Details: reportType})
	return r, nil
}

func (s *Service) AddAdmin(ctx context.Context, token, email, password string) error {
	admin, err := s.authorize(token, "add_admin")
	if err != nil {
		return err
	}
	if err := s.guard.Register(email, password); err != nil {
		return fail("add_admin", err, logger.Fields{"email": email})
	}
	logger.Info("admin user added", logger.Fields{"email": email, "admin": admin})
	s.audit(ctx, events.AdminAction{Action: events.ActionAdminAdded, Admin: admin, Details: email})
	return nil
}

// RemoveAdmin deletes another admin's credentials. Admins cannot remove
// themselves while logged in.
func (s *Service) RemoveAdmin(ctx context.Context, token, email string) error {
	admin, err := s.authorize(token, "remove_admin")
	if err != nil {
		return err
	}
	if email == admin {
		return fail("remove_admin", models.ErrSelfRemoval, logger.Fields{"email": email})
	}
	if err := s.guard.Remove(email); err != nil {
		return fail("remove_admin", err, logger.Fields{"email": email})
	}
	logger.Info("admin user removed", logger.Fields{"email": email, "admin": admin})
	s.audit(ctx, events.AdminAction{Action: events.ActionAdminRemoved, Admin: admin, Details: email})
	return nil
}

// AuditLog records a free-form admin note in the audit trail.
func (s *Service) AuditLog(ctx context.Context, token, action, details string) error {
	admin, err := s.authorize(token, "audit_log")
	if err != nil {
		return err
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return fail("audit_log", models.Validationf("audit action is required"), nil)
	}
	s.audit(ctx, events.AdminAction{
		Action:  events.ActionAudit,
		Admin:   admin,
		Details: fmt.Sprintf("%s: %s", action, details),
	})
	return nil
}

// IsAuthError reports whether err came from a missing or dead session.
func IsAuthError(err error) bool {
	return errors.Is(err, models.ErrAuthRequired)
}
