package models

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired       = errors.New("admin authentication required")
	ErrNotFound           = errors.New("record not found")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyFrozen      = errors.New("account is already frozen")
	ErrNotFrozen          = errors.New("account is not frozen")
	ErrUnknownReportType  = errors.New("unknown report type")
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	ErrNoActiveSession    = errors.New("no administrator is currently logged in")
	ErrAdminExists        = errors.New("an admin with this email already exists")
	ErrSelfRemoval        = errors.New("cannot remove your own admin account while logged in")

	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
	ErrAdminNotFound    = fmt.Errorf("admin user %w", ErrNotFound)
)

// Validationf builds an error that matches ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
