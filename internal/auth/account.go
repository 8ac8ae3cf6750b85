package auth

import (
	"context"
	"fmt"
	"time"

	"example.com/fitscribe/internal/domain"
)

// ErrEmailTaken is returned when a sign-up reuses an existing email address.
var ErrEmailTaken = fmt.Errorf("%w: email already registered", domain.ErrAuthFailure)

// ErrInvalidCredentials is returned for unknown emails or wrong passwords.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrAuthFailure)

// Account is a stored user record.
type Account struct {
	UserID       string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// AccountRepository captures persistence operations for user accounts.
// FindByEmail returns (nil, nil) when no account exists.
type AccountRepository interface {
	Create(ctx context.Context, account Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
