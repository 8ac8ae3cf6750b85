package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/fitscribe/internal/domain"
)

// Service implements email/password sign-up and sign-in over the account store.
type Service struct {
	accounts AccountRepository
	cfg      Config
}

// NewService constructs a Service.
func NewService(accounts AccountRepository, cfg Config) *Service {
	return &Service{accounts: accounts, cfg: cfg}
}

// SignUp creates an account and issues a token for the new identity.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (string, string, Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return "", "", Identity{}, err
	}
	if len(password) < 8 {
		return "", "", Identity{}, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrAuthFailure)
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", "", Identity{}, fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}

	account := Account{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return "", "", Identity{}, err
	}

	identity := Identity{UserID: account.UserID, DisplayName: account.DisplayName}
	token, sessionID, err := Issue(identity, s.cfg)
	if err != nil {
		return "", "", Identity{}, fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}
	return token, sessionID, identity, nil
}

// SignIn verifies credentials and issues a token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, string, Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", "", Identity{}, err
	}
	if account == nil || !VerifyPassword(account.PasswordHash, password) {
		return "", "", Identity{}, ErrInvalidCredentials
	}

	identity := Identity{UserID: account.UserID, DisplayName: account.DisplayName}
	token, sessionID, err := Issue(identity, s.cfg)
	if err != nil {
		return "", "", Identity{}, fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}
	return token, sessionID, identity, nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: malformed email address", domain.ErrAuthFailure)
	}
	return nil
}
