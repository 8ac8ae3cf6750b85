package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fitscribe/internal/auth"
)

// AccountRepository implements auth.AccountRepository over a pgx pool.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository constructs an AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts the account. A duplicate email maps to auth.ErrEmailTaken.
func (r *AccountRepository) Create(ctx context.Context, account auth.Account) error {
	const stmt = `INSERT INTO accounts (user_id, email, password_hash, display_name, created_at)
        VALUES ($1,$2,$3,$4,$5)`

	_, err := r.pool.Exec(ctx, stmt, account.UserID, account.Email, account.PasswordHash, account.DisplayName, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.ErrEmailTaken
		}
		return storageErr(err)
	}
	return nil
}

// FindByEmail returns the account or (nil, nil) when absent.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	const query = `SELECT user_id, email, password_hash, display_name, created_at
        FROM accounts WHERE email=$1`

	var account auth.Account
	row := r.pool.QueryRow(ctx, query, email)
	if err := row.Scan(&account.UserID, &account.Email, &account.PasswordHash, &account.DisplayName, &account.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr(err)
	}
	return &account, nil
}
