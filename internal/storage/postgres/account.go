package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finergize/assistant-backend/internal/types"
)

// AccountRepository handles database operations for accounts.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create inserts a zero-balance account for a freshly registered user and
// fills in generated fields.
func (r *AccountRepository) Create(ctx context.Context, a *types.Account) error {
	if a.WalletAddress == "" {
		a.WalletAddress = types.GenerateWalletAddress(a.Name)
	}
	if a.Currency == "" {
		a.Currency = "INR"
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (user_id, name, wallet_address, balance, currency)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, last_updated`,
		a.UserID, a.Name, a.WalletAddress, a.Balance, a.Currency)
	if err := row.Scan(&a.ID, &a.LastUpdated); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByUserID returns the account belonging to a user.
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, wallet_address, balance, currency, last_updated
		 FROM accounts WHERE user_id = $1`, userID)

	var a types.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.WalletAddress, &a.Balance, &a.Currency, &a.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}
