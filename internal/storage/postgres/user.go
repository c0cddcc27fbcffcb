package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finergize/assistant-backend/internal/types"
)

// UserRepository handles database operations for users.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "id, name, phone, village, district, state, pincode, aadhaar_number, preferred_language, created_at, updated_at"

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	var lang string
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Village, &u.District, &u.State,
		&u.Pincode, &u.AadhaarNumber, &lang, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.PreferredLanguage = types.ParseLanguage(lang)
	return &u, nil
}

// Create inserts a new user and fills in generated fields.
func (r *UserRepository) Create(ctx context.Context, u *types.User) error {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, phone, village, district, state, pincode, aadhaar_number, preferred_language)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		u.Name, u.Phone, u.Village, u.District, u.State, u.Pincode, u.AadhaarNumber, string(u.PreferredLanguage))
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByPhone returns the user registered with the given phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*types.User, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone = $1", phone)
	u, err := scanUser(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by phone: %w", err)
	}
	return u, err
}

// GetByAadhaar returns the user registered with the given Aadhaar number.
func (r *UserRepository) GetByAadhaar(ctx context.Context, aadhaar string) (*types.User, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE aadhaar_number = $1", aadhaar)
	u, err := scanUser(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by aadhaar: %w", err)
	}
	return u, err
}

// GetByID returns a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*types.User, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, err
}

// UpdatePreferredLanguage stores the user's display-language choice.
func (r *UserRepository) UpdatePreferredLanguage(ctx context.Context, id string, lang types.Language) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET preferred_language = $1, updated_at = now() WHERE id = $2",
		string(lang), id)
	if err != nil {
		return fmt.Errorf("update preferred language: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
