package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL-based account repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const findByIDSQL = `
SELECT id, address, name, email, created_at
FROM accounts
WHERE id = $1 AND deleted_at IS NULL`

// FindByID retrieves an account by ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	var acct Account
	err := r.pool.QueryRow(ctx, findByIDSQL, id).Scan(
		&acct.ID,
		&acct.Address,
		&acct.Name,
		&acct.Email,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

const searchByTextSQL = `
SELECT id, address, name, email, created_at
FROM accounts
WHERE deleted_at IS NULL
  AND (id ILIKE '%' || $1 || '%'
   OR address ILIKE '%' || $1 || '%'
   OR name ILIKE '%' || $1 || '%'
   OR email ILIKE '%' || $1 || '%')
ORDER BY id
LIMIT $2`

// SearchByText searches accounts by substring match.
func (r *PostgresRepository) SearchByText(ctx context.Context, query string, limit int32) ([]Account, error) {
	rows, err := r.pool.Query(ctx, searchByTextSQL, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var acct Account
		if err := rows.Scan(&acct.ID, &acct.Address, &acct.Name, &acct.Email, &acct.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}
