// Package datastore bundles the production persistence handles handed to
// request handlers through the execution context.
package datastore

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voteagora/op-atlas-sub006/pkg/account"
)

// Store is the production storage handle backed by PostgreSQL.
type Store struct {
	pool     *pgxpool.Pool
	accounts account.Repository
}

// New creates a store over the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		accounts: account.NewPostgresRepository(pool),
	}
}

// Accounts returns the account repository.
func (s *Store) Accounts() account.Repository {
	return s.accounts
}

// Pool exposes the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}
