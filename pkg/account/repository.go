// Package account provides lookup of platform accounts, the targets of
// impersonation.
package account

import (
	"context"
	"errors"
	"time"
)

// ErrAccountNotFound is returned when no account matches the given ID.
var ErrAccountNotFound = errors.New("account not found")

// Account is a platform account as seen by the impersonation subsystem.
type Account struct {
	ID        string    `json:"id"`
	Address   string    `json:"address,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines account lookup operations consumed by the
// impersonation service.
type Repository interface {
	// FindByID returns the account with the given ID, or
	// ErrAccountNotFound.
	FindByID(ctx context.Context, id string) (Account, error)

	// SearchByText returns accounts whose id, address, name or email
	// contains the query, up to limit results.
	SearchByText(ctx context.Context, query string, limit int32) ([]Account, error)
}
