package account

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository implements Repository using in-memory storage.
// Intended for tests and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewInMemoryRepository creates a new in-memory account repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(map[string]Account),
	}
}

// AddAccount stores an account.
func (r *InMemoryRepository) AddAccount(acct Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[acct.ID] = acct
}

// FindByID retrieves an account by ID.
func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

// SearchByText searches accounts by substring match on id, address,
// name and email.
func (r *InMemoryRepository) SearchByText(ctx context.Context, query string, limit int32) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(query)
	var matches []Account
	for _, acct := range r.accounts {
		haystack := strings.ToLower(acct.ID + " " + acct.Address + " " + acct.Name + " " + acct.Email)
		if strings.Contains(haystack, query) {
			matches = append(matches, acct)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID < matches[j].ID
	})

	if int32(len(matches)) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
