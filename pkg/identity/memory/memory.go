// Package memory implements an in-memory identity provider.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/foliocms/folio/pkg/identity"
)

// MemoryProvider implements identity.Provider using in-memory storage.
//
// Designed for tests and development; production deployments point Folio at
// a hosted identity service instead.
//
// Thread Safety:
// All operations are protected by a sync.RWMutex.
type MemoryProvider struct {
	// accounts maps account ID to record
	accounts map[string]identity.Account

	// mu protects concurrent access to accounts
	mu sync.RWMutex
}

// NewMemoryProvider creates a new empty in-memory identity provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]identity.Account),
	}
}

// GetAccount fetches an account record by ID.
func (p *MemoryProvider) GetAccount(ctx context.Context, id string) (*identity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	account, ok := p.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, identity.ErrAccountNotFound)
	}

	return &account, nil
}

// CreateAccount registers a new account record.
func (p *MemoryProvider) CreateAccount(ctx context.Context, account identity.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[account.ID]; exists {
		return fmt.Errorf("account %s: %w", account.ID, identity.ErrAccountExists)
	}

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	p.accounts[account.ID] = account

	return nil
}

// DisableAccount prevents the account from authenticating.
func (p *MemoryProvider) DisableAccount(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.accounts[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, identity.ErrAccountNotFound)
	}

	account.Disabled = true
	p.accounts[id] = account

	return nil
}

// DeleteAccount removes the account record. Absent accounts are not an error.
func (p *MemoryProvider) DeleteAccount(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.accounts, id)

	return nil
}

var _ identity.Provider = (*MemoryProvider)(nil)
