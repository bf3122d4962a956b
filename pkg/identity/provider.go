// Package identity defines the contract with the external identity provider.
//
// The identity provider issues tenant account records and authentication
// tokens. Token issuance and verification are entirely external; Folio only
// reads account records and deletes them during tenant teardown, so the
// contract here is deliberately small.
package identity

import (
	"context"
	"errors"
	"time"
)

// Account is an identity-provider account record.
type Account struct {
	// ID is the opaque tenant identifier issued by the provider.
	ID string

	// Email is the account's primary email address.
	Email string

	// DisplayName is the human-readable account name.
	DisplayName string

	// Disabled marks accounts that can no longer authenticate.
	Disabled bool

	// CreatedAt is when the account was created.
	CreatedAt time.Time
}

// Standard identity provider errors.
var (
	// ErrAccountNotFound indicates no account exists for the given ID.
	// GetAccount and DisableAccount return it; DeleteAccount treats an
	// absent account as success so teardown retries converge.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists indicates an account with this ID already exists.
	ErrAccountExists = errors.New("account already exists")
)

// Provider is the interface to the identity service.
//
// Idempotence:
// DeleteAccount tolerates already-deleted accounts, which the deletion
// orchestrator relies on when retrying a partial teardown.
type Provider interface {
	// GetAccount fetches an account record by ID.
	GetAccount(ctx context.Context, id string) (*Account, error)

	// CreateAccount registers a new account record.
	CreateAccount(ctx context.Context, account Account) error

	// DisableAccount prevents the account from authenticating without
	// deleting its record.
	DisableAccount(ctx context.Context, id string) error

	// DeleteAccount removes the account record. Absent accounts are not
	// an error.
	DeleteAccount(ctx context.Context, id string) error
}
