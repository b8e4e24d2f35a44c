// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Account represents a registered user of the library.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the identity resolved for a single authenticated request.
type Principal struct {
	AccountID int64
	Username  string
}

// PrincipalOf returns the principal that represents a.
func PrincipalOf(a Account) Principal {
	return Principal{AccountID: a.ID, Username: a.Username}
}

// AccountRepository defines the port for account persistence operations.
// Lookups return (nil, nil) when no account matches.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Save inserts a when a.ID is zero and updates username, hash and
	// updated_at otherwise. A taken username yields ErrConflict.
	Save(ctx context.Context, a *Account) (*Account, error)
	DeleteByID(ctx context.Context, id int64) error
	ListAccounts(ctx context.Context) ([]Account, error)
}
