package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"musify/internal/domain"
)

var _ domain.AccountRepository = (*DB)(nil)

const accountColumns = "id, username, password_hash, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByID retrieves an account by ID.
func (d *DB) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	a, err := scanAccount(d.sql.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, mapError(err, "find account by id")
}

// FindByUsername retrieves an account by username.
func (d *DB) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	a, err := scanAccount(d.sql.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE username = $1", username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, mapError(err, "find account by username")
}

// ExistsByUsername reports whether username is taken.
func (d *DB) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)", username,
	).Scan(&exists)
	return exists, mapError(err, "account exists")
}

// Save inserts a new account or rewrites username, password hash and
// updated_at of an existing one in a single statement.
func (d *DB) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	if a.ID == 0 {
		saved, err := scanAccount(d.sql.QueryRowContext(ctx,
			"INSERT INTO accounts (username, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING "+accountColumns,
			a.Username, a.PasswordHash, a.CreatedAt, a.UpdatedAt,
		))
		if err != nil {
			return nil, mapError(err, "insert account")
		}
		return saved, nil
	}

	saved, err := scanAccount(d.sql.QueryRowContext(ctx,
		"UPDATE accounts SET username = $1, password_hash = $2, updated_at = $3 WHERE id = $4 RETURNING "+accountColumns,
		a.Username, a.PasswordHash, a.UpdatedAt, a.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %d", domain.ErrNotFound, a.ID)
	}
	if err != nil {
		return nil, mapError(err, "update account")
	}
	return saved, nil
}

// DeleteByID deletes an account. Playlists and tracks follow through
// ON DELETE CASCADE.
func (d *DB) DeleteByID(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM accounts WHERE id = $1", id)
	return mapError(err, "delete account")
}

// ListAccounts returns all accounts ordered by id.
func (d *DB) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY id")
	if err != nil {
		return nil, mapError(err, "list accounts")
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapError(err, "list accounts")
		}
		out = append(out, *a)
	}
	return out, mapError(rows.Err(), "list accounts")
}
