package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"musify/internal/domain"
)

// AccountService manages existing accounts.
type AccountService struct {
	accounts domain.AccountRepository
	hasher   PasswordHasher
	logger   *log.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts domain.AccountRepository, hasher PasswordHasher, logger *log.Logger) *AccountService {
	return &AccountService{accounts: accounts, hasher: hasher, logger: logger}
}

// List returns every account.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.ListAccounts(ctx)
}

// Get returns the account with id or domain.ErrNotFound.
func (s *AccountService) Get(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %d", domain.ErrNotFound, id)
	}
	return account, nil
}

// Update replaces the username and password of the principal's own account.
// Both are written in a single save.
func (s *AccountService) Update(ctx context.Context, p domain.Principal, id int64, username, password string) (_ *domain.Account, err error) {
	ctx, span := tracer.Start(ctx, "account.update")
	defer func() { endSpan(span, err) }()

	if err = validateCredentials(username, password); err != nil {
		return nil, err
	}
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.ID != p.AccountID {
		return nil, fmt.Errorf("%w: account %d", domain.ErrForbidden, id)
	}

	if username != account.Username {
		exists, err := s.accounts.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: username %q", domain.ErrConflict, username)
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	updated := *account
	updated.Username = username
	updated.PasswordHash = hash
	updated.UpdatedAt = time.Now().UTC()

	saved, err := s.accounts.Save(ctx, &updated)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account updated", "account_id", saved.ID)
	return saved, nil
}

// Delete removes the principal's own account together with the playlists it
// owns and the tracks it authored.
func (s *AccountService) Delete(ctx context.Context, p domain.Principal, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "account.delete")
	defer func() { endSpan(span, err) }()

	account, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if account.ID != p.AccountID {
		return fmt.Errorf("%w: account %d", domain.ErrForbidden, id)
	}
	if err = s.accounts.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info("account deleted", "account_id", id)
	return nil
}
