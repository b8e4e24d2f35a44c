package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"

	"musify/internal/auth"
	"musify/internal/domain"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenMinter issues access tokens.
type TokenMinter interface {
	Mint(claims auth.Claims, ttl time.Duration) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	accounts domain.AccountRepository
	hasher   PasswordHasher
	tokens   TokenMinter
	ttl      time.Duration
	logger   *log.Logger
}

// NewAuthService creates a new authentication service issuing tokens valid for ttl.
func NewAuthService(accounts domain.AccountRepository, hasher PasswordHasher, tokens TokenMinter, ttl time.Duration, logger *log.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger,
	}
}

// Register creates an account and returns a token for it. It fails with
// domain.ErrConflict when the username is taken.
func (s *AuthService) Register(ctx context.Context, username, password string) (token string, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer func() { endSpan(span, err) }()

	if err = validateCredentials(username, password); err != nil {
		return "", err
	}

	exists, err := s.accounts.ExistsByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: username %q", domain.ErrConflict, username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	account, err := s.accounts.Save(ctx, &domain.Account{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.Int64("account.id", account.ID))

	token, err = s.tokens.Mint(auth.ClaimsFor(*account), s.ttl)
	if err != nil {
		return "", err
	}
	s.logger.Info("account registered", "account_id", account.ID)
	return token, nil
}

// Login checks the credentials and returns a fresh token. Unknown usernames
// and wrong passwords both fail with domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (token string, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer func() { endSpan(span, err) }()

	if err = validateCredentials(username, password); err != nil {
		return "", err
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if account == nil || !s.hasher.Verify(password, account.PasswordHash) {
		s.logger.Debug("login rejected")
		return "", domain.ErrUnauthorized
	}
	span.SetAttributes(attribute.Int64("account.id", account.ID))

	return s.tokens.Mint(auth.ClaimsFor(*account), s.ttl)
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	if strings.ContainsRune(username, 0) || strings.ContainsRune(password, 0) {
		return fmt.Errorf("%w: credentials must not contain NUL characters", domain.ErrInvalidInput)
	}
	return nil
}
