package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"musify/internal/auth"
	"musify/internal/domain"
)

const bearerPrefix = "Bearer "

var (
	// ErrNoCredentials indicates a request without a bearer token.
	ErrNoCredentials = errors.New("no bearer credentials")
	// ErrAccountGone indicates a valid token whose account no longer exists.
	ErrAccountGone = fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
)

// TokenVerifier checks access tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// RequestAuthenticator resolves the principal of a single request from its
// Authorization header.
type RequestAuthenticator struct {
	accounts domain.AccountRepository
	tokens   TokenVerifier
}

// NewRequestAuthenticator creates a RequestAuthenticator.
func NewRequestAuthenticator(accounts domain.AccountRepository, tokens TokenVerifier) *RequestAuthenticator {
	return &RequestAuthenticator{accounts: accounts, tokens: tokens}
}

// Authenticate returns the principal for header. It fails with
// ErrNoCredentials when header carries no bearer token, with an
// auth.ErrInvalidToken error when the token does not verify and with
// ErrAccountGone when the account was deleted after the token was issued.
// Any other error comes from the account store.
func (a *RequestAuthenticator) Authenticate(ctx context.Context, header string) (domain.Principal, error) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return domain.Principal{}, ErrNoCredentials
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return domain.Principal{}, err
	}

	account, err := a.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		return domain.Principal{}, err
	}
	if account == nil {
		return domain.Principal{}, ErrAccountGone
	}
	return domain.PrincipalOf(*account), nil
}
