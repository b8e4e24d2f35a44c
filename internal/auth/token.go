package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"musify/internal/domain"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

var (
	// ErrInvalidToken matches every token verification failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenMalformed indicates a token that is not a well-formed signed token.
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	// ErrTokenSignatureInvalid indicates a token whose signature does not match its content.
	ErrTokenSignatureInvalid = fmt.Errorf("%w: signature invalid", ErrInvalidToken)
	// ErrTokenExpired indicates a correctly signed token past its expiry.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the identity carried by an access token.
type Claims struct {
	AccountID int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ClaimsFor returns the claims identifying a. IssuedAt and ExpiresAt are set
// by TokenCodec.Mint.
func ClaimsFor(a domain.Account) Claims {
	return Claims{AccountID: a.ID, Username: a.Username}
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies HS256 tokens with a single shared secret.
// It is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec creates a codec signing with secret.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("AUTH_WEAK_SECRET").
			With("length", len(secret)).
			Errorf("token secret must be at least %d bytes", MinSecretLength)
	}
	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Mint signs claims into a compact token valid for ttl from now. Token
// timestamps have second precision, so ttl is truncated to whole seconds.
func (c *TokenCodec) Mint(claims Claims, ttl time.Duration) (string, error) {
	if ttl < time.Second {
		return "", oops.Code("AUTH_INVALID_TTL").With("ttl", ttl).Errorf("token ttl must be at least one second")
	}
	issuedAt := c.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl.Truncate(time.Second))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Username: claims.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", oops.Code("AUTH_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Failures match ErrTokenMalformed, ErrTokenSignatureInvalid or
// ErrTokenExpired. The signature is checked before any claim is read.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return Claims{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrTokenMalformed, len(segments))
	}
	if segments[2] == "" {
		return Claims{}, fmt.Errorf("%w: empty signature", ErrTokenSignatureInvalid)
	}
	if _, err := base64.RawURLEncoding.Strict().DecodeString(segments[2]); err != nil {
		return Claims{}, fmt.Errorf("%w: undecodable signature", ErrTokenSignatureInvalid)
	}

	var tc tokenClaims
	_, err := c.parser.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	accountID, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return Claims{}, fmt.Errorf("%w: subject %q is not an account id", ErrTokenMalformed, tc.Subject)
	}
	if tc.Username == "" {
		return Claims{}, fmt.Errorf("%w: missing username", ErrTokenMalformed)
	}
	if tc.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: missing issued-at", ErrTokenMalformed)
	}

	return Claims{
		AccountID: accountID,
		Username:  tc.Username,
		IssuedAt:  tc.IssuedAt.Time,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}
