// Package auth issues and verifies the service's credentials: bcrypt password
// hashes and HS256 access/refresh tokens.
//
// Tokens are stateless. Expiry is the only revocation mechanism, and the
// "type" claim keeps refresh tokens from being accepted where access tokens
// are required and vice versa.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/evently/backend/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims is the payload carried by every token.
type Claims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenService mints and validates signed tokens. It is safe for concurrent
// use; the secret is read-only after construction.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService validates the signing configuration. Any error it returns is
// a configuration error and must stop the process from serving traffic.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, apperr.New(apperr.KindConfiguration, "JWT_SECRET is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, apperr.New(apperr.KindConfiguration, "token TTLs must be positive")
	}

	s := &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		// jwt rejects at now == exp; a token expires only once now > exp.
		jwt.WithLeeway(time.Nanosecond),
		jwt.WithTimeFunc(s.now),
	)
	return s, nil
}

// AccessTTL is the lifetime of newly issued access tokens.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccessToken mints a short-lived access token for subject.
func (s *TokenService) IssueAccessToken(subject string) (string, error) {
	return s.issue(subject, TokenAccess, s.accessTTL)
}

// IssueRefreshToken mints a long-lived refresh token for subject.
func (s *TokenService) IssueRefreshToken(subject string) (string, error) {
	return s.issue(subject, TokenRefresh, s.refreshTTL)
}

func (s *TokenService) issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", apperr.New(apperr.KindConfiguration, "token subject is required")
	}

	now := s.now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry(now, ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "sign token", err)
	}
	return signed, nil
}

// expiry rounds now+ttl up to the second, the precision exp is encoded at, so
// a token never lives shorter than its TTL.
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if whole := exp.Truncate(time.Second); !whole.Equal(exp) {
		return whole.Add(time.Second)
	}
	return exp
}

// Verify checks signature and expiry and returns the decoded claims. The
// caller is responsible for checking the token type.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenStr, claims, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.KindTokenExpired, "token expired", err)
		}
		return nil, apperr.Wrap(apperr.KindTokenMalformed, "invalid token", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, apperr.New(apperr.KindTokenMalformed, "invalid token")
	}
	return claims, nil
}

// VerifyType is Verify followed by a type check.
func (s *TokenService) VerifyType(tokenStr string, want TokenType) (*Claims, error) {
	claims, err := s.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, apperr.New(apperr.KindTokenType, "invalid token type")
	}
	return claims, nil
}

// Decode parses claims without checking the signature or expiry. The result
// is for diagnostics only and must never drive an access-control decision.
func (s *TokenService) Decode(tokenStr string) *Claims {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}
	return claims
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return s.secret, nil
}
