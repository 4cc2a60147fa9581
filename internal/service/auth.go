package service

import (
	"context"
	"errors"
	"strings"

	"github.com/evently/backend/internal/apperr"
	"github.com/evently/backend/internal/auth"
	"github.com/evently/backend/internal/db"
	"github.com/evently/backend/internal/model"
	"github.com/rs/zerolog"
)

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AuthService implements registration, login and token refresh.
type AuthService struct {
	users  UserStore
	hasher *auth.Hasher
	tokens *auth.TokenService
	log    zerolog.Logger
}

func NewAuthService(users UserStore, hasher *auth.Hasher, tokens *auth.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

// Tokens exposes the verifier used by the HTTP middleware.
func (s *AuthService) Tokens() *auth.TokenService {
	return s.tokens
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*model.PublicUser, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("validation failed", "username and password are required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperr.Validation("validation failed", auth.PasswordTooLongMessage)
	}

	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil, apperr.New(apperr.KindDuplicate, "email already exists")
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindInternal, "lookup user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.New(apperr.KindDuplicate, "email already exists")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "create user", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	public := user.Public()
	return &public, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	username = NormalizeUsername(username)

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "lookup user", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Warn().Str("user_id", user.ID).Msg("login rejected")
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid password")
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &model.LoginResult{
		Identity:     user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Refresh mints a new access token. Refresh tokens are not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.RefreshResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperr.Validation("validation failed", "refreshToken is required")
	}

	claims, err := s.tokens.VerifyType(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "user no longer exists")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "lookup user", err)
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &model.RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Me returns the public view of the authenticated subject.
func (s *AuthService) Me(ctx context.Context, subject string) (*model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthorized, "user no longer exists")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "lookup user", err)
	}
	public := user.Public()
	return &public, nil
}

// DeleteAccount removes the caller's account and event registrations.
// Outstanding tokens stop working at the next refresh.
func (s *AuthService) DeleteAccount(ctx context.Context, subject string) error {
	if err := s.users.DeleteUser(ctx, subject); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.New(apperr.KindUnauthorized, "user no longer exists")
		}
		return apperr.Wrap(apperr.KindInternal, "delete user", err)
	}
	s.log.Info().Str("user_id", subject).Msg("account deleted")
	return nil
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
