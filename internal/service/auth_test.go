package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/evently/backend/internal/apperr"
	"github.com/evently/backend/internal/auth"
	"github.com/evently/backend/internal/db"
	"github.com/evently/backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (*AuthService, *db.Memory) {
	t.Helper()
	store := db.NewMemory()
	tokens, err := auth.NewTokenService("test-secret", auth.DefaultAccessTTL, auth.DefaultRefreshTTL)
	require.NoError(t, err)
	return NewAuthService(store, auth.NewHasher(4), tokens, zerolog.Nop()), store
}

func TestRegister(t *testing.T) {
	svc, store := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Alice@X.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", user.Username)
	assert.NotEmpty(t, user.ID)

	stored, err := store.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	_, err = svc.Register(ctx, "ALICE@x.com", "other11")
	assert.Equal(t, apperr.KindDuplicate, apperr.KindOf(err))
}

func TestRegisterRequiresFields(t *testing.T) {
	svc, _ := newTestAuthService(t)
	_, err := svc.Register(context.Background(), " ", "secret1")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRegisterPasswordByteLimit(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "multi@x.com", strings.Repeat("é", 40))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	appErr, _ := apperr.As(err)
	assert.Contains(t, appErr.Details, "password cannot exceed 72 bytes")

	_, err = svc.Register(ctx, "multi@x.com", strings.Repeat("é", 36))
	assert.NoError(t, err)
}

type racingStore struct {
	*db.Memory
}

func (r racingStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, db.ErrNotFound
}

func (r racingStore) CreateUser(ctx context.Context, username, hash string) (*model.User, error) {
	return nil, db.ErrDuplicate
}

func TestRegisterInsertRace(t *testing.T) {
	tokens, err := auth.NewTokenService("s", time.Minute, time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(racingStore{db.NewMemory()}, auth.NewHasher(4), tokens, zerolog.Nop())

	_, err = svc.Register(context.Background(), "alice@x.com", "secret1")
	assert.Equal(t, apperr.KindDuplicate, apperr.KindOf(err))
}

type brokenStore struct {
	*db.Memory
}

func (b brokenStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, errors.New("connection refused")
}

func TestRegisterStoreFailure(t *testing.T) {
	tokens, err := auth.NewTokenService("s", time.Minute, time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(brokenStore{db.NewMemory()}, auth.NewHasher(4), tokens, zerolog.Nop())

	_, err = svc.Register(context.Background(), "alice@x.com", "secret1")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob@x.com", "secret1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Login(ctx, "alice@x.com", "wrong")
	assert.Equal(t, apperr.KindInvalidCredentials, apperr.KindOf(err))

	res, err := svc.Login(ctx, "Alice@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", res.Identity.Username)
	assert.Equal(t, int64(auth.DefaultAccessTTL.Seconds()), res.ExpiresIn)

	access, err := svc.Tokens().VerifyType(res.AccessToken, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, res.Identity.ID, access.Subject)

	_, err = svc.Tokens().VerifyType(res.RefreshToken, auth.TokenRefresh)
	require.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	svc, store := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)

	out, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	claims, err := svc.Tokens().VerifyType(out.AccessToken, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	// an access token is not a refresh token
	_, err = svc.Refresh(ctx, res.AccessToken)
	assert.Equal(t, apperr.KindTokenType, apperr.KindOf(err))

	_, err = svc.Refresh(ctx, "garbage")
	assert.Equal(t, apperr.KindTokenMalformed, apperr.KindOf(err))

	_, err = svc.Refresh(ctx, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.DeleteAccount(ctx, user.ID))
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(svc.DeleteAccount(ctx, user.ID)))
	_, err = store.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestRefreshExpired(t *testing.T) {
	store := db.NewMemory()
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	old, err := auth.NewTokenService("test-secret", auth.DefaultAccessTTL, auth.DefaultRefreshTTL,
		auth.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	current, err := auth.NewTokenService("test-secret", auth.DefaultAccessTTL, auth.DefaultRefreshTTL)
	require.NoError(t, err)

	user, err := store.CreateUser(context.Background(), "alice@x.com", "h")
	require.NoError(t, err)
	stale, err := old.IssueRefreshToken(user.ID)
	require.NoError(t, err)

	svc := NewAuthService(store, auth.NewHasher(4), current, zerolog.Nop())
	_, err = svc.Refresh(context.Background(), stale)
	assert.Equal(t, apperr.KindTokenExpired, apperr.KindOf(err))
}

func TestMe(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@x.com", "secret1")
	require.NoError(t, err)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, *user, *me)

	_, err = svc.Me(ctx, "missing")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
