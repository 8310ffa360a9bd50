package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/jwtauth"
)

type authFixture struct {
	authSvc *AuthService
	tokens  *jwtauth.Provider
}

func newAuthFixture(t *testing.T) (*authFixture, func(id string) *model.Member) {
	t.Helper()
	db := newTestDB(t)
	rdb := newTestRedis(t)
	tokens := jwtauth.NewProvider("test-secret", time.Hour, 24*time.Hour)
	f := &authFixture{
		authSvc: NewAuthService(repository.NewMemberRepository(db), tokens, rdb),
		tokens:  tokens,
	}
	seed := func(id string) *model.Member {
		return seedMember(t, db, id, model.VisibilityPublic)
	}
	return f, seed
}

func TestLogin(t *testing.T) {
	f, seed := newAuthFixture(t)
	seed("alice")
	ctx := context.Background()

	pair, err := f.authSvc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := f.tokens.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.MemberID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLoginBadCredentials(t *testing.T) {
	f, seed := newAuthFixture(t)
	seed("alice")
	ctx := context.Background()

	_, err := f.authSvc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.authSvc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveMember(t *testing.T) {
	f, seed := newAuthFixture(t)
	ctx := context.Background()

	suspended := seed("sus")
	suspended.Suspend(time.Now())
	require.NoError(t, f.authSvc.memberRepo.Save(ctx, suspended))
	_, err := f.authSvc.Login(ctx, LoginRequest{Email: "sus@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrSuspendedMember)

	leaving := seed("bye")
	leaving.MarkDeleted(time.Now())
	require.NoError(t, f.authSvc.memberRepo.Save(ctx, leaving))
	_, err = f.authSvc.Login(ctx, LoginRequest{Email: "bye@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrWaitingDeletedMember)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	f, seed := newAuthFixture(t)
	seed("alice")
	ctx := context.Background()

	pair, err := f.authSvc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.False(t, f.authSvc.IsBlacklisted(ctx, pair.AccessToken))

	require.NoError(t, f.authSvc.Logout(ctx, "alice", pair.AccessToken))
	assert.True(t, f.authSvc.IsBlacklisted(ctx, pair.AccessToken))

	// 刷新令牌副本已删除，不能再换新
	_, err = f.authSvc.ReissueToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestReissueToken(t *testing.T) {
	f, seed := newAuthFixture(t)
	seed("alice")
	ctx := context.Background()

	pair, err := f.authSvc.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)

	fresh, err := f.authSvc.ReissueToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)

	// 访问令牌不能当刷新令牌用
	_, err = f.authSvc.ReissueToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 篡改过的令牌直接拒绝
	_, err = f.authSvc.ReissueToken(ctx, pair.RefreshToken+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
