package service_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/user/dto"
	"anoa.com/catalog/internal/modules/user/repository"
	"anoa.com/catalog/internal/modules/user/service"
	"anoa.com/catalog/internal/testutil"
	"anoa.com/catalog/pkg/apperror"
	"anoa.com/catalog/pkg/ratelimit"
	"anoa.com/catalog/pkg/token"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret-with-at-least-32-characters"

func newService(t *testing.T) (service.AuthService, *token.Manager) {
	t.Helper()
	return newLimitedService(t, ratelimit.New(nil, "test"), service.LoginPolicy{MaxAttempts: 5, Window: time.Second})
}

func newLimitedService(t *testing.T, limiter *ratelimit.Limiter, policy service.LoginPolicy) (service.AuthService, *token.Manager) {
	t.Helper()
	db := testutil.NewSeededDB(t)
	tokens := token.NewManager(secret, "catalog-api", "catalog-clients", time.Hour)
	svc := service.NewAuthService(repository.NewUserRepository(db.Gorm), tokens, limiter, policy, zap.NewNop())
	return svc, tokens
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *ratelimit.Limiter) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, ratelimit.New(rdb, "test")
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newService(t)

	res, err := svc.Login(ctx, dto.LoginInput{Username: "admin", Password: testutil.SeedPassword})
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Username)
	assert.Equal(t, entity.RoleAdmin, res.Role)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "Admin", claims.Role)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	tests := []struct {
		name  string
		input dto.LoginInput
	}{
		{"wrong password", dto.LoginInput{Username: "user1", Password: "nope"}},
		{"unknown user", dto.LoginInput{Username: "ghost", Password: testutil.SeedPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.input)
			assert.ErrorIs(t, err, apperror.ErrUnauthorized)
			assert.EqualError(t, err, "invalid username or password")
		})
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	res, err := svc.Register(ctx, dto.RegisterInput{Username: "newbie", Email: "newbie@example.com", Password: "Password123!"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, res.Role)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, dto.LoginInput{Username: "newbie", Password: "Password123!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterInput{Username: "newbie", Email: "other@example.com", Password: "Password123!"})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.EqualError(t, err, "username already exists")
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for _, password := range []string{strings.Repeat("a", 73), strings.Repeat("ñ", 37)} {
		_, err := svc.Register(ctx, dto.RegisterInput{Username: "longpass", Email: "long@example.com", Password: password})
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
		assert.EqualError(t, err, "password must be at most 72 bytes")
	}

	_, err := svc.Register(ctx, dto.RegisterInput{Username: "longpass", Email: "long@example.com", Password: strings.Repeat("a", 72)})
	require.NoError(t, err)
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()

	t.Run("locks after max attempts", func(t *testing.T) {
		mr, limiter := newRedis(t)
		svc, _ := newLimitedService(t, limiter, service.LoginPolicy{MaxAttempts: 3, Window: time.Minute})
		wrong := dto.LoginInput{Username: "user1", Password: "nope"}

		for i := 0; i < 3; i++ {
			_, err := svc.Login(ctx, wrong)
			require.ErrorIs(t, err, apperror.ErrUnauthorized)
		}
		assert.True(t, mr.Exists("test:rate_limit:user1:login"))

		_, err := svc.Login(ctx, dto.LoginInput{Username: "user1", Password: testutil.SeedPassword})
		require.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
		assert.Equal(t, http.StatusTooManyRequests, apperror.MapErrorToStatus(err))
		assert.Contains(t, err.Error(), "too many login attempts, try again in 1m0s")

		// other users are not affected
		_, err = svc.Login(ctx, dto.LoginInput{Username: "user2", Password: testutil.SeedPassword})
		require.NoError(t, err)
	})

	t.Run("single typo does not lock the correct password", func(t *testing.T) {
		mr, limiter := newRedis(t)
		svc, _ := newLimitedService(t, limiter, service.LoginPolicy{MaxAttempts: 5, Window: time.Minute})

		_, err := svc.Login(ctx, dto.LoginInput{Username: "admin", Password: "typo"})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.False(t, mr.Exists("test:rate_limit:admin:login"))

		_, err = svc.Login(ctx, dto.LoginInput{Username: "admin", Password: testutil.SeedPassword})
		require.NoError(t, err)
		assert.False(t, mr.Exists("test:rate_limit:admin:login_failures"))
	})

	t.Run("unknown user counts as a failure", func(t *testing.T) {
		mr, limiter := newRedis(t)
		svc, _ := newLimitedService(t, limiter, service.LoginPolicy{MaxAttempts: 1, Window: time.Minute})

		_, err := svc.Login(ctx, dto.LoginInput{Username: "ghost", Password: "x"})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.True(t, mr.Exists("test:rate_limit:ghost:login"))

		_, err = svc.Login(ctx, dto.LoginInput{Username: "ghost", Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	})

	t.Run("lock expires", func(t *testing.T) {
		mr, limiter := newRedis(t)
		svc, _ := newLimitedService(t, limiter, service.LoginPolicy{MaxAttempts: 1, Window: 5 * time.Second})

		_, err := svc.Login(ctx, dto.LoginInput{Username: "user1", Password: "nope"})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)

		_, err = svc.Login(ctx, dto.LoginInput{Username: "user1", Password: testutil.SeedPassword})
		require.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

		mr.FastForward(6 * time.Second)

		_, err = svc.Login(ctx, dto.LoginInput{Username: "user1", Password: testutil.SeedPassword})
		require.NoError(t, err)
	})

	t.Run("failures outside the window are forgotten", func(t *testing.T) {
		mr, limiter := newRedis(t)
		svc, _ := newLimitedService(t, limiter, service.LoginPolicy{MaxAttempts: 2, Window: 5 * time.Second})

		_, err := svc.Login(ctx, dto.LoginInput{Username: "user1", Password: "nope"})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)

		mr.FastForward(6 * time.Second)

		_, err = svc.Login(ctx, dto.LoginInput{Username: "user1", Password: "nope"})
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.False(t, mr.Exists("test:rate_limit:user1:login"))
	})
}
