package service

import (
	"context"
	"errors"
	"testing"

	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
	"paper-grading-be/pkg/authapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRestoresBelievedSession(t *testing.T) {
	cache := &fakeSessionCache{
		user: &entity.SessionUser{Id: "u1", Username: "alice"},
	}
	svc := NewAuthService(&fakeAuthClient{}, cache, noopLogger{})

	svc.Init(context.Background())

	state := svc.Snapshot()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.Confirmed)
	require.NotNil(t, state.User)
	assert.Equal(t, "alice", state.User.Username)
}

func TestInitWithEmptyCache(t *testing.T) {
	svc := NewAuthService(&fakeAuthClient{}, &fakeSessionCache{}, noopLogger{})

	svc.Init(context.Background())

	state := svc.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
}

func TestLogin(t *testing.T) {
	cache := &fakeSessionCache{}
	svc := NewAuthService(&fakeAuthClient{}, cache, noopLogger{})

	state, setCookie, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, state.IsAuthenticated)
	assert.True(t, state.Confirmed)
	assert.Contains(t, setCookie, "session=abc")
	assert.Equal(t, 1, cache.saveCalls)
}

func TestLoginRejected(t *testing.T) {
	client := &fakeAuthClient{
		loginFn: func(ctx context.Context, username, password string) (*authapi.User, string, error) {
			return nil, "", authapi.ErrUnauthorized
		},
	}
	svc := NewAuthService(client, &fakeSessionCache{}, noopLogger{})

	_, _, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, authapi.ErrUnauthorized)
	assert.False(t, svc.Snapshot().IsAuthenticated)
}

func TestCheckAuth(t *testing.T) {
	t.Run("success confirms and caches", func(t *testing.T) {
		cache := &fakeSessionCache{}
		svc := NewAuthService(&fakeAuthClient{}, cache, noopLogger{})

		ok, err := svc.CheckAuth(context.Background(), "session=abc", "")
		require.NoError(t, err)
		assert.True(t, ok)

		state := svc.Snapshot()
		assert.True(t, state.IsAuthenticated)
		assert.True(t, state.Confirmed)
		assert.Equal(t, 1, cache.saveCalls)
	})

	t.Run("explicit rejection clears state and cache", func(t *testing.T) {
		cache := &fakeSessionCache{user: &entity.SessionUser{Id: "u1"}}
		client := &fakeAuthClient{
			meFn: func(ctx context.Context, sessionCookie, bearerToken string) (*authapi.User, error) {
				return nil, authapi.ErrUnauthorized
			},
		}
		svc := NewAuthService(client, cache, noopLogger{})
		svc.Init(context.Background())

		ok, err := svc.CheckAuth(context.Background(), "session=stale", "")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.False(t, svc.Snapshot().IsAuthenticated)
		assert.Equal(t, 1, cache.clearCalls)
		assert.Nil(t, cache.user)
	})

	t.Run("network failure preserves prior state", func(t *testing.T) {
		client := &fakeAuthClient{}
		cache := &fakeSessionCache{}
		svc := NewAuthService(client, cache, noopLogger{})

		// Establish a confirmed session first.
		_, err := svc.CheckAuth(context.Background(), "session=abc", "")
		require.NoError(t, err)

		client.meFn = func(ctx context.Context, sessionCookie, bearerToken string) (*authapi.User, error) {
			return nil, errors.New("connection refused")
		}

		ok, err := svc.CheckAuth(context.Background(), "session=abc", "")
		require.Error(t, err)
		assert.True(t, ok)

		state := svc.Snapshot()
		assert.True(t, state.IsAuthenticated)
		require.NotNil(t, state.User)
		assert.Equal(t, 0, cache.clearCalls)
	})
}

func TestLogoutClearsLocalDespiteRemoteFailure(t *testing.T) {
	cache := &fakeSessionCache{}
	client := &fakeAuthClient{
		logoutFn: func(ctx context.Context, sessionCookie string) error {
			return errors.New("backend down")
		},
	}
	svc := NewAuthService(client, cache, noopLogger{})

	_, err := svc.CheckAuth(context.Background(), "session=abc", "")
	require.NoError(t, err)

	err = svc.Logout(context.Background(), "session=abc")
	require.NoError(t, err)

	assert.False(t, svc.Snapshot().IsAuthenticated)
	assert.Equal(t, 1, cache.clearCalls)
}
