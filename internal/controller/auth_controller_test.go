package controller

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"paper-grading-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	state       *dto.SessionResponse
	loginErr    error
	logoutCalls int
	checkErr    error
}

func (f *fakeAuthService) Init(ctx context.Context) {}

func (f *fakeAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return f.state, "session=abc; Path=/; HttpOnly", nil
}

func (f *fakeAuthService) Logout(ctx context.Context, sessionCookie string) error {
	f.logoutCalls++
	return nil
}

func (f *fakeAuthService) CheckAuth(ctx context.Context, sessionCookie, bearerToken string) (bool, error) {
	if f.checkErr != nil {
		return f.state != nil && f.state.IsAuthenticated, f.checkErr
	}
	return f.state != nil && f.state.IsAuthenticated, nil
}

func (f *fakeAuthService) Snapshot() *dto.SessionResponse {
	if f.state == nil {
		return &dto.SessionResponse{}
	}
	return f.state
}

func (f *fakeAuthService) StartRevalidation(ctx context.Context, interval time.Duration) {}

func newAuthApp(svc *fakeAuthService) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	NewAuthController(svc).RegisterRoutes(api)
	return app
}

func TestLoginRelaysSessionCookie(t *testing.T) {
	svc := &fakeAuthService{
		state: &dto.SessionResponse{
			IsAuthenticated: true,
			Confirmed:       true,
			User:            &dto.UserDTO{Id: "u1", Username: "alice"},
		},
	}
	app := newAuthApp(svc)

	req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "session=abc")
}

func TestLoginRejected(t *testing.T) {
	svc := &fakeAuthService{loginErr: errors.New("invalid credentials")}
	app := newAuthApp(svc)

	req, err := http.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	svc := &fakeAuthService{}
	app := newAuthApp(svc)

	req, err := http.NewRequest("POST", "/api/auth/logout", nil)
	require.NoError(t, err)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, svc.logoutCalls)
}

func TestMeKeepsBelievedStateOnCheckFailure(t *testing.T) {
	svc := &fakeAuthService{
		state: &dto.SessionResponse{
			IsAuthenticated: true,
			User:            &dto.UserDTO{Id: "u1", Username: "alice"},
		},
		checkErr: errors.New("connection refused"),
	}
	app := newAuthApp(svc)

	req, err := http.NewRequest("GET", "/api/auth/me", nil)
	require.NoError(t, err)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
