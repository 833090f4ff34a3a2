// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"paper-grading-be/internal/dto"
	"paper-grading-be/internal/entity"
	"paper-grading-be/internal/pkg/logger"
	"paper-grading-be/pkg/authapi"
)

// ISessionCache is the durable side of the session state. A nil cache is
// valid; the service then runs memory-only.
type ISessionCache interface {
	Save(ctx context.Context, user *entity.SessionUser) error
	Load(ctx context.Context) (*entity.SessionUser, error)
	Clear(ctx context.Context) error
}

type IAuthService interface {
	Init(ctx context.Context)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, string, error)
	Logout(ctx context.Context, sessionCookie string) error
	CheckAuth(ctx context.Context, sessionCookie, bearerToken string) (bool, error)
	Snapshot() *dto.SessionResponse
	StartRevalidation(ctx context.Context, interval time.Duration)
}

type authService struct {
	client    authapi.Client
	cache     ISessionCache
	sysLogger logger.ILogger

	mu         sync.Mutex
	state      entity.SessionState
	lastCookie string
}

func NewAuthService(client authapi.Client, cache ISessionCache, sysLogger logger.ILogger) IAuthService {
	return &authService{
		client:    client,
		cache:     cache,
		sysLogger: sysLogger,
	}
}

// Init seeds the believed state from the cache. Believed state renders
// optimistically; it is never trusted for writes until confirmed.
func (s *authService) Init(ctx context.Context) {
	if s.cache == nil {
		return
	}

	user, err := s.cache.Load(ctx)
	if err != nil {
		s.sysLogger.Warn("auth", "failed to load cached session", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if user == nil {
		return
	}

	s.mu.Lock()
	s.state = entity.SessionState{
		IsAuthenticated: true,
		Confirmed:       false,
		User:            user,
	}
	s.mu.Unlock()

	s.sysLogger.Info("auth", "restored believed session", map[string]interface{}{
		"username": user.Username,
	})
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, string, error) {
	user, setCookie, err := s.client.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, "", err
	}

	sessionUser := toSessionUser(user)

	s.mu.Lock()
	s.state = entity.SessionState{
		IsAuthenticated: true,
		Confirmed:       true,
		User:            sessionUser,
		CheckedAt:       time.Now(),
	}
	s.lastCookie = cookiePair(setCookie)
	s.mu.Unlock()

	if s.cache != nil {
		if cerr := s.cache.Save(ctx, sessionUser); cerr != nil {
			s.sysLogger.Warn("auth", "failed to cache session", map[string]interface{}{
				"error": cerr.Error(),
			})
		}
	}

	return s.Snapshot(), setCookie, nil
}

// Logout clears the local state first and unconditionally. A failed remote
// call is logged and swallowed; the user is signed out either way.
func (s *authService) Logout(ctx context.Context, sessionCookie string) error {
	s.mu.Lock()
	s.clearLocked(ctx)
	s.mu.Unlock()

	if err := s.client.Logout(ctx, sessionCookie); err != nil {
		s.sysLogger.Warn("auth", "remote logout failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// CheckAuth asks the auth backend who the current session belongs to.
// An explicit rejection clears the state; a network failure keeps the
// prior believed state so a flaky connection does not log anyone out.
func (s *authService) CheckAuth(ctx context.Context, sessionCookie, bearerToken string) (bool, error) {
	user, err := s.client.Me(ctx, sessionCookie, bearerToken)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		sessionUser := toSessionUser(user)
		s.state = entity.SessionState{
			IsAuthenticated: true,
			Confirmed:       true,
			User:            sessionUser,
			CheckedAt:       time.Now(),
		}
		if sessionCookie != "" {
			s.lastCookie = sessionCookie
		}
		if s.cache != nil {
			if cerr := s.cache.Save(ctx, sessionUser); cerr != nil {
				s.sysLogger.Warn("auth", "failed to cache session", map[string]interface{}{
					"error": cerr.Error(),
				})
			}
		}
		return true, nil
	}

	if errors.Is(err, authapi.ErrUnauthorized) {
		s.clearLocked(ctx)
		return false, nil
	}

	s.sysLogger.Warn("auth", "session check failed, keeping prior state", map[string]interface{}{
		"error": err.Error(),
	})
	return s.state.IsAuthenticated, err
}

func (s *authService) Snapshot() *dto.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &dto.SessionResponse{
		IsAuthenticated: s.state.IsAuthenticated,
		Confirmed:       s.state.Confirmed,
	}
	if s.state.User != nil {
		res.User = &dto.UserDTO{
			Id:       s.state.User.Id,
			Username: s.state.User.Username,
			Email:    s.state.User.Email,
		}
	}
	return res
}

// StartRevalidation re-checks the session on a fixed interval using the
// last cookie seen. It replaces on-focus revalidation for a headless
// deployment.
func (s *authService) StartRevalidation(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			s.mu.Lock()
			cookie := s.lastCookie
			believed := s.state.IsAuthenticated
			s.mu.Unlock()

			if cookie == "" && !believed {
				continue
			}

			if _, err := s.CheckAuth(ctx, cookie, ""); err != nil {
				s.sysLogger.Warn("auth", "periodic revalidation failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}()
}

// clearLocked resets to signed-out. Caller holds s.mu.
func (s *authService) clearLocked(ctx context.Context) {
	s.state = entity.SessionState{
		IsAuthenticated: false,
		Confirmed:       true,
		CheckedAt:       time.Now(),
	}
	s.lastCookie = ""

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.sysLogger.Warn("auth", "failed to clear cached session", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func toSessionUser(user *authapi.User) *entity.SessionUser {
	if user == nil {
		return nil
	}
	return &entity.SessionUser{
		Id:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// cookiePair keeps only the name=value part of a Set-Cookie header so it
// can be replayed as a Cookie header later.
func cookiePair(setCookie string) string {
	return strings.TrimSpace(strings.Split(setCookie, ";")[0])
}
