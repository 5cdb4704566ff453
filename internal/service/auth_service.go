package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/optinhub/optin-manager/internal/auth"
	"github.com/optinhub/optin-manager/internal/config"
	"github.com/optinhub/optin-manager/internal/domain"
	"github.com/optinhub/optin-manager/internal/events"
	"github.com/optinhub/optin-manager/internal/repository"
	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

// AuthService coordinates operator login.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		dispatcher: dispatcher,
	}
}

// Login authenticates a console user and returns a token scoped to their role.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(auth.ErrInvalidCredentials.Error())
		}
		return nil, "", time.Time{}, err
	}
	if !user.Active {
		return nil, "", time.Time{}, apperrors.NewForbidden("user inactive")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(err.Error())
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventOperatorLoggedIn,
		Subject: user.ID,
		Actor:   Actor{UserID: user.ID, Role: user.Role},
	})
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
