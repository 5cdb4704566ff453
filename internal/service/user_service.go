package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/optinhub/optin-manager/internal/auth"
	"github.com/optinhub/optin-manager/internal/domain"
	"github.com/optinhub/optin-manager/internal/events"
	"github.com/optinhub/optin-manager/internal/phone"
	"github.com/optinhub/optin-manager/internal/repository"
	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// UserCreateInput describes a new console user.
type UserCreateInput struct {
	Name     string
	Email    string
	Phone    string
	Role     domain.Role
	Password string
}

// UserService manages the console users table.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, bcryptCost int) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// Create validates input, normalizes the phone number and stores the user.
func (s *UserService) Create(ctx context.Context, actor Actor, input UserCreateInput) (*domain.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	details := map[string]any{}
	if input.Name == "" {
		details["name"] = "required"
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		details["email"] = "invalid"
	}
	if input.Password == "" {
		details["password"] = "required"
	}
	if !input.Role.Valid() {
		details["role"] = "must be admin or support"
	}
	if input.Phone != "" && !phone.IsValidPhoneNumber(input.Phone) {
		details["phone"] = "must contain at least 8 digits"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid user", details)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        phone.ToE164(input.Phone),
		Role:         input.Role,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
		}
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventUserCreated,
		Subject: user.ID,
		Actor:   actor,
		Payload: events.UserPayload{Email: user.Email, Role: user.Role},
	})
	return user, nil
}

// EnsureAdmin creates an admin account for email unless one already exists.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	_, err := s.Create(ctx, Actor{}, UserCreateInput{
		Name:     "Administrator",
		Email:    email,
		Role:     domain.RoleAdmin,
		Password: password,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	limit, offset = pageBounds(limit, offset)
	return s.users.List(ctx, limit, offset)
}

// Delete removes a user. Operators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.UserID {
		return apperrors.NewConflict("cannot delete the signed-in user", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventUserDeleted,
		Subject: id,
		Actor:   actor,
	})
	return nil
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
