package dto

import (
	"time"

	"github.com/optinhub/optin-manager/internal/domain"
)

// LoginRequest payload for operator login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse carries the visibility flags derived from a bearer token.
type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	Role          domain.Role `json:"role,omitempty"`
	IsAdmin       bool        `json:"is_admin"`
	IsSupport     bool        `json:"is_support"`
}

// PhoneNormalizeRequest payload for phone formatting.
type PhoneNormalizeRequest struct {
	Input string `json:"input"`
}

// UserCreateRequest payload for new console users.
type UserCreateRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Role     domain.Role `json:"role"`
	Password string      `json:"password"`
}

// UserResponse is the public view of a console user.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// CampaignCreateRequest payload for new campaigns.
type CampaignCreateRequest struct {
	Name        string `json:"name"`
	Keyword     string `json:"keyword"`
	Description string `json:"description"`
}

// CampaignResponse is the public view of a campaign.
type CampaignResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Keyword     string                `json:"keyword"`
	Description string                `json:"description"`
	Status      domain.CampaignStatus `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewCampaignResponse maps a domain campaign.
func NewCampaignResponse(c domain.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:          c.ID,
		Name:        c.Name,
		Keyword:     c.Keyword,
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}

// ProviderCredentialsRequest payload for saving provider settings.
type ProviderCredentialsRequest struct {
	Values map[string]string `json:"values"`
}
