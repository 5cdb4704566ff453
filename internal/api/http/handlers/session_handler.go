package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/optinhub/optin-manager/internal/api/dto"
	"github.com/optinhub/optin-manager/internal/auth"
)

// SessionHandler reports which parts of the console a bearer token may see.
// The answer comes from the token payload alone, mirroring what the UI computes;
// protected routes still verify the signature.
type SessionHandler struct{}

// NewSessionHandler constructs handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Get handles GET /session.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	token, _ := auth.BearerToken(c)
	return c.JSON(fiber.Map{
		"data": dto.SessionResponse{
			Authenticated: auth.IsAuthenticated(token),
			Role:          auth.RoleFromToken(token),
			IsAdmin:       auth.IsAdmin(token),
			IsSupport:     auth.IsSupport(token),
		},
	})
}
