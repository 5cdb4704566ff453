package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/optinhub/optin-manager/internal/auth"
	"github.com/optinhub/optin-manager/internal/service"
	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{UserID: principal.UserID, Role: principal.Role}, nil
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
