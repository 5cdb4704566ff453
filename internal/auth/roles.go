package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/optinhub/optin-manager/pkg/util/errorutil"
)

// RequireAuthenticated ensures the verified token still carries an unexpired scope.
func RequireAuthenticated() fiber.Handler {
	return requireToken(IsAuthenticated, "authentication required")
}

// RequireAdmin ensures the caller holds the admin scope.
func RequireAdmin() fiber.Handler {
	return requireToken(IsAdmin, "admin role required")
}

// RequireSupportOrAdmin ensures the caller holds the support or admin scope.
func RequireSupportOrAdmin() fiber.Handler {
	return requireToken(func(token string) bool {
		return IsAdmin(token) || IsSupport(token)
	}, "support role required")
}

func requireToken(allowed func(token string) bool, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !allowed(principal.Token) {
			return apperrors.NewForbidden(message)
		}
		return c.Next()
	}
}
