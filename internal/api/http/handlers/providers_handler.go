package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/optinhub/optin-manager/internal/api/dto"
	"github.com/optinhub/optin-manager/internal/domain"
	"github.com/optinhub/optin-manager/internal/service"
)

// ProvidersHandler exposes provider credential and branding settings.
type ProvidersHandler struct {
	providers *service.ProviderService
}

// NewProvidersHandler constructs handler.
func NewProvidersHandler(providers *service.ProviderService) *ProvidersHandler {
	return &ProvidersHandler{providers: providers}
}

// Status handles GET /providers/:name.
func (h *ProvidersHandler) Status(c *fiber.Ctx) error {
	status, err := h.providers.Status(c.UserContext(), providerParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

// SaveCredentials handles PUT /providers/:name/credentials.
func (h *ProvidersHandler) SaveCredentials(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.ProviderCredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	status, err := h.providers.SaveCredentials(c.UserContext(), actor, providerParam(c), req.Values)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

// Test handles POST /providers/:name/test.
func (h *ProvidersHandler) Test(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	status, err := h.providers.MarkTested(c.UserContext(), actor, providerParam(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

func providerParam(c *fiber.Ctx) domain.Provider {
	return domain.Provider(strings.ToLower(c.Params("name")))
}
