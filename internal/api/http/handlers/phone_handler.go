package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/optinhub/optin-manager/internal/api/dto"
	"github.com/optinhub/optin-manager/internal/phone"
)

// PhoneHandler formats phone input for forms.
type PhoneHandler struct {
	defaultRegion string
}

// NewPhoneHandler constructs handler.
func NewPhoneHandler(defaultRegion string) *PhoneHandler {
	return &PhoneHandler{defaultRegion: defaultRegion}
}

// Normalize handles POST /phone/normalize.
func (h *PhoneHandler) Normalize(c *fiber.Ctx) error {
	var req dto.PhoneNormalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	return c.JSON(fiber.Map{"data": phone.Describe(req.Input, h.defaultRegion)})
}
