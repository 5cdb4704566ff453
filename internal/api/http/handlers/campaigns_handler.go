package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/optinhub/optin-manager/internal/api/dto"
	"github.com/optinhub/optin-manager/internal/service"
)

// CampaignsHandler exposes campaign management endpoints.
type CampaignsHandler struct {
	campaigns *service.CampaignService
}

// NewCampaignsHandler constructs handler.
func NewCampaignsHandler(campaigns *service.CampaignService) *CampaignsHandler {
	return &CampaignsHandler{campaigns: campaigns}
}

// List handles GET /campaigns.
func (h *CampaignsHandler) List(c *fiber.Ctx) error {
	campaigns, err := h.campaigns.List(c.UserContext(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return err
	}
	resp := make([]dto.CampaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		resp = append(resp, dto.NewCampaignResponse(campaign))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create handles POST /campaigns.
func (h *CampaignsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CampaignCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	campaign, err := h.campaigns.Create(c.UserContext(), actor, service.CampaignCreateInput{
		Name:        req.Name,
		Keyword:     req.Keyword,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCampaignResponse(*campaign)})
}
