package handlers

import (
	"consortial/internal/app"
	"consortial/internal/services/supporter"
	"consortial/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves configuration changes and fee recalculation.
type AdminHandler struct {
	services *app.Services
	log      *logrus.Logger
}

func NewAdminHandler(services *app.Services, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{services: services, log: log}
}

func (h *AdminHandler) ResolveBillingAgent(c *fiber.Ctx) error {
	country := c.Query("country")
	if country == "" {
		return response.ValidationError(c, map[string]string{"country": "is required"})
	}

	agent, err := h.services.Agents.Resolve(c.UserContext(), country)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Billing agent", agent)
}

func (h *AdminHandler) SetDefaultBillingAgent(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	agent, err := h.services.Agents.SetDefault(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Default billing agent updated", agent)
}

func (h *AdminHandler) SetDefaultLevel(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	level, err := h.services.Levels.SetDefault(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Default support level updated", level)
}

type recalculateRequest struct {
	Mode string `json:"mode"`
}

// Recalculate recomputes every supporter's fee in the requested mode.
func (h *AdminHandler) Recalculate(c *fiber.Ctx) error {
	var req recalculateRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return handleError(c, h.log, err)
		}
	}
	mode, err := supporter.ParseMode(req.Mode)
	if err != nil {
		return handleError(c, h.log, err)
	}

	report, err := h.services.Supporters.RecalculateAll(c.UserContext(), mode)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Recalculation finished", report)
}

// ApplyProspective moves supporters onto their prospective bands.
func (h *AdminHandler) ApplyProspective(c *fiber.Ctx) error {
	applied, err := h.services.Supporters.ApplyProspective(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Prospective bands applied", fiber.Map{"applied": applied})
}
