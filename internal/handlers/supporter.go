package handlers

import (
	"consortial/internal/services/band"
	"consortial/internal/services/supporter"
	"consortial/internal/utils/pagination"
	"consortial/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SupporterHandler struct {
	supporters *supporter.Service
	log        *logrus.Logger
}

func NewSupporterHandler(supporters *supporter.Service, log *logrus.Logger) *SupporterHandler {
	return &SupporterHandler{supporters: supporters, log: log}
}

func (h *SupporterHandler) CreateSupporter(c *fiber.Ctx) error {
	var in supporter.Input
	if err := parseBody(c, &in); err != nil {
		return handleError(c, h.log, err)
	}

	created, err := h.supporters.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Created(c, "Supporter created", created)
}

func (h *SupporterHandler) ListSupporters(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	supporters, total, err := h.supporters.List(c.UserContext(), p.Offset, p.Limit)
	if err != nil {
		return handleError(c, h.log, err)
	}
	p.Total = total
	return c.JSON(pagination.Response(p, supporters))
}

func (h *SupporterHandler) GetSupporter(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	found, err := h.supporters.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Supporter", found)
}

// AssignBand moves the supporter onto a band built from the request body.
func (h *SupporterHandler) AssignBand(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return handleError(c, h.log, err)
	}
	var in band.Input
	if err := parseBody(c, &in); err != nil {
		return handleError(c, h.log, err)
	}

	updated, err := h.supporters.AssignBand(c.UserContext(), id, in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Band assigned", updated)
}

func (h *SupporterHandler) History(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return handleError(c, h.log, err)
	}

	history, err := h.supporters.History(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Band history", history)
}
