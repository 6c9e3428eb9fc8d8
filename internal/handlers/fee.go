package handlers

import (
	"strconv"

	"consortial/internal/app"
	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/services/band"
	"consortial/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type FeeHandler struct {
	services *app.Services
	log      *logrus.Logger
}

func NewFeeHandler(services *app.Services, log *logrus.Logger) *FeeHandler {
	return &FeeHandler{services: services, log: log}
}

// Quote previews the calculated fee for a band without saving anything.
func (h *FeeHandler) Quote(c *fiber.Ctx) error {
	var in band.Input
	if err := parseBody(c, &in); err != nil {
		return handleError(c, h.log, err)
	}
	in.Category = models.CategoryCalculated

	quote, err := h.services.Supporters.Quote(c.UserContext(), in)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Fee calculated", quote)
}

type createBandRequest struct {
	band.Input
	ExistingBandID *uint `json:"existing_band_id,omitempty"`
}

// CreateBand resolves and saves a band, reusing an identical calculated band.
func (h *FeeHandler) CreateBand(c *fiber.Ctx) error {
	var req createBandRequest
	if err := parseBody(c, &req); err != nil {
		return handleError(c, h.log, err)
	}
	ctx := c.UserContext()

	var existing *models.Band
	if req.ExistingBandID != nil {
		found, err := h.services.Repos.Bands.GetByID(ctx, *req.ExistingBandID)
		if err != nil {
			return handleError(c, h.log, err)
		}
		existing = found
	}

	resolved, err := h.services.Bands.Resolve(ctx, req.Input, existing, true)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Created(c, "Band saved", resolved)
}

// ListBaseBands returns the base band in force for every level and billing
// agent country.
func (h *FeeHandler) ListBaseBands(c *fiber.Ctx) error {
	bands, err := h.services.Base.GetBaseBands(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Base bands", bands)
}

// ResolveBaseBand returns the base band used for a level and country.
func (h *FeeHandler) ResolveBaseBand(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var level *models.SupportLevel
	if raw := c.Query("level_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return response.ValidationError(c, map[string]string{"level_id": "must be a positive integer"})
		}
		if level, err = h.services.Repos.Levels.GetByID(ctx, uint(id)); err != nil {
			return handleError(c, h.log, err)
		}
	}

	base, err := h.services.Base.GetBaseBand(ctx, level, c.Query("country"))
	if err != nil {
		return handleError(c, h.log, err)
	}
	if base == nil {
		return handleError(c, h.log, domainerrors.ErrNoBaseBand)
	}
	return response.Success(c, "Base band", base)
}

// DisplayBands returns the public fee table.
func (h *FeeHandler) DisplayBands(c *fiber.Ctx) error {
	table, err := h.services.Supporters.DisplayBands(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Display bands", table)
}

// ExchangeRates returns each currency's rate against the base currency.
func (h *FeeHandler) ExchangeRates(c *fiber.Ctx) error {
	rates, err := h.services.Rates.ExchangeRatesForDisplay(c.UserContext())
	if err != nil {
		return handleError(c, h.log, err)
	}
	return response.Success(c, "Exchange rates", rates)
}
