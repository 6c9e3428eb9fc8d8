package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks map[string]Pinger
	log    *logrus.Logger
}

// NewHealthHandler reports on the named checks. A nil check is reported as
// disabled.
func NewHealthHandler(checks map[string]Pinger, log *logrus.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{}
	for name, check := range h.checks {
		if check == nil {
			services[name] = "disabled"
			continue
		}
		if err := check.Ping(ctx); err != nil {
			h.log.WithError(err).WithField("service", name).Warn("health check failed")
			services[name] = "unavailable"
			status = fiber.StatusServiceUnavailable
			continue
		}
		services[name] = "connected"
	}

	result := "ok"
	if status != fiber.StatusOK {
		result = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   result,
		"services": services,
	})
}
