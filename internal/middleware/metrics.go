// Package middleware provides HTTP middleware for the fee engine API.
package middleware

import (
	"strconv"
	"time"

	"consortial/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// RequestMetrics records the duration and status class of every request,
// labelled by method and matched route pattern.
func RequestMetrics(collector metrics.MetricsCollector) fiber.Handler {
	if collector == nil {
		collector = &metrics.NoopMetricsCollector{}
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		operation := "http " + c.Method() + " " + c.Route().Path
		collector.RecordOperationDuration(operation, time.Since(start))
		collector.RecordOperationResult(operation, strconv.Itoa(status/100)+"xx")
		return err
	}
}
