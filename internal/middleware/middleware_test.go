package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"consortial/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	collector := metrics.NewPrometheusCollector(prometheus.NewRegistry())

	app := fiber.New()
	app.Use(RequestMetrics(collector))
	app.Get("/bands/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/bands/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.OperationsTotal.WithLabelValues("http GET /bands/:id", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.OperationsTotal.WithLabelValues("http GET /missing", "4xx")))
}

func TestQuoteLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/quote", QuoteLimiter(2, time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/quote", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/quote", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
