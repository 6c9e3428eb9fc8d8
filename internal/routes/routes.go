// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers.
package routes

import (
	"time"

	"consortial/internal/app"
	"consortial/internal/handlers"
	"consortial/internal/metrics"
	"consortial/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Options carries what the routes need besides the services.
type Options struct {
	Health   *handlers.HealthHandler
	Gatherer prometheus.Gatherer
	Metrics  metrics.MetricsCollector
	// QuotesPerMinute limits fee quotes per client IP; zero disables the limit.
	QuotesPerMinute int
	Log             *logrus.Logger
}

// SetupRoutes configures all application routes.
func SetupRoutes(fiberApp *fiber.App, services *app.Services, opts Options) {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}

	if opts.Health != nil {
		fiberApp.Get("/health", opts.Health.HealthCheck)
	}
	if opts.Gatherer != nil {
		fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := fiberApp.Group("/api", middleware.RequestMetrics(opts.Metrics))

	setupFeeRoutes(api, handlers.NewFeeHandler(services, log), opts.QuotesPerMinute)
	setupSupporterRoutes(api, handlers.NewSupporterHandler(services.Supporters, log))
	setupAdminRoutes(api, handlers.NewAdminHandler(services, log))
}

func setupFeeRoutes(router fiber.Router, h *handlers.FeeHandler, quotesPerMinute int) {
	if quotesPerMinute > 0 {
		router.Post("/fees/quote", middleware.QuoteLimiter(quotesPerMinute, time.Minute), h.Quote)
	} else {
		router.Post("/fees/quote", h.Quote)
	}

	bands := router.Group("/bands")
	bands.Post("/", h.CreateBand)
	bands.Get("/base", h.ListBaseBands)
	bands.Get("/base/resolve", h.ResolveBaseBand)
	bands.Get("/display", h.DisplayBands)

	router.Get("/currencies/rates", h.ExchangeRates)
}

func setupSupporterRoutes(router fiber.Router, h *handlers.SupporterHandler) {
	supporters := router.Group("/supporters")
	supporters.Post("/", h.CreateSupporter)
	supporters.Get("/", h.ListSupporters)
	supporters.Get("/:id", h.GetSupporter)
	supporters.Put("/:id/band", h.AssignBand)
	supporters.Get("/:id/history", h.History)
}

func setupAdminRoutes(router fiber.Router, h *handlers.AdminHandler) {
	router.Get("/billing-agents/resolve", h.ResolveBillingAgent)
	router.Post("/billing-agents/:id/default", h.SetDefaultBillingAgent)
	router.Post("/levels/:id/default", h.SetDefaultLevel)

	router.Post("/recalculations", h.Recalculate)
	router.Post("/recalculations/apply", h.ApplyProspective)
}
