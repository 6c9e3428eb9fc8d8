// Package main is the entry point for the fee engine API.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consortial/internal/app"
	"consortial/internal/config"
	"consortial/internal/handlers"
	"consortial/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadEnv()
	log := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Start(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start fee engine")
	}
	defer rt.Close(log)

	checks := map[string]handlers.Pinger{
		"database": handlers.PingFunc(rt.PingDB),
		"redis":    nil,
	}
	if rt.Cache != nil {
		checks["redis"] = handlers.PingFunc(rt.Cache.HealthCheck)
	}

	server := fiber.New(fiber.Config{
		AppName:      "consortial",
		ReadTimeout:  config.GetDurationEnv("HTTP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: config.GetDurationEnv("HTTP_WRITE_TIMEOUT", 30*time.Second),
	})

	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT",
	}))
	server.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		Output: log.Writer(),
	}))

	routes.SetupRoutes(server, rt.Services, routes.Options{
		Health:          handlers.NewHealthHandler(checks, log),
		Gatherer:        rt.Registry,
		Metrics:         rt.Metrics,
		QuotesPerMinute: config.GetIntEnv("QUOTES_PER_MINUTE", 60),
		Log:             log,
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
	}()

	addr := ":" + config.GetEnv("PORT", "3000")
	log.WithField("addr", addr).Info("fee engine listening")
	if err := server.Listen(addr); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
