// Command fetchindicators downloads the last five years of World Bank data
// for the configured indicators.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"consortial/internal/app"
	"consortial/internal/config"
	"consortial/internal/services/indicator"
)

func main() {
	var (
		baseURL    string
		indicators string
	)
	flag.StringVar(&baseURL, "base-url", indicator.DefaultWorldBankURL, "World Bank API base URL")
	flag.StringVar(&indicators, "indicators", "", "comma separated indicator codes, defaults to the configured ones")
	flag.Parse()

	config.LoadEnv()
	log := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Start(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect")
	}
	defer rt.Close(log)

	codes := rt.Services.Settings.Indicators()
	if indicators != "" {
		codes = strings.Split(indicators, ",")
	}

	refresher := indicator.NewRefresher(indicator.NewWorldBankClient(baseURL), rt.Services.Indicators, log)
	results, err := refresher.Refresh(ctx, codes)
	saved := 0
	for _, r := range results {
		if r.Err == nil {
			saved++
		}
	}
	log.WithField("snapshots", saved).Info("indicator refresh finished")
	if err != nil {
		log.WithError(err).Error("some indicators could not be refreshed")
		defer os.Exit(1)
	}
}
