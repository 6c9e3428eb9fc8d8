// Command seed loads sizes, levels, currencies, billing agents and base
// bands from a YAML file.
package main

import (
	"context"
	"flag"

	"consortial/internal/app"
	"consortial/internal/config"
	"consortial/internal/repositories"
)

func main() {
	var (
		path  string
		reset bool
	)
	flag.StringVar(&path, "file", "seed.yaml", "YAML seed file")
	flag.BoolVar(&reset, "reset", false, "drop and recreate every table before seeding")
	flag.Parse()

	config.LoadEnv()
	log := config.NewLogger()
	ctx := context.Background()

	seed, err := config.LoadSeed(path)
	if err != nil {
		log.WithError(err).Fatal("invalid seed file")
	}

	rt, err := app.Start(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect")
	}
	defer rt.Close(log)

	if reset {
		if config.IsProduction() {
			log.Fatal("refusing to reset the database in production")
		}
		if err := repositories.ResetDatabase(rt.DB); err != nil {
			log.WithError(err).Fatal("failed to reset database")
		}
		log.Warn("database reset")
	}

	result, err := rt.Services.ApplySeed(ctx, seed)
	if err != nil {
		log.WithError(err).Fatal("seeding failed")
	}
	log.WithFields(map[string]interface{}{
		"sizes":          result.Sizes,
		"levels":         result.Levels,
		"currencies":     result.Currencies,
		"billing_agents": result.BillingAgents,
		"base_bands":     result.BaseBands,
		"unchanged":      result.Unchanged,
	}).Info("seed applied")
}
