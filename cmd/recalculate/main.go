// Command recalculate recomputes every supporter's fee from current data.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"consortial/internal/app"
	"consortial/internal/config"
	"consortial/internal/services/supporter"
)

func main() {
	var (
		modeFlag string
		apply    bool
	)
	flag.StringVar(&modeFlag, "mode", string(supporter.ModeDryRun), "dry_run, prospective or apply")
	flag.BoolVar(&apply, "apply-prospective", false, "move supporters onto their prospective bands instead of recalculating")
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

	if apply {
		applied, err := rt.Services.Supporters.ApplyProspective(ctx)
		if err != nil {
			log.WithError(err).Error("applying prospective bands failed")
			return
		}
		log.WithField("applied", applied).Info("done")
		return
	}

	mode, err := supporter.ParseMode(modeFlag)
	if err != nil {
		log.WithError(err).Fatal("invalid mode")
	}
	report, err := rt.Services.Supporters.RecalculateAll(ctx, mode)
	if err != nil {
		log.WithError(err).Error("recalculation failed")
		return
	}
	if report.Failed > 0 {
		log.WithField("run_id", report.RunID).Warnf("%d supporters could not be recalculated", report.Failed)
	}
}
