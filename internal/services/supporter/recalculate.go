package supporter

import (
	"context"
	"errors"
	"time"

	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/services/band"

	"github.com/sirupsen/logrus"
)

// RecalculateAll recomputes every supporter's calculated fee from current data.
// Special bands need a manual update and are skipped. Supporters whose band
// lacks a dimension are reported rather than failing the run.
func (s *Service) RecalculateAll(ctx context.Context, mode Mode) (*Report, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     s.runID(),
		Mode:      mode,
		StartedAt: s.now(),
		Results:   []Result{},
	}
	log := s.log.WithFields(logrus.Fields{"run_id": report.RunID, "mode": mode})
	log.Info("fee recalculation started")
	start := time.Now()

	supporters, err := s.repos.Supporters.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range supporters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := s.recalculate(ctx, &supporters[i], mode)
		s.metrics.RecordOperationResult("recalculate", result.Status)
		logResult(log, result)
		report.add(result)
	}

	report.FinishedAt = s.now()
	s.metrics.RecordOperationDuration("recalculate_all", time.Since(start))
	log.WithFields(logrus.Fields{
		"changed":    report.Changed,
		"unchanged":  report.Unchanged,
		"skipped":    report.Skipped,
		"incomplete": report.Incomplete,
		"failed":     report.Failed,
	}).Info("fee recalculation finished")
	return report, nil
}

func (s *Service) recalculate(ctx context.Context, supporter *models.Supporter, mode Mode) Result {
	result := Result{SupporterID: supporter.ID, Name: supporter.Name}
	old := supporter.Band
	if old == nil {
		result.Status = StatusIncomplete
		result.Message = "not enough data to recalculate band"
		return result
	}
	result.OldBandID = old.ID
	result.OldFee = old.FeeValue()
	if old.Currency != nil {
		result.Currency = old.Currency.Code
	}

	if old.Category == models.CategorySpecial {
		result.Status = StatusSkipped
		result.Message = "special fee, manual update needed"
		return result
	}
	if err := old.ValidateDimensions(); err != nil {
		result.Status = StatusIncomplete
		result.Message = "not enough data to recalculate band"
		return result
	}

	in := band.Input{
		SizeID:     old.SizeID,
		LevelID:    old.LevelID,
		Country:    old.Country,
		CurrencyID: old.CurrencyID,
		Category:   models.CategoryCalculated,
	}
	updated, err := s.bands.Resolve(ctx, in, nil, mode != ModeDryRun)
	if err != nil {
		result.Status = StatusFailed
		if errors.Is(err, domainerrors.ErrValidation) {
			result.Status = StatusIncomplete
		}
		result.Message = err.Error()
		return result
	}
	result.NewBandID = updated.ID
	result.NewFee = updated.FeeValue()
	result.Warnings = updated.Warnings

	if updated.ID != 0 && updated.ID == old.ID {
		result.Status = StatusUnchanged
		return result
	}
	result.Status = StatusChanged

	switch mode {
	case ModeApply:
		err = s.repos.Supporters.AssignBand(ctx, supporter.ID, updated.ID)
	case ModeProspective:
		id := updated.ID
		err = s.repos.Supporters.SetProspectiveBand(ctx, supporter.ID, &id)
	}
	if err != nil {
		result.Status = StatusFailed
		result.Message = err.Error()
	}
	return result
}

func logResult(log *logrus.Entry, result Result) {
	entry := log.WithFields(logrus.Fields{
		"supporter_id": result.SupporterID,
		"name":         result.Name,
		"status":       result.Status,
	})
	switch result.Status {
	case StatusChanged:
		entry = entry.WithFields(logrus.Fields{
			"old_fee":  result.OldFee,
			"new_fee":  result.NewFee,
			"currency": result.Currency,
		})
		if result.Warnings != "" {
			entry.WithField("warnings", result.Warnings).Warn("fee changed with missing data")
			return
		}
		entry.Info("fee changed")
	case StatusUnchanged:
		entry.Debug("fee unchanged")
	case StatusFailed:
		entry.WithField("error", result.Message).Error("could not calculate fee")
	default:
		entry.WithField("reason", result.Message).Warn("supporter not recalculated")
	}
}

// ApplyProspective moves every supporter with a prospective band onto it and
// returns how many were moved.
func (s *Service) ApplyProspective(ctx context.Context) (int, error) {
	supporters, err := s.repos.Supporters.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, supporter := range supporters {
		if supporter.ProspectiveBandID == nil {
			continue
		}
		if err := s.repos.Supporters.AssignBand(ctx, supporter.ID, *supporter.ProspectiveBandID); err != nil {
			return applied, err
		}
		applied++
	}
	s.log.WithField("applied", applied).Info("prospective bands applied")
	return applied, nil
}
