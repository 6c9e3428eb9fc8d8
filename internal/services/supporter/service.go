// Package supporter manages supporters, their bands and fee recalculation.
package supporter

import (
	"context"
	"time"

	"consortial/internal/country"
	"consortial/internal/metrics"
	"consortial/internal/models"
	"consortial/internal/services/band"
	"consortial/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Service struct {
	repos    Repositories
	bands    BandResolver
	defaults DefaultLevelProvider
	metrics  metrics.MetricsCollector
	now      func() time.Time
	runID    func() string
	log      *logrus.Logger
}

func NewService(
	repos Repositories,
	bands BandResolver,
	defaults DefaultLevelProvider,
	metricsCollector metrics.MetricsCollector,
	log *logrus.Logger,
) *Service {
	if metricsCollector == nil {
		metricsCollector = &metrics.NoopMetricsCollector{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		repos:    repos,
		bands:    bands,
		defaults: defaults,
		metrics:  metricsCollector,
		now:      time.Now,
		runID:    uuid.NewString,
		log:      log,
	}
}

// Create validates the supporter, resolves its band and saves both.
func (s *Service) Create(ctx context.Context, in Input) (*models.Supporter, error) {
	v := validation.New()
	v.Supporter(in.Name, in.ROR, in.Country, in.Address, in.PostalCode, in.InternalNotes)
	if err := v.Err(); err != nil {
		return nil, err
	}

	bandInput := in.Band
	if bandInput.Country == "" {
		bandInput.Country = in.Country
	}
	bandInput, err := s.withDefaultLevel(ctx, bandInput, nil)
	if err != nil {
		return nil, err
	}
	resolved, err := s.bands.Resolve(ctx, bandInput, nil, true)
	if err != nil {
		s.metrics.RecordError("create_supporter", "band")
		return nil, err
	}

	supporter := &models.Supporter{
		Name:          in.Name,
		ROR:           validation.NormalizeROR(in.ROR),
		Address:       in.Address,
		PostalCode:    in.PostalCode,
		Country:       country.Normalize(in.Country),
		Display:       boolOr(in.Display, true),
		Active:        boolOr(in.Active, true),
		InternalNotes: in.InternalNotes,
		BandID:        &resolved.ID,
	}
	if err := s.repos.Supporters.Create(ctx, supporter); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"supporter_id": supporter.ID,
		"band_id":      resolved.ID,
		"fee":          resolved.FeeValue(),
	}).Info("supporter created")
	return s.repos.Supporters.GetByID(ctx, supporter.ID)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Supporter, error) {
	return s.repos.Supporters.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Supporter, int64, error) {
	return s.repos.Supporters.List(ctx, offset, limit)
}

// Quote previews the band a supporter would get. Nothing is written.
func (s *Service) Quote(ctx context.Context, in band.Input) (*models.Band, error) {
	in, err := s.withDefaultLevel(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	return s.bands.Resolve(ctx, in, nil, false)
}

// AssignBand resolves a band for the supporter and moves the supporter onto
// it. The replaced band is kept in the supporter's history.
func (s *Service) AssignBand(ctx context.Context, supporterID uint, in band.Input) (*models.Supporter, error) {
	supporter, err := s.repos.Supporters.GetByID(ctx, supporterID)
	if err != nil {
		return nil, err
	}
	if in.Country == "" {
		in.Country = supporter.Country
	}
	in, err = s.withDefaultLevel(ctx, in, supporter.Band)
	if err != nil {
		return nil, err
	}

	resolved, err := s.bands.Resolve(ctx, in, supporter.Band, true)
	if err != nil {
		s.metrics.RecordError("assign_band", "band")
		return nil, err
	}
	if err := s.repos.Supporters.AssignBand(ctx, supporterID, resolved.ID); err != nil {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"supporter_id": supporterID,
		"band_id":      resolved.ID,
		"fee":          resolved.FeeValue(),
	})
	if supporter.Band != nil {
		entry = entry.WithField("old_band_id", supporter.Band.ID)
	}
	entry.Info("supporter band assigned")
	return s.repos.Supporters.GetByID(ctx, supporterID)
}

// History returns the supporter's previous bands, newest first.
func (s *Service) History(ctx context.Context, supporterID uint) ([]models.OldBand, error) {
	if _, err := s.repos.Supporters.GetByID(ctx, supporterID); err != nil {
		return nil, err
	}
	return s.repos.Supporters.History(ctx, supporterID)
}

// withDefaultLevel fills in a missing level from the current band, or from
// the default level when there is no current band.
func (s *Service) withDefaultLevel(ctx context.Context, in band.Input, current *models.Band) (band.Input, error) {
	if in.LevelID != 0 {
		return in, nil
	}
	if current != nil && current.LevelID != 0 {
		in.LevelID = current.LevelID
		return in, nil
	}
	level, err := s.defaults.Default(ctx)
	if err != nil {
		return in, err
	}
	in.LevelID = level.ID
	return in, nil
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}
