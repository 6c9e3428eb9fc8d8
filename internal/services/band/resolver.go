package band

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consortial/internal/country"
	domainerrors "consortial/internal/errors"
	"consortial/internal/metrics"
	"consortial/internal/models"
	"consortial/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Resolution outcomes reported to metrics.
const (
	OutcomeReused  = "reused"
	OutcomeCreated = "created"
	OutcomeForked  = "forked"
	OutcomeUpdated = "updated"
	OutcomePreview = "preview"
)

// AgentResolver picks the billing agent for a country.
type AgentResolver interface {
	Resolve(ctx context.Context, country string) (*models.BillingAgent, error)
}

// FeeCalculator computes a calculated band's fee.
type FeeCalculator interface {
	CalculateFee(ctx context.Context, band *models.Band) (int, string, error)
}

// Input is the raw data a band is resolved from. Fee is only read for base
// and special bands.
type Input struct {
	SizeID     uint            `json:"size_id"`
	LevelID    uint            `json:"level_id"`
	Country    string          `json:"country"`
	CurrencyID uint            `json:"currency_id"`
	Category   models.Category `json:"category"`
	Fee        *int            `json:"fee,omitempty"`
}

// Repositories groups the data access the resolver needs.
type Repositories struct {
	Bands      repositories.BandRepository
	Sizes      repositories.SizeRepository
	Levels     repositories.LevelRepository
	Currencies repositories.CurrencyRepository
}

// Resolver turns raw input into a band, reusing an identical calculated band
// from the same year instead of creating a new row.
type Resolver struct {
	repos      Repositories
	agents     AgentResolver
	calculator FeeCalculator
	metrics    metrics.MetricsCollector
	now        func() time.Time
	log        *logrus.Logger
}

func NewResolver(
	repos Repositories,
	agents AgentResolver,
	calculator FeeCalculator,
	metricsCollector metrics.MetricsCollector,
	log *logrus.Logger,
) *Resolver {
	if metricsCollector == nil {
		metricsCollector = &metrics.NoopMetricsCollector{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		repos:      repos,
		agents:     agents,
		calculator: calculator,
		metrics:    metricsCollector,
		now:        time.Now,
		log:        log,
	}
}

// WithClock replaces the clock used for band timestamps and the dedup year.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve produces the band for the input. existing is the band being edited,
// if any; it decides whether a special band is edited in place or forked.
// With commit false nothing is written: a matching calculated band is still
// returned with its identity, anything else comes back unsaved.
func (r *Resolver) Resolve(ctx context.Context, in Input, existing *models.Band, commit bool) (*models.Band, error) {
	start := time.Now()
	defer func() {
		r.metrics.RecordOperationDuration("resolve_band", time.Since(start))
	}()

	category, err := models.ParseCategory(string(in.Category))
	if err != nil {
		return nil, err
	}
	var from models.Category
	if existing != nil {
		from = existing.Category
	}
	fork, err := models.Transition(from, category)
	if err != nil {
		return nil, err
	}

	band, err := r.build(ctx, in, category)
	if err != nil {
		r.metrics.RecordError("resolve_band", errorType(err))
		return nil, err
	}

	var outcome string
	switch category {
	case models.CategoryCalculated:
		band, outcome, err = r.resolveCalculated(ctx, band, commit)
	case models.CategoryBase:
		band, outcome, err = r.create(ctx, band, existing != nil, commit)
	case models.CategorySpecial:
		if existing != nil && !fork {
			band, outcome, err = r.updateInPlace(ctx, existing, band, commit)
		} else {
			band, outcome, err = r.create(ctx, band, existing != nil, commit)
		}
	}
	if err != nil {
		r.metrics.RecordError("resolve_band", errorType(err))
		return nil, err
	}

	r.metrics.RecordBandResolution(string(category), outcome)
	r.log.WithFields(logrus.Fields{
		"band_id":  band.ID,
		"category": category,
		"outcome":  outcome,
		"fee":      band.FeeValue(),
		"country":  band.Country,
	}).Debug("band resolved")
	return band, nil
}

// build loads the band's dimensions and derives its billing agent.
func (r *Resolver) build(ctx context.Context, in Input, category models.Category) (*models.Band, error) {
	band := &models.Band{
		SizeID:     in.SizeID,
		LevelID:    in.LevelID,
		Country:    country.Normalize(in.Country),
		CurrencyID: in.CurrencyID,
		Category:   category,
	}
	if category.ManualFee() {
		band.Fee = in.Fee
	}
	if err := band.Validate(); err != nil {
		return nil, err
	}
	if !country.Valid(band.Country) {
		return nil, domainerrors.NewValidationError(map[string]string{"country": "is not an ISO 3166 alpha-2 code"})
	}

	var err error
	if band.Size, err = r.repos.Sizes.GetByID(ctx, band.SizeID); err != nil {
		return nil, err
	}
	if band.Level, err = r.repos.Levels.GetByID(ctx, band.LevelID); err != nil {
		return nil, err
	}
	if band.Currency, err = r.repos.Currencies.GetByID(ctx, band.CurrencyID); err != nil {
		return nil, err
	}

	agent, err := r.agents.Resolve(ctx, band.Country)
	if err != nil {
		return nil, err
	}
	band.BillingAgent = agent
	band.BillingAgentID = &agent.ID
	return band, nil
}

func (r *Resolver) resolveCalculated(ctx context.Context, band *models.Band, commit bool) (*models.Band, string, error) {
	fee, warnings, err := r.calculator.CalculateFee(ctx, band)
	if err != nil {
		return nil, "", err
	}
	band.Fee = &fee
	band.Warnings = warnings
	now := r.now()
	key := band.DedupKey(now.Year())

	if !commit {
		existing, err := r.repos.Bands.FindDuplicate(ctx, key)
		if err != nil {
			return nil, "", err
		}
		if existing != nil {
			return existing, OutcomeReused, nil
		}
		return band, OutcomePreview, nil
	}

	var (
		result  *models.Band
		outcome string
	)
	err = r.repos.Bands.ExecuteInTransaction(ctx, func(tx repositories.BandRepository) error {
		existing, err := tx.FindDuplicate(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			result, outcome = existing, OutcomeReused
			return nil
		}
		band.Datetime = now
		if err := tx.Create(ctx, band); err != nil {
			return err
		}
		result, outcome = band, OutcomeCreated
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateBand) {
		// A concurrent writer inserted the same band first.
		winner, findErr := r.repos.Bands.FindDuplicate(ctx, key)
		if findErr != nil {
			return nil, "", findErr
		}
		if winner == nil {
			return nil, "", fmt.Errorf("duplicate band reported but not found: %w", err)
		}
		return winner, OutcomeReused, nil
	}
	if err != nil {
		return nil, "", err
	}
	return result, outcome, nil
}

// create saves the band as a new row. forked marks a new row that replaces
// an edited band.
func (r *Resolver) create(ctx context.Context, band *models.Band, forked, commit bool) (*models.Band, string, error) {
	outcome := OutcomeCreated
	if forked {
		outcome = OutcomeForked
	}
	if !commit {
		return band, OutcomePreview, nil
	}
	band.Datetime = r.now()
	if err := r.repos.Bands.Create(ctx, band); err != nil {
		return nil, "", err
	}
	return band, outcome, nil
}

// updateInPlace edits a special band owned by a single supporter.
func (r *Resolver) updateInPlace(ctx context.Context, existing, band *models.Band, commit bool) (*models.Band, string, error) {
	band.ID = existing.ID
	band.Datetime = existing.Datetime
	band.Year = existing.Year
	if !commit {
		return band, OutcomePreview, nil
	}
	if err := r.repos.Bands.Update(ctx, band); err != nil {
		return nil, "", err
	}
	return band, OutcomeUpdated, nil
}

func errorType(err error) string {
	if kind, ok := domainerrors.KindOf(err); ok {
		return string(kind)
	}
	return "internal"
}
