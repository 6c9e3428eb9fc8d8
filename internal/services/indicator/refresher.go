package indicator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consortial/internal/models"

	"github.com/sirupsen/logrus"
)

// Fetcher downloads one year of an indicator.
type Fetcher interface {
	Fetch(ctx context.Context, indicator string, year int) (models.IndicatorValues, error)
}

// SnapshotSaver persists fetched snapshots.
type SnapshotSaver interface {
	Save(ctx context.Context, snapshot *models.IndicatorSnapshot) error
}

// RefreshResult describes one fetched indicator year.
type RefreshResult struct {
	Indicator string
	Year      int
	Countries int
	Err       error
}

// Refresher downloads the lookback window of each indicator and stores it.
type Refresher struct {
	fetcher Fetcher
	saver   SnapshotSaver
	now     func() time.Time
	log     *logrus.Logger
}

func NewRefresher(fetcher Fetcher, saver SnapshotSaver, log *logrus.Logger) *Refresher {
	if log == nil {
		log = logrus.New()
	}
	return &Refresher{
		fetcher: fetcher,
		saver:   saver,
		now:     time.Now,
		log:     log,
	}
}

// WithClock replaces the clock used to pick the years to fetch.
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	r.now = now
	return r
}

// Refresh fetches the last five years of every indicator. A failed year does
// not stop the others; all failures are joined into the returned error.
func (r *Refresher) Refresh(ctx context.Context, indicators []string) ([]RefreshResult, error) {
	var (
		results []RefreshResult
		errs    []error
	)
	for _, ind := range indicators {
		for _, year := range LastFiveYears(r.now()) {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			result := r.refreshOne(ctx, ind, year)
			if result.Err != nil {
				errs = append(errs, fmt.Errorf("%s %d: %w", ind, year, result.Err))
			}
			results = append(results, result)
		}
	}
	return results, errors.Join(errs...)
}

func (r *Refresher) refreshOne(ctx context.Context, indicator string, year int) RefreshResult {
	result := RefreshResult{Indicator: indicator, Year: year}
	logger := r.log.WithFields(logrus.Fields{"indicator": indicator, "year": year})

	values, err := r.fetcher.Fetch(ctx, indicator, year)
	if err != nil {
		logger.WithError(err).Error("failed to fetch indicator")
		result.Err = err
		return result
	}
	snapshot := &models.IndicatorSnapshot{
		Indicator: indicator,
		Year:      year,
		Values:    values,
		FetchedAt: r.now(),
	}
	if err := r.saver.Save(ctx, snapshot); err != nil {
		logger.WithError(err).Error("failed to save indicator snapshot")
		result.Err = err
		return result
	}
	result.Countries = len(values)
	logger.WithField("countries", result.Countries).Info("indicator snapshot saved")
	return result
}
