package indicator

import (
	"context"
	"time"

	"consortial/internal/metrics"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// NotConfigured is the base key of a band whose region or country has not
// been set up. Multipliers against it are always 1.
const NotConfigured = "---"

// lookbackYears is how many full years are scanned for indicator data.
const lookbackYears = 5

// LastFiveYears returns the five full years before now, newest first.
func LastFiveYears(now time.Time) []int {
	years := make([]int, 0, lookbackYears)
	for i := 1; i <= lookbackYears; i++ {
		years = append(years, now.Year()-i)
	}
	return years
}

// MultiplierResolver compares two keys of an indicator using the most recent
// year in which both are present.
type MultiplierResolver struct {
	store   Opener
	now     func() time.Time
	metrics metrics.MetricsCollector
	log     *logrus.Logger
}

func NewMultiplierResolver(store Opener, metricsCollector metrics.MetricsCollector, log *logrus.Logger) *MultiplierResolver {
	if metricsCollector == nil {
		metricsCollector = &metrics.NoopMetricsCollector{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &MultiplierResolver{
		store:   store,
		now:     time.Now,
		metrics: metricsCollector,
		log:     log,
	}
}

// WithClock replaces the clock used to pick the lookback window.
func (r *MultiplierResolver) WithClock(now func() time.Time) *MultiplierResolver {
	r.now = now
	return r
}

// Resolve returns measure/base for the newest year holding non-zero values for
// both keys. When no such year exists it returns 1 and fallbackWarning. An
// error is only returned when the store itself fails.
func (r *MultiplierResolver) Resolve(ctx context.Context, indicator, measureKey, baseKey, fallbackWarning string) (decimal.Decimal, string, error) {
	one := decimal.NewFromInt(1)
	if baseKey == NotConfigured {
		return one, "", nil
	}

	baseMissing := 0
	for _, year := range LastFiveYears(r.now()) {
		data, err := r.store.Open(ctx, indicator, year)
		if err != nil {
			return decimal.Zero, "", err
		}
		base, ok := data[baseKey]
		if !ok || base == 0 {
			baseMissing++
			continue
		}
		if measure, ok := data[measureKey]; ok && measure != 0 && measureKey != "" {
			return decimal.NewFromFloat(measure).Div(decimal.NewFromFloat(base)), "", nil
		}
	}

	logger := r.log.WithFields(logrus.Fields{
		"indicator": indicator,
		"measure":   measureKey,
		"base":      baseKey,
	})
	if baseMissing == lookbackYears {
		logger.Errorf("%s not found in %s data, check the base band configuration", baseKey, indicator)
	} else {
		logger.Warn("no indicator data for measure, using multiplier 1")
	}
	r.metrics.RecordIndicatorFallback(indicator)
	return one, fallbackWarning, nil
}
