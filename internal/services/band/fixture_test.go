package band

import (
	"context"
	"testing"
	"time"

	"consortial/internal/config"
	"consortial/internal/metrics"
	"consortial/internal/models"
	"consortial/internal/repositories/memory"
	"consortial/internal/services/billing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type multiplierCall struct {
	Indicator, Measure, Base, Warning string
}

// fakeMultipliers returns a fixed multiplier per indicator, or 1 and the
// fallback warning for indicators without one.
type fakeMultipliers struct {
	values map[string]decimal.Decimal
	calls  []multiplierCall
}

func (f *fakeMultipliers) Resolve(_ context.Context, ind, measure, base, fallback string) (decimal.Decimal, string, error) {
	f.calls = append(f.calls, multiplierCall{ind, measure, base, fallback})
	if v, ok := f.values[ind]; ok {
		return v, "", nil
	}
	return decimal.NewFromInt(1), fallback, nil
}

type recordingMetrics struct {
	metrics.NoopMetricsCollector
	resolutions []string
}

func (m *recordingMetrics) RecordBandResolution(category, outcome string) {
	m.resolutions = append(m.resolutions, category+":"+outcome)
}

func testSettings() config.Settings {
	return config.Settings{
		MinimumFee:                   100,
		MissingDataExchangeRate:      "<p>No rate for {region}.</p>",
		MissingDataEconomicDisparity: "<p>No data for {country}.</p>",
		DisparityIndicator:           models.IndicatorGNIPerCapita,
		RateIndicator:                models.IndicatorExchangeRate,
	}
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

type fixture struct {
	store       *memory.Store
	large       *models.SupporterSize
	small       *models.SupporterSize
	standard    *models.SupportLevel
	silver      *models.SupportLevel
	eur         *models.Currency
	gbp         *models.Currency
	defaultAgt  *models.BillingAgent
	belgianAgt  *models.BillingAgent
	multipliers *fakeMultipliers
	metrics     *recordingMetrics
	settings    config.Settings
	base        *BaseResolver
	calculator  *Calculator
	resolver    *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	f := &fixture{
		store:       store,
		large:       store.AddSize(models.SupporterSize{Name: "Large", Multiplier: decimal.NewFromInt(1)}),
		small:       store.AddSize(models.SupporterSize{Name: "Small", Multiplier: decimal.RequireFromString("0.6")}),
		standard:    store.AddLevel(models.SupportLevel{Name: "Standard", Order: 1, Default: true}),
		silver:      store.AddLevel(models.SupportLevel{Name: "Silver", Order: 2}),
		eur:         store.AddCurrency(models.Currency{Code: "EUR", Symbol: "€", Region: "EMU"}),
		gbp:         store.AddCurrency(models.Currency{Code: "GBP", Symbol: "£", Region: "GBR"}),
		defaultAgt:  store.AddAgent(models.BillingAgent{Name: "Open Library of Humanities", Default: true}),
		belgianAgt:  store.AddAgent(models.BillingAgent{Name: "Diamond OA Association", Country: strPtr("BE")}),
		multipliers: &fakeMultipliers{values: map[string]decimal.Decimal{}},
		metrics:     &recordingMetrics{},
		settings:    testSettings(),
	}
	f.rebuild()
	return f
}

// rebuild wires the services again after settings change.
func (f *fixture) rebuild() {
	log := quietLogger()
	f.base = NewBaseResolver(f.store.Bands(), f.store.Agents(), f.store.Levels())
	f.calculator = NewCalculator(f.base, f.multipliers, f.settings, log)
	f.resolver = NewResolver(
		Repositories{
			Bands:      f.store.Bands(),
			Sizes:      f.store.Sizes(),
			Levels:     f.store.Levels(),
			Currencies: f.store.Currencies(),
		},
		billing.NewResolver(f.store.Agents(), log),
		f.calculator,
		f.metrics,
		log,
	)
}

func (f *fixture) addBase(level *models.SupportLevel, size *models.SupporterSize, country string, currency *models.Currency, fee *int, at time.Time) *models.Band {
	return f.store.AddBand(models.Band{
		SizeID:     size.ID,
		LevelID:    level.ID,
		Country:    country,
		CurrencyID: currency.ID,
		Fee:        fee,
		Category:   models.CategoryBase,
		Datetime:   at,
	})
}

// hydrated returns a band ready for fee calculation.
func (f *fixture) hydrated(level *models.SupportLevel, size *models.SupporterSize, country string, currency *models.Currency) *models.Band {
	return &models.Band{
		SizeID:     size.ID,
		Size:       size,
		LevelID:    level.ID,
		Level:      level,
		Country:    country,
		CurrencyID: currency.ID,
		Currency:   currency,
		Category:   models.CategoryCalculated,
	}
}

func (f *fixture) input(level *models.SupportLevel, size *models.SupporterSize, country string, currency *models.Currency) Input {
	return Input{
		SizeID:     size.ID,
		LevelID:    level.ID,
		Country:    country,
		CurrencyID: currency.ID,
	}
}

var t0 = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
