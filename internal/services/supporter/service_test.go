package supporter

import (
	"context"
	"testing"
	"time"

	"consortial/internal/config"
	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/repositories/memory"
	"consortial/internal/services/band"
	"consortial/internal/services/billing"
	"consortial/internal/services/level"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMultipliers map[string]decimal.Decimal

func (m stubMultipliers) Resolve(_ context.Context, ind, _, _, fallback string) (decimal.Decimal, string, error) {
	if v, ok := m[ind]; ok {
		return v, "", nil
	}
	return decimal.NewFromInt(1), fallback, nil
}

type env struct {
	store       *memory.Store
	svc         *Service
	multipliers stubMultipliers
	hook        *test.Hook
	large       *models.SupporterSize
	small       *models.SupporterSize
	standard    *models.SupportLevel
	silver      *models.SupportLevel
	gbp         *models.Currency
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.New()
	e := &env{
		store:       store,
		multipliers: stubMultipliers{},
		large:       store.AddSize(models.SupporterSize{Name: "Large", Multiplier: decimal.NewFromInt(1)}),
		small:       store.AddSize(models.SupporterSize{Name: "Small", Multiplier: decimal.RequireFromString("0.6")}),
		standard:    store.AddLevel(models.SupportLevel{Name: "Standard", Order: 1, Default: true}),
		silver:      store.AddLevel(models.SupportLevel{Name: "Silver", Order: 2}),
		gbp:         store.AddCurrency(models.Currency{Code: "GBP", Symbol: "£", Region: "GBR"}),
	}
	store.AddAgent(models.BillingAgent{Name: "Open Library of Humanities", Default: true})
	store.AddBand(models.Band{
		SizeID:     e.large.ID,
		LevelID:    e.standard.ID,
		Country:    "GB",
		CurrencyID: e.gbp.ID,
		Fee:        intPtr(1000),
		Category:   models.CategoryBase,
		Datetime:   time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
	})

	var log *logrus.Logger
	log, e.hook = test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	settings := config.Settings{
		MinimumFee:                   100,
		MissingDataExchangeRate:      "<p>No rate for {region}.</p>",
		MissingDataEconomicDisparity: "<p>No data for {country}.</p>",
		DisparityIndicator:           models.IndicatorGNIPerCapita,
		RateIndicator:                models.IndicatorExchangeRate,
	}
	base := band.NewBaseResolver(store.Bands(), store.Agents(), store.Levels())
	resolver := band.NewResolver(
		band.Repositories{
			Bands:      store.Bands(),
			Sizes:      store.Sizes(),
			Levels:     store.Levels(),
			Currencies: store.Currencies(),
		},
		billing.NewResolver(store.Agents(), log),
		band.NewCalculator(base, e.multipliers, settings, log),
		nil,
		log,
	)
	e.svc = NewService(
		Repositories{
			Supporters: store.Supporters(),
			Sizes:      store.Sizes(),
			Levels:     store.Levels(),
			Currencies: store.Currencies(),
		},
		resolver,
		level.NewService(store.Levels(), log),
		nil,
		log,
	)
	e.svc.runID = func() string { return "run-1" }
	return e
}

func intPtr(i int) *int { return &i }

func (e *env) signup(t *testing.T, name, country string, size *models.SupporterSize) *models.Supporter {
	t.Helper()
	supporter, err := e.svc.Create(context.Background(), Input{
		Name:    name,
		Country: country,
		Band:    band.Input{SizeID: size.ID, CurrencyID: e.gbp.ID},
	})
	require.NoError(t, err)
	return supporter
}

func TestService_Create(t *testing.T) {
	e := newEnv(t)

	supporter, err := e.svc.Create(context.Background(), Input{
		Name:    "Birkbeck",
		ROR:     "https://ror.org/02MB95055",
		Country: "gb",
		Band:    band.Input{SizeID: e.small.ID, CurrencyID: e.gbp.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "02mb95055", supporter.ROR)
	assert.Equal(t, "GB", supporter.Country)
	assert.True(t, supporter.Active)
	assert.True(t, supporter.Display)
	require.NotNil(t, supporter.Band)
	assert.Equal(t, models.CategoryCalculated, supporter.Band.Category)
	assert.Equal(t, e.standard.ID, supporter.Band.LevelID)
	assert.Equal(t, 600, supporter.Band.FeeValue())
}

func TestService_CreateInvalid(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Create(context.Background(), Input{
		Name:    "Birkbeck",
		ROR:     "not a ror",
		Country: "GB",
		Band:    band.Input{SizeID: e.small.ID, CurrencyID: e.gbp.ID},
	})
	var ve *domainerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "ror")
	assert.Equal(t, 1, e.store.BandCount())
}

func TestService_CreateWithoutDefaultLevel(t *testing.T) {
	e := newEnv(t)
	e.svc.defaults = level.NewService(memory.New().Levels(), nil)

	_, err := e.svc.Create(context.Background(), Input{
		Name:    "Birkbeck",
		Country: "GB",
		Band:    band.Input{SizeID: e.small.ID, CurrencyID: e.gbp.ID},
	})
	assert.ErrorIs(t, err, domainerrors.ErrNoDefaultLevel)
}

func TestService_Quote(t *testing.T) {
	e := newEnv(t)

	quote, err := e.svc.Quote(context.Background(), band.Input{
		SizeID:     e.small.ID,
		Country:    "GB",
		CurrencyID: e.gbp.ID,
	})
	require.NoError(t, err)
	assert.Zero(t, quote.ID)
	assert.Equal(t, 600, quote.FeeValue())
	assert.Equal(t, 1, e.store.BandCount())
}

func TestService_AssignBandKeepsHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	supporter := e.signup(t, "Birkbeck", "GB", e.small)
	calculated := supporter.Band

	updated, err := e.svc.AssignBand(ctx, supporter.ID, band.Input{
		SizeID:     e.small.ID,
		CurrencyID: e.gbp.ID,
		Category:   models.CategorySpecial,
		Fee:        intPtr(750),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Band)
	assert.NotEqual(t, calculated.ID, updated.Band.ID)
	assert.Equal(t, models.CategorySpecial, updated.Band.Category)
	assert.Equal(t, 750, updated.Band.FeeValue())
	assert.Equal(t, "GB", updated.Band.Country)

	history, err := e.svc.History(ctx, supporter.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, calculated.ID, history[0].BandID)

	// Editing a special band changes it in place.
	again, err := e.svc.AssignBand(ctx, supporter.ID, band.Input{
		SizeID:     e.small.ID,
		CurrencyID: e.gbp.ID,
		Category:   models.CategorySpecial,
		Fee:        intPtr(800),
	})
	require.NoError(t, err)
	assert.Equal(t, updated.Band.ID, again.Band.ID)
	assert.Equal(t, 800, again.Band.FeeValue())

	history, err = e.svc.History(ctx, supporter.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestService_HistoryUnknownSupporter(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.History(context.Background(), 404)
	assert.ErrorIs(t, err, domainerrors.ErrSupporterNotFound)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDryRun, mode)

	mode, err = ParseMode("apply")
	require.NoError(t, err)
	assert.Equal(t, ModeApply, mode)

	_, err = ParseMode("save")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
