package band

import (
	"context"
	"testing"

	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/repositories/memory"
	"consortial/internal/services/billing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolverFixture(t *testing.T) *fixture {
	f := newFixture(t)
	f.addBase(f.standard, f.large, "GB", f.gbp, intPtr(1000), t0)
	f.addBase(f.silver, f.large, "GB", f.gbp, intPtr(5000), t0)
	return f
}

func TestResolver_DedupIsIdempotent(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	in := f.input(f.standard, f.small, "DE", f.eur)

	first, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	assert.Equal(t, 600, first.FeeValue())
	assert.Equal(t, models.CategoryCalculated, first.Category)

	second, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, f.store.BandCount())
	assert.Equal(t, []string{"calculated:created", "calculated:reused"}, f.metrics.resolutions)
}

func TestResolver_NewFeeCreatesNewBand(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	in := f.input(f.standard, f.small, "DE", f.eur)

	first, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)

	f.multipliers.values[models.IndicatorGNIPerCapita] = decimal.RequireFromString("0.5")
	f.multipliers.values[models.IndicatorExchangeRate] = decimal.NewFromInt(1)

	second, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 300, second.FeeValue())
	assert.Empty(t, second.Warnings)
}

func TestResolver_PreviewDoesNotWrite(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	in := f.input(f.standard, f.small, "DE", f.eur)

	preview, err := f.resolver.Resolve(ctx, in, nil, false)
	require.NoError(t, err)
	assert.Zero(t, preview.ID)
	assert.Equal(t, 600, preview.FeeValue())
	assert.Equal(t, 2, f.store.BandCount())

	saved, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)

	again, err := f.resolver.Resolve(ctx, in, nil, false)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, 3, f.store.BandCount())
}

func TestResolver_ForkOnCalculatedToSpecial(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	in := f.input(f.standard, f.small, "DE", f.eur)

	shared, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)

	special := in
	special.Category = models.CategorySpecial
	special.Fee = intPtr(750)
	forked, err := f.resolver.Resolve(ctx, special, shared, true)
	require.NoError(t, err)
	assert.NotEqual(t, shared.ID, forked.ID)
	assert.Equal(t, models.CategorySpecial, forked.Category)
	assert.Equal(t, 750, forked.FeeValue())

	original, err := f.store.Bands().GetByID(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCalculated, original.Category)
	assert.Equal(t, 600, original.FeeValue())
	assert.Contains(t, f.metrics.resolutions, "special:forked")
}

func TestResolver_SpecialEditedInPlace(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	in := f.input(f.standard, f.small, "DE", f.eur)
	in.Category = models.CategorySpecial
	in.Fee = intPtr(750)

	special, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)

	in.Fee = intPtr(800)
	edited, err := f.resolver.Resolve(ctx, in, special, true)
	require.NoError(t, err)
	assert.Equal(t, special.ID, edited.ID)

	stored, err := f.store.Bands().GetByID(ctx, special.ID)
	require.NoError(t, err)
	assert.Equal(t, 800, stored.FeeValue())
}

func TestResolver_SpecialIsNeverDeduplicated(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	in := f.input(f.standard, f.small, "DE", f.eur)
	in.Category = models.CategorySpecial
	in.Fee = intPtr(750)

	first, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)
	second, err := f.resolver.Resolve(ctx, in, nil, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestResolver_BaseAlwaysCreatesVersion(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	in := f.input(f.standard, f.large, "GB", f.gbp)
	in.Category = models.CategoryBase
	in.Fee = intPtr(1200)

	previous, err := f.base.GetBaseBand(ctx, f.standard, "GB")
	require.NoError(t, err)

	created, err := f.resolver.Resolve(ctx, in, previous, true)
	require.NoError(t, err)
	assert.NotEqual(t, previous.ID, created.ID)

	latest, err := f.base.GetBaseBand(ctx, f.standard, "GB")
	require.NoError(t, err)
	assert.Equal(t, created.ID, latest.ID)
	assert.Equal(t, 1200, latest.FeeValue())
}

func TestResolver_ManualFeeRequired(t *testing.T) {
	f := newResolverFixture(t)
	in := f.input(f.standard, f.large, "GB", f.gbp)
	in.Category = models.CategorySpecial

	_, err := f.resolver.Resolve(context.Background(), in, nil, true)
	var ve *domainerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "fee")
}

func TestResolver_BillingAgentIsDerived(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	belgian, err := f.resolver.Resolve(ctx, f.input(f.standard, f.large, "be", f.eur), nil, true)
	require.NoError(t, err)
	assert.Equal(t, "BE", belgian.Country)
	require.NotNil(t, belgian.BillingAgentID)
	assert.Equal(t, f.belgianAgt.ID, *belgian.BillingAgentID)

	german, err := f.resolver.Resolve(ctx, f.input(f.standard, f.large, "DE", f.eur), nil, true)
	require.NoError(t, err)
	assert.Equal(t, f.defaultAgt.ID, *german.BillingAgentID)
}

func TestResolver_ConcurrentWriterWins(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	var winner *models.Band
	f.store.BeforeBandCreate = func(band *models.Band) {
		if winner == nil {
			winner = f.store.AddBand(*band)
		}
	}

	got, err := f.resolver.Resolve(ctx, f.input(f.standard, f.small, "DE", f.eur), nil, true)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, 3, f.store.BandCount())
}

func TestResolver_InputErrors(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	t.Run("missing dimensions", func(t *testing.T) {
		_, err := f.resolver.Resolve(ctx, Input{Country: "DE"}, nil, true)
		var ve *domainerrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Len(t, ve.Fields, 3)
	})

	t.Run("unknown country", func(t *testing.T) {
		_, err := f.resolver.Resolve(ctx, f.input(f.standard, f.large, "XX", f.eur), nil, true)
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	})

	t.Run("unknown category", func(t *testing.T) {
		in := f.input(f.standard, f.large, "DE", f.eur)
		in.Category = "discounted"
		_, err := f.resolver.Resolve(ctx, in, nil, true)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCategory)
	})

	t.Run("unknown size", func(t *testing.T) {
		in := f.input(f.standard, f.large, "DE", f.eur)
		in.SizeID = 999
		_, err := f.resolver.Resolve(ctx, in, nil, true)
		assert.ErrorIs(t, err, domainerrors.ErrSizeNotFound)
	})
}

func TestResolver_NoDefaultAgent(t *testing.T) {
	f := newResolverFixture(t)
	agents := memory.New()
	agents.AddAgent(models.BillingAgent{Name: "Diamond OA Association", Country: strPtr("BE")})

	resolver := NewResolver(
		Repositories{
			Bands:      f.store.Bands(),
			Sizes:      f.store.Sizes(),
			Levels:     f.store.Levels(),
			Currencies: f.store.Currencies(),
		},
		billing.NewResolver(agents.Agents(), quietLogger()),
		f.calculator,
		nil,
		quietLogger(),
	)

	_, err := resolver.Resolve(context.Background(), f.input(f.standard, f.large, "DE", f.eur), nil, true)
	assert.ErrorIs(t, err, domainerrors.ErrNoDefaultBillingAgent)

	band, err := resolver.Resolve(context.Background(), f.input(f.standard, f.large, "BE", f.eur), nil, false)
	require.NoError(t, err)
	assert.Equal(t, "Diamond OA Association", band.BillingAgent.Name)
}
