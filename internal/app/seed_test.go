package app

import (
	"context"
	"testing"

	"consortial/internal/config"
	"consortial/internal/repositories/memory"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
sizes:
  - name: Large
    multiplier: "1"
  - name: Small
    multiplier: "0.6"
levels:
  - name: Standard
    order: 1
    default: true
  - name: Silver
    order: 2
currencies:
  - code: gbp
    symbol: "£"
    region: gbr
billing_agents:
  - name: Open Library of Humanities
    default: true
  - name: Diamond OA Association
    country: be
base_bands:
  - level: Standard
    size: Large
    country: GB
    currency: GBP
    fee: 1000
`

func newMemoryServices(store *memory.Store) *Services {
	log, _ := test.NewNullLogger()
	return NewServices(Repositories{
		Sizes:      store.Sizes(),
		Levels:     store.Levels(),
		Currencies: store.Currencies(),
		Agents:     store.Agents(),
		Bands:      store.Bands(),
		Supporters: store.Supporters(),
		Indicators: store.Indicators(),
	}, nil, config.Settings{MinimumFee: 100}, nil, log)
}

func TestApplySeed(t *testing.T) {
	seed, err := config.ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	store := memory.New()
	services := newMemoryServices(store)
	ctx := context.Background()

	result, err := services.ApplySeed(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Sizes: 2, Levels: 2, Currencies: 1, BillingAgents: 2, BaseBands: 1}, result)

	level, err := services.Levels.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Standard", level.Name)

	agent, err := services.Agents.Resolve(ctx, "BE")
	require.NoError(t, err)
	assert.Equal(t, "Diamond OA Association", agent.Name)

	base, err := services.Base.GetBaseBand(ctx, level, "GB")
	require.NoError(t, err)
	require.NotNil(t, base)
	assert.Equal(t, 1000, base.FeeValue())
	assert.Equal(t, "GBP", base.Currency.Code)

	again, err := services.ApplySeed(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, again.BaseBands)
	assert.Equal(t, 1, again.Unchanged)
	assert.Equal(t, 1, store.BandCount())
}

func TestApplySeedUnknownDimension(t *testing.T) {
	seed, err := config.ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	seed.BaseBands[0].Size = "Medium"

	_, err = newMemoryServices(memory.New()).ApplySeed(context.Background(), seed)
	assert.ErrorContains(t, err, "unknown size")
}
