package indicator

import (
	"context"
	"errors"
	"testing"
	"time"

	"consortial/internal/models"
	"consortial/internal/repositories/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIndicatorRepository struct {
	mock.Mock
}

func (m *MockIndicatorRepository) Get(ctx context.Context, indicator string, year int) (*models.IndicatorSnapshot, error) {
	args := m.Called(ctx, indicator, year)
	snapshot, _ := args.Get(0).(*models.IndicatorSnapshot)
	return snapshot, args.Error(1)
}

func (m *MockIndicatorRepository) Upsert(ctx context.Context, snapshot *models.IndicatorSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func newRedisCache(t *testing.T) (*cache.CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return cache.NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour), mr
}

func TestStore_OpenCachesLocally(t *testing.T) {
	repo := new(MockIndicatorRepository)
	repo.On("Get", mock.Anything, models.IndicatorGNIPerCapita, 2023).
		Return(&models.IndicatorSnapshot{Values: models.IndicatorValues{"DEU": 51640}}, nil).Once()

	store := NewStore(repo, nil, StoreConfig{}, nil, quietLogger())

	for i := 0; i < 3; i++ {
		values, err := store.Open(context.Background(), models.IndicatorGNIPerCapita, 2023)
		require.NoError(t, err)
		assert.Equal(t, 51640.0, values["DEU"])
	}
	repo.AssertExpectations(t)
}

func TestStore_OpenMissingYearIsEmpty(t *testing.T) {
	repo := new(MockIndicatorRepository)
	repo.On("Get", mock.Anything, models.IndicatorExchangeRate, 2019).Return(nil, nil).Once()

	store := NewStore(repo, nil, StoreConfig{}, nil, quietLogger())

	values, err := store.Open(context.Background(), models.IndicatorExchangeRate, 2019)
	require.NoError(t, err)
	assert.NotNil(t, values)
	assert.Empty(t, values)

	_, err = store.Open(context.Background(), models.IndicatorExchangeRate, 2019)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStore_OpenPropagatesStoreFailure(t *testing.T) {
	repo := new(MockIndicatorRepository)
	repo.On("Get", mock.Anything, models.IndicatorExchangeRate, 2022).Return(nil, errors.New("connection refused"))

	store := NewStore(repo, nil, StoreConfig{}, nil, quietLogger())

	_, err := store.Open(context.Background(), models.IndicatorExchangeRate, 2022)
	assert.Error(t, err)
}

func TestStore_OpenUsesSharedCache(t *testing.T) {
	shared, _ := newRedisCache(t)
	require.NoError(t, shared.CacheSnapshot(context.Background(), models.IndicatorExchangeRate, 2022, map[string]float64{"EMU": 0.95}))

	repo := new(MockIndicatorRepository)
	store := NewStore(repo, shared, StoreConfig{}, nil, quietLogger())

	values, err := store.Open(context.Background(), models.IndicatorExchangeRate, 2022)
	require.NoError(t, err)
	assert.Equal(t, 0.95, values["EMU"])
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_OpenFillsSharedCache(t *testing.T) {
	shared, mr := newRedisCache(t)
	repo := new(MockIndicatorRepository)
	repo.On("Get", mock.Anything, models.IndicatorGNIPerCapita, 2021).
		Return(&models.IndicatorSnapshot{Values: models.IndicatorValues{"GBR": 45000}}, nil).Once()

	store := NewStore(repo, shared, StoreConfig{}, nil, quietLogger())

	_, err := store.Open(context.Background(), models.IndicatorGNIPerCapita, 2021)
	require.NoError(t, err)
	assert.True(t, mr.Exists("indicator:NY.GNP.PCAP.CD:2021"))
}

func TestStore_SaveInvalidates(t *testing.T) {
	shared, mr := newRedisCache(t)
	repo := new(MockIndicatorRepository)
	repo.On("Get", mock.Anything, models.IndicatorGNIPerCapita, 2023).
		Return(&models.IndicatorSnapshot{Values: models.IndicatorValues{"DEU": 1}}, nil).Once()
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.IndicatorSnapshot")).Return(nil)
	repo.On("Get", mock.Anything, models.IndicatorGNIPerCapita, 2023).
		Return(&models.IndicatorSnapshot{Values: models.IndicatorValues{"DEU": 2}}, nil).Once()

	store := NewStore(repo, shared, StoreConfig{}, nil, quietLogger())
	ctx := context.Background()

	values, err := store.Open(ctx, models.IndicatorGNIPerCapita, 2023)
	require.NoError(t, err)
	assert.Equal(t, 1.0, values["DEU"])

	require.NoError(t, store.Save(ctx, &models.IndicatorSnapshot{
		Indicator: models.IndicatorGNIPerCapita,
		Year:      2023,
		Values:    models.IndicatorValues{"DEU": 2},
	}))
	assert.False(t, mr.Exists("indicator:NY.GNP.PCAP.CD:2023"))

	values, err = store.Open(ctx, models.IndicatorGNIPerCapita, 2023)
	require.NoError(t, err)
	assert.Equal(t, 2.0, values["DEU"])
	repo.AssertExpectations(t)
}
