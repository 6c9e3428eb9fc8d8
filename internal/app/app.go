// Package app wires repositories and services into the fee engine used by
// the HTTP server and the command line tools.
package app

import (
	"consortial/internal/config"
	"consortial/internal/metrics"
	"consortial/internal/repositories"
	"consortial/internal/services/band"
	"consortial/internal/services/billing"
	"consortial/internal/services/indicator"
	"consortial/internal/services/level"
	"consortial/internal/services/supporter"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Repositories groups every repository the services use.
type Repositories struct {
	Sizes      repositories.SizeRepository
	Levels     repositories.LevelRepository
	Currencies repositories.CurrencyRepository
	Agents     repositories.BillingAgentRepository
	Bands      repositories.BandRepository
	Supporters repositories.SupporterRepository
	Indicators repositories.IndicatorRepository
}

// NewRepositories returns the postgres backed repositories.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Sizes:      repositories.NewSizeRepository(db),
		Levels:     repositories.NewLevelRepository(db),
		Currencies: repositories.NewCurrencyRepository(db),
		Agents:     repositories.NewBillingAgentRepository(db),
		Bands:      repositories.NewBandRepository(db),
		Supporters: repositories.NewSupporterRepository(db),
		Indicators: repositories.NewIndicatorRepository(db),
	}
}

// Services is the assembled fee engine.
type Services struct {
	Repos       Repositories
	Settings    config.Settings
	Indicators  *indicator.Store
	Multipliers *indicator.MultiplierResolver
	Agents      *billing.Resolver
	Levels      *level.Service
	Base        *band.BaseResolver
	Calculator  *band.Calculator
	Bands       *band.Resolver
	Rates       *band.Rates
	Supporters  *supporter.Service
}

// NewServices builds the services. shared may be nil to run without the
// redis snapshot cache.
func NewServices(
	repos Repositories,
	shared indicator.SnapshotCache,
	settings config.Settings,
	metricsCollector metrics.MetricsCollector,
	log *logrus.Logger,
) *Services {
	if metricsCollector == nil {
		metricsCollector = &metrics.NoopMetricsCollector{}
	}
	if log == nil {
		log = logrus.New()
	}

	s := &Services{Repos: repos, Settings: settings}
	s.Indicators = indicator.NewStore(repos.Indicators, shared, indicator.StoreConfig{
		CacheSize: settings.SnapshotCacheSize,
		CacheTTL:  settings.SnapshotCacheTTL,
	}, metricsCollector, log)
	s.Multipliers = indicator.NewMultiplierResolver(s.Indicators, metricsCollector, log)
	s.Agents = billing.NewResolver(repos.Agents, log)
	s.Levels = level.NewService(repos.Levels, log)
	s.Base = band.NewBaseResolver(repos.Bands, repos.Agents, repos.Levels)
	s.Calculator = band.NewCalculator(s.Base, s.Multipliers, settings, log)
	s.Bands = band.NewResolver(band.Repositories{
		Bands:      repos.Bands,
		Sizes:      repos.Sizes,
		Levels:     repos.Levels,
		Currencies: repos.Currencies,
	}, s.Agents, s.Calculator, metricsCollector, log)
	s.Rates = band.NewRates(repos.Currencies, s.Base, s.Multipliers, settings)
	s.Supporters = supporter.NewService(supporter.Repositories{
		Supporters: repos.Supporters,
		Sizes:      repos.Sizes,
		Levels:     repos.Levels,
		Currencies: repos.Currencies,
	}, s.Bands, s.Levels, metricsCollector, log)
	return s
}
