package config

import (
	"time"

	"consortial/internal/models"
)

const (
	defaultMissingExchangeRate = "<p>We don't have currency data for the region {region}, " +
		"so we could not factor that in to the fee calculation.</p>"
	defaultMissingDisparity = "<p>We don't have data for {country}, " +
		"so we could not factor that in to the fee calculation.</p>"
)

// Settings are the fee engine inputs an administrator controls.
type Settings struct {
	MinimumFee                   int
	MissingDataExchangeRate      string
	MissingDataEconomicDisparity string
	DisparityIndicator           string
	RateIndicator                string
	SnapshotCacheTTL             time.Duration
	SnapshotCacheSize            int
}

// LoadSettings reads fee settings from the environment.
func LoadSettings() Settings {
	return Settings{
		MinimumFee:                   GetIntEnv("MINIMUM_FEE", 100),
		MissingDataExchangeRate:      GetEnv("MISSING_DATA_EXCHANGE_RATE", defaultMissingExchangeRate),
		MissingDataEconomicDisparity: GetEnv("MISSING_DATA_ECONOMIC_DISPARITY", defaultMissingDisparity),
		DisparityIndicator:           GetEnv("DISPARITY_INDICATOR", models.IndicatorGNIPerCapita),
		RateIndicator:                GetEnv("RATE_INDICATOR", models.IndicatorExchangeRate),
		SnapshotCacheTTL:             GetDurationEnv("SNAPSHOT_CACHE_TTL", time.Hour),
		SnapshotCacheSize:            GetIntEnv("SNAPSHOT_CACHE_SIZE", 64),
	}
}

// Indicators returns the indicator codes the engine reads.
func (s Settings) Indicators() []string {
	return []string{s.DisparityIndicator, s.RateIndicator}
}
