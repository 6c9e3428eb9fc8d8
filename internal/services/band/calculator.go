package band

import (
	"context"
	"strings"

	"consortial/internal/config"
	"consortial/internal/country"
	domainerrors "consortial/internal/errors"
	"consortial/internal/models"
	"consortial/internal/services/indicator"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BaseBandFinder returns the base band for a level and country.
type BaseBandFinder interface {
	GetBaseBand(ctx context.Context, level *models.SupportLevel, country string) (*models.Band, error)
}

// MultiplierSource compares two keys of an indicator.
type MultiplierSource interface {
	Resolve(ctx context.Context, indicator, measureKey, baseKey, fallbackWarning string) (decimal.Decimal, string, error)
}

// Calculator derives a band's fee from the base band.
type Calculator struct {
	base        BaseBandFinder
	multipliers MultiplierSource
	settings    config.Settings
	log         *logrus.Logger
}

func NewCalculator(base BaseBandFinder, multipliers MultiplierSource, settings config.Settings, log *logrus.Logger) *Calculator {
	if log == nil {
		log = logrus.New()
	}
	return &Calculator{
		base:        base,
		multipliers: multipliers,
		settings:    settings,
		log:         log,
	}
}

// CalculateFee returns the fee for the band's size, level, country and
// currency together with any warnings about missing indicator data. The
// band's Size, Level and Currency must be loaded.
//
// The base fee is scaled by size (default level only), economic disparity and
// exchange rate, rounded to the nearest ten with halves away from zero, and
// raised to the minimum fee.
func (c *Calculator) CalculateFee(ctx context.Context, band *models.Band) (int, string, error) {
	if err := requireLoaded(band); err != nil {
		return 0, "", err
	}
	logger := c.log.WithFields(logrus.Fields{
		"size":     band.Size.Name,
		"level":    band.Level.Name,
		"country":  band.Country,
		"currency": band.Currency.Code,
	})

	base, err := c.base.GetBaseBand(ctx, band.Level, band.Country)
	if err != nil {
		return 0, "", err
	}
	if base == nil {
		logger.Error("no base band found")
		return 0, "", domainerrors.ErrNoBaseBand
	}
	if base.Fee == nil {
		logger.WithField("base_band_id", base.ID).Error("base band has no fee")
		return 0, "", domainerrors.ErrBaseBandWithoutFee.Withf("band %d", base.ID)
	}

	fee := decimal.NewFromInt(int64(*base.Fee))
	var warnings []string

	if band.Level.Default {
		if base.Size == nil || base.Size.Multiplier.IsZero() {
			logger.WithField("base_band_id", base.ID).Error("base band size has no multiplier")
			return 0, "", domainerrors.ErrBaseSizeMultiplier.Withf("band %d", base.ID)
		}
		fee = fee.Mul(band.Size.Multiplier).Div(base.Size.Multiplier)
	}

	disparity, warning, err := c.multipliers.Resolve(
		ctx,
		c.settings.DisparityIndicator,
		country.Alpha3(band.Country),
		baseCountryKey(base),
		c.disparityWarning(band),
	)
	if err != nil {
		return 0, "", err
	}
	fee = fee.Mul(disparity)
	warnings = appendWarning(warnings, warning)

	rate, warning, err := c.multipliers.Resolve(
		ctx,
		c.settings.RateIndicator,
		band.Currency.Region,
		baseRegionKey(base),
		c.rateWarning(band),
	)
	if err != nil {
		return 0, "", err
	}
	fee = fee.Mul(rate)
	warnings = appendWarning(warnings, warning)

	result := RoundFee(fee)
	if result < c.settings.MinimumFee {
		result = c.settings.MinimumFee
	}
	return result, strings.Join(warnings, ""), nil
}

// RoundFee rounds to the nearest multiple of ten, halves away from zero.
func RoundFee(fee decimal.Decimal) int {
	return int(fee.Round(-1).IntPart())
}

func (c *Calculator) disparityWarning(band *models.Band) string {
	return strings.ReplaceAll(c.settings.MissingDataEconomicDisparity, "{country}", country.Name(band.Country))
}

func (c *Calculator) rateWarning(band *models.Band) string {
	return strings.ReplaceAll(c.settings.MissingDataExchangeRate, "{region}", band.Currency.Region)
}

func baseCountryKey(base *models.Band) string {
	if key := country.Alpha3(base.Country); key != "" {
		return key
	}
	return indicator.NotConfigured
}

func baseRegionKey(base *models.Band) string {
	if base.Currency == nil || base.Currency.Region == "" {
		return indicator.NotConfigured
	}
	return base.Currency.Region
}

func appendWarning(warnings []string, warning string) []string {
	if warning == "" {
		return warnings
	}
	return append(warnings, warning)
}

func requireLoaded(band *models.Band) error {
	fields := map[string]string{}
	if band.Size == nil {
		fields["size"] = "is required"
	}
	if band.Level == nil {
		fields["level"] = "is required"
	}
	if band.Country == "" {
		fields["country"] = "is required"
	}
	if band.Currency == nil {
		fields["currency"] = "is required"
	}
	if len(fields) > 0 {
		return domainerrors.NewValidationError(fields)
	}
	return nil
}
