package band

import (
	"context"
	"strings"

	"consortial/internal/config"
	"consortial/internal/models"
	"consortial/internal/repositories"
	"consortial/internal/services/indicator"

	"github.com/shopspring/decimal"
)

// CurrencyRate is a currency's exchange rate relative to the base currency.
type CurrencyRate struct {
	Currency models.Currency `json:"currency"`
	Base     string          `json:"base"`
	Rate     decimal.Decimal `json:"rate"`
	Warning  string          `json:"warning,omitempty"`
}

// Rates looks up exchange rates between currencies.
type Rates struct {
	currencies  repositories.CurrencyRepository
	base        BaseBandFinder
	multipliers MultiplierSource
	settings    config.Settings
}

func NewRates(
	currencies repositories.CurrencyRepository,
	base BaseBandFinder,
	multipliers MultiplierSource,
	settings config.Settings,
) *Rates {
	return &Rates{
		currencies:  currencies,
		base:        base,
		multipliers: multipliers,
		settings:    settings,
	}
}

// ExchangeRate returns how many units of currency equal one unit of base.
// A nil or unconfigured base yields 1.
func (r *Rates) ExchangeRate(ctx context.Context, currency models.Currency, base *models.Currency) (decimal.Decimal, string, error) {
	baseKey := indicator.NotConfigured
	if base != nil && base.Region != "" {
		baseKey = base.Region
	}
	warning := strings.ReplaceAll(r.settings.MissingDataExchangeRate, "{region}", currency.Region)
	return r.multipliers.Resolve(ctx, r.settings.RateIndicator, currency.Region, baseKey, warning)
}

// ExchangeRatesForDisplay returns every currency's rate against the currency
// of the latest base band.
func (r *Rates) ExchangeRatesForDisplay(ctx context.Context) ([]CurrencyRate, error) {
	currencies, err := r.currencies.List(ctx)
	if err != nil {
		return nil, err
	}
	baseBand, err := r.base.GetBaseBand(ctx, nil, "")
	if err != nil {
		return nil, err
	}
	var base *models.Currency
	baseCode := indicator.NotConfigured
	if baseBand != nil && baseBand.Currency != nil {
		base = baseBand.Currency
		baseCode = base.Code
	}

	rates := make([]CurrencyRate, 0, len(currencies))
	for _, currency := range currencies {
		rate, warning, err := r.ExchangeRate(ctx, currency, base)
		if err != nil {
			return nil, err
		}
		rates = append(rates, CurrencyRate{
			Currency: currency,
			Base:     baseCode,
			Rate:     rate,
			Warning:  warning,
		})
	}
	return rates, nil
}
