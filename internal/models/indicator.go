package models

import "time"

// Indicator codes from the World Bank API.
const (
	IndicatorGNIPerCapita = "NY.GNP.PCAP.CD"
	IndicatorExchangeRate = "PA.NUS.FCRF"
)

// IndicatorSnapshot is one year of a World Bank indicator, keyed by ISO
// alpha-3 country or region code.
type IndicatorSnapshot struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	Indicator string          `gorm:"size:32;not null;uniqueIndex:idx_indicator_year,priority:1" json:"indicator"`
	Year      int             `gorm:"not null;uniqueIndex:idx_indicator_year,priority:2" json:"year"`
	Values    IndicatorValues `gorm:"column:data;type:jsonb;not null" json:"values"`
	FetchedAt time.Time       `json:"fetched_at"`
}
