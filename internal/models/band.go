package models

import (
	"time"

	domainerrors "consortial/internal/errors"

	"gorm.io/gorm"
)

// Band is a versioned fee record for a (size, level, country, currency)
// combination. Rows are effectively immutable once persisted with a fee.
//
// The dedup index only covers calculated bands; a concurrent writer that loses
// the race on it reads the winner back.
type Band struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	SizeID         uint           `gorm:"not null;uniqueIndex:idx_band_dedup,priority:1,where:category = 'calculated'" json:"size_id"`
	Size           *SupporterSize `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	LevelID        uint           `gorm:"not null;uniqueIndex:idx_band_dedup,priority:2,where:category = 'calculated';index:idx_band_base,priority:2" json:"level_id"`
	Level          *SupportLevel  `gorm:"foreignKey:LevelID" json:"level,omitempty"`
	Country        string         `gorm:"size:2;not null;uniqueIndex:idx_band_dedup,priority:3,where:category = 'calculated';index:idx_band_base,priority:3" json:"country"`
	CurrencyID     uint           `gorm:"not null;uniqueIndex:idx_band_dedup,priority:4,where:category = 'calculated'" json:"currency_id"`
	Currency       *Currency      `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	BillingAgentID *uint          `gorm:"uniqueIndex:idx_band_dedup,priority:5,where:category = 'calculated'" json:"billing_agent_id,omitempty"`
	BillingAgent   *BillingAgent  `gorm:"foreignKey:BillingAgentID" json:"billing_agent,omitempty"`
	Fee            *int           `gorm:"uniqueIndex:idx_band_dedup,priority:6,where:category = 'calculated'" json:"fee"`
	Warnings       string         `gorm:"type:text;not null;default:'';uniqueIndex:idx_band_dedup,priority:7,where:category = 'calculated'" json:"warnings"`
	Year           int            `gorm:"not null;uniqueIndex:idx_band_dedup,priority:8,where:category = 'calculated'" json:"year"`
	Category       Category       `gorm:"size:16;not null;default:'calculated';index:idx_band_base,priority:1" json:"category"`
	Datetime       time.Time      `gorm:"not null;index" json:"datetime"`
}

// BeforeCreate stamps the version timestamp and the derived dedup year.
func (b *Band) BeforeCreate(tx *gorm.DB) error {
	if b.Datetime.IsZero() {
		b.Datetime = time.Now()
	}
	b.Year = b.Datetime.Year()
	return nil
}

// FeeValue returns the fee or zero when it has not been set.
func (b *Band) FeeValue() int {
	if b.Fee == nil {
		return 0
	}
	return *b.Fee
}

// Validate checks the invariants of the band's category.
func (b *Band) Validate() error {
	fields := b.missingDimensions()
	if !b.Category.Valid() {
		fields["category"] = "must be base, calculated or special"
	}
	if b.Category.ManualFee() {
		switch {
		case b.Fee == nil:
			fields["fee"] = "is required for " + string(b.Category) + " bands"
		case *b.Fee < 0:
			fields["fee"] = "must not be negative"
		}
	}
	if len(fields) > 0 {
		return domainerrors.NewValidationError(fields)
	}
	return nil
}

// ValidateDimensions checks that every input needed for fee calculation is set.
func (b *Band) ValidateDimensions() error {
	if fields := b.missingDimensions(); len(fields) > 0 {
		return domainerrors.NewValidationError(fields)
	}
	return nil
}

func (b *Band) missingDimensions() map[string]string {
	fields := map[string]string{}
	if b.SizeID == 0 && b.Size == nil {
		fields["size"] = "is required"
	}
	if b.LevelID == 0 && b.Level == nil {
		fields["level"] = "is required"
	}
	if b.Country == "" {
		fields["country"] = "is required"
	}
	if b.CurrencyID == 0 && b.Currency == nil {
		fields["currency"] = "is required"
	}
	return fields
}

// Fork returns a copy of the band without its identity so that saving it
// creates a new row.
func (b *Band) Fork() *Band {
	forked := *b
	forked.ID = 0
	forked.Datetime = time.Time{}
	forked.Year = 0
	return &forked
}

// DedupKey identifies calculated bands that are interchangeable within a year.
type DedupKey struct {
	SizeID         uint
	LevelID        uint
	Country        string
	CurrencyID     uint
	BillingAgentID *uint
	Category       Category
	Fee            *int
	Warnings       string
	Year           int
}

// DedupKey returns the band's dedup key for the given calendar year.
func (b *Band) DedupKey(year int) DedupKey {
	return DedupKey{
		SizeID:         b.SizeID,
		LevelID:        b.LevelID,
		Country:        b.Country,
		CurrencyID:     b.CurrencyID,
		BillingAgentID: b.BillingAgentID,
		Category:       b.Category,
		Fee:            b.Fee,
		Warnings:       b.Warnings,
		Year:           year,
	}
}
