package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupporterSize scales the fee of default support levels by institution size.
type SupporterSize struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null" json:"name"`
	Description string          `json:"description"`
	Multiplier  decimal.Decimal `gorm:"type:numeric(8,3);not null;default:1" json:"multiplier"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// SupportLevel is a support tier. Only the single Default level is scaled by size.
type SupportLevel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Order     int       `gorm:"column:sort_order;default:0" json:"order"`
	Default   bool      `gorm:"column:is_default;default:false" json:"default"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Currency carries the World Bank region key used to look up exchange rates.
type Currency struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"size:3;uniqueIndex;not null" json:"code"`
	Symbol    string    `json:"symbol"`
	Region    string    `gorm:"size:3;not null" json:"region"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (c Currency) String() string {
	return c.Code
}
