package models

import "time"

// Supporter is an institution paying a membership fee. Band is the fee it
// currently pays; ProspectiveBand holds the result of a recalculation that has
// not been applied yet.
type Supporter struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	Name              string    `gorm:"not null;index" json:"name"`
	ROR               string    `gorm:"column:ror;size:25;index" json:"ror"`
	Address           string    `json:"address"`
	PostalCode        string    `json:"postal_code"`
	Country           string    `gorm:"size:2" json:"country"`
	Display           bool      `gorm:"not null" json:"display"`
	Active            bool      `gorm:"not null;index" json:"active"`
	BandID            *uint     `gorm:"index" json:"band_id,omitempty"`
	Band              *Band     `gorm:"foreignKey:BandID" json:"band,omitempty"`
	ProspectiveBandID *uint     `json:"prospective_band_id,omitempty"`
	ProspectiveBand   *Band     `gorm:"foreignKey:ProspectiveBandID" json:"prospective_band,omitempty"`
	InternalNotes     string    `gorm:"type:text" json:"internal_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OldBand is an append-only record of a band a supporter used to pay.
type OldBand struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	SupporterID uint      `gorm:"not null;uniqueIndex:idx_old_band,priority:1" json:"supporter_id"`
	BandID      uint      `gorm:"not null;uniqueIndex:idx_old_band,priority:2" json:"band_id"`
	Band        *Band     `gorm:"foreignKey:BandID" json:"band,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
