package models

import "time"

// BillingAgent collects fees on behalf of the consortium, either for a
// single country or, when Default is set, for every country without its own agent.
type BillingAgent struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Country     *string   `gorm:"size:2;index" json:"country,omitempty"`
	Default     bool      `gorm:"column:is_default;default:false" json:"default"`
	RedirectURL string    `json:"redirect_url"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// CountryCode returns the agent's country or an empty string for unscoped agents.
func (a BillingAgent) CountryCode() string {
	if a.Country == nil {
		return ""
	}
	return *a.Country
}
