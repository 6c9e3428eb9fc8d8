package supporter

import (
	"time"

	domainerrors "consortial/internal/errors"
	"consortial/internal/services/band"
)

// Input is the data a supporter signs up or is edited with.
type Input struct {
	Name          string     `json:"name"`
	ROR           string     `json:"ror"`
	Address       string     `json:"address"`
	PostalCode    string     `json:"postal_code"`
	Country       string     `json:"country"`
	Display       *bool      `json:"display,omitempty"`
	Active        *bool      `json:"active,omitempty"`
	InternalNotes string     `json:"internal_notes,omitempty"`
	Band          band.Input `json:"band"`
}

// Mode controls what a recalculation run writes.
type Mode string

const (
	// ModeDryRun computes new fees without writing anything.
	ModeDryRun Mode = "dry_run"
	// ModeProspective stores new bands as prospective bands for review.
	ModeProspective Mode = "prospective"
	// ModeApply moves supporters onto their new bands.
	ModeApply Mode = "apply"
)

// ParseMode validates a recalculation mode. An empty mode is a dry run.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeDryRun, nil
	case ModeDryRun, ModeProspective, ModeApply:
		return m, nil
	}
	return "", domainerrors.NewValidationError(map[string]string{
		"mode": "must be dry_run, prospective or apply",
	})
}

// Recalculation statuses.
const (
	StatusChanged    = "changed"
	StatusUnchanged  = "unchanged"
	StatusSkipped    = "skipped"
	StatusIncomplete = "incomplete"
	StatusFailed     = "failed"
)

// Result describes what a recalculation did for one supporter.
type Result struct {
	SupporterID uint   `json:"supporter_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	OldBandID   uint   `json:"old_band_id,omitempty"`
	NewBandID   uint   `json:"new_band_id,omitempty"`
	OldFee      int    `json:"old_fee"`
	NewFee      int    `json:"new_fee"`
	Currency    string `json:"currency,omitempty"`
	Warnings    string `json:"warnings,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Report summarises a recalculation run.
type Report struct {
	RunID      string    `json:"run_id"`
	Mode       Mode      `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Changed    int       `json:"changed"`
	Unchanged  int       `json:"unchanged"`
	Skipped    int       `json:"skipped"`
	Incomplete int       `json:"incomplete"`
	Failed     int       `json:"failed"`
	Results    []Result  `json:"results"`
}

func (r *Report) add(result Result) {
	switch result.Status {
	case StatusChanged:
		r.Changed++
	case StatusUnchanged:
		r.Unchanged++
	case StatusSkipped:
		r.Skipped++
	case StatusIncomplete:
		r.Incomplete++
	case StatusFailed:
		r.Failed++
	}
	r.Results = append(r.Results, result)
}

// DisplayBand is one row of the public fee table.
type DisplayBand struct {
	Level     string `json:"level"`
	Size      string `json:"size"`
	Countries string `json:"countries"`
	Fees      string `json:"fees"`
}
