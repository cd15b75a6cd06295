package models

import "time"

// CostBreakdown is the one-per-listing snapshot of the latest cost
// computation. Recomputation replaces the whole row (upsert by listing id).
type CostBreakdown struct {
	ListingID        uint    `gorm:"primaryKey"`
	AskingPrice      float64
	NegotiatedPrice  *float64
	Fees             FeeMap `gorm:"type:text"`
	TaxRate          float64
	TaxAmount        float64
	RegistrationCost float64
	TotalCost        float64
	Budget           float64
	Remaining        float64
	WithinBudget     bool
	UpdatedAt        time.Time
}
