// Package readiness scores how close a listing is to purchase-ready.
package readiness

import (
	"errors"
	"fmt"

	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
)

// Signal weights. They sum to 100.
const (
	WeightCarfaxReceived  = 20
	WeightCarfaxClean     = 15
	WeightPriceNegotiated = 15
	WeightWithinBudget    = 20
	WeightSellerResponded = 10
	WeightNoRedFlags      = 20
)

// Signals are the six boolean inputs to the score.
type Signals struct {
	CarfaxReceived  bool
	CarfaxClean     bool // only counts when the report was received
	PriceNegotiated bool
	WithinBudget    bool
	SellerResponded bool
	NoRedFlags      bool
}

// Score combines the signals into a 0-100 readiness score. Pure: same
// signals, same score, no dependence on prior calls.
func Score(s Signals) int {
	score := 0
	if s.CarfaxReceived {
		score += WeightCarfaxReceived
		if s.CarfaxClean {
			score += WeightCarfaxClean
		}
	}
	if s.PriceNegotiated {
		score += WeightPriceNegotiated
	}
	if s.WithinBudget {
		score += WeightWithinBudget
	}
	if s.SellerResponded {
		score += WeightSellerResponded
	}
	if s.NoRedFlags {
		score += WeightNoRedFlags
	}
	return score
}

// Derive builds the signals from a listing and its latest cost breakdown.
// A nil breakdown means no cost computation exists yet, which reads as not
// within budget. An unknown incident count on a received report is treated
// as clean.
func Derive(listing *models.Listing, breakdown *models.CostBreakdown) Signals {
	return Signals{
		CarfaxReceived:  listing.CarfaxReceived,
		CarfaxClean:     listing.CarfaxIncidents == nil || *listing.CarfaxIncidents == 0,
		PriceNegotiated: listing.NegotiatedPrice != nil,
		WithinBudget:    breakdown != nil && breakdown.WithinBudget,
		SellerResponded: listing.LastSellerResponseAt != nil,
		NoRedFlags:      len(listing.RedFlags) == 0,
	}
}

// Evaluate recomputes a listing's readiness score from current signals and
// caches it on the row. The cache is display-only; Evaluate never reads it.
func Evaluate(db *gorm.DB, listingID uint) (int, error) {
	var listing models.Listing
	if err := db.Where("id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("readiness: listing not found: %d", listingID)
		}
		return 0, fmt.Errorf("readiness: load listing %d: %w", listingID, err)
	}

	var breakdown *models.CostBreakdown
	var row models.CostBreakdown
	err := db.Where("listing_id = ?", listingID).First(&row).Error
	switch {
	case err == nil:
		breakdown = &row
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No cost computed yet.
	default:
		return 0, fmt.Errorf("readiness: load cost breakdown %d: %w", listingID, err)
	}

	score := Score(Derive(&listing, breakdown))
	if err := db.Model(&models.Listing{}).Where("id = ?", listingID).
		Update("readiness_score", score).Error; err != nil {
		return 0, fmt.Errorf("readiness: cache score for %d: %w", listingID, err)
	}
	return score, nil
}
