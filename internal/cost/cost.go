// Package cost computes total out-the-door cost for a listing.
package cost

import (
	"errors"
	"fmt"
	"math"

	"github.com/zulandar/carscout/internal/config"
	"github.com/zulandar/carscout/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fee names used in the itemized map.
const (
	FeeDocumentation = "documentation"
	FeeRegulatory    = "regulatory"
	FeeStewardship   = "stewardship"
)

// Inputs are the parameters to Compute. SellerType "dealer" carries the
// documentation, regulatory, and stewardship fees; any other seller type
// carries none of them.
type Inputs struct {
	AskingPrice         float64
	NegotiatedPrice     *float64
	SellerType          string
	FeeOverrides        map[string]float64 // by fee name; missing entries default from config
	IncludeRegistration bool
	TransferPlates      bool
	Budget              float64
	Fees                config.FeesConfig
}

// Breakdown is the computed result, mirroring models.CostBreakdown minus
// identity.
type Breakdown struct {
	AskingPrice      float64
	NegotiatedPrice  *float64
	EffectivePrice   float64
	Fees             map[string]float64
	TaxRate          float64
	TaxAmount        float64
	RegistrationCost float64
	TotalCost        float64
	Budget           float64
	Remaining        float64
	WithinBudget     bool
}

// Compute derives the full cost breakdown. Pure; re-invoke it whenever any
// input changes rather than patching a prior result.
func Compute(in Inputs) Breakdown {
	effective := in.AskingPrice
	if in.NegotiatedPrice != nil {
		effective = *in.NegotiatedPrice
	}

	fees := map[string]float64{}
	if in.SellerType == "dealer" {
		fees[FeeDocumentation] = in.Fees.DealerDocFee
		fees[FeeRegulatory] = in.Fees.RegulatoryFee
		fees[FeeStewardship] = in.Fees.StewardshipFee
	}
	for name, amount := range in.FeeOverrides {
		fees[name] = amount
	}

	// The regulatory fee is not taxable in the modeled jurisdiction.
	taxable := effective + fees[FeeDocumentation] + fees[FeeStewardship]
	tax := math.Round(taxable * in.Fees.TaxRate)

	var registration float64
	if in.IncludeRegistration {
		registration = in.Fees.RegistrationBase
		if in.TransferPlates {
			registration += in.Fees.PlateTransferCost
		} else {
			registration += in.Fees.NewPlateCost
		}
	}

	var feeTotal float64
	for _, amount := range fees {
		feeTotal += amount
	}

	total := effective + feeTotal + tax + registration

	return Breakdown{
		AskingPrice:      in.AskingPrice,
		NegotiatedPrice:  in.NegotiatedPrice,
		EffectivePrice:   effective,
		Fees:             fees,
		TaxRate:          in.Fees.TaxRate,
		TaxAmount:        tax,
		RegistrationCost: registration,
		TotalCost:        total,
		Budget:           in.Budget,
		Remaining:        in.Budget - total,
		WithinBudget:     total <= in.Budget,
	}
}

// Save replaces the listing's cost snapshot atomically (upsert by listing
// id). There is no partial-update path.
func Save(db *gorm.DB, listingID uint, b Breakdown) error {
	row := models.CostBreakdown{
		ListingID:        listingID,
		AskingPrice:      b.AskingPrice,
		NegotiatedPrice:  b.NegotiatedPrice,
		Fees:             models.FeeMap(b.Fees),
		TaxRate:          b.TaxRate,
		TaxAmount:        b.TaxAmount,
		RegistrationCost: b.RegistrationCost,
		TotalCost:        b.TotalCost,
		Budget:           b.Budget,
		Remaining:        b.Remaining,
		WithinBudget:     b.WithinBudget,
	}

	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"asking_price", "negotiated_price", "fees", "tax_rate", "tax_amount",
			"registration_cost", "total_cost", "budget", "remaining",
			"within_budget", "updated_at",
		}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("cost: save breakdown for listing %d: %w", listingID, result.Error)
	}
	return nil
}

// Latest returns the stored snapshot for a listing, or nil if none exists.
func Latest(db *gorm.DB, listingID uint) (*models.CostBreakdown, error) {
	var row models.CostBreakdown
	err := db.Where("listing_id = ?", listingID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cost: load breakdown for listing %d: %w", listingID, err)
	}
	return &row, nil
}
